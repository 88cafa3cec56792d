package paymentsvc

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"quickrent/model"
	gatewayrepo "quickrent/repository/gateway"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("unexpected prepare") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() { sql.Register("paymentsvc_stub", stubDriver{}) }

func stubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("paymentsvc_stub", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type mockPayments struct {
	stored    map[int64]*model.Payment
	inserted  []*model.Payment
	insertErr error
}

var _ Repo = (*mockPayments)(nil)

func (m *mockPayments) Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	p.ID = int64(len(m.inserted) + 1)
	m.inserted = append(m.inserted, p)
	cp := *p
	m.stored[p.ID] = &cp
	return nil
}

func (m *mockPayments) Get(ctx context.Context, id int64) (*model.Payment, error) {
	p, ok := m.stored[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockPayments) UpdateStatus(ctx context.Context, id int64, status model.PaymentStatus) (bool, error) {
	p, ok := m.stored[id]
	if !ok {
		return false, nil
	}
	p.Status = status
	return true, nil
}

func (m *mockPayments) ListByOwner(ctx context.Context, ownerID int64) ([]model.Payment, error) {
	return nil, nil
}

type mockRentals struct {
	rental   *model.Rental
	casCalls int
	casOK    bool
}

var _ RentalRepo = (*mockRentals)(nil)

func (m *mockRentals) Get(ctx context.Context, id int64) (*model.Rental, error) {
	if m.rental == nil || m.rental.ID != id {
		return nil, sql.ErrNoRows
	}
	cp := *m.rental
	return &cp, nil
}

func (m *mockRentals) UpdateStatusCAS(ctx context.Context, tx *sql.Tx, id int64, from, to model.RentalStatus, reason *string) (bool, error) {
	m.casCalls++
	if !m.casOK {
		return false, nil
	}
	m.rental.Status = to
	return true, nil
}

type mockItems struct {
	availSets []bool
}

var _ ItemRepo = (*mockItems)(nil)

func (m *mockItems) SetAvailability(ctx context.Context, tx *sql.Tx, itemID int64, available bool) error {
	m.availSets = append(m.availSets, available)
	return nil
}

type fakeGateway struct {
	token string
}

var _ gatewayrepo.Repo = (*fakeGateway)(nil)

func (g *fakeGateway) CreateCheckout(gatewayrepo.CreateCheckoutReq) (*gatewayrepo.CreateCheckoutResp, error) {
	return nil, errors.New("not used")
}

func (g *fakeGateway) VerifyCallbackToken(tok string) error {
	if tok != g.token {
		return errors.New("token mismatch")
	}
	return nil
}

type recordingCache struct {
	invalidations int
}

func (c *recordingCache) Invalidate(context.Context) { c.invalidations++ }

type fixture struct {
	svc     Service
	pays    *mockPayments
	rentals *mockRentals
	items   *mockItems
	cache   *recordingCache
}

func approvedRental() *model.Rental {
	return &model.Rental{
		ID:       7,
		ItemID:   10,
		RenterID: 2,
		OwnerID:  1,
		Status:   model.RentalApproved,
		Cost: model.Cost{
			Subtotal:          3000,
			DeliveryFee:       150,
			RefundableDeposit: 300,
			Total:             3450,
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pays := &mockPayments{stored: map[int64]*model.Payment{}}
	rentals := &mockRentals{rental: approvedRental(), casOK: true}
	items := &mockItems{}
	gw := &fakeGateway{token: "sekret"}
	cache := &recordingCache{}
	return &fixture{
		svc:     New(stubDB(t), pays, rentals, items, gw, cache),
		pays:    pays,
		rentals: rentals,
		items:   items,
		cache:   cache,
	}
}

func TestRecord_HoldsEscrowAndFlipsRental(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Record(context.Background(), 7, model.PayGCash, 3450)
	require.NoError(t, err)

	require.Equal(t, model.PaymentProcessing, p.Status)
	require.Equal(t, 3000.0, p.Amount, "owner's take is the frozen subtotal")
	require.Equal(t, 3450.0, p.TotalPaid)
	require.Equal(t, int64(1), p.OwnerID)
	require.NotEmpty(t, p.Reference)

	require.Equal(t, model.RentalPaid, f.rentals.rental.Status)
	require.Equal(t, []bool{false}, f.items.availSets, "item goes off the market")
	require.Equal(t, 1, f.cache.invalidations, "listing cache must drop the stale availability")
}

func TestRecord_ZeroTotalDefaultsToSnapshot(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Record(context.Background(), 7, model.PayCard, 0)
	require.NoError(t, err)
	require.Equal(t, 3450.0, p.TotalPaid)
}

func TestRecord_BadMethod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Record(context.Background(), 7, "bitcoin", 100)
	require.Equal(t, ErrInvalidInput, Code(err))
	require.Empty(t, f.pays.inserted)
}

func TestRecord_RentalMustBeApproved(t *testing.T) {
	for _, status := range []model.RentalStatus{
		model.RentalPending, model.RentalPaid, model.RentalRejected, model.RentalCancelled,
	} {
		f := newFixture(t)
		f.rentals.rental.Status = status

		_, err := f.svc.Record(context.Background(), 7, model.PayGCash, 100)
		require.Equal(t, ErrInvalidTransition, Code(err), "status %q", status)
		require.Empty(t, f.pays.inserted)
	}
}

func TestRecord_UnknownRental(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Record(context.Background(), 404, model.PayGCash, 100)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestRecord_DuplicateMapsUniqueViolation(t *testing.T) {
	f := newFixture(t)
	f.pays.insertErr = &pgconn.PgError{Code: pgerrcode.UniqueViolation}

	_, err := f.svc.Record(context.Background(), 7, model.PayGCash, 100)
	require.Equal(t, ErrDuplicate, Code(err))
	require.Equal(t, model.RentalApproved, f.rentals.rental.Status, "rental untouched on duplicate")
	require.Zero(t, f.cache.invalidations)
}

func TestRecord_LostRaceOnRentalStatus(t *testing.T) {
	f := newFixture(t)
	f.rentals.casOK = false

	_, err := f.svc.Record(context.Background(), 7, model.PayGCash, 100)
	require.Equal(t, ErrInvalidTransition, Code(err))
}

func TestHandleCallback(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.HandleCallback(context.Background(), "sekret",
		[]byte(`{"rental_id":7,"method":"maya","total_paid":3450}`))
	require.NoError(t, err)
	require.Equal(t, model.PayMaya, p.Method)
}

func TestHandleCallback_BadToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.HandleCallback(context.Background(), "wrong",
		[]byte(`{"rental_id":7,"method":"maya"}`))
	require.Equal(t, ErrBadCallback, Code(err))
	require.Empty(t, f.pays.inserted)
}

func TestHandleCallback_BadPayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.HandleCallback(context.Background(), "sekret", []byte(`{`))
	require.Error(t, err)

	_, err = f.svc.HandleCallback(context.Background(), "sekret", []byte(`{"method":"maya"}`))
	require.Equal(t, ErrBadCallback, Code(err))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Record(context.Background(), 7, model.PayGCash, 3450)
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateStatus(context.Background(), p.ID, model.PaymentReleased))
	require.Equal(t, model.PaymentReleased, f.pays.stored[p.ID].Status)
}

func TestUpdateStatus_Validation(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Record(context.Background(), 7, model.PayGCash, 3450)
	require.NoError(t, err)

	err = f.svc.UpdateStatus(context.Background(), p.ID, "escheated")
	require.Equal(t, ErrInvalidInput, Code(err))

	// processing is the starting state, not an admin target
	err = f.svc.UpdateStatus(context.Background(), p.ID, model.PaymentProcessing)
	require.Equal(t, ErrInvalidInput, Code(err))

	err = f.svc.UpdateStatus(context.Background(), 404, model.PaymentRefunded)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestUpdateStatus_EscrowLeavesProcessingOnce(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Record(context.Background(), 7, model.PayGCash, 3450)
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateStatus(context.Background(), p.ID, model.PaymentReleased))

	// a released payment cannot be refunded afterwards
	err = f.svc.UpdateStatus(context.Background(), p.ID, model.PaymentRefunded)
	require.Equal(t, ErrInvalidTransition, Code(err))
	require.Equal(t, model.PaymentReleased, f.pays.stored[p.ID].Status)
}
