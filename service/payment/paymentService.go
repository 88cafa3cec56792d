package paymentsvc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"quickrent/model"
	gatewayrepo "quickrent/repository/gateway"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type ErrCode string

const (
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrInvalidInput      ErrCode = "INVALID_INPUT"
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrDuplicate         ErrCode = "DUPLICATE"
	ErrBadCallback       ErrCode = "BAD_CALLBACK"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	Get(ctx context.Context, id int64) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status model.PaymentStatus) (bool, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Payment, error)
}

type RentalRepo interface {
	Get(ctx context.Context, id int64) (*model.Rental, error)
	UpdateStatusCAS(ctx context.Context, tx *sql.Tx, id int64, from, to model.RentalStatus, reason *string) (bool, error)
}

type ItemRepo interface {
	SetAvailability(ctx context.Context, tx *sql.Tx, itemID int64, available bool) error
}

// ListingCache is invalidated once a recorded payment takes the item off the market.
type ListingCache interface {
	Invalidate(ctx context.Context)
}

type Service interface {
	// HandleCallback is what the gateway posts to after the renter pays.
	HandleCallback(ctx context.Context, tokenHeader string, raw []byte) (*model.Payment, error)

	// Record writes the escrow-held payment and flips the rental to paid in one tx.
	Record(ctx context.Context, rentalID int64, method model.PaymentMethod, totalPaid float64) (*model.Payment, error)

	// UpdateStatus moves an escrow entry to released/refunded/failed.
	UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) error

	ListForOwner(ctx context.Context, ownerID int64) ([]model.Payment, error)
}

type service struct {
	db    *sql.DB
	r     Repo
	rr    RentalRepo
	items ItemRepo
	gw    gatewayrepo.Repo
	cache ListingCache
}

func New(db *sql.DB, r Repo, rr RentalRepo, items ItemRepo, gw gatewayrepo.Repo, cache ListingCache) Service {
	return &service{db: db, r: r, rr: rr, items: items, gw: gw, cache: cache}
}

type callbackEvent struct {
	RentalID  int64   `json:"rental_id"`
	Method    string  `json:"method"`
	TotalPaid float64 `json:"total_paid"`
}

func (s *service) HandleCallback(ctx context.Context, tokenHeader string, raw []byte) (*model.Payment, error) {
	if err := s.gw.VerifyCallbackToken(tokenHeader); err != nil {
		return nil, makeErr(ErrBadCallback)
	}

	var ev callbackEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("bad callback json: %w", err)
	}
	if ev.RentalID == 0 || ev.Method == "" {
		return nil, makeErr(ErrBadCallback)
	}

	return s.Record(ctx, ev.RentalID, model.PaymentMethod(ev.Method), ev.TotalPaid)
}

func (s *service) Record(ctx context.Context, rentalID int64, method model.PaymentMethod, totalPaid float64) (pay *model.Payment, err error) {
	if !model.ValidPaymentMethod(method) {
		return nil, makeErr(ErrInvalidInput)
	}

	rn, err := s.rr.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if rn.Status != model.RentalApproved {
		return nil, makeErr(ErrInvalidTransition)
	}
	if totalPaid <= 0 {
		totalPaid = rn.Cost.Total
	}

	pay = &model.Payment{
		RentalID:  rentalID,
		OwnerID:   rn.OwnerID,
		Method:    method,
		Status:    model.PaymentProcessing,
		Amount:    rn.Cost.Subtotal, // frozen snapshot, owner's take
		TotalPaid: totalPaid,
		Reference: "pr-" + uuid.NewString(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.r.Insert(ctx, tx, pay); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			err = makeErr(ErrDuplicate)
		}
		return nil, err
	}

	ok, err := s.rr.UpdateStatusCAS(ctx, tx, rentalID, model.RentalApproved, model.RentalPaid, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		err = makeErr(ErrInvalidTransition)
		return nil, err
	}

	if err = s.items.SetAvailability(ctx, tx, rn.ItemID, false); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return pay, nil
}

func (s *service) UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus) error {
	if !model.ValidPaymentStatus(status) || status == model.PaymentProcessing {
		return makeErr(ErrInvalidInput)
	}

	p, err := s.r.Get(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	// escrow moves out of processing exactly once
	if p.Status != model.PaymentProcessing {
		return makeErr(ErrInvalidTransition)
	}

	ok, err := s.r.UpdateStatus(ctx, paymentID, status)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	return nil
}

func (s *service) ListForOwner(ctx context.Context, ownerID int64) ([]model.Payment, error) {
	return s.r.ListByOwner(ctx, ownerID)
}
