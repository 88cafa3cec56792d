package rental

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"quickrent/model"
	gatewayrepo "quickrent/repository/gateway"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrInvalidInput      ErrCode = "INVALID_INPUT"
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrItemUnavailable   ErrCode = "ITEM_UNAVAILABLE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// nextOf is the single authoritative pipeline; "paid" is reachable only
// through the payment recorder, never through UpdateStatus.
var nextOf = map[model.RentalStatus][]model.RentalStatus{
	model.RentalPending:           {model.RentalApproved, model.RentalRejected},
	model.RentalApproved:          {model.RentalPaid},
	model.RentalPaid:              {model.RentalShipped},
	model.RentalShipped:           {model.RentalReceived},
	model.RentalReceived:          {model.RentalShippingForReturn},
	model.RentalShippingForReturn: {model.RentalReturnedToOwner},
}

func reachable(from, to model.RentalStatus) bool {
	for _, s := range nextOf[from] {
		if s == to {
			return true
		}
	}
	return false
}

func knownStatus(s model.RentalStatus) bool {
	switch s {
	case model.RentalPending, model.RentalApproved, model.RentalRejected,
		model.RentalCancelled, model.RentalPaid, model.RentalShipped,
		model.RentalReceived, model.RentalShippingForReturn, model.RentalReturnedToOwner:
		return true
	}
	return false
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, rn *model.Rental) error
	Get(ctx context.Context, id int64) (*model.Rental, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Rental, error)
	UpdateStatusCAS(ctx context.Context, tx *sql.Tx, id int64, from, to model.RentalStatus, reason *string) (bool, error)
	SetPaymentRef(ctx context.Context, tx *sql.Tx, id int64, ref, link string) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
	ListByRenter(ctx context.Context, userID int64) ([]model.Rental, error)
	ListByOwner(ctx context.Context, userID int64) ([]model.Rental, error)
}

type ItemRepo interface {
	Detail(ctx context.Context, id int64) (*model.Item, error)
	SetAvailability(ctx context.Context, tx *sql.Tx, itemID int64, available bool) error
}

type VerificationRepo interface {
	DeleteVerificationsForRental(ctx context.Context, tx *sql.Tx, rentalID int64) error
}

type FileStore interface {
	RemoveForRental(rentalID int64) error
}

type ActivityRecorder interface {
	InsertActivity(ctx context.Context, actorID int64, action, refTable string, refID int64) error
}

// ListingCache is invalidated whenever a transition changes item availability.
type ListingCache interface {
	Invalidate(ctx context.Context)
}

type Service interface {
	// Create: freeze the cost snapshot and file a pending request.
	Create(ctx context.Context, renterID, itemID int64, durationDays int, startDate time.Time, opt model.DeliveryOption) (*model.Rental, error)

	// UpdateStatus: owner-only pipeline transition; rejection carries a reason.
	UpdateStatus(ctx context.Context, callerID, rentalID int64, target model.RentalStatus, reason string) (*model.Rental, error)

	// Cancel: renter or owner, from any non-terminal state.
	Cancel(ctx context.Context, callerID, rentalID int64) (*model.Rental, error)

	// Delete: owner always, renter only once cancelled. Cascades verification files.
	Delete(ctx context.Context, callerID, rentalID int64) error

	ListMine(ctx context.Context, renterID int64) ([]model.Rental, error)
	ListForOwner(ctx context.Context, ownerID int64) ([]model.Rental, error)
}

// ----- Service implementation -----

type service struct {
	db    *sql.DB
	r     Repo
	items ItemRepo
	gw    gatewayrepo.Repo
	vr    VerificationRepo
	files FileStore
	act   ActivityRecorder
	cache ListingCache
}

func New(db *sql.DB, r Repo, items ItemRepo, gw gatewayrepo.Repo, vr VerificationRepo, files FileStore, act ActivityRecorder, cache ListingCache) Service {
	return &service{db: db, r: r, items: items, gw: gw, vr: vr, files: files, act: act, cache: cache}
}

func (s *service) Create(ctx context.Context, renterID, itemID int64, durationDays int, startDate time.Time, opt model.DeliveryOption) (*model.Rental, error) {
	if durationDays < 1 {
		return nil, makeErr(ErrInvalidInput)
	}
	if opt != model.DeliveryPickup && opt != model.DeliveryCourier {
		return nil, makeErr(ErrInvalidInput)
	}

	it, err := s.items.Detail(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if it.OwnerID == renterID {
		return nil, makeErr(ErrForbidden)
	}
	if !it.Available {
		return nil, makeErr(ErrItemUnavailable)
	}

	rn := &model.Rental{
		ItemID:         itemID,
		RenterID:       renterID,
		OwnerID:        it.OwnerID,
		DurationDays:   durationDays,
		StartDate:      startDate,
		DeliveryOption: opt,
		Cost:           CalculateCost(it.Price, durationDays, opt),
		Status:         model.RentalPending,
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

	if err = s.r.Insert(ctx, tx, rn); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.record(ctx, renterID, "rental.requested", rn.ID)
	return rn, nil
}

func (s *service) UpdateStatus(ctx context.Context, callerID, rentalID int64, target model.RentalStatus, reason string) (*model.Rental, error) {
	if !knownStatus(target) {
		return nil, makeErr(ErrInvalidInput)
	}

	rn, err := s.r.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	// auth before any write, fail closed
	if rn.OwnerID != callerID {
		return nil, makeErr(ErrForbidden)
	}
	if target == model.RentalPaid || !reachable(rn.Status, target) {
		return nil, makeErr(ErrInvalidTransition)
	}

	var reasonPtr *string
	if target == model.RentalRejected {
		if reason == "" {
			return nil, makeErr(ErrInvalidInput)
		}
		reasonPtr = &reason
	}

	// approval hands the renter a checkout link before anything is written
	var checkout *gatewayrepo.CreateCheckoutResp
	if target == model.RentalApproved {
		checkout, err = s.gw.CreateCheckout(gatewayrepo.CreateCheckoutReq{
			ExternalID:  fmt.Sprintf("rental:%d:%d", rn.ID, time.Now().UnixNano()),
			Amount:      rn.Cost.Total,
			Description: "QuickRent rental",
			ExpirySec:   int((24 * time.Hour).Seconds()),
		})
		if err != nil {
			return nil, err
		}
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

	ok, err := s.r.UpdateStatusCAS(ctx, tx, rentalID, rn.Status, target, reasonPtr)
	if err != nil {
		return nil, err
	}
	if !ok {
		// concurrent writer moved the status underneath us
		err = makeErr(ErrInvalidTransition)
		return nil, err
	}

	if checkout != nil {
		if err = s.r.SetPaymentRef(ctx, tx, rentalID, checkout.Reference, checkout.CheckoutURL); err != nil {
			return nil, err
		}
	}
	if target == model.RentalReturnedToOwner {
		if err = s.items.SetAvailability(ctx, tx, rn.ItemID, true); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if target == model.RentalReturnedToOwner {
		s.invalidateListings(ctx)
	}
	s.record(ctx, callerID, "rental.status."+string(target), rentalID)
	return s.r.Get(ctx, rentalID)
}

func (s *service) Cancel(ctx context.Context, callerID, rentalID int64) (*model.Rental, error) {
	rn, err := s.r.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if callerID != rn.RenterID && callerID != rn.OwnerID {
		return nil, makeErr(ErrForbidden)
	}
	if rn.Status.Terminal() {
		return nil, makeErr(ErrInvalidTransition)
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

	ok, err := s.r.UpdateStatusCAS(ctx, tx, rentalID, rn.Status, model.RentalCancelled, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		err = makeErr(ErrInvalidTransition)
		return nil, err
	}

	// a paid-or-later cancel frees the item again
	freed := false
	switch rn.Status {
	case model.RentalPaid, model.RentalShipped, model.RentalReceived, model.RentalShippingForReturn:
		if err = s.items.SetAvailability(ctx, tx, rn.ItemID, true); err != nil {
			return nil, err
		}
		freed = true
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if freed {
		s.invalidateListings(ctx)
	}
	s.record(ctx, callerID, "rental.cancelled", rentalID)
	return s.r.Get(ctx, rentalID)
}

func (s *service) Delete(ctx context.Context, callerID, rentalID int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// row lock so the authorization check and the delete see the same state
	rn, err := s.r.GetForUpdate(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = makeErr(ErrNotFound)
		}
		return err
	}

	switch callerID {
	case rn.OwnerID:
		// owner may delete in any state
	case rn.RenterID:
		if rn.Status != model.RentalCancelled {
			err = makeErr(ErrForbidden)
			return err
		}
	default:
		err = makeErr(ErrForbidden)
		return err
	}

	if err = s.vr.DeleteVerificationsForRental(ctx, tx, rentalID); err != nil {
		return err
	}
	if err = s.r.Delete(ctx, tx, rentalID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	// the rows are gone; a file cleanup failure must not report the delete as failed
	if rerr := s.files.RemoveForRental(rentalID); rerr != nil {
		slog.Warn("verification file cleanup failed", "rental_id", rentalID, "err", rerr)
	}
	s.record(ctx, callerID, "rental.deleted", rentalID)
	return nil
}

func (s *service) ListMine(ctx context.Context, renterID int64) ([]model.Rental, error) {
	return s.r.ListByRenter(ctx, renterID)
}

func (s *service) ListForOwner(ctx context.Context, ownerID int64) ([]model.Rental, error) {
	return s.r.ListByOwner(ctx, ownerID)
}

// record is best-effort; the activity log never blocks a transition.
func (s *service) record(ctx context.Context, actorID int64, action string, rentalID int64) {
	if s.act == nil {
		return
	}
	_ = s.act.InsertActivity(ctx, actorID, action, "rentals", rentalID)
}

func (s *service) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx)
}
