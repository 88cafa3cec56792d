// repository/rental/repo.go
package rentalrepo

import (
	"context"
	"database/sql"
	"time"

	"quickrent/model"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, rn *model.Rental) error
	Get(ctx context.Context, id int64) (*model.Rental, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Rental, error)

	// UpdateStatusCAS flips status only when the stored status still matches from.
	// Returns false when the precondition failed (concurrent writer won).
	UpdateStatusCAS(ctx context.Context, tx *sql.Tx, id int64, from, to model.RentalStatus, reason *string) (bool, error)
	SetPaymentRef(ctx context.Context, tx *sql.Tx, id int64, ref, link string) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error

	ListByRenter(ctx context.Context, userID int64) ([]model.Rental, error)
	ListByOwner(ctx context.Context, userID int64) ([]model.Rental, error)

	CancelStalePending(ctx context.Context, before time.Time) (int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const rentalCols = `
	id, item_id, renter_id, owner_id, duration_days, start_date, delivery_option,
	subtotal, delivery_fee, refundable_deposit, total,
	status, reject_reason, payment_ref, payment_link, created_at, updated_at
`

func scanRental(row interface{ Scan(...any) error }) (*model.Rental, error) {
	var rn model.Rental
	err := row.Scan(
		&rn.ID, &rn.ItemID, &rn.RenterID, &rn.OwnerID, &rn.DurationDays, &rn.StartDate,
		&rn.DeliveryOption,
		&rn.Cost.Subtotal, &rn.Cost.DeliveryFee, &rn.Cost.RefundableDeposit, &rn.Cost.Total,
		&rn.Status, &rn.RejectReason, &rn.PaymentRef, &rn.PaymentLink,
		&rn.CreatedAt, &rn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rn, nil
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, rn *model.Rental) error {
	const q = `
INSERT INTO rentals
	(item_id, renter_id, owner_id, duration_days, start_date, delivery_option,
	 subtotal, delivery_fee, refundable_deposit, total, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'pending')
RETURNING id, created_at, updated_at`
	return tx.QueryRowContext(ctx, q,
		rn.ItemID, rn.RenterID, rn.OwnerID, rn.DurationDays, rn.StartDate, rn.DeliveryOption,
		rn.Cost.Subtotal, rn.Cost.DeliveryFee, rn.Cost.RefundableDeposit, rn.Cost.Total,
	).Scan(&rn.ID, &rn.CreatedAt, &rn.UpdatedAt)
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Rental, error) {
	const q = `SELECT` + rentalCols + `FROM rentals WHERE id=$1`
	return scanRental(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Rental, error) {
	const q = `SELECT` + rentalCols + `FROM rentals WHERE id=$1 FOR UPDATE`
	return scanRental(tx.QueryRowContext(ctx, q, id))
}

func (r *repo) UpdateStatusCAS(ctx context.Context, tx *sql.Tx, id int64, from, to model.RentalStatus, reason *string) (bool, error) {
	const q = `
		UPDATE rentals
		SET status=$3,
			reject_reason=COALESCE($4, reject_reason),
			updated_at=NOW()
		WHERE id=$1
		AND status=$2`
	res, err := tx.ExecContext(ctx, q, id, from, to, reason)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) SetPaymentRef(ctx context.Context, tx *sql.Tx, id int64, ref, link string) error {
	const q = `
		UPDATE rentals
		SET payment_ref=$2, payment_link=$3, updated_at=NOW()
		WHERE id=$1`
	_, err := tx.ExecContext(ctx, q, id, ref, link)
	return err
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	const q = `DELETE FROM rentals WHERE id=$1`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) ListByRenter(ctx context.Context, userID int64) ([]model.Rental, error) {
	const q = `SELECT` + rentalCols + `
		FROM rentals
		WHERE renter_id=$1
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, userID)
}

func (r *repo) ListByOwner(ctx context.Context, userID int64) ([]model.Rental, error) {
	const q = `SELECT` + rentalCols + `
		FROM rentals
		WHERE owner_id=$1
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, userID)
}

func (r *repo) list(ctx context.Context, q string, userID int64) ([]model.Rental, error) {
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rental
	for rows.Next() {
		rn, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rn)
	}
	return out, rows.Err()
}

// CancelStalePending cancels requests the owner never acted on.
func (r *repo) CancelStalePending(ctx context.Context, before time.Time) (int64, error) {
	const q = `
		UPDATE rentals
		SET status='cancelled', updated_at=NOW()
		WHERE status='pending'
		AND created_at < $1`
	res, err := r.db.ExecContext(ctx, q, before)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
