package paymentrepo

import (
	"context"
	"database/sql"

	"quickrent/model"
)

type Repo interface {
	// Insert relies on the partial unique index payments_rental_id_live_key
	// (rental_id WHERE status <> 'failed') to reject a second live payment.
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	Get(ctx context.Context, id int64) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status model.PaymentStatus) (bool, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Payment, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (rental_id, owner_id, method, status, amount, total_paid, reference)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q,
		p.RentalID, p.OwnerID, p.Method, p.Status, p.Amount, p.TotalPaid, p.Reference,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Payment, error) {
	const q = `
SELECT id, rental_id, owner_id, method, status, amount, total_paid, reference, created_at
FROM payments
WHERE id=$1`
	var p model.Payment
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.RentalID, &p.OwnerID,
		&p.Method, &p.Status, &p.Amount, &p.TotalPaid, &p.Reference, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id int64, status model.PaymentStatus) (bool, error) {
	const q = `UPDATE payments SET status=$2 WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Payment, error) {
	const q = `
SELECT id, rental_id, owner_id, method, status, amount, total_paid, reference, created_at
FROM payments
WHERE owner_id=$1
ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.RentalID, &p.OwnerID, &p.Method, &p.Status,
			&p.Amount, &p.TotalPaid, &p.Reference, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
