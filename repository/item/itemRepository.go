package itemrepo

import (
	"context"
	"database/sql"

	"quickrent/model"
)

type Repo interface {
	Create(ctx context.Context, it *model.Item) (int64, error)
	List(ctx context.Context) ([]model.Item, error)
	Detail(ctx context.Context, id int64) (*model.Item, error)
	Delete(ctx context.Context, id int64) error

	// SetAvailability participates in rental transactions.
	SetAvailability(ctx context.Context, tx *sql.Tx, itemID int64, available bool) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, it *model.Item) (int64, error) {
	const q = `
INSERT INTO items (owner_id, name, category, description, price, available)
VALUES ($1,$2,$3,$4,$5,TRUE)
RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, q,
		it.OwnerID, it.Name, it.Category, it.Description, it.Price,
	).Scan(&it.ID, &it.CreatedAt); err != nil {
		return 0, err
	}
	it.Available = true
	return it.ID, nil
}

func (r *repo) List(ctx context.Context) ([]model.Item, error) {
	const q = `
		SELECT id, owner_id, name, category, description, price, available, created_at
		FROM items
		ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.Name, &it.Category, &it.Description,
			&it.Price, &it.Available, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Item, error) {
	const q = `
SELECT id, owner_id, name, category, description, price, available, created_at
FROM items
WHERE id=$1`
	var it model.Item
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&it.ID, &it.OwnerID, &it.Name,
		&it.Category, &it.Description, &it.Price, &it.Available, &it.CreatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM items WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) SetAvailability(ctx context.Context, tx *sql.Tx, itemID int64, available bool) error {
	const q = `UPDATE items SET available=$2 WHERE id=$1`
	_, err := tx.ExecContext(ctx, q, itemID, available)
	return err
}
