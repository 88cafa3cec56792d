package wishlistrepo

import (
	"context"
	"database/sql"

	"quickrent/model"
)

type Repo interface {
	Add(ctx context.Context, userID, itemID int64) error
	Remove(ctx context.Context, userID, itemID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]model.WishlistEntry, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Add(ctx context.Context, userID, itemID int64) error {
	const q = `
INSERT INTO wishlists (user_id, item_id)
VALUES ($1,$2)`
	_, err := r.db.ExecContext(ctx, q, userID, itemID)
	return err
}

func (r *repo) Remove(ctx context.Context, userID, itemID int64) (bool, error) {
	const q = `DELETE FROM wishlists WHERE user_id=$1 AND item_id=$2`
	res, err := r.db.ExecContext(ctx, q, userID, itemID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) List(ctx context.Context, userID int64) ([]model.WishlistEntry, error) {
	const q = `
SELECT w.id, w.user_id, w.item_id, i.name, i.price, i.available, w.created_at
FROM wishlists w
JOIN items i ON i.id = w.item_id
WHERE w.user_id=$1
ORDER BY w.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WishlistEntry
	for rows.Next() {
		var e model.WishlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ItemID, &e.ItemName, &e.Price,
			&e.Available, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
