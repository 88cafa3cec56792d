package moderationrepo

import (
	"context"
	"database/sql"

	"quickrent/model"
)

type Repo interface {
	InsertReport(ctx context.Context, rep *model.Report) error
	ListOpenReports(ctx context.Context) ([]model.Report, error)
	ResolveReport(ctx context.Context, id int64, status model.ReportStatus, note *string) (bool, error)

	InsertVerification(ctx context.Context, v *model.Verification) error
	ListPendingVerifications(ctx context.Context) ([]model.Verification, error)
	ReviewVerification(ctx context.Context, id int64, status model.VerificationStatus, note *string) (bool, error)
	DeleteVerificationsForRental(ctx context.Context, tx *sql.Tx, rentalID int64) error

	InsertActivity(ctx context.Context, actorID int64, action, refTable string, refID int64) error
	ListActivity(ctx context.Context, limit int) ([]model.Activity, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// Reports

func (r *repo) InsertReport(ctx context.Context, rep *model.Report) error {
	const q = `
INSERT INTO reports (reporter_id, target, target_id, reason, status)
VALUES ($1,$2,$3,$4,'open')
RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		rep.ReporterID, rep.Target, rep.TargetID, rep.Reason,
	).Scan(&rep.ID, &rep.CreatedAt)
}

func (r *repo) ListOpenReports(ctx context.Context) ([]model.Report, error) {
	const q = `
SELECT id, reporter_id, target, target_id, reason, status, note, created_at, resolved_at
FROM reports
WHERE status='open'
ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Report
	for rows.Next() {
		var rep model.Report
		if err := rows.Scan(&rep.ID, &rep.ReporterID, &rep.Target, &rep.TargetID,
			&rep.Reason, &rep.Status, &rep.Note, &rep.CreatedAt, &rep.ResolvedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *repo) ResolveReport(ctx context.Context, id int64, status model.ReportStatus, note *string) (bool, error) {
	// only open reports can be resolved
	const q = `
		UPDATE reports
		SET status=$2, note=$3, resolved_at=NOW()
		WHERE id=$1
		AND status='open'`
	res, err := r.db.ExecContext(ctx, q, id, status, note)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Verifications

func (r *repo) InsertVerification(ctx context.Context, v *model.Verification) error {
	const q = `
INSERT INTO verifications (rental_id, user_id, file_path, file_name, status)
VALUES ($1,$2,$3,$4,'pending')
RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		v.RentalID, v.UserID, v.FilePath, v.FileName,
	).Scan(&v.ID, &v.CreatedAt)
}

func (r *repo) ListPendingVerifications(ctx context.Context) ([]model.Verification, error) {
	const q = `
SELECT id, rental_id, user_id, file_path, file_name, status, note, created_at
FROM verifications
WHERE status='pending'
ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Verification
	for rows.Next() {
		var v model.Verification
		if err := rows.Scan(&v.ID, &v.RentalID, &v.UserID, &v.FilePath, &v.FileName,
			&v.Status, &v.Note, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repo) ReviewVerification(ctx context.Context, id int64, status model.VerificationStatus, note *string) (bool, error) {
	const q = `
		UPDATE verifications
		SET status=$2, note=$3
		WHERE id=$1
		AND status='pending'`
	res, err := r.db.ExecContext(ctx, q, id, status, note)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) DeleteVerificationsForRental(ctx context.Context, tx *sql.Tx, rentalID int64) error {
	const q = `DELETE FROM verifications WHERE rental_id=$1`
	_, err := tx.ExecContext(ctx, q, rentalID)
	return err
}

// Activity log

func (r *repo) InsertActivity(ctx context.Context, actorID int64, action, refTable string, refID int64) error {
	const q = `
INSERT INTO activity_log (actor_id, action, ref_table, ref_id)
VALUES ($1,$2,$3,$4)`
	_, err := r.db.ExecContext(ctx, q, actorID, action, refTable, refID)
	return err
}

func (r *repo) ListActivity(ctx context.Context, limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `
SELECT id, actor_id, action, ref_table, ref_id, created_at
FROM activity_log
ORDER BY id DESC
LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.ActorID, &a.Action, &a.RefTable, &a.RefID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
