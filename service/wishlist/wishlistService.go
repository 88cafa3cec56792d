package wishlistsvc

import (
	"context"
	"database/sql"
	"errors"

	"quickrent/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type ErrCode string

const (
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrDuplicate ErrCode = "DUPLICATE"
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
	Add(ctx context.Context, userID, itemID int64) error
	Remove(ctx context.Context, userID, itemID int64) (bool, error)
	List(ctx context.Context, userID int64) ([]model.WishlistEntry, error)
}

type ItemRepo interface {
	Detail(ctx context.Context, id int64) (*model.Item, error)
}

type Service interface {
	Add(ctx context.Context, userID, itemID int64) error
	Remove(ctx context.Context, userID, itemID int64) error
	List(ctx context.Context, userID int64) ([]model.WishlistEntry, error)
}

type service struct {
	r     Repo
	items ItemRepo
}

func New(r Repo, items ItemRepo) Service { return &service{r: r, items: items} }

func (s *service) Add(ctx context.Context, userID, itemID int64) error {
	if _, err := s.items.Detail(ctx, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if err := s.r.Add(ctx, userID, itemID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return makeErr(ErrDuplicate)
		}
		return err
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID, itemID int64) error {
	ok, err := s.r.Remove(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	return nil
}

func (s *service) List(ctx context.Context, userID int64) ([]model.WishlistEntry, error) {
	return s.r.List(ctx, userID)
}
