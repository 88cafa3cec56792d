package itemsvc

import (
	"context"
	"database/sql"
	"errors"

	"quickrent/cache"
	"quickrent/model"
)

type ErrCode string

const (
	ErrNotFound  ErrCode = "NOT_FOUND"
	ErrForbidden ErrCode = "FORBIDDEN"
	ErrBadInput  ErrCode = "INVALID_INPUT"
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
	Create(ctx context.Context, it *model.Item) (int64, error)
	List(ctx context.Context) ([]model.Item, error)
	Detail(ctx context.Context, id int64) (*model.Item, error)
	Delete(ctx context.Context, id int64) error
}

type Service interface {
	Create(ctx context.Context, ownerID int64, name, category, description string, price float64) (*model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	Detail(ctx context.Context, id int64) (*model.Item, error)
	// Delete: listing owner or an admin.
	Delete(ctx context.Context, callerID int64, admin bool, id int64) error
}

type service struct {
	r Repo
	c *cache.ItemCache
}

func New(r Repo, c *cache.ItemCache) Service { return &service{r: r, c: c} }

func (s *service) Create(ctx context.Context, ownerID int64, name, category, description string, price float64) (*model.Item, error) {
	if name == "" || category == "" || price < 0 {
		return nil, makeErr(ErrBadInput)
	}
	it := &model.Item{
		OwnerID:     ownerID,
		Name:        name,
		Category:    category,
		Description: description,
		Price:       price,
	}
	if _, err := s.r.Create(ctx, it); err != nil {
		return nil, err
	}
	s.c.Invalidate(ctx)
	return it, nil
}

func (s *service) List(ctx context.Context) ([]model.Item, error) {
	if items, ok := s.c.GetList(ctx); ok {
		return items, nil
	}
	items, err := s.r.List(ctx)
	if err != nil {
		return nil, err
	}
	s.c.SetList(ctx, items)
	return items, nil
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Item, error) {
	it, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return it, nil
}

func (s *service) Delete(ctx context.Context, callerID int64, admin bool, id int64) error {
	it, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if it.OwnerID != callerID && !admin {
		return makeErr(ErrForbidden)
	}
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	s.c.Invalidate(ctx)
	return nil
}
