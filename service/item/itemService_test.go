package itemsvc

import (
	"context"
	"database/sql"
	"testing"

	"quickrent/model"
)

type mockRepo struct {
	items   map[int64]*model.Item
	nextID  int64
	deleted []int64
}

func newMockRepo() *mockRepo { return &mockRepo{items: map[int64]*model.Item{}, nextID: 1} }

func (m *mockRepo) Create(ctx context.Context, it *model.Item) (int64, error) {
	it.ID = m.nextID
	it.Available = true
	m.nextID++
	cp := *it
	m.items[it.ID] = &cp
	return it.ID, nil
}

func (m *mockRepo) List(ctx context.Context) ([]model.Item, error) {
	out := make([]model.Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, *it)
	}
	return out, nil
}

func (m *mockRepo) Detail(ctx context.Context, id int64) (*model.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *it
	return &cp, nil
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// nil cache exercises the degraded path: every read goes to the repo

func TestCreate(t *testing.T) {
	r := newMockRepo()
	s := New(r, nil)

	it, err := s.Create(context.Background(), 1, "power drill", "tools", "18V cordless", 250)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if it.ID == 0 || it.OwnerID != 1 {
		t.Fatalf("got %+v", it)
	}
}

func TestCreate_Validation(t *testing.T) {
	s := New(newMockRepo(), nil)

	cases := []struct {
		name, category string
		price          float64
	}{
		{"", "tools", 100},
		{"drill", "", 100},
		{"drill", "tools", -1},
	}
	for _, tc := range cases {
		if _, err := s.Create(context.Background(), 1, tc.name, tc.category, "", tc.price); Code(err) != ErrBadInput {
			t.Errorf("name=%q category=%q price=%v: code = %q; want %q", tc.name, tc.category, tc.price, Code(err), ErrBadInput)
		}
	}
}

func TestDetail_NotFound(t *testing.T) {
	s := New(newMockRepo(), nil)
	if _, err := s.Detail(context.Background(), 42); Code(err) != ErrNotFound {
		t.Fatalf("code = %q; want %q", Code(err), ErrNotFound)
	}
}

func TestDelete_OwnerOrAdmin(t *testing.T) {
	r := newMockRepo()
	s := New(r, nil)
	it, err := s.Create(context.Background(), 1, "tent", "outdoors", "", 400)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Delete(context.Background(), 2, false, it.ID); Code(err) != ErrForbidden {
		t.Fatalf("stranger delete: code = %q; want %q", Code(err), ErrForbidden)
	}
	if len(r.deleted) != 0 {
		t.Fatalf("item deleted despite forbidden caller")
	}

	// admin may remove any listing
	if err := s.Delete(context.Background(), 2, true, it.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	it2, err := s.Create(context.Background(), 1, "kayak", "outdoors", "", 900)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(context.Background(), 1, false, it2.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	s := New(newMockRepo(), nil)
	if err := s.Delete(context.Background(), 1, true, 42); Code(err) != ErrNotFound {
		t.Fatalf("code = %q; want %q", Code(err), ErrNotFound)
	}
}
