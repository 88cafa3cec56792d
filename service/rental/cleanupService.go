package rental

import (
	"context"
	"time"
)

// pending requests the owner ignored for this long get auto-cancelled
const staleAfter = 7 * 24 * time.Hour

type CleanupRepo interface {
	CancelStalePending(ctx context.Context, before time.Time) (int64, error)
}

type Cleaner interface {
	CancelStale(ctx context.Context) (int64, error)
}

type cleaner struct {
	r CleanupRepo
}

func NewCleaner(r CleanupRepo) Cleaner { return &cleaner{r: r} }

func (c *cleaner) CancelStale(ctx context.Context) (int64, error) {
	return c.r.CancelStalePending(ctx, time.Now().UTC().Add(-staleAfter))
}
