// Package optimistic makes every write to the local mirror reversible: the
// mutation lands in the store immediately, then the remote write runs, and a
// remote failure rolls the store back to its pre-mutation snapshot.
package optimistic

import (
	"context"
	"log/slog"
	"sync"

	"medidesk/internal/store"
)

// Coordinator executes commands one at a time. Services must route every
// store write through Execute; the mirror is never mutated directly.
type Coordinator struct {
	mu    sync.Mutex
	store *store.Store
	log   *slog.Logger
}

func NewCoordinator(st *store.Store, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		store: st,
		log:   log.With(slog.String("component", "optimistic")),
	}
}

// Execute applies the command to the local mirror, then awaits the remote
// write. On remote failure the local mutation is rolled back and the error
// is returned unchanged; no retry is attempted. On success the optimistic
// state is final.
func (c *Coordinator) Execute(ctx context.Context, cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cmd.Apply(c.store)

	if err := cmd.Remote(ctx); err != nil {
		cmd.Rollback(c.store)
		c.log.Warn("remote write failed, local state rolled back", slog.Any("err", err))
		return err
	}
	return nil
}
