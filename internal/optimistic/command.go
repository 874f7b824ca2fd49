package optimistic

import (
	"context"

	"github.com/google/uuid"

	"medidesk/internal/remote"
	"medidesk/internal/store"
)

// Command pairs a local mutation with its reversal and the remote write that
// confirms it. Apply runs synchronously before the remote call; Rollback runs
// only if the remote call fails, and must restore the collection to exactly
// its pre-apply state.
type Command struct {
	Apply    func(*store.Store)
	Rollback func(*store.Store)
	Remote   func(context.Context) error
}

// Create inserts e locally and writes it to the remote collection.
func Create(gw remote.Gateway, kind store.Kind, e store.Entity) Command {
	return Command{
		Apply: func(s *store.Store) {
			s.Insert(kind, e)
		},
		Rollback: func(s *store.Store) {
			s.Remove(kind, e.EntityID())
		},
		Remote: func(ctx context.Context) error {
			return gw.Create(ctx, kind, e)
		},
	}
}

// Update replaces the entity locally and pushes a partial record (local
// field names) to the remote collection. The prior value is snapshotted at
// apply time.
func Update(gw remote.Gateway, kind store.Kind, updated store.Entity, partial map[string]any) Command {
	var prior store.Entity
	return Command{
		Apply: func(s *store.Store) {
			prior, _ = s.Replace(kind, updated)
		},
		Rollback: func(s *store.Store) {
			if prior != nil {
				s.Replace(kind, prior)
			}
		},
		Remote: func(ctx context.Context) error {
			return gw.Update(ctx, kind, updated.EntityID(), partial)
		},
	}
}

// Delete removes the entity locally and from the remote collection. Rollback
// restores it at the index it previously occupied.
func Delete(gw remote.Gateway, kind store.Kind, id uuid.UUID) Command {
	var prior store.Entity
	var index int
	return Command{
		Apply: func(s *store.Store) {
			prior, index, _ = s.Remove(kind, id)
		},
		Rollback: func(s *store.Store) {
			if prior != nil {
				s.InsertAt(kind, index, prior)
			}
		},
		Remote: func(ctx context.Context) error {
			return gw.Delete(ctx, kind, id)
		},
	}
}

// CreateBatch inserts the whole batch locally in one mutation. On remote
// failure exactly the batch's ids are removed again, regardless of how many
// records the remote side accepted before reporting the failure.
func CreateBatch(gw remote.Gateway, kind store.Kind, batch []store.Entity) Command {
	ids := make([]uuid.UUID, len(batch))
	for i, e := range batch {
		ids[i] = e.EntityID()
	}
	return Command{
		Apply: func(s *store.Store) {
			s.InsertAll(kind, batch)
		},
		Rollback: func(s *store.Store) {
			s.RemoveAll(kind, ids)
		},
		Remote: func(ctx context.Context) error {
			return gw.CreateAll(ctx, kind, batch)
		},
	}
}
