package remote

import (
	"context"

	"github.com/google/uuid"

	"medidesk/internal/store"
)

// Gateway translates between the internal field naming and the remote
// store's convention and issues CRUD calls against named remote collections.
// It holds no business logic and performs no retries.
//
// Partial updates are keyed by local field names; the gateway renames and
// encodes them on the way out.
type Gateway interface {
	FetchAll(ctx context.Context, kind store.Kind) ([]store.Entity, error)
	Create(ctx context.Context, kind store.Kind, e store.Entity) error
	CreateAll(ctx context.Context, kind store.Kind, batch []store.Entity) error
	Update(ctx context.Context, kind store.Kind, id uuid.UUID, partial map[string]any) error
	Delete(ctx context.Context, kind store.Kind, id uuid.UUID) error
}
