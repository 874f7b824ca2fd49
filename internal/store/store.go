package store

import (
	"sync"

	"github.com/google/uuid"
)

// Kind names one mirrored entity collection.
type Kind string

const (
	KindAppointments Kind = "appointments"
	KindAvailability Kind = "availability"
	KindDepartments  Kind = "departments"
	KindProviders    Kind = "providers"
	KindPatients     Kind = "patients"
)

// Kinds lists every collection the store mirrors, in hydration order.
func Kinds() []Kind {
	return []Kind{KindDepartments, KindProviders, KindPatients, KindAvailability, KindAppointments}
}

type Entity interface {
	EntityID() uuid.UUID
}

// Store is the local mirror of all remote collections. It holds one ordered
// list per Kind, unique by id, and carries no business logic. Writes are
// expected to arrive through the mutation coordinator only; reads may come
// from anywhere.
type Store struct {
	mu          sync.RWMutex
	collections map[Kind][]Entity
	subscribers []func(Kind)
}

func New() *Store {
	return &Store{collections: make(map[Kind][]Entity)}
}

// Subscribe registers fn to run after every mutation, with the mutated Kind.
// Subscribers must not mutate the store.
func (s *Store) Subscribe(fn func(Kind)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) notify(k Kind) {
	for _, fn := range s.subscribers {
		fn(k)
	}
}

// Get returns a copy of the collection, in insertion order.
func (s *Store) Get(k Kind) []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.collections[k]
	out := make([]Entity, len(src))
	copy(out, src)
	return out
}

func (s *Store) Find(k Kind, id uuid.UUID) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.collections[k] {
		if e.EntityID() == id {
			return e, true
		}
	}
	return nil, false
}

func (s *Store) Insert(k Kind, e Entity) {
	s.mu.Lock()
	s.collections[k] = append(s.collections[k], e)
	s.notify(k)
	s.mu.Unlock()
}

// InsertAt re-inserts e at a specific position. Used by rollback to restore
// a removed entity to its original place so the collection matches its
// pre-mutation state exactly.
func (s *Store) InsertAt(k Kind, index int, e Entity) {
	s.mu.Lock()
	col := s.collections[k]
	if index < 0 {
		index = 0
	}
	if index > len(col) {
		index = len(col)
	}
	col = append(col, nil)
	copy(col[index+1:], col[index:])
	col[index] = e
	s.collections[k] = col
	s.notify(k)
	s.mu.Unlock()
}

// InsertAll appends a batch in one mutation.
func (s *Store) InsertAll(k Kind, batch []Entity) {
	s.mu.Lock()
	s.collections[k] = append(s.collections[k], batch...)
	s.notify(k)
	s.mu.Unlock()
}

// Replace swaps the entity with e's id in place, preserving order, and
// returns the prior value.
func (s *Store) Replace(k Kind, e Entity) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collections[k]
	for i, cur := range col {
		if cur.EntityID() == e.EntityID() {
			col[i] = e
			s.notify(k)
			return cur, true
		}
	}
	return nil, false
}

// Remove deletes the entity by id, preserving the order of the rest, and
// returns the removed value with the index it occupied.
func (s *Store) Remove(k Kind, id uuid.UUID) (Entity, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collections[k]
	for i, cur := range col {
		if cur.EntityID() == id {
			s.collections[k] = append(col[:i], col[i+1:]...)
			s.notify(k)
			return cur, i, true
		}
	}
	return nil, 0, false
}

// RemoveAll deletes every listed id in one mutation, preserving the order of
// the survivors. Used by bulk rollback.
func (s *Store) RemoveAll(k Kind, ids []uuid.UUID) {
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	s.mu.Lock()
	col := s.collections[k]
	kept := col[:0]
	for _, cur := range col {
		if _, ok := drop[cur.EntityID()]; !ok {
			kept = append(kept, cur)
		}
	}
	s.collections[k] = kept
	s.notify(k)
	s.mu.Unlock()
}

// Load replaces the whole collection, used when hydrating from the remote
// store on login.
func (s *Store) Load(k Kind, entities []Entity) {
	s.mu.Lock()
	s.collections[k] = append([]Entity(nil), entities...)
	s.notify(k)
	s.mu.Unlock()
}

// Reset drops every collection. Called on logout; the store's lifetime is
// tied to the authenticated session.
func (s *Store) Reset() {
	s.mu.Lock()
	s.collections = make(map[Kind][]Entity)
	for _, k := range Kinds() {
		s.notify(k)
	}
	s.mu.Unlock()
}

// Items returns the collection filtered to entities of type T, in order.
func Items[T Entity](s *Store, k Kind) []T {
	src := s.Get(k)
	out := make([]T, 0, len(src))
	for _, e := range src {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
