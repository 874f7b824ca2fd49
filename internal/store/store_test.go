package store

import (
	"testing"

	"github.com/google/uuid"
)

type stubEntity struct {
	id   uuid.UUID
	name string
}

func (e stubEntity) EntityID() uuid.UUID { return e.id }

func ids(entities []Entity) []uuid.UUID {
	out := make([]uuid.UUID, len(entities))
	for i, e := range entities {
		out[i] = e.EntityID()
	}
	return out
}

func TestStoreInsertAndFind(t *testing.T) {
	s := New()
	a := stubEntity{id: uuid.New(), name: "a"}
	b := stubEntity{id: uuid.New(), name: "b"}
	s.Insert(KindPatients, a)
	s.Insert(KindPatients, b)

	got, ok := s.Find(KindPatients, b.id)
	if !ok {
		t.Fatalf("Find did not locate inserted entity")
	}
	if got.(stubEntity).name != "b" {
		t.Fatalf("Find returned %v, want b", got)
	}

	if _, ok := s.Find(KindPatients, uuid.New()); ok {
		t.Fatalf("Find located an entity that was never inserted")
	}
	if _, ok := s.Find(KindProviders, a.id); ok {
		t.Fatalf("Find crossed collections")
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := New()
	a := stubEntity{id: uuid.New(), name: "a"}
	s.Insert(KindPatients, a)

	got := s.Get(KindPatients)
	got[0] = stubEntity{id: uuid.New(), name: "tampered"}

	again := s.Get(KindPatients)
	if again[0].(stubEntity).name != "a" {
		t.Fatalf("mutating the returned slice leaked into the store")
	}
}

func TestStoreReplacePreservesOrder(t *testing.T) {
	s := New()
	a := stubEntity{id: uuid.New(), name: "a"}
	b := stubEntity{id: uuid.New(), name: "b"}
	c := stubEntity{id: uuid.New(), name: "c"}
	s.Insert(KindPatients, a)
	s.Insert(KindPatients, b)
	s.Insert(KindPatients, c)

	prior, ok := s.Replace(KindPatients, stubEntity{id: b.id, name: "b2"})
	if !ok {
		t.Fatalf("Replace did not find entity")
	}
	if prior.(stubEntity).name != "b" {
		t.Fatalf("Replace returned prior %v, want b", prior)
	}

	col := s.Get(KindPatients)
	if len(col) != 3 || col[1].(stubEntity).name != "b2" {
		t.Fatalf("collection after replace = %v", col)
	}

	if _, ok := s.Replace(KindPatients, stubEntity{id: uuid.New()}); ok {
		t.Fatalf("Replace reported success for an unknown id")
	}
}

func TestStoreRemoveAndInsertAt(t *testing.T) {
	s := New()
	a := stubEntity{id: uuid.New(), name: "a"}
	b := stubEntity{id: uuid.New(), name: "b"}
	c := stubEntity{id: uuid.New(), name: "c"}
	s.Insert(KindPatients, a)
	s.Insert(KindPatients, b)
	s.Insert(KindPatients, c)

	removed, index, ok := s.Remove(KindPatients, b.id)
	if !ok || index != 1 {
		t.Fatalf("Remove = (%v, %d, %t), want b at index 1", removed, index, ok)
	}
	if got := ids(s.Get(KindPatients)); len(got) != 2 || got[0] != a.id || got[1] != c.id {
		t.Fatalf("collection after remove = %v", got)
	}

	s.InsertAt(KindPatients, index, removed)
	got := ids(s.Get(KindPatients))
	want := []uuid.UUID{a.id, b.id, c.id}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("InsertAt did not restore original order: %v", got)
		}
	}
}

func TestStoreInsertAtClampsIndex(t *testing.T) {
	s := New()
	a := stubEntity{id: uuid.New(), name: "a"}
	s.Insert(KindPatients, a)

	late := stubEntity{id: uuid.New(), name: "late"}
	s.InsertAt(KindPatients, 99, late)
	early := stubEntity{id: uuid.New(), name: "early"}
	s.InsertAt(KindPatients, -1, early)

	col := s.Get(KindPatients)
	if col[0].(stubEntity).name != "early" || col[2].(stubEntity).name != "late" {
		t.Fatalf("clamped inserts landed wrong: %v", col)
	}
}

func TestStoreRemoveAll(t *testing.T) {
	s := New()
	a := stubEntity{id: uuid.New(), name: "a"}
	b := stubEntity{id: uuid.New(), name: "b"}
	c := stubEntity{id: uuid.New(), name: "c"}
	s.InsertAll(KindPatients, []Entity{a, b, c})

	s.RemoveAll(KindPatients, []uuid.UUID{a.id, c.id})

	got := s.Get(KindPatients)
	if len(got) != 1 || got[0].EntityID() != b.id {
		t.Fatalf("RemoveAll kept %v, want only b", got)
	}
}

func TestStoreSubscribe(t *testing.T) {
	s := New()
	var seen []Kind
	s.Subscribe(func(k Kind) { seen = append(seen, k) })

	s.Insert(KindPatients, stubEntity{id: uuid.New()})
	s.Load(KindProviders, nil)

	if len(seen) != 2 || seen[0] != KindPatients || seen[1] != KindProviders {
		t.Fatalf("subscriber saw %v", seen)
	}
}

func TestStoreReset(t *testing.T) {
	s := New()
	s.Insert(KindPatients, stubEntity{id: uuid.New()})
	s.Insert(KindAppointments, stubEntity{id: uuid.New()})

	notified := map[Kind]bool{}
	s.Subscribe(func(k Kind) { notified[k] = true })

	s.Reset()

	for _, k := range Kinds() {
		if got := s.Get(k); len(got) != 0 {
			t.Fatalf("collection %s not emptied: %v", k, got)
		}
		if !notified[k] {
			t.Fatalf("subscriber not notified for %s on reset", k)
		}
	}
}

func TestItems(t *testing.T) {
	s := New()
	a := stubEntity{id: uuid.New(), name: "a"}
	b := stubEntity{id: uuid.New(), name: "b"}
	s.Insert(KindPatients, a)
	s.Insert(KindPatients, b)

	got := Items[stubEntity](s, KindPatients)
	if len(got) != 2 || got[0].name != "a" || got[1].name != "b" {
		t.Fatalf("Items = %v", got)
	}
}
