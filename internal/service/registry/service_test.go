package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"medidesk/internal/domain"
	"medidesk/internal/optimistic"
	"medidesk/internal/remote"
	"medidesk/internal/store"
)

type fakeGateway struct {
	createFn    func(ctx context.Context, kind store.Kind, e store.Entity) error
	createAllFn func(ctx context.Context, kind store.Kind, batch []store.Entity) error
	updateFn    func(ctx context.Context, kind store.Kind, id uuid.UUID, partial map[string]any) error
}

func (f *fakeGateway) FetchAll(ctx context.Context, kind store.Kind) ([]store.Entity, error) {
	return nil, nil
}

func (f *fakeGateway) Create(ctx context.Context, kind store.Kind, e store.Entity) error {
	if f.createFn != nil {
		return f.createFn(ctx, kind, e)
	}
	return nil
}

func (f *fakeGateway) CreateAll(ctx context.Context, kind store.Kind, batch []store.Entity) error {
	if f.createAllFn != nil {
		return f.createAllFn(ctx, kind, batch)
	}
	return nil
}

func (f *fakeGateway) Update(ctx context.Context, kind store.Kind, id uuid.UUID, partial map[string]any) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, kind, id, partial)
	}
	return nil
}

func (f *fakeGateway) Delete(ctx context.Context, kind store.Kind, id uuid.UUID) error {
	return nil
}

func newService(gw *fakeGateway) (*Service, *store.Store) {
	st := store.New()
	return NewService(st, optimistic.NewCoordinator(st, nil), gw), st
}

func TestSaveDepartment(t *testing.T) {
	t.Run("create assigns id", func(t *testing.T) {
		svc, st := newService(&fakeGateway{})
		got, err := svc.SaveDepartment(context.Background(), domain.Department{Name: "  Cardiology "})
		if err != nil {
			t.Fatalf("SaveDepartment error: %v", err)
		}
		if got.ID == uuid.Nil {
			t.Fatalf("no id assigned")
		}
		if got.Name != "Cardiology" {
			t.Fatalf("name = %q, want trimmed", got.Name)
		}
		if _, ok := st.Find(store.KindDepartments, got.ID); !ok {
			t.Fatalf("department missing from store")
		}
	})

	t.Run("existing id updates in place", func(t *testing.T) {
		svc, st := newService(&fakeGateway{})
		d := domain.Department{ID: uuid.New(), Name: "Cardiology"}
		st.Insert(store.KindDepartments, d)

		d.Name = "Cardiothoracic"
		if _, err := svc.SaveDepartment(context.Background(), d); err != nil {
			t.Fatalf("SaveDepartment error: %v", err)
		}
		if got := st.Get(store.KindDepartments); len(got) != 1 || got[0].(domain.Department).Name != "Cardiothoracic" {
			t.Fatalf("collection after update = %v", got)
		}
	})

	t.Run("blank name rejected", func(t *testing.T) {
		svc, _ := newService(&fakeGateway{})
		_, err := svc.SaveDepartment(context.Background(), domain.Department{Name: "   "})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("SaveDepartment error = %v, want ValidationError", err)
		}
	})
}

func TestSaveProvider(t *testing.T) {
	svc, st := newService(&fakeGateway{})
	dept := domain.Department{ID: uuid.New(), Name: "Cardiology"}
	st.Insert(store.KindDepartments, dept)

	t.Run("unknown department rejected", func(t *testing.T) {
		_, err := svc.SaveProvider(context.Background(), domain.Provider{Name: "Dr. Obi", DepartmentID: uuid.New()})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("SaveProvider error = %v, want ValidationError", err)
		}
	})

	t.Run("create succeeds", func(t *testing.T) {
		got, err := svc.SaveProvider(context.Background(), domain.Provider{Name: "Dr. Obi", DepartmentID: dept.ID, Specialty: "Cardiology"})
		if err != nil {
			t.Fatalf("SaveProvider error: %v", err)
		}
		if got.ID == uuid.Nil {
			t.Fatalf("no id assigned")
		}
	})
}

func TestImportPatients(t *testing.T) {
	t.Run("imports the whole batch", func(t *testing.T) {
		svc, st := newService(&fakeGateway{})
		got, err := svc.ImportPatients(context.Background(), []domain.Patient{
			{Name: "Ada Obi"},
			{Name: "Ben Eze", Email: "ben@example.com"},
		})
		if err != nil {
			t.Fatalf("ImportPatients error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("imported %d patients, want 2", len(got))
		}
		for _, p := range got {
			if p.ID == uuid.Nil {
				t.Fatalf("patient %q has no id", p.Name)
			}
			if _, ok := st.Find(store.KindPatients, p.ID); !ok {
				t.Fatalf("patient %q missing from store", p.Name)
			}
		}
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		svc, _ := newService(&fakeGateway{})
		_, err := svc.ImportPatients(context.Background(), nil)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("ImportPatients error = %v, want ValidationError", err)
		}
	})

	t.Run("blank name anywhere rejects the whole batch", func(t *testing.T) {
		svc, st := newService(&fakeGateway{})
		_, err := svc.ImportPatients(context.Background(), []domain.Patient{
			{Name: "Ada Obi"},
			{Name: "  "},
		})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("ImportPatients error = %v, want ValidationError", err)
		}
		if got := st.Get(store.KindPatients); len(got) != 0 {
			t.Fatalf("rejected batch left patients behind: %v", got)
		}
	})

	t.Run("remote failure removes exactly the batch", func(t *testing.T) {
		gw := &fakeGateway{
			createAllFn: func(ctx context.Context, kind store.Kind, batch []store.Entity) error {
				return &remote.PersistenceError{Op: "create_all", Collection: "patients", Err: errors.New("partial write")}
			},
		}
		svc, st := newService(gw)
		existing := domain.Patient{ID: uuid.New(), Name: "Existing"}
		st.Insert(store.KindPatients, existing)

		_, err := svc.ImportPatients(context.Background(), []domain.Patient{{Name: "Ada Obi"}, {Name: "Ben Eze"}})
		var perr *remote.PersistenceError
		if !errors.As(err, &perr) {
			t.Fatalf("ImportPatients error = %v, want PersistenceError", err)
		}
		got := st.Get(store.KindPatients)
		if len(got) != 1 || got[0].EntityID() != existing.ID {
			t.Fatalf("rollback did not remove exactly the batch: %v", got)
		}
	})
}
