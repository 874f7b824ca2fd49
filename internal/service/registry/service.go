// Package registry covers the reference collections (departments, providers,
// patients). It exists so that reference data rides the same optimistic
// mutation path as the scheduling entities and rolls back the same way.
package registry

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"medidesk/internal/domain"
	"medidesk/internal/optimistic"
	"medidesk/internal/remote"
	"medidesk/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Service struct {
	store *store.Store
	coord *optimistic.Coordinator
	gw    remote.Gateway
}

func NewService(st *store.Store, coord *optimistic.Coordinator, gw remote.Gateway) *Service {
	return &Service{store: st, coord: coord, gw: gw}
}

func (s *Service) SaveDepartment(ctx context.Context, d domain.Department) (domain.Department, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return domain.Department{}, validationError("name is required")
	}
	e, err := s.save(ctx, store.KindDepartments, d, func(id uuid.UUID) store.Entity {
		d.ID = id
		return d
	}, map[string]any{"name": d.Name})
	if err != nil {
		return domain.Department{}, err
	}
	return e.(domain.Department), nil
}

func (s *Service) SaveProvider(ctx context.Context, p domain.Provider) (domain.Provider, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Provider{}, validationError("name is required")
	}
	if _, ok := s.store.Find(store.KindDepartments, p.DepartmentID); !ok {
		return domain.Provider{}, validationError("unknown department")
	}
	e, err := s.save(ctx, store.KindProviders, p, func(id uuid.UUID) store.Entity {
		p.ID = id
		return p
	}, map[string]any{
		"departmentId": p.DepartmentID,
		"name":         p.Name,
		"specialty":    p.Specialty,
	})
	if err != nil {
		return domain.Provider{}, err
	}
	return e.(domain.Provider), nil
}

func (s *Service) SavePatient(ctx context.Context, p domain.Patient) (domain.Patient, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Patient{}, validationError("name is required")
	}
	e, err := s.save(ctx, store.KindPatients, p, func(id uuid.UUID) store.Entity {
		p.ID = id
		return p
	}, map[string]any{
		"name":  p.Name,
		"email": p.Email,
		"phone": p.Phone,
	})
	if err != nil {
		return domain.Patient{}, err
	}
	return e.(domain.Patient), nil
}

// ImportPatients inserts the batch as one atomic local mutation. If the
// remote write fails partway, exactly the batch's records are removed from
// the mirror again.
func (s *Service) ImportPatients(ctx context.Context, patients []domain.Patient) ([]domain.Patient, error) {
	if len(patients) == 0 {
		return nil, validationError("at least one patient is required")
	}
	batch := make([]store.Entity, 0, len(patients))
	out := make([]domain.Patient, 0, len(patients))
	for _, p := range patients {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			return nil, validationError("name is required")
		}
		if p.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return nil, err
			}
			p.ID = id
		}
		batch = append(batch, p)
		out = append(out, p)
	}
	if err := s.coord.Execute(ctx, optimistic.CreateBatch(s.gw, store.KindPatients, batch)); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) save(ctx context.Context, kind store.Kind, e store.Entity, withID func(uuid.UUID) store.Entity, partial map[string]any) (store.Entity, error) {
	id := e.EntityID()
	if id == uuid.Nil {
		fresh, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		e = withID(fresh)
	}

	var cmd optimistic.Command
	if _, exists := s.store.Find(kind, e.EntityID()); exists {
		cmd = optimistic.Update(s.gw, kind, e, partial)
	} else {
		cmd = optimistic.Create(s.gw, kind, e)
	}
	if err := s.coord.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	return e, nil
}
