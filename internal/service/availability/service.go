package availability

import (
	"context"
	"fmt"
	"time"

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

// OverlapError reports that a window would share time with an existing
// window for the same provider and weekday.
type OverlapError struct {
	Existing domain.AvailabilityWindow
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlaps existing window %s-%s", e.Existing.Start, e.Existing.End)
}

// Service owns availability windows and the overlap rule. All writes go
// through the mutation coordinator; deletion is a two-step query-then-confirm
// so the caller decides whether to proceed past affected bookings.
type Service struct {
	store *store.Store
	coord *optimistic.Coordinator
	gw    remote.Gateway
	now   func() time.Time
}

func NewService(st *store.Store, coord *optimistic.Coordinator, gw remote.Gateway) *Service {
	return &Service{store: st, coord: coord, gw: gw, now: time.Now}
}

// Save validates and persists a window. A window with an id already in the
// mirror is replaced; otherwise it is created with a fresh id.
func (s *Service) Save(ctx context.Context, w domain.AvailabilityWindow) (domain.AvailabilityWindow, error) {
	if w.ProviderID == uuid.Nil {
		return domain.AvailabilityWindow{}, validationError("provider_id is required")
	}
	if w.Weekday < 0 || w.Weekday > 6 {
		return domain.AvailabilityWindow{}, validationError("day_of_week must be between 0 and 6")
	}
	if !w.Start.Valid() || !w.End.Valid() {
		return domain.AvailabilityWindow{}, validationError("start_time and end_time must be valid times of day")
	}
	if !w.Start.Before(w.End) {
		return domain.AvailabilityWindow{}, validationError("end_time must be after start_time")
	}
	if w.SlotMinutes <= 0 {
		return domain.AvailabilityWindow{}, validationError("slot_duration_minutes must be positive")
	}

	for _, other := range store.Items[domain.AvailabilityWindow](s.store, store.KindAvailability) {
		if other.ID == w.ID || other.ProviderID != w.ProviderID || other.Weekday != w.Weekday {
			continue
		}
		if w.Overlaps(other) {
			return domain.AvailabilityWindow{}, &OverlapError{Existing: other}
		}
	}

	if w.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.AvailabilityWindow{}, err
		}
		w.ID = id
	}

	var cmd optimistic.Command
	if _, exists := s.store.Find(store.KindAvailability, w.ID); exists {
		cmd = optimistic.Update(s.gw, store.KindAvailability, w, map[string]any{
			"providerId":  w.ProviderID,
			"dayOfWeek":   w.Weekday,
			"startTime":   w.Start,
			"endTime":     w.End,
			"slotMinutes": w.SlotMinutes,
		})
	} else {
		cmd = optimistic.Create(s.gw, store.KindAvailability, w)
	}

	if err := s.coord.Execute(ctx, cmd); err != nil {
		return domain.AvailabilityWindow{}, err
	}
	return w, nil
}

// Delete returns the advisory set of future, non-cancelled appointments
// whose weekday and time fall inside the window. Nothing is mutated; the
// caller confirms with ConfirmDelete if it wants to proceed.
func (s *Service) Delete(id uuid.UUID) ([]domain.Appointment, error) {
	e, ok := s.store.Find(store.KindAvailability, id)
	if !ok {
		return nil, store.ErrNotFound
	}
	w := e.(domain.AvailabilityWindow)

	now := s.now()
	today := domain.DateOf(now)
	clock := domain.TimeOfDayAt(now)

	var affected []domain.Appointment
	for _, a := range store.Items[domain.Appointment](s.store, store.KindAppointments) {
		if !a.Active() || a.ProviderID != w.ProviderID {
			continue
		}
		if int(a.Date.Weekday()) != w.Weekday || !w.Contains(a.Time) {
			continue
		}
		if a.Date.Before(today) || (a.Date.Equal(today) && a.Time.Before(clock)) {
			continue
		}
		affected = append(affected, a)
	}
	return affected, nil
}

// ConfirmDelete removes the window unconditionally. Appointments that
// depended on its time range are left untouched.
func (s *Service) ConfirmDelete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.store.Find(store.KindAvailability, id); !ok {
		return store.ErrNotFound
	}
	return s.coord.Execute(ctx, optimistic.Delete(s.gw, store.KindAvailability, id))
}

// List returns the provider's windows for display.
func (s *Service) List(providerID uuid.UUID) []domain.AvailabilityWindow {
	var out []domain.AvailabilityWindow
	for _, w := range store.Items[domain.AvailabilityWindow](s.store, store.KindAvailability) {
		if w.ProviderID == providerID {
			out = append(out, w)
		}
	}
	return out
}
