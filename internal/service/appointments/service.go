package appointments

import (
	"context"
	"fmt"
	"sort"
	"strings"
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

// Service owns the appointment state machine and the slot-uniqueness rule.
// Slot listing and booking read the local mirror; every write goes through
// the mutation coordinator.
type Service struct {
	store *store.Store
	coord *optimistic.Coordinator
	gw    remote.Gateway
	now   func() time.Time
}

func NewService(st *store.Store, coord *optimistic.Coordinator, gw remote.Gateway) *Service {
	return &Service{store: st, coord: coord, gw: gw, now: time.Now}
}

// Slots returns the bookable times for a provider on a calendar date, in
// ascending order: the union of the provider's window grids for that
// weekday, minus times held by non-cancelled appointments, minus times
// already elapsed when the date is today. Pure with respect to mirror state.
func (s *Service) Slots(providerID uuid.UUID, date time.Time) []domain.TimeOfDay {
	day := domain.DateOf(date)
	windows := s.windowsFor(providerID, int(day.Weekday()))
	if len(windows) == 0 {
		return nil
	}

	taken := make(map[domain.TimeOfDay]bool)
	for _, a := range store.Items[domain.Appointment](s.store, store.KindAppointments) {
		if a.Active() && a.ProviderID == providerID && a.Date.Equal(day) {
			taken[a.Time] = true
		}
	}

	now := s.now()
	today := domain.DateOf(now).Equal(day)
	clock := domain.TimeOfDayAt(now)

	var out []domain.TimeOfDay
	for _, w := range windows {
		for _, t := range w.SlotTimes() {
			if taken[t] {
				continue
			}
			if today && t.Before(clock) {
				continue
			}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

type BookInput struct {
	PatientID    uuid.UUID
	ProviderID   uuid.UUID
	DepartmentID uuid.UUID
	Date         time.Time
	Time         domain.TimeOfDay
	VisitType    string
	Symptoms     string
}

// Book commits a booking. The requested time is re-validated against the
// provider's availability at commit time, not just at display time, and slot
// uniqueness is re-checked so a race between display and booking fails with
// store.ErrConflict instead of double-booking the slot.
func (s *Service) Book(ctx context.Context, in BookInput) (domain.Appointment, error) {
	if _, ok := s.store.Find(store.KindPatients, in.PatientID); !ok {
		return domain.Appointment{}, validationError("unknown patient")
	}
	if _, ok := s.store.Find(store.KindProviders, in.ProviderID); !ok {
		return domain.Appointment{}, validationError("unknown provider")
	}
	if _, ok := s.store.Find(store.KindDepartments, in.DepartmentID); !ok {
		return domain.Appointment{}, validationError("unknown department")
	}
	if !in.Time.Valid() {
		return domain.Appointment{}, validationError("time must be a valid time of day")
	}

	date := domain.DateOf(in.Date)

	onGrid := false
	for _, w := range s.windowsFor(in.ProviderID, int(date.Weekday())) {
		if w.OnGrid(in.Time) {
			onGrid = true
			break
		}
	}
	if !onGrid {
		return domain.Appointment{}, validationError("time is not offered by the provider's availability")
	}

	now := s.now()
	if domain.DateOf(now).Equal(date) && in.Time.Before(domain.TimeOfDayAt(now)) {
		return domain.Appointment{}, validationError("time has already passed")
	}
	if date.Before(domain.DateOf(now)) {
		return domain.Appointment{}, validationError("date is in the past")
	}

	for _, a := range store.Items[domain.Appointment](s.store, store.KindAppointments) {
		if a.Active() && a.ProviderID == in.ProviderID && a.Date.Equal(date) && a.Time == in.Time {
			return domain.Appointment{}, store.ErrConflict
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Appointment{}, err
	}
	appt := domain.Appointment{
		ID:           id,
		PatientID:    in.PatientID,
		ProviderID:   in.ProviderID,
		DepartmentID: in.DepartmentID,
		Date:         date,
		Time:         in.Time,
		Status:       domain.StatusScheduled,
		VisitType:    strings.TrimSpace(in.VisitType),
		Symptoms:     strings.TrimSpace(in.Symptoms),
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}

	if err := s.coord.Execute(ctx, optimistic.Create(s.gw, store.KindAppointments, appt)); err != nil {
		return domain.Appointment{}, err
	}
	return appt, nil
}

// Cancel moves the appointment to its terminal cancelled status, releasing
// the slot. Appointments are never physically deleted.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.Transition(ctx, id, domain.StatusCancelled)
}

// Transition advances the appointment through the workflow state machine.
// Illegal transitions are rejected before any state is touched.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target domain.AppointmentStatus) error {
	if !target.Valid() {
		return validationError(fmt.Sprintf("unknown status %q", target))
	}

	e, ok := s.store.Find(store.KindAppointments, id)
	if !ok {
		return store.ErrNotFound
	}
	appt := e.(domain.Appointment)

	if !domain.CanTransition(appt.Status, target) {
		return validationError(fmt.Sprintf("cannot move appointment from %s to %s", appt.Status, target))
	}

	now := s.now().UTC()
	updated := appt
	updated.Status = target
	updated.UpdatedAt = now

	partial := map[string]any{
		"status":    target,
		"updatedAt": now,
	}
	switch target {
	case domain.StatusCheckedIn:
		updated.CheckInAt = &now
		partial["checkInAt"] = now
	case domain.StatusCompleted:
		updated.CheckOutAt = &now
		partial["checkOutAt"] = now
	}

	return s.coord.Execute(ctx, optimistic.Update(s.gw, store.KindAppointments, updated, partial))
}

// Get returns the appointment by id from the local mirror.
func (s *Service) Get(id uuid.UUID) (domain.Appointment, error) {
	e, ok := s.store.Find(store.KindAppointments, id)
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return e.(domain.Appointment), nil
}

func (s *Service) windowsFor(providerID uuid.UUID, weekday int) []domain.AvailabilityWindow {
	var out []domain.AvailabilityWindow
	for _, w := range store.Items[domain.AvailabilityWindow](s.store, store.KindAvailability) {
		if w.ProviderID == providerID && w.Weekday == weekday {
			out = append(out, w)
		}
	}
	return out
}
