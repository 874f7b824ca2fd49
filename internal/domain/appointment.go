package domain

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled      AppointmentStatus = "scheduled"
	StatusCheckedIn      AppointmentStatus = "checked_in"
	StatusInConsultation AppointmentStatus = "in_consultation"
	StatusCompleted      AppointmentStatus = "completed"
	StatusCancelled      AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCheckedIn, StatusInConsultation, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are accepted from s.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled:      {StatusCheckedIn, StatusInConsultation, StatusCancelled},
	StatusCheckedIn:      {StatusInConsultation, StatusCancelled},
	StatusInConsultation: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether the appointment state machine permits
// moving from one status to another.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID           uuid.UUID
	PatientID    uuid.UUID
	ProviderID   uuid.UUID
	DepartmentID uuid.UUID
	Date         time.Time // midnight UTC, see DateOf
	Time         TimeOfDay
	Status       AppointmentStatus
	VisitType    string
	Symptoms     string
	CheckInAt    *time.Time
	CheckOutAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Appointment) EntityID() uuid.UUID { return a.ID }

// Active reports whether a still occupies its slot. Cancelled appointments
// release the slot; every other status holds it.
func (a Appointment) Active() bool {
	return a.Status != StatusCancelled
}
