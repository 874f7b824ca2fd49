package http

import (
	"time"

	"github.com/google/uuid"

	"medidesk/internal/domain"
)

type bookAppointmentRequest struct {
	PatientID    string `json:"patient_id"`
	ProviderID   string `json:"provider_id"`
	DepartmentID string `json:"department_id"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	VisitType    string `json:"visit_type"`
	Symptoms     string `json:"symptoms,omitempty"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

type saveAvailabilityRequest struct {
	ID          string `json:"id,omitempty"`
	ProviderID  string `json:"provider_id"`
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	SlotMinutes int    `json:"slot_duration_minutes"`
}

type saveDepartmentRequest struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type saveProviderRequest struct {
	ID           string `json:"id,omitempty"`
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
	Specialty    string `json:"specialty,omitempty"`
}

type savePatientRequest struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type importPatientsRequest struct {
	Patients []savePatientRequest `json:"patients"`
}

type appointmentResponse struct {
	ID           uuid.UUID        `json:"id"`
	PatientID    uuid.UUID        `json:"patient_id"`
	ProviderID   uuid.UUID        `json:"provider_id"`
	DepartmentID uuid.UUID        `json:"department_id"`
	Date         string           `json:"date"`
	Time         domain.TimeOfDay `json:"time"`
	Status       string           `json:"status"`
	VisitType    string           `json:"visit_type,omitempty"`
	Symptoms     string           `json:"symptoms,omitempty"`
	CheckInAt    *time.Time       `json:"check_in_at,omitempty"`
	CheckOutAt   *time.Time       `json:"check_out_at,omitempty"`
}

func toAppointmentResponse(a domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:           a.ID,
		PatientID:    a.PatientID,
		ProviderID:   a.ProviderID,
		DepartmentID: a.DepartmentID,
		Date:         domain.FormatDate(a.Date),
		Time:         a.Time,
		Status:       string(a.Status),
		VisitType:    a.VisitType,
		Symptoms:     a.Symptoms,
		CheckInAt:    a.CheckInAt,
		CheckOutAt:   a.CheckOutAt,
	}
}

type availabilityResponse struct {
	ID          uuid.UUID        `json:"id"`
	ProviderID  uuid.UUID        `json:"provider_id"`
	DayOfWeek   int              `json:"day_of_week"`
	StartTime   domain.TimeOfDay `json:"start_time"`
	EndTime     domain.TimeOfDay `json:"end_time"`
	SlotMinutes int              `json:"slot_duration_minutes"`
}

func toAvailabilityResponse(w domain.AvailabilityWindow) availabilityResponse {
	return availabilityResponse{
		ID:          w.ID,
		ProviderID:  w.ProviderID,
		DayOfWeek:   w.Weekday,
		StartTime:   w.Start,
		EndTime:     w.End,
		SlotMinutes: w.SlotMinutes,
	}
}

type departmentResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type providerResponse struct {
	ID           uuid.UUID `json:"id"`
	DepartmentID uuid.UUID `json:"department_id"`
	Name         string    `json:"name"`
	Specialty    string    `json:"specialty,omitempty"`
}

type patientResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	Phone string    `json:"phone,omitempty"`
}

func toPatientResponse(p domain.Patient) patientResponse {
	return patientResponse{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone}
}

type slotsResponse struct {
	ProviderID uuid.UUID          `json:"provider_id"`
	Date       string             `json:"date"`
	Slots      []domain.TimeOfDay `json:"slots"`
}

type impactResponse struct {
	AffectedAppointments []appointmentResponse `json:"affected_appointments"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
