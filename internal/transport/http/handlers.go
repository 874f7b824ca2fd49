package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medidesk/internal/domain"
	"medidesk/internal/remote"
	"medidesk/internal/service/appointments"
	"medidesk/internal/service/availability"
	"medidesk/internal/service/registry"
	"medidesk/internal/store"
)

func (h *Handler) listSlots(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("handler", "listSlots"))

	providerID, err := uuid.Parse(chi.URLParam(r, "providerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_provider_id", "provider id must be a UUID")
		return
	}
	date, err := domain.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	slots := h.appts.Slots(providerID, date)
	if slots == nil {
		slots = []domain.TimeOfDay{}
	}

	log.Debug("slots listed", slog.String("provider_id", providerID.String()), slog.String("date", domain.FormatDate(date)), slog.Int("count", len(slots)))
	writeJSON(w, http.StatusOK, slotsResponse{ProviderID: providerID, Date: domain.FormatDate(date), Slots: slots})
}

func (h *Handler) listAvailability(w http.ResponseWriter, r *http.Request) {
	providerID, err := uuid.Parse(chi.URLParam(r, "providerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_provider_id", "provider id must be a UUID")
		return
	}
	windows := h.avail.List(providerID)
	out := make([]availabilityResponse, 0, len(windows))
	for _, win := range windows {
		out = append(out, toAvailabilityResponse(win))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) bookAppointment(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("handler", "bookAppointment"))

	var req bookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a UUID")
		return
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_provider_id", "provider_id must be a UUID")
		return
	}
	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_department_id", "department_id must be a UUID")
		return
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}
	slot, err := domain.ParseTimeOfDay(req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time", err.Error())
		return
	}

	appt, err := h.appts.Book(r.Context(), appointments.BookInput{
		PatientID:    patientID,
		ProviderID:   providerID,
		DepartmentID: departmentID,
		Date:         date,
		Time:         slot,
		VisitType:    req.VisitType,
		Symptoms:     req.Symptoms,
	})
	if err != nil {
		h.writeServiceError(w, log, err)
		return
	}

	log.Info(
		"appointment booked",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("provider_id", appt.ProviderID.String()),
		slog.String("date", domain.FormatDate(appt.Date)),
		slog.String("time", appt.Time.String()),
	)
	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a UUID")
		return
	}
	appt, err := h.appts.Get(id)
	if err != nil {
		h.writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *Handler) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("handler", "cancelAppointment"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a UUID")
		return
	}
	if err := h.appts.Cancel(r.Context(), id); err != nil {
		h.writeServiceError(w, log, err)
		return
	}
	log.Info("appointment cancelled", slog.String("appointment_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transitionAppointment(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("handler", "transitionAppointment"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a UUID")
		return
	}
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	if err := h.appts.Transition(r.Context(), id, domain.AppointmentStatus(req.Status)); err != nil {
		h.writeServiceError(w, log, err)
		return
	}
	log.Info("appointment transitioned", slog.String("appointment_id", id.String()), slog.String("status", req.Status))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveAvailability(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("handler", "saveAvailability"))

	var req saveAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}

	var id uuid.UUID
	if req.ID != "" {
		parsed, err := uuid.Parse(req.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", "id must be a UUID")
			return
		}
		id = parsed
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_provider_id", "provider_id must be a UUID")
		return
	}
	start, err := domain.ParseTimeOfDay(req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_start_time", err.Error())
		return
	}
	end, err := domain.ParseTimeOfDay(req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_end_time", err.Error())
		return
	}

	win, err := h.avail.Save(r.Context(), domain.AvailabilityWindow{
		ID:          id,
		ProviderID:  providerID,
		Weekday:     req.DayOfWeek,
		Start:       start,
		End:         end,
		SlotMinutes: req.SlotMinutes,
	})
	if err != nil {
		h.writeServiceError(w, log, err)
		return
	}

	log.Info(
		"availability saved",
		slog.String("window_id", win.ID.String()),
		slog.String("provider_id", win.ProviderID.String()),
		slog.Int("day_of_week", win.Weekday),
	)
	writeJSON(w, http.StatusOK, toAvailabilityResponse(win))
}

func (h *Handler) availabilityImpact(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a UUID")
		return
	}
	affected, err := h.avail.Delete(id)
	if err != nil {
		h.writeServiceError(w, h.log, err)
		return
	}
	out := make([]appointmentResponse, 0, len(affected))
	for _, a := range affected {
		out = append(out, toAppointmentResponse(a))
	}
	writeJSON(w, http.StatusOK, impactResponse{AffectedAppointments: out})
}

func (h *Handler) deleteAvailability(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("handler", "deleteAvailability"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a UUID")
		return
	}
	if err := h.avail.ConfirmDelete(r.Context(), id); err != nil {
		h.writeServiceError(w, log, err)
		return
	}
	log.Info("availability deleted", slog.String("window_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveDepartment(w http.ResponseWriter, r *http.Request) {
	var req saveDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	d := domain.Department{Name: req.Name}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", "id must be a UUID")
			return
		}
		d.ID = id
	}
	saved, err := h.reg.SaveDepartment(r.Context(), d)
	if err != nil {
		h.writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, departmentResponse{ID: saved.ID, Name: saved.Name})
}

func (h *Handler) saveProvider(w http.ResponseWriter, r *http.Request) {
	var req saveProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_department_id", "department_id must be a UUID")
		return
	}
	p := domain.Provider{DepartmentID: departmentID, Name: req.Name, Specialty: req.Specialty}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", "id must be a UUID")
			return
		}
		p.ID = id
	}
	saved, err := h.reg.SaveProvider(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, providerResponse{
		ID:           saved.ID,
		DepartmentID: saved.DepartmentID,
		Name:         saved.Name,
		Specialty:    saved.Specialty,
	})
}

func (h *Handler) savePatient(w http.ResponseWriter, r *http.Request) {
	var req savePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	p := domain.Patient{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_id", "id must be a UUID")
			return
		}
		p.ID = id
	}
	saved, err := h.reg.SavePatient(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPatientResponse(saved))
}

func (h *Handler) importPatients(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("handler", "importPatients"))

	var req importPatientsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	patients := make([]domain.Patient, 0, len(req.Patients))
	for _, p := range req.Patients {
		patients = append(patients, domain.Patient{Name: p.Name, Email: p.Email, Phone: p.Phone})
	}

	imported, err := h.reg.ImportPatients(r.Context(), patients)
	if err != nil {
		h.writeServiceError(w, log, err)
		return
	}
	out := make([]patientResponse, 0, len(imported))
	for _, p := range imported {
		out = append(out, toPatientResponse(p))
	}
	log.Info("patients imported", slog.Int("count", len(imported)))
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var apptErr *appointments.ValidationError
	var availErr *availability.ValidationError
	var regErr *registry.ValidationError
	var overlapErr *availability.OverlapError
	var persistErr *remote.PersistenceError

	switch {
	case errors.As(err, &apptErr), errors.As(err, &availErr), errors.As(err, &regErr):
		log.Warn("invalid request", slog.Any("err", err))
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.As(err, &overlapErr):
		log.Info("availability overlap rejected", slog.Any("err", err))
		writeError(w, http.StatusConflict, "availability_overlap", err.Error())
	case errors.Is(err, store.ErrConflict):
		log.Info("slot conflict", slog.Any("err", err))
		writeError(w, http.StatusConflict, "slot_taken", "that slot was just booked; pick another time")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "no such record")
	case errors.As(err, &persistErr):
		log.Error("remote store failure", slog.Any("err", err))
		writeError(w, http.StatusBadGateway, "persistence_failed", "the change was not saved; local state was restored")
	default:
		log.Error("request failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, errorResponse{Error: code, Details: details})
}
