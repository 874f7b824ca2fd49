package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medidesk/internal/service/appointments"
	"medidesk/internal/service/availability"
	"medidesk/internal/service/registry"
)

type Handler struct {
	appts *appointments.Service
	avail *availability.Service
	reg   *registry.Service
	log   *slog.Logger
}

func NewHandler(appts *appointments.Service, avail *availability.Service, reg *registry.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		appts: appts,
		avail: avail,
		reg:   reg,
		log:   log.With(slog.String("component", "http")),
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/providers/{providerID}/slots", h.listSlots)
	r.Get("/providers/{providerID}/availability", h.listAvailability)

	r.Post("/appointments", h.bookAppointment)
	r.Get("/appointments/{id}", h.getAppointment)
	r.Post("/appointments/{id}/cancel", h.cancelAppointment)
	r.Post("/appointments/{id}/transition", h.transitionAppointment)

	r.Put("/availability", h.saveAvailability)
	r.Get("/availability/{id}/impact", h.availabilityImpact)
	r.Delete("/availability/{id}", h.deleteAvailability)

	r.Post("/departments", h.saveDepartment)
	r.Post("/providers", h.saveProvider)
	r.Post("/patients", h.savePatient)
	r.Post("/patients/import", h.importPatients)

	return r
}
