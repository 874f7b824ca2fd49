package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"medidesk/internal/domain"
	"medidesk/internal/optimistic"
	"medidesk/internal/remote"
	"medidesk/internal/service/appointments"
	"medidesk/internal/service/availability"
	"medidesk/internal/service/registry"
	"medidesk/internal/store"
)

type fakeGateway struct {
	createFn func(ctx context.Context, kind store.Kind, e store.Entity) error
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
	return nil
}

func (f *fakeGateway) Update(ctx context.Context, kind store.Kind, id uuid.UUID, partial map[string]any) error {
	return nil
}

func (f *fakeGateway) Delete(ctx context.Context, kind store.Kind, id uuid.UUID) error {
	return nil
}

type testEnv struct {
	srv        *httptest.Server
	store      *store.Store
	patientID  uuid.UUID
	providerID uuid.UUID
	deptID     uuid.UUID
}

// bookingDate is a far-future Monday so bookings never trip the past-date
// checks regardless of when the tests run.
const bookingDate = "2030-01-07"

func newEnv(t *testing.T, gw *fakeGateway) *testEnv {
	t.Helper()

	st := store.New()
	coord := optimistic.NewCoordinator(st, nil)

	env := &testEnv{
		store:      st,
		patientID:  uuid.New(),
		providerID: uuid.New(),
		deptID:     uuid.New(),
	}

	st.Insert(store.KindDepartments, domain.Department{ID: env.deptID, Name: "General Medicine"})
	st.Insert(store.KindProviders, domain.Provider{ID: env.providerID, DepartmentID: env.deptID, Name: "Dr. Okafor"})
	st.Insert(store.KindPatients, domain.Patient{ID: env.patientID, Name: "Ada Obi"})
	st.Insert(store.KindAvailability, domain.AvailabilityWindow{
		ID:          uuid.New(),
		ProviderID:  env.providerID,
		Weekday:     1,
		Start:       domain.NewTimeOfDay(9, 0),
		End:         domain.NewTimeOfDay(10, 0),
		SlotMinutes: 30,
	})

	h := NewHandler(
		appointments.NewService(st, coord, gw),
		availability.NewService(st, coord, gw),
		registry.NewService(st, coord, gw),
		nil,
	)
	env.srv = httptest.NewServer(h.Router())
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func (e *testEnv) bookBody(at string) map[string]any {
	return map[string]any{
		"patient_id":    e.patientID.String(),
		"provider_id":   e.providerID.String(),
		"department_id": e.deptID.String(),
		"date":          bookingDate,
		"time":          at,
		"visit_type":    "new patient",
	}
}

func TestBookAppointmentEndpoint(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		env := newEnv(t, &fakeGateway{})
		resp := env.do(t, http.MethodPost, "/appointments", env.bookBody("09:00"))
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		got := decode[appointmentResponse](t, resp)
		if got.Status != "scheduled" || got.Date != bookingDate || got.Time != domain.NewTimeOfDay(9, 0) {
			t.Fatalf("response = %+v", got)
		}
	})

	t.Run("double booking returns conflict", func(t *testing.T) {
		env := newEnv(t, &fakeGateway{})
		env.do(t, http.MethodPost, "/appointments", env.bookBody("09:00"))
		resp := env.do(t, http.MethodPost, "/appointments", env.bookBody("09:00"))
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status = %d, want 409", resp.StatusCode)
		}
		got := decode[errorResponse](t, resp)
		if got.Error != "slot_taken" {
			t.Fatalf("error code = %q, want slot_taken", got.Error)
		}
	})

	t.Run("off-grid time rejected", func(t *testing.T) {
		env := newEnv(t, &fakeGateway{})
		resp := env.do(t, http.MethodPost, "/appointments", env.bookBody("09:15"))
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
		got := decode[errorResponse](t, resp)
		if got.Error != "validation_failed" {
			t.Fatalf("error code = %q, want validation_failed", got.Error)
		}
	})

	t.Run("malformed uuid rejected", func(t *testing.T) {
		env := newEnv(t, &fakeGateway{})
		body := env.bookBody("09:00")
		body["patient_id"] = "not-a-uuid"
		resp := env.do(t, http.MethodPost, "/appointments", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("remote failure maps to bad gateway", func(t *testing.T) {
		gw := &fakeGateway{
			createFn: func(ctx context.Context, kind store.Kind, e store.Entity) error {
				return &remote.PersistenceError{Op: "create", Collection: "appointments", Err: errors.New("broken pipe")}
			},
		}
		env := newEnv(t, gw)
		resp := env.do(t, http.MethodPost, "/appointments", env.bookBody("09:00"))
		if resp.StatusCode != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", resp.StatusCode)
		}
		if got := env.store.Get(store.KindAppointments); len(got) != 0 {
			t.Fatalf("failed booking left local state behind: %v", got)
		}
	})
}

func TestListSlotsEndpoint(t *testing.T) {
	env := newEnv(t, &fakeGateway{})

	resp := env.do(t, http.MethodGet, "/providers/"+env.providerID.String()+"/slots?date="+bookingDate, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[slotsResponse](t, resp)
	if len(got.Slots) != 2 {
		t.Fatalf("slots = %v, want two", got.Slots)
	}

	env.do(t, http.MethodPost, "/appointments", env.bookBody("09:00"))

	resp = env.do(t, http.MethodGet, "/providers/"+env.providerID.String()+"/slots?date="+bookingDate, nil)
	got = decode[slotsResponse](t, resp)
	if len(got.Slots) != 1 || got.Slots[0] != domain.NewTimeOfDay(9, 30) {
		t.Fatalf("slots after booking = %v, want [09:30]", got.Slots)
	}
}

func TestTransitionEndpoint(t *testing.T) {
	env := newEnv(t, &fakeGateway{})
	resp := env.do(t, http.MethodPost, "/appointments", env.bookBody("09:00"))
	appt := decode[appointmentResponse](t, resp)

	t.Run("check in", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/appointments/"+appt.ID.String()+"/transition", transitionRequest{Status: "checked_in"})
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", resp.StatusCode)
		}
	})

	t.Run("illegal jump rejected", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/appointments/"+appt.ID.String()+"/transition", transitionRequest{Status: "scheduled"})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("unknown appointment", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/appointments/"+uuid.NewString()+"/transition", transitionRequest{Status: "checked_in"})
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestCancelEndpoint(t *testing.T) {
	env := newEnv(t, &fakeGateway{})
	resp := env.do(t, http.MethodPost, "/appointments", env.bookBody("09:00"))
	appt := decode[appointmentResponse](t, resp)

	resp = env.do(t, http.MethodPost, "/appointments/"+appt.ID.String()+"/cancel", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	resp = env.do(t, http.MethodGet, "/appointments/"+appt.ID.String(), nil)
	got := decode[appointmentResponse](t, resp)
	if got.Status != "cancelled" {
		t.Fatalf("status after cancel = %q", got.Status)
	}
}

func TestAvailabilityEndpoints(t *testing.T) {
	env := newEnv(t, &fakeGateway{})

	t.Run("overlapping window conflicts", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, "/availability", saveAvailabilityRequest{
			ProviderID:  env.providerID.String(),
			DayOfWeek:   1,
			StartTime:   "09:30",
			EndTime:     "10:30",
			SlotMinutes: 30,
		})
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("status = %d, want 409", resp.StatusCode)
		}
		got := decode[errorResponse](t, resp)
		if got.Error != "availability_overlap" {
			t.Fatalf("error code = %q, want availability_overlap", got.Error)
		}
	})

	t.Run("adjacent window saved", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, "/availability", saveAvailabilityRequest{
			ProviderID:  env.providerID.String(),
			DayOfWeek:   1,
			StartTime:   "10:00",
			EndTime:     "11:00",
			SlotMinutes: 30,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		got := decode[availabilityResponse](t, resp)
		if got.ID == uuid.Nil {
			t.Fatalf("saved window has no id")
		}
	})

	t.Run("impact then delete", func(t *testing.T) {
		env.do(t, http.MethodPost, "/appointments", env.bookBody("09:00"))

		windows := decode[[]availabilityResponse](t, env.do(t, http.MethodGet, "/providers/"+env.providerID.String()+"/availability", nil))
		var morning availabilityResponse
		for _, w := range windows {
			if w.StartTime == domain.NewTimeOfDay(9, 0) {
				morning = w
			}
		}
		if morning.ID == uuid.Nil {
			t.Fatalf("morning window not listed: %v", windows)
		}

		impact := decode[impactResponse](t, env.do(t, http.MethodGet, "/availability/"+morning.ID.String()+"/impact", nil))
		if len(impact.AffectedAppointments) != 1 {
			t.Fatalf("affected = %v, want the booked appointment", impact.AffectedAppointments)
		}

		resp := env.do(t, http.MethodDelete, "/availability/"+morning.ID.String(), nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", resp.StatusCode)
		}

		// The booking survives the window deletion.
		appt := impact.AffectedAppointments[0]
		resp = env.do(t, http.MethodGet, "/appointments/"+appt.ID.String(), nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("appointment gone after window delete: %d", resp.StatusCode)
		}
	})
}

func TestImportPatientsEndpoint(t *testing.T) {
	env := newEnv(t, &fakeGateway{})
	resp := env.do(t, http.MethodPost, "/patients/import", importPatientsRequest{
		Patients: []savePatientRequest{
			{Name: "Ada Obi", Email: "ada@example.com"},
			{Name: "Ben Eze"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	got := decode[[]patientResponse](t, resp)
	if len(got) != 2 || got[0].ID == uuid.Nil {
		t.Fatalf("imported = %v, want two patients with ids", got)
	}
}
