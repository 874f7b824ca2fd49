package remote

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"medidesk/internal/domain"
	"medidesk/internal/store"
)

// Schemas returns the field map for every mirrored collection. Local names
// follow the internal camelCase convention; remote columns are snake_case.
func Schemas() map[store.Kind]Schema {
	return map[store.Kind]Schema{
		store.KindAppointments: appointmentSchema(),
		store.KindAvailability: availabilitySchema(),
		store.KindDepartments:  departmentSchema(),
		store.KindProviders:    providerSchema(),
		store.KindPatients:     patientSchema(),
	}
}

var (
	codecUUID = &Codec{
		Encode: func(v any) (any, error) {
			id, ok := v.(uuid.UUID)
			if !ok {
				return nil, fmt.Errorf("expected uuid, got %T", v)
			}
			return id.String(), nil
		},
		Decode: func(v any) (any, error) {
			s, err := asText(v)
			if err != nil {
				return nil, err
			}
			return uuid.Parse(s)
		},
	}

	codecTimeOfDay = &Codec{
		Encode: func(v any) (any, error) {
			t, ok := v.(domain.TimeOfDay)
			if !ok {
				return nil, fmt.Errorf("expected time of day, got %T", v)
			}
			return t.String(), nil
		},
		Decode: func(v any) (any, error) {
			s, err := asText(v)
			if err != nil {
				return nil, err
			}
			return domain.ParseTimeOfDay(s)
		},
	}

	codecDate = &Codec{
		Encode: func(v any) (any, error) {
			d, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("expected date, got %T", v)
			}
			return domain.FormatDate(d), nil
		},
		Decode: func(v any) (any, error) {
			if d, ok := v.(time.Time); ok {
				return domain.DateOf(d), nil
			}
			s, err := asText(v)
			if err != nil {
				return nil, err
			}
			return domain.ParseDate(s)
		},
	}

	codecStatus = &Codec{
		Encode: func(v any) (any, error) {
			st, ok := v.(domain.AppointmentStatus)
			if !ok {
				return nil, fmt.Errorf("expected status, got %T", v)
			}
			return string(st), nil
		},
		Decode: func(v any) (any, error) {
			s, err := asText(v)
			if err != nil {
				return nil, err
			}
			st := domain.AppointmentStatus(s)
			if !st.Valid() {
				return nil, fmt.Errorf("unknown status %q", s)
			}
			return st, nil
		},
	}
)

func asText(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("expected text, got %T", v)
	}
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func asTime(v any) (time.Time, error) {
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("expected timestamp, got %T", v)
	}
	return t, nil
}

func asNullableTime(v any) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := asTime(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func appointmentSchema() Schema {
	return Schema{
		Collection: "appointments",
		Fields: []Field{
			{Local: "id", Remote: "id", Codec: codecUUID},
			{Local: "patientId", Remote: "patient_id", Codec: codecUUID},
			{Local: "providerId", Remote: "provider_id", Codec: codecUUID},
			{Local: "departmentId", Remote: "department_id", Codec: codecUUID},
			{Local: "date", Remote: "visit_date", Codec: codecDate},
			{Local: "time", Remote: "visit_time", Codec: codecTimeOfDay},
			{Local: "status", Remote: "status", Codec: codecStatus},
			{Local: "visitType", Remote: "visit_type"},
			{Local: "symptoms", Remote: "symptoms"},
			{Local: "checkInAt", Remote: "check_in_at"},
			{Local: "checkOutAt", Remote: "check_out_at"},
			{Local: "createdAt", Remote: "created_at"},
			{Local: "updatedAt", Remote: "updated_at"},
		},
		Marshal: func(e store.Entity) (map[string]any, error) {
			a, ok := e.(domain.Appointment)
			if !ok {
				return nil, fmt.Errorf("expected appointment, got %T", e)
			}
			return map[string]any{
				"id":           a.ID,
				"patientId":    a.PatientID,
				"providerId":   a.ProviderID,
				"departmentId": a.DepartmentID,
				"date":         a.Date,
				"time":         a.Time,
				"status":       a.Status,
				"visitType":    a.VisitType,
				"symptoms":     a.Symptoms,
				"checkInAt":    nullableTime(a.CheckInAt),
				"checkOutAt":   nullableTime(a.CheckOutAt),
				"createdAt":    a.CreatedAt,
				"updatedAt":    a.UpdatedAt,
			}, nil
		},
		Unmarshal: func(rec map[string]any) (store.Entity, error) {
			var a domain.Appointment
			var err error
			if a.ID, err = fieldUUID(rec, "id"); err != nil {
				return nil, err
			}
			if a.PatientID, err = fieldUUID(rec, "patientId"); err != nil {
				return nil, err
			}
			if a.ProviderID, err = fieldUUID(rec, "providerId"); err != nil {
				return nil, err
			}
			if a.DepartmentID, err = fieldUUID(rec, "departmentId"); err != nil {
				return nil, err
			}
			d, ok := rec["date"].(time.Time)
			if !ok {
				return nil, errors.New("appointment record missing date")
			}
			a.Date = d
			t, ok := rec["time"].(domain.TimeOfDay)
			if !ok {
				return nil, errors.New("appointment record missing time")
			}
			a.Time = t
			st, ok := rec["status"].(domain.AppointmentStatus)
			if !ok {
				return nil, errors.New("appointment record missing status")
			}
			a.Status = st
			a.VisitType, _ = optionalText(rec, "visitType")
			a.Symptoms, _ = optionalText(rec, "symptoms")
			if a.CheckInAt, err = asNullableTime(rec["checkInAt"]); err != nil {
				return nil, err
			}
			if a.CheckOutAt, err = asNullableTime(rec["checkOutAt"]); err != nil {
				return nil, err
			}
			if v, ok := rec["createdAt"]; ok && v != nil {
				if a.CreatedAt, err = asTime(v); err != nil {
					return nil, err
				}
			}
			if v, ok := rec["updatedAt"]; ok && v != nil {
				if a.UpdatedAt, err = asTime(v); err != nil {
					return nil, err
				}
			}
			return a, nil
		},
	}
}

func availabilitySchema() Schema {
	return Schema{
		Collection: "availability_windows",
		Fields: []Field{
			{Local: "id", Remote: "id", Codec: codecUUID},
			{Local: "providerId", Remote: "provider_id", Codec: codecUUID},
			{Local: "dayOfWeek", Remote: "day_of_week"},
			{Local: "startTime", Remote: "start_time", Codec: codecTimeOfDay},
			{Local: "endTime", Remote: "end_time", Codec: codecTimeOfDay},
			{Local: "slotMinutes", Remote: "slot_duration_minutes"},
		},
		Marshal: func(e store.Entity) (map[string]any, error) {
			w, ok := e.(domain.AvailabilityWindow)
			if !ok {
				return nil, fmt.Errorf("expected availability window, got %T", e)
			}
			return map[string]any{
				"id":          w.ID,
				"providerId":  w.ProviderID,
				"dayOfWeek":   w.Weekday,
				"startTime":   w.Start,
				"endTime":     w.End,
				"slotMinutes": w.SlotMinutes,
			}, nil
		},
		Unmarshal: func(rec map[string]any) (store.Entity, error) {
			var w domain.AvailabilityWindow
			var err error
			if w.ID, err = fieldUUID(rec, "id"); err != nil {
				return nil, err
			}
			if w.ProviderID, err = fieldUUID(rec, "providerId"); err != nil {
				return nil, err
			}
			if w.Weekday, err = asInt(rec["dayOfWeek"]); err != nil {
				return nil, err
			}
			start, ok := rec["startTime"].(domain.TimeOfDay)
			if !ok {
				return nil, errors.New("availability record missing start time")
			}
			w.Start = start
			end, ok := rec["endTime"].(domain.TimeOfDay)
			if !ok {
				return nil, errors.New("availability record missing end time")
			}
			w.End = end
			if w.SlotMinutes, err = asInt(rec["slotMinutes"]); err != nil {
				return nil, err
			}
			return w, nil
		},
	}
}

func departmentSchema() Schema {
	return Schema{
		Collection: "departments",
		Fields: []Field{
			{Local: "id", Remote: "id", Codec: codecUUID},
			{Local: "name", Remote: "name"},
		},
		Marshal: func(e store.Entity) (map[string]any, error) {
			d, ok := e.(domain.Department)
			if !ok {
				return nil, fmt.Errorf("expected department, got %T", e)
			}
			return map[string]any{"id": d.ID, "name": d.Name}, nil
		},
		Unmarshal: func(rec map[string]any) (store.Entity, error) {
			var d domain.Department
			var err error
			if d.ID, err = fieldUUID(rec, "id"); err != nil {
				return nil, err
			}
			d.Name, _ = optionalText(rec, "name")
			return d, nil
		},
	}
}

func providerSchema() Schema {
	return Schema{
		Collection: "providers",
		Fields: []Field{
			{Local: "id", Remote: "id", Codec: codecUUID},
			{Local: "departmentId", Remote: "department_id", Codec: codecUUID},
			{Local: "name", Remote: "name"},
			{Local: "specialty", Remote: "specialty"},
		},
		Marshal: func(e store.Entity) (map[string]any, error) {
			p, ok := e.(domain.Provider)
			if !ok {
				return nil, fmt.Errorf("expected provider, got %T", e)
			}
			return map[string]any{
				"id":           p.ID,
				"departmentId": p.DepartmentID,
				"name":         p.Name,
				"specialty":    p.Specialty,
			}, nil
		},
		Unmarshal: func(rec map[string]any) (store.Entity, error) {
			var p domain.Provider
			var err error
			if p.ID, err = fieldUUID(rec, "id"); err != nil {
				return nil, err
			}
			if p.DepartmentID, err = fieldUUID(rec, "departmentId"); err != nil {
				return nil, err
			}
			p.Name, _ = optionalText(rec, "name")
			p.Specialty, _ = optionalText(rec, "specialty")
			return p, nil
		},
	}
}

func patientSchema() Schema {
	return Schema{
		Collection: "patients",
		Fields: []Field{
			{Local: "id", Remote: "id", Codec: codecUUID},
			{Local: "name", Remote: "full_name"},
			{Local: "email", Remote: "email"},
			{Local: "phone", Remote: "phone"},
		},
		Marshal: func(e store.Entity) (map[string]any, error) {
			p, ok := e.(domain.Patient)
			if !ok {
				return nil, fmt.Errorf("expected patient, got %T", e)
			}
			return map[string]any{
				"id":    p.ID,
				"name":  p.Name,
				"email": p.Email,
				"phone": p.Phone,
			}, nil
		},
		Unmarshal: func(rec map[string]any) (store.Entity, error) {
			var p domain.Patient
			var err error
			if p.ID, err = fieldUUID(rec, "id"); err != nil {
				return nil, err
			}
			p.Name, _ = optionalText(rec, "name")
			p.Email, _ = optionalText(rec, "email")
			p.Phone, _ = optionalText(rec, "phone")
			return p, nil
		},
	}
}

func fieldUUID(rec map[string]any, name string) (uuid.UUID, error) {
	id, ok := rec[name].(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("record missing %s", name)
	}
	return id, nil
}

func optionalText(rec map[string]any, name string) (string, bool) {
	v, ok := rec[name]
	if !ok || v == nil {
		return "", false
	}
	s, err := asText(v)
	if err != nil {
		return "", false
	}
	return s, true
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
