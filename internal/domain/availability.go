package domain

import (
	"github.com/google/uuid"
)

// AvailabilityWindow is a recurring weekly range during which a provider can
// be booked, subdivided into SlotMinutes-long slots.
type AvailabilityWindow struct {
	ID          uuid.UUID
	ProviderID  uuid.UUID
	Weekday     int // 0 (Sunday) through 6 (Saturday)
	Start       TimeOfDay
	End         TimeOfDay // exclusive
	SlotMinutes int
}

func (w AvailabilityWindow) EntityID() uuid.UUID { return w.ID }

// Overlaps reports whether the two half-open ranges [Start, End) share at
// least one instant. Callers are expected to compare only windows for the
// same provider and weekday.
func (w AvailabilityWindow) Overlaps(o AvailabilityWindow) bool {
	lo := w.Start
	if o.Start > lo {
		lo = o.Start
	}
	hi := w.End
	if o.End < hi {
		hi = o.End
	}
	return lo < hi
}

// Contains reports whether t falls inside [Start, End).
func (w AvailabilityWindow) Contains(t TimeOfDay) bool {
	return t >= w.Start && t < w.End
}

// SlotTimes enumerates the window's bookable grid: Start, Start+d, ... while
// the candidate is before End. The window end itself is never a slot.
func (w AvailabilityWindow) SlotTimes() []TimeOfDay {
	if w.SlotMinutes <= 0 || !w.Start.Before(w.End) {
		return nil
	}
	out := make([]TimeOfDay, 0, (int(w.End)-int(w.Start))/w.SlotMinutes+1)
	for t := w.Start; t.Before(w.End); t = t.Add(w.SlotMinutes) {
		out = append(out, t)
	}
	return out
}

// OnGrid reports whether t is one of the window's slot start times.
func (w AvailabilityWindow) OnGrid(t TimeOfDay) bool {
	if w.SlotMinutes <= 0 || !w.Contains(t) {
		return false
	}
	return (int(t)-int(w.Start))%w.SlotMinutes == 0
}
