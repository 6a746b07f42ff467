package itinerary

import (
	"log/slog"
	"sync"
)

// Manager guards a single itinerary for one planning session. The orchestrator
// is the sole writer; agents only propose changes through the text they return.
// All reads go through Snapshot, which returns a deep copy so no caller ever
// holds a live alias into the managed state.
type Manager struct {
	mu            sync.Mutex
	terminalAgent string
	it            Itinerary
}

// NewManager creates a Manager whose itinerary starts in StatusInitial.
// Only terminalAgent may transition the itinerary to StatusComplete.
func NewManager(terminalAgent string) *Manager {
	return &Manager{
		terminalAgent: terminalAgent,
		it:            Itinerary{Status: StatusInitial},
	}
}

// Snapshot returns a deep copy of the current itinerary.
func (m *Manager) Snapshot() Itinerary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyLocked()
}

// Update merges the set fields of p into the itinerary. A Status of
// StatusComplete is dropped (with a warning) unless caller is the terminal
// agent; every other field in the same patch still applies. TotalCost is
// recomputed whenever flight, hotel and resolved dates are all present.
// Applying the same patch twice yields the same state as applying it once.
// Returns false only when the patch was entirely empty.
func (m *Manager) Update(caller string, p Patch) bool {
	if p.Empty() {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p.Dates != nil {
		m.it.Dates = *p.Dates
	}
	if p.Destination != nil {
		m.it.Destination = *p.Destination
	}
	if p.Origin != nil {
		m.it.Origin = *p.Origin
	}
	if p.Flight != nil {
		f := *p.Flight
		m.it.Flight = &f
	}
	if p.ReturnFlight != nil {
		f := *p.ReturnFlight
		m.it.ReturnFlight = &f
	}
	if p.Hotel != nil {
		h := *p.Hotel
		m.it.Hotel = &h
	}
	if p.Activities != nil {
		m.it.Activities = copyDayPlans(p.Activities)
	}
	if p.Status != nil {
		if *p.Status == StatusComplete && caller != m.terminalAgent {
			slog.Warn("status=complete rejected from non-terminal agent",
				"caller", caller, "terminal", m.terminalAgent)
		} else {
			m.it.Status = *p.Status
		}
	}

	m.recomputeTotalLocked()
	return true
}

// SetCalendarEvents replaces the stored calendar events. Each provider fetch
// is a full re-read of the window, not a delta, so replace semantics keep
// repeated fetches idempotent.
func (m *Manager) SetCalendarEvents(events []CalendarEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.it.CalendarEvents = append([]CalendarEvent(nil), events...)
}

// recomputeTotalLocked keeps TotalCost consistent with the stored flight,
// hotel and dates. Must be called with m.mu held on every mutation that can
// touch any of the three inputs.
func (m *Manager) recomputeTotalLocked() {
	if m.it.Flight == nil || m.it.Hotel == nil || !m.it.Dates.Resolved() {
		return
	}
	nights := m.it.Dates.Nights()
	m.it.TotalCost = round2(m.it.Flight.Price + m.it.Hotel.Price*float64(nights))
}

func (m *Manager) copyLocked() Itinerary {
	out := m.it
	if m.it.Flight != nil {
		f := *m.it.Flight
		out.Flight = &f
	}
	if m.it.ReturnFlight != nil {
		f := *m.it.ReturnFlight
		out.ReturnFlight = &f
	}
	if m.it.Hotel != nil {
		h := *m.it.Hotel
		out.Hotel = &h
	}
	out.CalendarEvents = append([]CalendarEvent(nil), m.it.CalendarEvents...)
	out.Activities = copyDayPlans(m.it.Activities)
	return out
}

func copyDayPlans(src []DayPlan) []DayPlan {
	if src == nil {
		return nil
	}
	out := make([]DayPlan, len(src))
	for i, d := range src {
		out[i] = DayPlan{Day: d.Day, Activities: append([]Activity(nil), d.Activities...)}
	}
	return out
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
