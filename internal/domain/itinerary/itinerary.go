// Package itinerary defines the trip plan aggregate shared across the
// planning session, and the manager that guards every mutation of it.
package itinerary

import (
	"time"
)

// Status represents the lifecycle state of an itinerary.
type Status string

const (
	StatusInitial    Status = "initial"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Dates is the travel window in YYYY-MM-DD form.
type Dates struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Resolved reports whether both ends of the window are set.
func (d Dates) Resolved() bool {
	return d.Start != "" && d.End != ""
}

// Nights returns the number of hotel nights between Start and End,
// or 0 if either date is missing or unparseable.
func (d Dates) Nights() int {
	if !d.Resolved() {
		return 0
	}
	start, err := time.Parse("2006-01-02", d.Start)
	if err != nil {
		return 0
	}
	end, err := time.Parse("2006-01-02", d.End)
	if err != nil {
		return 0
	}
	n := int(end.Sub(start).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// Flight is a normalized flight offer.
type Flight struct {
	Airline      string  `json:"airline"`
	FlightNumber string  `json:"flight_number"`
	Departure    string  `json:"departure"`
	Arrival      string  `json:"arrival"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
}

// Hotel is a normalized hotel offer. Price is per night.
type Hotel struct {
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	Address string  `json:"address"`
	Rating  float64 `json:"rating,omitempty"`
}

// CalendarEvent is a normalized calendar entry inside the travel window.
type CalendarEvent struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Summary  string `json:"summary"`
	Location string `json:"location,omitempty"`
}

// Activity is one suggested item within a day of the trip.
type Activity struct {
	TimeOfDay   string  `json:"time_of_day"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Location    string  `json:"location,omitempty"`
	Cost        float64 `json:"cost"`
}

// DayPlan groups the activities suggested for one day of the trip.
type DayPlan struct {
	Day        int        `json:"day"`
	Activities []Activity `json:"activities"`
}

// Itinerary is the shared trip plan accumulated across agent hops.
// One instance exists per planning session, owned by the Manager.
type Itinerary struct {
	ID             string          `json:"id,omitempty"`
	Dates          Dates           `json:"dates"`
	Destination    string          `json:"destination,omitempty"`
	Origin         string          `json:"origin,omitempty"`
	Flight         *Flight         `json:"flight"`
	ReturnFlight   *Flight         `json:"return_flight,omitempty"`
	Hotel          *Hotel          `json:"hotel"`
	CalendarEvents []CalendarEvent `json:"calendar_events,omitempty"`
	Activities     []DayPlan       `json:"activities,omitempty"`
	TotalCost      float64         `json:"total_cost"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}

// Patch is a partial itinerary update. Nil fields are left untouched.
type Patch struct {
	Dates        *Dates
	Destination  *string
	Origin       *string
	Flight       *Flight
	ReturnFlight *Flight
	Hotel        *Hotel
	Activities   []DayPlan
	Status       *Status
}

// Empty reports whether the patch carries no field at all.
func (p Patch) Empty() bool {
	return p.Dates == nil && p.Destination == nil && p.Origin == nil &&
		p.Flight == nil && p.ReturnFlight == nil && p.Hotel == nil &&
		p.Activities == nil && p.Status == nil
}
