// Package travel defines the ports for external travel data providers.
package travel

import (
	"context"

	"github.com/catapulthq/catapult/internal/domain/itinerary"
)

// FlightQuery describes a one-way flight search.
type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	MaxResults    int
}

// HotelQuery describes a hotel search for a city and stay window.
type HotelQuery struct {
	Destination  string
	CheckInDate  string
	CheckOutDate string
}

// CalendarInfo identifies one calendar the user can read.
type CalendarInfo struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary,omitempty"`
}

// FlightProvider searches for flights.
type FlightProvider interface {
	Search(ctx context.Context, q FlightQuery) ([]itinerary.Flight, error)
}

// HotelProvider searches for hotels.
type HotelProvider interface {
	Search(ctx context.Context, q HotelQuery) ([]itinerary.Hotel, error)
}

// CalendarProvider reads the user's calendars.
type CalendarProvider interface {
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
	Events(ctx context.Context, start, end string) ([]itinerary.CalendarEvent, error)
}
