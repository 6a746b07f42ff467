// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/catapulthq/catapult/internal/domain/itinerary"
)

// Store is the port interface for itinerary persistence.
type Store interface {
	SaveItinerary(ctx context.Context, it *itinerary.Itinerary) error
	GetItinerary(ctx context.Context, id string) (*itinerary.Itinerary, error)
	ListItineraries(ctx context.Context, limit int) ([]itinerary.Itinerary, error)
}
