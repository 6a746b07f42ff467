package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/catapulthq/catapult/internal/domain/agent"
	"github.com/catapulthq/catapult/internal/domain/itinerary"
	"github.com/catapulthq/catapult/internal/port/database"
	"github.com/catapulthq/catapult/internal/port/travel"
)

// DirectPlanner builds a complete itinerary in a single pass, without the
// agent loop. It parses the request, queries the travel providers (falling
// back to deterministic data) and assembles the plan itself.
type DirectPlanner struct {
	providers Providers
	store     database.Store
	logger    *slog.Logger
}

// NewDirectPlanner creates a DirectPlanner. store may be nil.
func NewDirectPlanner(providers Providers, store database.Store, logger *slog.Logger) *DirectPlanner {
	return &DirectPlanner{providers: providers, store: store, logger: logger}
}

// Generate produces a complete itinerary for a free-text travel request.
func (p *DirectPlanner) Generate(ctx context.Context, request string) (*itinerary.Itinerary, error) {
	trip := ParseRequest(request)
	p.logger.Info("direct planning",
		"destination", trip.Destination,
		"origin", trip.Origin,
		"start", trip.Dates.Start,
		"end", trip.Dates.End)

	flight := p.findFlight(ctx, trip)
	hotel := p.findHotel(ctx, trip)

	mgr := itinerary.NewManager(agent.NameTravelAssistant)
	status := itinerary.StatusComplete
	mgr.Update(agent.NameTravelAssistant, itinerary.Patch{
		Dates:       &trip.Dates,
		Destination: &trip.Destination,
		Origin:      &trip.Origin,
		Flight:      &flight,
		Hotel:       &hotel,
		Activities:  buildDayPlans(trip.Destination, trip.Dates.Nights()),
		Status:      &status,
	})

	it := mgr.Snapshot()
	it.ID = uuid.NewString()
	it.CreatedAt = time.Now().UTC()

	if p.store != nil {
		if err := p.store.SaveItinerary(ctx, &it); err != nil {
			p.logger.Error("persist itinerary failed", "id", it.ID, "error", err)
		}
	}
	return &it, nil
}

func (p *DirectPlanner) findFlight(ctx context.Context, trip TripRequest) itinerary.Flight {
	if p.providers.Flights != nil {
		flights, err := p.providers.Flights.Search(ctx, travel.FlightQuery{
			Origin:        trip.Origin,
			Destination:   trip.Destination,
			DepartureDate: trip.Dates.Start,
			MaxResults:    1,
		})
		if err != nil {
			p.logger.Warn("flight search failed, serving fallback", "destination", trip.Destination, "error", err)
		} else if len(flights) > 0 {
			return flights[0]
		}
	}
	return mockFlight(trip.Destination, trip.Dates.Start)
}

func (p *DirectPlanner) findHotel(ctx context.Context, trip TripRequest) itinerary.Hotel {
	if p.providers.Hotels != nil {
		hotels, err := p.providers.Hotels.Search(ctx, travel.HotelQuery{
			Destination:  trip.Destination,
			CheckInDate:  trip.Dates.Start,
			CheckOutDate: trip.Dates.End,
		})
		if err != nil {
			p.logger.Warn("hotel search failed, serving fallback", "destination", trip.Destination, "error", err)
		} else if len(hotels) > 0 {
			return hotels[0]
		}
	}
	return mockHotel(trip.Destination)
}
