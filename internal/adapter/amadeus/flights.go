package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/catapulthq/catapult/internal/domain/itinerary"
	"github.com/catapulthq/catapult/internal/port/travel"
)

// Flights implements the flight provider port over a shared API session.
type Flights struct {
	c *Client
}

var _ travel.FlightProvider = (*Flights)(nil)

// NewFlights wraps a client as a flight provider.
func NewFlights(c *Client) *Flights {
	return &Flights{c: c}
}

type flightOffersResponse struct {
	Data []struct {
		Itineraries []struct {
			Segments []struct {
				CarrierCode string `json:"carrierCode"`
				Number      string `json:"number"`
				Departure   struct {
					IATACode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"departure"`
				Arrival struct {
					IATACode string `json:"iataCode"`
					At       string `json:"at"`
				} `json:"arrival"`
			} `json:"segments"`
		} `json:"itineraries"`
		Price struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"price"`
	} `json:"data"`
}

// Search finds one-way flight offers. Results are normalized to the first
// segment of the first itinerary of each offer, matching how offers are
// presented to the agents.
func (f *Flights) Search(ctx context.Context, q travel.FlightQuery) ([]itinerary.Flight, error) {
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	query := url.Values{}
	query.Set("originLocationCode", CityToIATA(q.Origin))
	query.Set("destinationLocationCode", CityToIATA(q.Destination))
	query.Set("departureDate", q.DepartureDate)
	query.Set("adults", "1")
	query.Set("max", strconv.Itoa(maxResults))
	query.Set("currencyCode", "USD")

	data, err := f.c.cachedGet(ctx, "/v2/shopping/flight-offers", query)
	if err != nil {
		return nil, fmt.Errorf("flight search: %w", err)
	}

	var parsed flightOffersResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal flight offers: %w", err)
	}

	flights := make([]itinerary.Flight, 0, len(parsed.Data))
	for _, offer := range parsed.Data {
		if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
			continue
		}
		seg := offer.Itineraries[0].Segments[0]
		price, err := strconv.ParseFloat(offer.Price.Total, 64)
		if err != nil {
			continue
		}
		flights = append(flights, itinerary.Flight{
			Airline:      seg.CarrierCode,
			FlightNumber: seg.Number,
			Departure:    seg.Departure.At,
			Arrival:      seg.Arrival.At,
			Price:        price,
			Currency:     offer.Price.Currency,
		})
	}
	return flights, nil
}
