package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/catapulthq/catapult/internal/domain/itinerary"
	"github.com/catapulthq/catapult/internal/port/travel"
)

// Hotels implements the hotel provider port over a shared API session.
type Hotels struct {
	c *Client
}

var _ travel.HotelProvider = (*Hotels)(nil)

// NewHotels wraps a client as a hotel provider.
func NewHotels(c *Client) *Hotels {
	return &Hotels{c: c}
}

type hotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
		Rating  string `json:"rating"`
		Address struct {
			Lines    []string `json:"lines"`
			CityName string   `json:"cityName"`
		} `json:"address"`
	} `json:"data"`
}

type hotelOffersResponse struct {
	Data []struct {
		Offers []struct {
			Price struct {
				Total string `json:"total"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

// Search finds hotels with at least one bookable offer in the destination
// city. Hotels are listed by city, then priced one at a time until enough
// offers are found.
func (h *Hotels) Search(ctx context.Context, q travel.HotelQuery) ([]itinerary.Hotel, error) {
	listQuery := url.Values{}
	listQuery.Set("cityCode", CityToIATA(q.Destination))

	data, err := h.c.cachedGet(ctx, "/v1/reference-data/locations/hotels/by-city", listQuery)
	if err != nil {
		return nil, fmt.Errorf("hotel list: %w", err)
	}

	var list hotelListResponse
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unmarshal hotel list: %w", err)
	}

	const maxPriced = 3
	hotels := make([]itinerary.Hotel, 0, maxPriced)
	for _, entry := range list.Data {
		price, ok, err := h.bestOffer(ctx, entry.HotelID, q)
		if err != nil || !ok {
			continue
		}

		rating, _ := strconv.ParseFloat(entry.Rating, 64)
		address := strings.Join(append(entry.Address.Lines, entry.Address.CityName), ", ")
		hotels = append(hotels, itinerary.Hotel{
			Name:    entry.Name,
			Price:   price,
			Address: strings.Trim(address, ", "),
			Rating:  rating,
		})
		if len(hotels) >= maxPriced {
			break
		}
	}
	return hotels, nil
}

// bestOffer prices one hotel for the stay window. Missing offers are not an
// error; the hotel is simply skipped.
func (h *Hotels) bestOffer(ctx context.Context, hotelID string, q travel.HotelQuery) (float64, bool, error) {
	query := url.Values{}
	query.Set("hotelIds", hotelID)
	query.Set("adults", "1")
	if q.CheckInDate != "" {
		query.Set("checkInDate", q.CheckInDate)
	}
	if q.CheckOutDate != "" {
		query.Set("checkOutDate", q.CheckOutDate)
	}

	data, err := h.c.cachedGet(ctx, "/v3/shopping/hotel-offers", query)
	if err != nil {
		return 0, false, err
	}

	var offers hotelOffersResponse
	if err := json.Unmarshal(data, &offers); err != nil {
		return 0, false, fmt.Errorf("unmarshal hotel offers: %w", err)
	}
	if len(offers.Data) == 0 || len(offers.Data[0].Offers) == 0 {
		return 0, false, nil
	}
	price, err := strconv.ParseFloat(offers.Data[0].Offers[0].Price.Total, 64)
	if err != nil {
		return 0, false, nil
	}
	return price, true, nil
}
