package amadeus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/catapulthq/catapult/internal/config"
	"github.com/catapulthq/catapult/internal/port/travel"
)

const tokenJSON = `{"access_token":"tok-1","expires_in":1799}`

const flightOffersJSON = `{"data":[{
	"itineraries":[{"segments":[{
		"carrierCode":"UA","number":"515",
		"departure":{"iataCode":"JFK","at":"2025-06-15T08:30:00"},
		"arrival":{"iataCode":"ORD","at":"2025-06-15T10:05:00"}
	}]}],
	"price":{"total":"345.99","currency":"USD"}
}]}`

const hotelListJSON = `{"data":[
	{"hotelId":"H1","name":"The Langham Chicago","rating":"5","address":{"lines":["330 N Wabash Ave"],"cityName":"Chicago"}}
]}`

const hotelOffersJSON = `{"data":[{"offers":[{"price":{"total":"389.00"}}]}]}`

func newTestServer(t *testing.T) (*Client, *atomic.Int64) {
	t.Helper()
	var tokenCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token method = %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		tokenCalls.Add(1)
		_, _ = w.Write([]byte(tokenJSON))
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("originLocationCode"); got != "JFK" {
			t.Errorf("originLocationCode = %q", got)
		}
		_, _ = w.Write([]byte(flightOffersJSON))
	})
	mux.HandleFunc("/v1/reference-data/locations/hotels/by-city", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("cityCode"); got != "ORD" {
			t.Errorf("cityCode = %q", got)
		}
		_, _ = w.Write([]byte(hotelListJSON))
	})
	mux.HandleFunc("/v3/shopping/hotel-offers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(hotelOffersJSON))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(config.Amadeus{
		BaseURL:      srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
	}), &tokenCalls
}

func TestFlightSearch(t *testing.T) {
	c, tokenCalls := newTestServer(t)

	flights, err := NewFlights(c).Search(context.Background(), travel.FlightQuery{
		Origin:        "New York",
		Destination:   "Chicago",
		DepartureDate: "2025-06-15",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(flights) != 1 {
		t.Fatalf("flights = %+v", flights)
	}
	f := flights[0]
	if f.Airline != "UA" || f.FlightNumber != "515" || f.Price != 345.99 {
		t.Errorf("flight = %+v", f)
	}
	if tokenCalls.Load() != 1 {
		t.Errorf("token calls = %d", tokenCalls.Load())
	}
}

func TestTokenReuse(t *testing.T) {
	c, tokenCalls := newTestServer(t)
	ctx := context.Background()
	flights := NewFlights(c)
	q := travel.FlightQuery{Origin: "New York", Destination: "Chicago", DepartureDate: "2025-06-15"}

	if _, err := flights.Search(ctx, q); err != nil {
		t.Fatal(err)
	}
	if _, err := flights.Search(ctx, q); err != nil {
		t.Fatal(err)
	}
	if tokenCalls.Load() != 1 {
		t.Errorf("token calls = %d, want 1", tokenCalls.Load())
	}
}

func TestHotelSearch(t *testing.T) {
	c, _ := newTestServer(t)

	hotels, err := NewHotels(c).Search(context.Background(), travel.HotelQuery{
		Destination:  "Chicago",
		CheckInDate:  "2025-06-15",
		CheckOutDate: "2025-06-18",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hotels) != 1 {
		t.Fatalf("hotels = %+v", hotels)
	}
	h := hotels[0]
	if h.Name != "The Langham Chicago" || h.Price != 389.00 {
		t.Errorf("hotel = %+v", h)
	}
	if h.Address != "330 N Wabash Ave, Chicago" {
		t.Errorf("Address = %q", h.Address)
	}
	if h.Rating != 5 {
		t.Errorf("Rating = %v", h.Rating)
	}
}

func TestCityToIATA(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Chicago", "ORD"},
		{"new york", "JFK"},
		{" San Francisco ", "SFO"},
		{"ORD", "ORD"},
	}
	for _, tc := range cases {
		if got := CityToIATA(tc.in); got != tc.want {
			t.Errorf("CityToIATA(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer srv.Close()

	c := NewClient(config.Amadeus{BaseURL: srv.URL, ClientID: "bad", ClientSecret: "bad", Timeout: time.Second})
	_, err := NewFlights(c).Search(context.Background(), travel.FlightQuery{Origin: "New York", Destination: "Chicago", DepartureDate: "2025-06-15"})
	if err == nil {
		t.Fatal("expected auth error")
	}
}
