package service

import (
	"fmt"

	"github.com/catapulthq/catapult/internal/domain/itinerary"
)

// Deterministic stand-in data used when a provider is unavailable or returns
// nothing. Entries exist for a few common destinations; anything else gets a
// generic rendition built from the destination name.

var mockFlights = map[string]itinerary.Flight{
	"Chicago": {
		Airline: "United Airlines", FlightNumber: "UA515",
		Departure: "T08:30:00", Arrival: "T10:05:00",
		Price: 345.99, Currency: "USD",
	},
	"Las Vegas": {
		Airline: "Southwest", FlightNumber: "WN1211",
		Departure: "T09:15:00", Arrival: "T12:05:00",
		Price: 299.99, Currency: "USD",
	},
	"Miami": {
		Airline: "American Airlines", FlightNumber: "AA2381",
		Departure: "T07:30:00", Arrival: "T10:45:00",
		Price: 415.50, Currency: "USD",
	},
}

var mockHotels = map[string]itinerary.Hotel{
	"Chicago": {
		Name: "The Langham Chicago", Price: 389.00,
		Address: "330 N Wabash Ave, Chicago, IL", Rating: 4.9,
	},
	"Las Vegas": {
		Name: "Bellagio Las Vegas", Price: 279.00,
		Address: "3600 S Las Vegas Blvd, Las Vegas, NV", Rating: 4.7,
	},
	"Miami": {
		Name: "Fontainebleau Miami Beach", Price: 359.00,
		Address: "4441 Collins Ave, Miami Beach, FL", Rating: 4.5,
	},
	"New York": {
		Name: "The Plaza Hotel", Price: 599.00,
		Address: "768 5th Ave, New York, NY", Rating: 4.7,
	},
}

// mockFlight returns a fallback flight for the destination with departure
// and arrival anchored to the given date.
func mockFlight(destination, date string) itinerary.Flight {
	f, ok := mockFlights[destination]
	if !ok {
		f = itinerary.Flight{
			Airline: "United Airlines", FlightNumber: "UA450",
			Departure: "T08:30:00", Arrival: "T10:15:00",
			Price: 325.00, Currency: "USD",
		}
	}
	f.Departure = date + f.Departure
	f.Arrival = date + f.Arrival
	return f
}

// mockHotel returns a fallback hotel for the destination.
func mockHotel(destination string) itinerary.Hotel {
	if h, ok := mockHotels[destination]; ok {
		return h
	}
	return itinerary.Hotel{
		Name:    fmt.Sprintf("Downtown %s Hotel", destination),
		Price:   265.00,
		Address: fmt.Sprintf("123 Main St, %s", destination),
		Rating:  4.4,
	}
}

var cityActivities = map[string]map[int][]itinerary.Activity{
	"Chicago": {
		1: {
			{TimeOfDay: "Morning", Name: "Architecture River Cruise", Description: "90-minute guided boat tour of Chicago's iconic buildings", Location: "Chicago River, Downtown", Cost: 42.99},
			{TimeOfDay: "Afternoon", Name: "Lunch at Giordano's & Millennium Park", Description: "Famous deep dish pizza followed by Cloud Gate (The Bean) visit", Location: "Millennium Park, Chicago", Cost: 35.50},
			{TimeOfDay: "Evening", Name: "Dinner at The Signature Room", Description: "Upscale dining with panoramic views from the 95th floor", Location: "875 N Michigan Ave, Chicago", Cost: 95.00},
		},
		2: {
			{TimeOfDay: "Morning", Name: "Art Institute of Chicago", Description: "World-class art museum with extensive collection", Location: "111 S Michigan Ave, Chicago", Cost: 25.00},
			{TimeOfDay: "Afternoon", Name: "Magnificent Mile Shopping", Description: "Upscale shopping along Michigan Avenue", Location: "N Michigan Ave, Chicago", Cost: 100.00},
			{TimeOfDay: "Evening", Name: "Chicago Blues Experience", Description: "Live blues music at Kingston Mines or Buddy Guy's Legends", Location: "Blues District, Chicago", Cost: 65.00},
		},
		3: {
			{TimeOfDay: "Morning", Name: "Museum of Science and Industry", Description: "One of the largest science museums in the world", Location: "5700 S Lake Shore Dr, Chicago", Cost: 21.95},
			{TimeOfDay: "Afternoon", Name: "Wrigley Field Tour or Game", Description: "Visit the historic home of the Chicago Cubs", Location: "1060 W Addison St, Chicago", Cost: 70.00},
			{TimeOfDay: "Evening", Name: "Comedy at Second City", Description: "Live comedy at the legendary improv theater", Location: "1616 N Wells St, Chicago", Cost: 45.00},
		},
	},
	"New York": {
		1: {
			{TimeOfDay: "Morning", Name: "Statue of Liberty & Ellis Island", Description: "Ferry ride and guided tour of iconic landmarks", Location: "Battery Park, Manhattan", Cost: 23.50},
			{TimeOfDay: "Afternoon", Name: "Lunch & Central Park Exploration", Description: "Enjoy local cuisine and walk through Central Park", Location: "Central Park, Manhattan", Cost: 45.00},
			{TimeOfDay: "Evening", Name: "Broadway Show", Description: "Evening performance of a hit Broadway musical", Location: "Theater District, Manhattan", Cost: 175.00},
		},
		2: {
			{TimeOfDay: "Morning", Name: "Metropolitan Museum of Art", Description: "Explore one of the world's finest art collections", Location: "1000 5th Ave, Manhattan", Cost: 25.00},
			{TimeOfDay: "Afternoon", Name: "SoHo Shopping & Greenwich Village", Description: "Boutique shopping and historic neighborhood tour", Location: "SoHo & Greenwich Village", Cost: 120.00},
			{TimeOfDay: "Evening", Name: "Dinner in Little Italy", Description: "Authentic Italian cuisine in historic neighborhood", Location: "Mulberry St, Manhattan", Cost: 85.00},
		},
		3: {
			{TimeOfDay: "Morning", Name: "Top of the Rock Observation Deck", Description: "Panoramic views from Rockefeller Center", Location: "30 Rockefeller Plaza, Manhattan", Cost: 40.00},
			{TimeOfDay: "Afternoon", Name: "High Line & Chelsea Market", Description: "Elevated park walk and gourmet food hall", Location: "Chelsea, Manhattan", Cost: 35.00},
			{TimeOfDay: "Evening", Name: "Night Tour of NYC", Description: "See the city lights and skyline at night", Location: "Manhattan", Cost: 65.00},
		},
	},
}

// buildDayPlans assembles day-by-day activity suggestions for the trip.
// Plans cover at most three days regardless of trip length.
func buildDayPlans(destination string, nights int) []itinerary.DayPlan {
	days := nights
	if days > 3 {
		days = 3
	}
	if days <= 0 {
		return nil
	}
	plans := make([]itinerary.DayPlan, 0, days)
	for day := 1; day <= days; day++ {
		plans = append(plans, itinerary.DayPlan{Day: day, Activities: dayActivities(destination, day)})
	}
	return plans
}

// dayActivities returns the activity block for one day of the trip, falling
// back to a generic set when the destination has no curated entries.
func dayActivities(destination string, day int) []itinerary.Activity {
	if days, ok := cityActivities[destination]; ok {
		if acts, ok := days[day]; ok {
			return acts
		}
	}
	return []itinerary.Activity{
		{
			TimeOfDay:   "Morning",
			Name:        fmt.Sprintf("Sightseeing Tour in %s", destination),
			Description: fmt.Sprintf("Guided tour of %s's main attractions", destination),
			Location:    fmt.Sprintf("%s Downtown", destination),
			Cost:        49.00,
		},
		{
			TimeOfDay:   "Afternoon",
			Name:        fmt.Sprintf("Local Cuisine & Shopping in %s", destination),
			Description: fmt.Sprintf("Sample the best food and shops in %s", destination),
			Location:    fmt.Sprintf("%s Market District", destination),
			Cost:        70.00,
		},
		{
			TimeOfDay:   "Evening",
			Name:        fmt.Sprintf("Nightlife Experience in %s", destination),
			Description: fmt.Sprintf("Experience %s after dark with dinner and entertainment", destination),
			Location:    fmt.Sprintf("%s Entertainment District", destination),
			Cost:        85.00,
		},
	}
}
