package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/catapulthq/catapult/internal/domain/agent"
	"github.com/catapulthq/catapult/internal/domain/itinerary"
	"github.com/catapulthq/catapult/internal/port/travel"
)

// Providers bundles the external travel data sources the agents call into.
// Any of them may be nil; the corresponding tool then serves fallback data.
type Providers struct {
	Calendar travel.CalendarProvider
	Flights  travel.FlightProvider
	Hotels   travel.HotelProvider
}

// toolResult is the envelope every tool hands back to the model. Tools never
// fail the completion; provider errors surface as status "error" text.
type toolResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

func toolJSON(v toolResult) string {
	data, err := json.Marshal(v)
	if err != nil {
		return `{"status":"error","error":"internal encoding failure"}`
	}
	return string(data)
}

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// sessionTools builds the tool registry for one planning session. Calendar
// lookups write their events into the session's state manager, so the
// registry must not be shared across sessions.
func sessionTools(p Providers, mgr *itinerary.Manager, logger *slog.Logger) *agent.ToolRegistry {
	tools := agent.NewToolRegistry()

	tools.Register(&agent.Tool{
		Name:        agent.ToolListCalendars,
		Description: "List all calendars the user has access to",
		Handler: func(ctx context.Context, _ map[string]any) (string, error) {
			if p.Calendar == nil {
				return toolJSON(toolResult{Status: "error", Error: "calendar provider not configured"}), nil
			}
			calendars, err := p.Calendar.ListCalendars(ctx)
			if err != nil {
				logger.Warn("list calendars failed", "error", err)
				return toolJSON(toolResult{Status: "error", Error: err.Error()}), nil
			}
			return toolJSON(toolResult{Status: "success", Data: calendars}), nil
		},
	})

	tools.Register(&agent.Tool{
		Name:        agent.ToolGetCalendarEvents,
		Description: "Fetch calendar events within a date range",
		Params: []agent.Param{
			{Name: "start_date", Type: "string", Description: "Range start, YYYY-MM-DD", Required: true},
			{Name: "end_date", Type: "string", Description: "Range end, YYYY-MM-DD", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			if p.Calendar == nil {
				return toolJSON(toolResult{Status: "error", Error: "calendar provider not configured"}), nil
			}
			events, err := p.Calendar.Events(ctx, argString(args, "start_date"), argString(args, "end_date"))
			if err != nil {
				logger.Warn("calendar events lookup failed", "error", err)
				return toolJSON(toolResult{Status: "error", Error: err.Error()}), nil
			}
			mgr.SetCalendarEvents(events)
			return toolJSON(toolResult{Status: "success", Data: events}), nil
		},
	})

	tools.Register(&agent.Tool{
		Name:        agent.ToolSearchFlights,
		Description: "Search for available flights matching the criteria",
		Params: []agent.Param{
			{Name: "destination", Type: "string", Description: "Destination city", Required: true},
			{Name: "departure_date", Type: "string", Description: "Departure date, YYYY-MM-DD"},
			{Name: "origin", Type: "string", Description: "Origin city"},
			{Name: "max_results", Type: "integer", Description: "Maximum offers to return"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			q := travel.FlightQuery{
				Destination:   argString(args, "destination"),
				DepartureDate: argString(args, "departure_date"),
				Origin:        argString(args, "origin"),
			}
			if n, ok := args["max_results"].(float64); ok {
				q.MaxResults = int(n)
			}
			if q.Origin == "" {
				q.Origin = "New York"
			}

			var flights []itinerary.Flight
			if p.Flights != nil {
				var err error
				flights, err = p.Flights.Search(ctx, q)
				if err != nil {
					logger.Warn("flight search failed, serving fallback", "destination", q.Destination, "error", err)
				}
			}
			if len(flights) == 0 {
				flights = []itinerary.Flight{mockFlight(q.Destination, q.DepartureDate)}
			}
			return toolJSON(toolResult{Status: "success", Data: map[string]any{"flights": flights}}), nil
		},
	})

	tools.Register(&agent.Tool{
		Name:        agent.ToolSearchHotels,
		Description: "Find available hotels in the destination city",
		Params: []agent.Param{
			{Name: "destination", Type: "string", Description: "Destination city", Required: true},
			{Name: "check_in_date", Type: "string", Description: "Check-in date, YYYY-MM-DD"},
			{Name: "check_out_date", Type: "string", Description: "Check-out date, YYYY-MM-DD"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			q := travel.HotelQuery{
				Destination:  argString(args, "destination"),
				CheckInDate:  argString(args, "check_in_date"),
				CheckOutDate: argString(args, "check_out_date"),
			}

			var hotels []itinerary.Hotel
			if p.Hotels != nil {
				var err error
				hotels, err = p.Hotels.Search(ctx, q)
				if err != nil {
					logger.Warn("hotel search failed, serving fallback", "destination", q.Destination, "error", err)
				}
			}
			if len(hotels) == 0 {
				hotels = []itinerary.Hotel{mockHotel(q.Destination)}
			}
			return toolJSON(toolResult{Status: "success", Data: map[string]any{"hotels": hotels}}), nil
		},
	})

	return tools
}

// RosterToolNames returns a registry carrying the tool names the default
// roster references, for validating the roster at wiring time.
func RosterToolNames() *agent.ToolRegistry {
	noop := func(_ context.Context, _ map[string]any) (string, error) {
		return "", fmt.Errorf("prototype tool is not executable")
	}
	tools := agent.NewToolRegistry()
	for _, name := range []string{
		agent.ToolListCalendars,
		agent.ToolGetCalendarEvents,
		agent.ToolSearchFlights,
		agent.ToolSearchHotels,
	} {
		tools.Register(&agent.Tool{Name: name, Handler: noop})
	}
	return tools
}
