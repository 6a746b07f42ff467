package http

import (
	"net/http"
	"strconv"

	"github.com/catapulthq/catapult/internal/adapter/ws"
	"github.com/catapulthq/catapult/internal/port/database"
	"github.com/catapulthq/catapult/internal/port/messagequeue"
	"github.com/catapulthq/catapult/internal/service"
)

// Handlers bundles the HTTP handler dependencies.
type Handlers struct {
	Planner *service.PlannerService
	Direct  *service.DirectPlanner
	Store   database.Store
	Queue   messagequeue.Queue
	Hub     *ws.Hub
}

// planRequest is the body for itinerary creation. Clients either fill in the
// survey fields or supply a free-text Request directly.
type planRequest struct {
	service.SurveyRequest
	Request string `json:"request,omitempty"`
}

// requestText resolves the natural-language request for a plan body.
func (h *Handlers) requestText(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, ok := readJSON[planRequest](w, r, maxRequestBodySize)
	if !ok {
		return "", false
	}
	if body.Request != "" {
		return body.Request, true
	}
	if !requireField(w, body.Destination, "destination") ||
		!requireField(w, body.Origin, "origin") ||
		!requireField(w, body.StartDate, "startDate") ||
		!requireField(w, body.EndDate, "endDate") {
		return "", false
	}
	return service.BuildRequest(body.SurveyRequest), true
}

// CreateItinerary handles POST /api/v1/itineraries. It runs a full
// multi-agent planning session and returns the resulting plan.
func (h *Handlers) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	request, ok := h.requestText(w, r)
	if !ok {
		return
	}

	result, err := h.Planner.PlanTrip(r.Context(), request)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if !result.Completed() {
		reason := result.FailureReason
		if reason == "" {
			reason = result.StoppedReason
		}
		writeError(w, http.StatusBadGateway, "planning session failed: "+reason)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// CreateItineraryDirect handles POST /api/v1/itineraries/direct. It builds
// the plan in one pass without the agent loop.
func (h *Handlers) CreateItineraryDirect(w http.ResponseWriter, r *http.Request) {
	request, ok := h.requestText(w, r)
	if !ok {
		return
	}

	it, err := h.Direct.Generate(r.Context(), request)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// ListItineraries handles GET /api/v1/itineraries.
func (h *Handlers) ListItineraries(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	items, err := h.Store.ListItineraries(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err, "itineraries not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"itineraries": items})
}

// GetItinerary handles GET /api/v1/itineraries/{id}.
func (h *Handlers) GetItinerary(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	it, err := h.Store.GetItinerary(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "itinerary not found")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	status := "healthy"
	components := map[string]string{}
	if h.Queue != nil {
		if h.Queue.IsConnected() {
			components["nats"] = "connected"
		} else {
			components["nats"] = "disconnected"
			status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"components": components,
	})
}
