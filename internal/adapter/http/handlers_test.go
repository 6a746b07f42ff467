package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/catapulthq/catapult/internal/config"
	"github.com/catapulthq/catapult/internal/domain"
	"github.com/catapulthq/catapult/internal/domain/agent"
	"github.com/catapulthq/catapult/internal/domain/itinerary"
	"github.com/catapulthq/catapult/internal/port/llm"
	"github.com/catapulthq/catapult/internal/service"
)

type stubStore struct {
	items []itinerary.Itinerary
}

func (s *stubStore) SaveItinerary(_ context.Context, it *itinerary.Itinerary) error {
	s.items = append(s.items, *it)
	return nil
}

func (s *stubStore) GetItinerary(_ context.Context, id string) (*itinerary.Itinerary, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, fmt.Errorf("itinerary %q: %w", id, domain.ErrNotFound)
}

func (s *stubStore) ListItineraries(_ context.Context, limit int) ([]itinerary.Itinerary, error) {
	if limit > 0 && limit < len(s.items) {
		return s.items[:limit], nil
	}
	return s.items, nil
}

// cannedGateway replies with a fixed script, one reply per completion.
type cannedGateway struct {
	replies []string
	idx     int
}

func (g *cannedGateway) Complete(context.Context, llm.Request) (*llm.Reply, error) {
	if g.idx >= len(g.replies) {
		return &llm.Reply{Content: "out of script"}, nil
	}
	r := &llm.Reply{Content: g.replies[g.idx]}
	g.idx++
	return r, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRouter(t *testing.T, gw llm.Gateway, store *stubStore) chi.Router {
	t.Helper()
	registry, err := agent.NewRegistry(agent.DefaultRoster(), service.RosterToolNames())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	cfg := config.Planner{MaxHops: 20, MaxToolTurns: 4}
	runner := service.NewAgentRunner(gw, cfg.MaxToolTurns, 1, discardLogger(), nil)
	planner := service.NewPlannerService(cfg, runner, registry, service.Providers{}, store, nil, nil, nil, discardLogger())
	direct := service.NewDirectPlanner(service.Providers{}, store, discardLogger())

	r := chi.NewRouter()
	MountRoutes(r, &Handlers{Planner: planner, Direct: direct, Store: store})
	return r
}

func happyScript() []string {
	return []string{
		"<handoff to='Calendar'>Plan a trip to Chicago from New York, starting on 2025-06-15 and ending on 2025-06-18</handoff>",
		"<handoff to='Flights'>Available dates: 2025-06-15 to 2025-06-18, Destination: Chicago.</handoff>",
		"<handoff to='Hotels'>Available dates: 2025-06-15 to 2025-06-18, Best flight: United 515, Dep: 2025-06-15T08:30, Arr: 2025-06-15T10:05, $345.99, Destination: Chicago.</handoff>",
		"<handoff to='TravelAssistant'>Available dates: 2025-06-15 to 2025-06-18, Best flight: United 515, Dep: 2025-06-15T08:30, Arr: 2025-06-15T10:05, $345.99, Best hotel: The Langham Chicago, $389.00/night, 330 N Wabash Ave, Chicago, IL, Destination: Chicago.</handoff>",
		"Your Chicago trip is booked.",
	}
}

const surveyBody = `{"destination":"Chicago","origin":"New York","startDate":"2025-06-15","endDate":"2025-06-18"}`

func TestCreateItinerary(t *testing.T) {
	store := &stubStore{}
	r := testRouter(t, &cannedGateway{replies: happyScript()}, store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/itineraries", strings.NewReader(surveyBody))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result service.PlanResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Itinerary.Status != itinerary.StatusComplete {
		t.Errorf("status = %q", result.Itinerary.Status)
	}
	if result.Itinerary.TotalCost != 1512.99 {
		t.Errorf("total cost = %v", result.Itinerary.TotalCost)
	}
	if len(store.items) != 1 {
		t.Errorf("persisted itineraries = %d", len(store.items))
	}
}

func TestCreateItineraryValidation(t *testing.T) {
	r := testRouter(t, &cannedGateway{}, &stubStore{})

	body := `{"origin":"New York","startDate":"2025-06-15","endDate":"2025-06-18"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/itineraries", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "destination is required") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreateItineraryFailedSession(t *testing.T) {
	gw := &cannedGateway{replies: []string{"<handoff to='GhostAgent'>boo</handoff>"}}
	r := testRouter(t, gw, &stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/itineraries", strings.NewReader(surveyBody))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "unknown_target") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreateItineraryDirect(t *testing.T) {
	r := testRouter(t, &cannedGateway{}, &stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/itineraries/direct", strings.NewReader(surveyBody))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var it itinerary.Itinerary
	if err := json.Unmarshal(rec.Body.Bytes(), &it); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if it.TotalCost != 1512.99 {
		t.Errorf("total cost = %v", it.TotalCost)
	}
	if it.Status != itinerary.StatusComplete {
		t.Errorf("status = %q", it.Status)
	}
}

func TestCreateItineraryFreeTextRequest(t *testing.T) {
	r := testRouter(t, &cannedGateway{}, &stubStore{})

	body := `{"request":"Plan a trip to Chicago from New York, starting on 2025-06-15 and ending on 2025-06-18"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/itineraries/direct", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestGetItinerary(t *testing.T) {
	store := &stubStore{items: []itinerary.Itinerary{{ID: "abc", Destination: "Chicago"}}}
	r := testRouter(t, &cannedGateway{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/itineraries/abc", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/itineraries/missing", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListItineraries(t *testing.T) {
	store := &stubStore{items: []itinerary.Itinerary{{ID: "a"}, {ID: "b"}}}
	r := testRouter(t, &cannedGateway{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/itineraries?limit=1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out struct {
		Itineraries []itinerary.Itinerary `json:"itineraries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Itineraries) != 1 {
		t.Errorf("itineraries = %d, want 1", len(out.Itineraries))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/itineraries?limit=nope", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	r := testRouter(t, &cannedGateway{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
