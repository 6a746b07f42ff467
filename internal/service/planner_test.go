package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/catapulthq/catapult/internal/config"
	"github.com/catapulthq/catapult/internal/domain/agent"
	"github.com/catapulthq/catapult/internal/domain/itinerary"
	"github.com/catapulthq/catapult/internal/port/database"
	"github.com/catapulthq/catapult/internal/port/llm"
	"github.com/catapulthq/catapult/internal/port/messagequeue"
)

type memStore struct {
	mu    sync.Mutex
	saved []itinerary.Itinerary
}

func (s *memStore) SaveItinerary(_ context.Context, it *itinerary.Itinerary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, *it)
	return nil
}

func (s *memStore) GetItinerary(context.Context, string) (*itinerary.Itinerary, error) {
	return nil, nil
}

func (s *memStore) ListItineraries(context.Context, int) ([]itinerary.Itinerary, error) {
	return nil, nil
}

var _ database.Store = (*memStore)(nil)

type memQueue struct {
	mu        sync.Mutex
	published []string
}

func (q *memQueue) Publish(_ context.Context, subject string, data []byte) error {
	if err := messagequeue.Validate(subject, data); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, subject)
	return nil
}

func (q *memQueue) Subscribe(context.Context, string, messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *memQueue) Drain() error      { return nil }
func (q *memQueue) Close() error      { return nil }
func (q *memQueue) IsConnected() bool { return true }

var _ messagequeue.Queue = (*memQueue)(nil)

func newTestPlanner(t *testing.T, gw llm.Gateway, cfg config.Planner, store *memStore, queue *memQueue) *PlannerService {
	t.Helper()
	registry, err := agent.NewRegistry(agent.DefaultRoster(), RosterToolNames())
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	runner := NewAgentRunner(gw, cfg.MaxToolTurns, 1, testLogger(), nil)
	var storeIface database.Store
	if store != nil {
		storeIface = store
	}
	var queueIface messagequeue.Queue
	if queue != nil {
		queueIface = queue
	}
	return NewPlannerService(cfg, runner, registry, Providers{}, storeIface, queueIface, nil, nil, testLogger())
}

func TestPlanTripHappyPath(t *testing.T) {
	gw := &scriptedGateway{replies: []llm.Reply{
		{Content: "<handoff to='Calendar'>Plan a trip to Chicago from New York, starting on 2025-06-15 and ending on 2025-06-18</handoff>"},
		{Content: "<handoff to='Flights'>Available dates: 2025-06-15 to 2025-06-18, Destination: Chicago.</handoff>"},
		{Content: "<handoff to='Hotels'>Available dates: 2025-06-15 to 2025-06-18, Best flight: United 515, Dep: 2025-06-15T08:30, Arr: 2025-06-15T10:05, $345.99, Destination: Chicago.</handoff>"},
		{Content: "<handoff to='TravelAssistant'>Available dates: 2025-06-15 to 2025-06-18, Best flight: United 515, Dep: 2025-06-15T08:30, Arr: 2025-06-15T10:05, $345.99, Best hotel: The Langham Chicago, $389.00/night, 330 N Wabash Ave, Chicago, IL, Destination: Chicago.</handoff>"},
		{Content: "Here is your complete trip plan for Chicago, June 15-18."},
	}}
	store := &memStore{}
	queue := &memQueue{}
	svc := newTestPlanner(t, gw, config.Planner{MaxHops: 20, MaxToolTurns: 4}, store, queue)

	result, err := svc.PlanTrip(context.Background(),
		"Plan a trip to Chicago from New York, starting on 2025-06-15 and ending on 2025-06-18")
	if err != nil {
		t.Fatalf("PlanTrip: %v", err)
	}

	if !result.Completed() {
		t.Fatalf("expected completed session, got stopped=%q failure=%q status=%q",
			result.StoppedReason, result.FailureReason, result.Itinerary.Status)
	}
	if result.Hops != 5 {
		t.Errorf("hops = %d, want 5", result.Hops)
	}

	it := result.Itinerary
	if it.Dates.Start != "2025-06-15" || it.Dates.End != "2025-06-18" {
		t.Errorf("dates = %+v", it.Dates)
	}
	if it.Flight == nil || it.Flight.Price != 345.99 {
		t.Errorf("flight = %+v", it.Flight)
	}
	if it.Hotel == nil || it.Hotel.Price != 389.00 {
		t.Errorf("hotel = %+v", it.Hotel)
	}
	if it.Hotel != nil && it.Hotel.Address != "330 N Wabash Ave, Chicago, IL" {
		t.Errorf("hotel address = %q", it.Hotel.Address)
	}
	if it.TotalCost != 1512.99 {
		t.Errorf("total cost = %v, want 1512.99", it.TotalCost)
	}
	if len(it.Activities) != 3 {
		t.Errorf("expected 3 day plans, got %d", len(it.Activities))
	}
	if result.FinalText == "" {
		t.Error("final text is empty")
	}
	if len(result.History) != 5 {
		t.Errorf("history length = %d, want 5", len(result.History))
	}
	if last := result.History[4]; last.Target != "" || last.Agent != agent.NameTravelAssistant {
		t.Errorf("final record = %+v", last)
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected 1 persisted itinerary, got %d", len(store.saved))
	}
	if store.saved[0].Status != itinerary.StatusComplete {
		t.Errorf("persisted status = %q", store.saved[0].Status)
	}

	want := []string{
		messagequeue.SubjectSessionStarted,
		messagequeue.SubjectSessionHandoff,
		messagequeue.SubjectSessionHandoff,
		messagequeue.SubjectSessionHandoff,
		messagequeue.SubjectSessionHandoff,
		messagequeue.SubjectSessionCompleted,
	}
	if len(queue.published) != len(want) {
		t.Fatalf("published subjects = %v", queue.published)
	}
	for i, subj := range want {
		if queue.published[i] != subj {
			t.Errorf("published[%d] = %q, want %q", i, queue.published[i], subj)
		}
	}
}

func TestPlanTripUnknownTarget(t *testing.T) {
	gw := &scriptedGateway{replies: []llm.Reply{
		{Content: "<handoff to='GhostAgent'>check availability</handoff>"},
	}}
	queue := &memQueue{}
	svc := newTestPlanner(t, gw, config.Planner{MaxHops: 20, MaxToolTurns: 4}, nil, queue)

	result, err := svc.PlanTrip(context.Background(), "Plan a trip to Chicago")
	if err != nil {
		t.Fatalf("PlanTrip: %v", err)
	}
	if result.StoppedReason != StoppedError || result.FailureReason != FailureUnknownTarget {
		t.Fatalf("stopped=%q failure=%q", result.StoppedReason, result.FailureReason)
	}
	if result.Itinerary.Status == itinerary.StatusComplete {
		t.Error("failed session must not be complete")
	}
	if queue.published[len(queue.published)-1] != messagequeue.SubjectSessionFailed {
		t.Errorf("last subject = %q", queue.published[len(queue.published)-1])
	}
}

func TestPlanTripForbiddenTarget(t *testing.T) {
	// Calendar's allowed targets do not include Hotels.
	gw := &scriptedGateway{replies: []llm.Reply{
		{Content: "<handoff to='Calendar'>Plan a trip to Chicago</handoff>"},
		{Content: "<handoff to='Hotels'>Available dates: 2025-06-15 to 2025-06-18, Destination: Chicago.</handoff>"},
	}}
	svc := newTestPlanner(t, gw, config.Planner{MaxHops: 20, MaxToolTurns: 4}, nil, nil)

	result, _ := svc.PlanTrip(context.Background(), "Plan a trip to Chicago")
	if result.StoppedReason != StoppedError || result.FailureReason != FailureForbiddenTarget {
		t.Fatalf("stopped=%q failure=%q", result.StoppedReason, result.FailureReason)
	}
	if result.Hops != 2 {
		t.Errorf("hops = %d, want 2", result.Hops)
	}
}

func TestPlanTripMalformedDirective(t *testing.T) {
	gw := &scriptedGateway{replies: []llm.Reply{
		{Content: "<handoff to='Calendar'>never closed"},
	}}
	svc := newTestPlanner(t, gw, config.Planner{MaxHops: 20, MaxToolTurns: 4}, nil, nil)

	result, _ := svc.PlanTrip(context.Background(), "Plan a trip")
	if result.StoppedReason != StoppedError || result.FailureReason != FailureMalformedDirective {
		t.Fatalf("stopped=%q failure=%q", result.StoppedReason, result.FailureReason)
	}
	if result.Itinerary.Status != itinerary.StatusError {
		t.Errorf("status = %q", result.Itinerary.Status)
	}
}

func TestPlanTripAmbiguousDirective(t *testing.T) {
	gw := &scriptedGateway{replies: []llm.Reply{
		{Content: "<handoff to='Calendar'>a</handoff> and <handoff to='Flights'>b</handoff>"},
	}}
	svc := newTestPlanner(t, gw, config.Planner{MaxHops: 20, MaxToolTurns: 4}, nil, nil)

	result, _ := svc.PlanTrip(context.Background(), "Plan a trip")
	if result.FailureReason != FailureAmbiguousDirective {
		t.Fatalf("failure = %q", result.FailureReason)
	}
}

// pingPongGateway cycles control between TravelAssistant and Calendar
// forever, never producing a final response.
type pingPongGateway struct{}

func (pingPongGateway) Complete(_ context.Context, req llm.Request) (*llm.Reply, error) {
	if strings.HasPrefix(req.System, "You are "+agent.NameTravelAssistant) {
		return &llm.Reply{Content: "<handoff to='Calendar'>checking dates</handoff>"}, nil
	}
	return &llm.Reply{Content: "<handoff to='TravelAssistant'>still checking</handoff>"}, nil
}

func TestPlanTripHopBudget(t *testing.T) {
	queue := &memQueue{}
	svc := newTestPlanner(t, pingPongGateway{}, config.Planner{MaxHops: 5, MaxToolTurns: 4}, nil, queue)

	result, _ := svc.PlanTrip(context.Background(), "Plan a trip to Chicago")
	if result.StoppedReason != StoppedMaxHops {
		t.Fatalf("stopped = %q", result.StoppedReason)
	}
	if result.FailureReason != FailureHopBudgetExceeded {
		t.Fatalf("failure = %q", result.FailureReason)
	}
	if result.Hops != 5 {
		t.Errorf("hops = %d, want 5", result.Hops)
	}
	if result.Itinerary.Status == itinerary.StatusComplete {
		t.Error("exhausted session must not be complete")
	}
}

func TestPlanTripNonTerminalFinalDoesNotComplete(t *testing.T) {
	gw := &scriptedGateway{replies: []llm.Reply{
		{Content: "<handoff to='Calendar'>Plan a trip to Chicago</handoff>"},
		{Content: "I could not find any calendars."},
	}}
	svc := newTestPlanner(t, gw, config.Planner{MaxHops: 20, MaxToolTurns: 4}, nil, nil)

	result, _ := svc.PlanTrip(context.Background(), "Plan a trip to Chicago")
	if result.StoppedReason != StoppedCompleted {
		t.Fatalf("stopped = %q", result.StoppedReason)
	}
	if result.Completed() {
		t.Error("session ended by a non-terminal agent must not report complete")
	}
	if result.Itinerary.Status == itinerary.StatusComplete {
		t.Errorf("status = %q", result.Itinerary.Status)
	}
}

// faultAfterGateway hands off once, then fails every completion.
type faultAfterGateway struct {
	calls int
}

func (g *faultAfterGateway) Complete(context.Context, llm.Request) (*llm.Reply, error) {
	g.calls++
	if g.calls == 1 {
		return &llm.Reply{Content: "<handoff to='Calendar'>Plan a trip</handoff>"}, nil
	}
	return nil, context.DeadlineExceeded
}

func TestPlanTripModelErrorIsFinalResponse(t *testing.T) {
	// A provider fault degrades to error text; the loop treats it as a
	// final response from the current agent, not a crash.
	svc := newTestPlanner(t, &faultAfterGateway{}, config.Planner{MaxHops: 20, MaxToolTurns: 4}, nil, nil)

	result, err := svc.PlanTrip(context.Background(), "Plan a trip")
	if err != nil {
		t.Fatalf("PlanTrip: %v", err)
	}
	if result.StoppedReason != StoppedCompleted {
		t.Fatalf("stopped = %q", result.StoppedReason)
	}
	if !strings.HasPrefix(result.FinalText, "Error generating response:") {
		t.Errorf("final text = %q", result.FinalText)
	}
	if result.Completed() {
		t.Error("error-carrying final from a non-terminal agent must not complete")
	}
}
