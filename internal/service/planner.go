// Package service implements the planning use cases: the handoff
// orchestration loop, the direct (single-shot) planner, and request parsing.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/catapulthq/catapult/internal/adapter/otel"
	"github.com/catapulthq/catapult/internal/adapter/ws"
	"github.com/catapulthq/catapult/internal/config"
	"github.com/catapulthq/catapult/internal/domain/agent"
	"github.com/catapulthq/catapult/internal/domain/itinerary"
	"github.com/catapulthq/catapult/internal/domain/orchestration"
	"github.com/catapulthq/catapult/internal/port/broadcast"
	"github.com/catapulthq/catapult/internal/port/database"
	"github.com/catapulthq/catapult/internal/port/messagequeue"
)

// Reasons a planning session stopped.
const (
	StoppedCompleted = "completed" // an agent produced a final, non-handoff response
	StoppedMaxHops   = "max_hops"  // the hop budget ran out before a final response
	StoppedError     = "error"     // a directive or routing fault ended the session
)

// Failure reasons attached to StoppedError and StoppedMaxHops results.
const (
	FailureMalformedDirective = "malformed_directive"
	FailureAmbiguousDirective = "ambiguous_directive"
	FailureUnknownTarget      = "unknown_target"
	FailureForbiddenTarget    = "forbidden_target"
	FailureHopBudgetExceeded  = "hop_budget_exceeded"
)

// PlanResult is the outcome of one planning session. Sessions that fail
// still return a PlanResult, never an error; StoppedReason and
// FailureReason carry the verdict.
type PlanResult struct {
	SessionID     string                        `json:"session_id"`
	Itinerary     itinerary.Itinerary           `json:"itinerary"`
	FinalText     string                        `json:"final_text"`
	History       []orchestration.HandoffRecord `json:"history"`
	Hops          int                           `json:"hops"`
	StoppedReason string                        `json:"stopped_reason"`
	FailureReason string                        `json:"failure_reason,omitempty"`
}

// Completed reports whether the session converged to a complete plan.
func (r *PlanResult) Completed() bool {
	return r.StoppedReason == StoppedCompleted && r.Itinerary.Status == itinerary.StatusComplete
}

// PlannerService drives multi-agent planning sessions. It is the single
// writer of each session's itinerary state; agents only influence the state
// through the directive payloads they emit.
type PlannerService struct {
	cfg         config.Planner
	runner      *AgentRunner
	registry    *agent.Registry
	providers   Providers
	store       database.Store
	queue       messagequeue.Queue
	broadcaster broadcast.Broadcaster
	metrics     *otel.Metrics
	logger      *slog.Logger
}

// NewPlannerService creates a PlannerService. store, queue, broadcaster and
// metrics may each be nil and are then skipped.
func NewPlannerService(
	cfg config.Planner,
	runner *AgentRunner,
	registry *agent.Registry,
	providers Providers,
	store database.Store,
	queue messagequeue.Queue,
	broadcaster broadcast.Broadcaster,
	metrics *otel.Metrics,
	logger *slog.Logger,
) *PlannerService {
	if cfg.MaxHops <= 0 {
		cfg.MaxHops = 20
	}
	return &PlannerService{
		cfg:         cfg,
		runner:      runner,
		registry:    registry,
		providers:   providers,
		store:       store,
		queue:       queue,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger,
	}
}

// PlanTrip runs one planning session for a free-text request. The session
// starts at the terminal agent, follows handoff directives between agents,
// and stops on the first final response, directive fault or exhausted hop
// budget. The returned error is always nil today; failures are reported
// through the PlanResult.
func (s *PlannerService) PlanTrip(ctx context.Context, request string) (*PlanResult, error) {
	sessionID := uuid.NewString()
	ctx, span := otel.StartSessionSpan(ctx, sessionID)
	defer span.End()
	started := time.Now()

	logger := s.logger.With("session_id", sessionID)
	logger.Info("planning session started", "request", request)

	if s.metrics != nil {
		s.metrics.SessionsStarted.Add(ctx, 1)
	}
	s.publish(ctx, messagequeue.SubjectSessionStarted, messagequeue.SessionStartedPayload{
		SessionID: sessionID,
		Request:   request,
	})
	s.broadcast(ctx, ws.EventSessionStarted, ws.SessionStartedEvent{
		SessionID: sessionID,
		Request:   request,
	})

	mgr := itinerary.NewManager(s.registry.Terminal())
	tools := sessionTools(s.providers, mgr, logger)

	result := &PlanResult{SessionID: sessionID}
	current, _ := s.registry.Get(s.registry.Terminal())
	input := request

	for hop := 1; hop <= s.cfg.MaxHops; hop++ {
		result.Hops = hop

		hopCtx := ctx
		var cancel context.CancelFunc
		if s.cfg.HopTimeout > 0 {
			hopCtx, cancel = context.WithTimeout(ctx, s.cfg.HopTimeout)
		}
		hopCtx, hopSpan := otel.StartHopSpan(hopCtx, sessionID, current.Name, hop)

		response := s.runner.Run(hopCtx, current, tools, input)

		hopSpan.End()
		if cancel != nil {
			cancel()
		}

		record := orchestration.HandoffRecord{Hop: hop, Agent: current.Name, Response: response}
		d, err := orchestration.ParseDirective(response)
		if err != nil {
			result.History = append(result.History, record)
			if errors.Is(err, orchestration.ErrNoDirective) {
				s.complete(ctx, mgr, current, response, result, started)
				return result, nil
			}
			reason := FailureMalformedDirective
			if errors.Is(err, orchestration.ErrAmbiguousDirective) {
				reason = FailureAmbiguousDirective
			}
			s.fail(ctx, mgr, current.Name, reason, result, started)
			return result, nil
		}

		record.Target = d.Target
		result.History = append(result.History, record)

		next, ok := s.registry.Get(d.Target)
		if !ok {
			logger.Error("handoff to unknown agent", "from", current.Name, "target", d.Target)
			s.fail(ctx, mgr, current.Name, FailureUnknownTarget, result, started)
			return result, nil
		}
		if !current.CanHandoffTo(d.Target) {
			logger.Error("handoff to forbidden target", "from", current.Name, "target", d.Target)
			s.fail(ctx, mgr, current.Name, FailureForbiddenTarget, result, started)
			return result, nil
		}

		patch := orchestration.ExtractFields(d.Payload)
		if mgr.Snapshot().Status == itinerary.StatusInitial {
			st := itinerary.StatusInProgress
			patch.Status = &st
		}
		mgr.Update(current.Name, patch)

		logger.Info("handoff", "hop", hop, "from", current.Name, "to", next.Name)
		if s.metrics != nil {
			s.metrics.Handoffs.Add(ctx, 1)
		}
		s.publish(ctx, messagequeue.SubjectSessionHandoff, messagequeue.SessionHandoffPayload{
			SessionID: sessionID,
			Hop:       hop,
			From:      current.Name,
			To:        next.Name,
		})
		s.broadcast(ctx, ws.EventSessionHandoff, ws.SessionHandoffEvent{
			SessionID: sessionID,
			Hop:       hop,
			From:      current.Name,
			To:        next.Name,
		})

		current = next
		input = d.Payload
	}

	logger.Error("hop budget exhausted", "max_hops", s.cfg.MaxHops)
	result.Hops = s.cfg.MaxHops
	s.fail(ctx, mgr, current.Name, FailureHopBudgetExceeded, result, started)
	result.StoppedReason = StoppedMaxHops
	return result, nil
}

// complete finalizes a session that ended with a non-handoff response. The
// complete status sticks only when the final agent is the terminal one; the
// manager drops it otherwise.
func (s *PlannerService) complete(ctx context.Context, mgr *itinerary.Manager, final *agent.Agent, response string, result *PlanResult, started time.Time) {
	st := itinerary.StatusComplete
	mgr.Update(final.Name, itinerary.Patch{Status: &st})

	snap := mgr.Snapshot()
	if snap.Status == itinerary.StatusComplete && len(snap.Activities) == 0 && snap.Destination != "" {
		if plans := buildDayPlans(snap.Destination, snap.Dates.Nights()); len(plans) > 0 {
			mgr.Update(final.Name, itinerary.Patch{Activities: plans})
			snap = mgr.Snapshot()
		}
	}

	snap.ID = result.SessionID
	snap.CreatedAt = time.Now().UTC()
	result.Itinerary = snap
	result.FinalText = response
	result.StoppedReason = StoppedCompleted

	if s.store != nil {
		if err := s.store.SaveItinerary(ctx, &snap); err != nil {
			s.logger.Error("persist itinerary failed", "session_id", result.SessionID, "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.SessionsCompleted.Add(ctx, 1)
		s.metrics.SessionDuration.Record(ctx, time.Since(started).Seconds())
		s.metrics.SessionHops.Record(ctx, int64(result.Hops))
	}
	s.publish(ctx, messagequeue.SubjectSessionCompleted, messagequeue.SessionCompletedPayload{
		SessionID: result.SessionID,
		Hops:      result.Hops,
		TotalCost: snap.TotalCost,
	})
	s.broadcast(ctx, ws.EventSessionCompleted, ws.SessionCompletedEvent{
		SessionID: result.SessionID,
		Hops:      result.Hops,
		TotalCost: snap.TotalCost,
	})

	s.logger.Info("planning session completed",
		"session_id", result.SessionID,
		"hops", result.Hops,
		"status", snap.Status,
		"total_cost", snap.TotalCost)
}

func (s *PlannerService) fail(ctx context.Context, mgr *itinerary.Manager, caller, reason string, result *PlanResult, started time.Time) {
	st := itinerary.StatusError
	mgr.Update(caller, itinerary.Patch{Status: &st})

	snap := mgr.Snapshot()
	snap.ID = result.SessionID
	result.Itinerary = snap
	result.StoppedReason = StoppedError
	result.FailureReason = reason

	if s.metrics != nil {
		s.metrics.SessionsFailed.Add(ctx, 1)
		s.metrics.SessionDuration.Record(ctx, time.Since(started).Seconds())
		s.metrics.SessionHops.Record(ctx, int64(result.Hops))
	}
	s.publish(ctx, messagequeue.SubjectSessionFailed, messagequeue.SessionFailedPayload{
		SessionID: result.SessionID,
		Hops:      result.Hops,
		Reason:    reason,
	})
	s.broadcast(ctx, ws.EventSessionFailed, ws.SessionFailedEvent{
		SessionID: result.SessionID,
		Hops:      result.Hops,
		Reason:    reason,
	})

	s.logger.Error("planning session failed",
		"session_id", result.SessionID,
		"hops", result.Hops,
		"reason", reason)
}

func (s *PlannerService) publish(ctx context.Context, subject string, payload any) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal event payload", "subject", subject, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		s.logger.Warn("publish event failed", "subject", subject, "error", err)
	}
}

func (s *PlannerService) broadcast(ctx context.Context, eventType string, payload any) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastEvent(ctx, eventType, payload)
}
