package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/catapulthq/catapult/internal/adapter/ristretto"
	"github.com/catapulthq/catapult/internal/config"
	"github.com/catapulthq/catapult/internal/domain/agent"
	"github.com/catapulthq/catapult/internal/service"
)

// runPlan executes one planning session from the command line and prints the
// result as JSON. No server, database or queue is involved.
func runPlan(cfg *config.Config, log *slog.Logger, request string, direct bool) error {
	ctx := context.Background()

	cache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	providers, gateway := buildProviders(cfg, log, cache)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if direct {
		planner := service.NewDirectPlanner(providers, nil, log)
		it, err := planner.Generate(ctx, request)
		if err != nil {
			return err
		}
		return enc.Encode(it)
	}

	registry, err := agent.NewRegistry(agent.DefaultRoster(), service.RosterToolNames())
	if err != nil {
		return fmt.Errorf("agent roster: %w", err)
	}
	runner := service.NewAgentRunner(gateway, cfg.Planner.MaxToolTurns, cfg.Planner.Retries, log, nil)
	planner := service.NewPlannerService(cfg.Planner, runner, registry, providers, nil, nil, nil, nil, log)

	result, err := planner.PlanTrip(ctx, request)
	if err != nil {
		return err
	}
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !result.Completed() {
		return fmt.Errorf("session did not complete: %s", result.FailureReason)
	}
	return nil
}
