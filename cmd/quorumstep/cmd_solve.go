// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/quorumstep/services/solver/domain"
	"github.com/AleutianAI/quorumstep/services/solver/observability"
	"github.com/AleutianAI/quorumstep/services/solver/orchestrator"
	"github.com/AleutianAI/quorumstep/services/solver/proposer"
)

var solveDisks int

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run the solver against the configured proposer backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		disks := cfg.Puzzle.Disks
		if solveDisks > 0 {
			disks = solveDisks
		}

		prop, err := buildProposer()
		if err != nil {
			return err
		}

		registry := prometheus.NewRegistry()
		metrics := observability.NewSolverMetrics(registry)
		if cfg.MetricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			go func() {
				if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
					slog.Warn("metrics listener stopped", "error", err)
				}
			}()
		}

		runner := orchestrator.NewRunner(prop, orchestrator.Config{
			K:                cfg.Arbiter.K,
			BatchSize:        cfg.Arbiter.RoundBatchSize,
			MaxRounds:        cfg.Arbiter.MaxRounds,
			ProposalTimeout:  cfg.Proposer.Timeout,
			RationaleCeiling: cfg.Arbiter.FlagRationaleCeiling,
		}).WithSink(metrics).WithLogger(logger.Logger)

		start := time.Now()
		result, err := runner.Run(cmd.Context(), domain.Initial(disks, cfg.Puzzle.Pegs))
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		switch result.Status {
		case orchestrator.StatusCompleted:
			fmt.Printf("completed: %d steps (optimal %d) in %s\n",
				len(result.Steps), domain.MinimumSteps(disks), time.Since(start).Round(time.Millisecond))
		case orchestrator.StatusAborted:
			fmt.Printf("aborted at step %d; final tally:\n", result.FailedStep)
			for _, vc := range result.FinalTally {
				fmt.Printf("  %-10s %3d votes  (%s)\n", vc.Move, vc.Votes, vc.Fingerprint)
			}
			return fmt.Errorf("run aborted at step %d", result.FailedStep)
		}
		return nil
	},
}

// buildProposer constructs the configured proposal backend.
func buildProposer() (proposer.Proposer, error) {
	switch cfg.Proposer.Backend {
	case "openai":
		return proposer.NewOpenAIProposer(proposer.OpenAIConfig{
			Model:       cfg.Proposer.Model,
			Temperature: cfg.Proposer.Temperature,
			BaseURL:     cfg.Proposer.BaseURL,
		})
	case "stub":
		if cfg.Proposer.StubAccuracy >= 1.0 {
			return proposer.PerfectProposer{}, nil
		}
		return proposer.NewNoisyProposer(cfg.Proposer.StubAccuracy, time.Now().UnixNano()), nil
	default:
		return nil, fmt.Errorf("unknown proposer backend %q", cfg.Proposer.Backend)
	}
}

func init() {
	solveCmd.Flags().IntVar(&solveDisks, "disks", 0, "override the configured disk count")
}
