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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/quorumstep/services/solver/domain"
	"github.com/AleutianAI/quorumstep/services/solver/orchestrator"
	"github.com/AleutianAI/quorumstep/services/solver/proposer"
)

var (
	simTrials   int
	simAccuracy float64
	simDisks    int
	simSeed     int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Measure arbitration reliability against a noisy stand-in proposer",
	Long: "simulate runs repeated full solves against a stand-in proposer that answers\n" +
		"correctly with the given probability and otherwise proposes a random legal\n" +
		"wrong move, then reports wrong acceptances, aborts, and sampling cost.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			completed    int
			aborted      int
			wrongSteps   int
			totalSteps   int
			totalRounds  int
			totalSamples int
		)
		optimal := domain.MinimumSteps(simDisks)

		for trial := 0; trial < simTrials; trial++ {
			prop := proposer.NewNoisyProposer(simAccuracy, simSeed+int64(trial))
			runner := orchestrator.NewRunner(prop, orchestrator.Config{
				K:         cfg.Arbiter.K,
				BatchSize: cfg.Arbiter.RoundBatchSize,
				MaxRounds: cfg.Arbiter.MaxRounds,
				MaxSteps:  4 * optimal,
			}).WithLogger(logger.Logger)

			// A trial that exhausts its step budget counts as aborted; any
			// other error stops the batch.
			result, err := runner.Run(cmd.Context(), domain.Initial(simDisks, 3))
			if err != nil && !errors.Is(err, orchestrator.ErrStepLimit) {
				return err
			}

			// Replay the accepted sequence against the optimal move at each
			// state to count accepted-but-wrong steps.
			state := domain.Initial(simDisks, 3)
			for _, rec := range result.Steps {
				move, perr := domain.ParseMove(rec.Move)
				if perr != nil {
					continue
				}
				if best, ok := proposer.OptimalMove(state); ok && best != move {
					wrongSteps++
				}
				state, _ = state.Apply(move)
				totalRounds += rec.Rounds
				totalSamples += rec.Votes + rec.Discarded
			}
			totalSteps += len(result.Steps)

			if result.Status == orchestrator.StatusCompleted {
				completed++
			} else {
				aborted++
			}
		}

		fmt.Printf("trials=%d disks=%d accuracy=%.2f k=%d batch=%d\n",
			simTrials, simDisks, simAccuracy, cfg.Arbiter.K, cfg.Arbiter.RoundBatchSize)
		fmt.Printf("completed=%d aborted=%d\n", completed, aborted)
		fmt.Printf("steps=%d wrong_accepted=%d (%.3f%%)\n",
			totalSteps, wrongSteps, pct(wrongSteps, totalSteps))
		if totalSteps > 0 {
			fmt.Printf("avg_rounds_per_step=%.2f avg_samples_per_step=%.2f\n",
				float64(totalRounds)/float64(totalSteps),
				float64(totalSamples)/float64(totalSteps))
		}
		return nil
	},
}

func pct(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return 100 * float64(n) / float64(of)
}

func init() {
	simulateCmd.Flags().IntVar(&simTrials, "trials", 100, "number of full solves to simulate")
	simulateCmd.Flags().Float64Var(&simAccuracy, "accuracy", 0.6, "stand-in correct-move probability")
	simulateCmd.Flags().IntVar(&simDisks, "disks", 5, "disk count per trial")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 1, "base RNG seed (trial i uses seed+i)")
}
