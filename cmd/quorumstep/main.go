// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command quorumstep solves long sequential puzzles by majority-arbitrated
// sampling of an unreliable proposer.
//
// # Usage
//
//	# Solve with the configured backend
//	quorumstep solve --config quorumstep.yaml
//
//	# Measure arbitration reliability against a noisy stand-in
//	quorumstep simulate --trials 100 --accuracy 0.6
//
// # Environment Variables
//
//   - OPENAI_API_KEY: API key for the openai proposer backend.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/quorumstep/cmd/quorumstep/config"
	"github.com/AleutianAI/quorumstep/pkg/logging"
)

var (
	cfgPath string
	cfg     config.Config
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "quorumstep",
	Short: "Arbitrated step-by-step puzzle solver",
	Long: "quorumstep drives a long sequential puzzle by sampling an unreliable\n" +
		"proposer redundantly, red-flagging suspicious candidates, and accepting a\n" +
		"move only once it leads the runner-up by a configured vote margin.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger = logging.New(logging.Config{
			Level:   logging.ParseLevel(cfg.Logging.Level),
			Service: "quorumstep",
			JSON:    cfg.Logging.JSON,
			LogDir:  cfg.Logging.Dir,
		})
		slog.SetDefault(logger.Logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to yaml config (defaults apply when empty)")
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(simulateCmd)
}
