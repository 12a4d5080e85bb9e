package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhagen/texwatch/internal/tracker"
)

// Exit codes for scripted use.
const (
	exitOK             = 0
	exitPartialFailure = 1
	exitNoProjects     = 3
)

func cycleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cycle",
		Short: "Run one extraction cycle over all projects and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runCycleOnce(cmd)
			if err != nil {
				return err
			}
			if code != exitOK {
				os.Exit(code)
			}
			return nil
		},
	}
}

func runCycleOnce(cmd *cobra.Command) (int, error) {
	app, err := newApp()
	if err != nil {
		return exitOK, err
	}
	defer app.Close()

	ctx := context.Background()
	if err := app.seedProjects(ctx); err != nil {
		return exitOK, fmt.Errorf("seeding projects: %w", err)
	}

	report, err := app.tracker.RunCycle(ctx)
	if err != nil {
		return exitOK, err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return exitOK, err
	}

	switch report.Outcome {
	case tracker.OutcomePartialFailure:
		return exitPartialFailure, nil
	case tracker.OutcomeNoProjects:
		return exitNoProjects, nil
	}
	return exitOK, nil
}
