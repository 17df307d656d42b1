package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"spinsearch/internal/storage"
	"spinsearch/pkg/spinsearch"
)

var runFlags struct {
	specPath string
	storeKind string
	dbPath    string
	runID     string
	resumeID  string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a search run described by a YAML spec",
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.specPath, "config", "", "Path to the run spec YAML (required)")
	f.StringVar(&runFlags.storeKind, "store", storage.DefaultStoreKind(), "Store backend: memory|sqlite")
	f.StringVar(&runFlags.dbPath, "db-path", "spinsearch.db", "SQLite database path")
	f.StringVar(&runFlags.runID, "run-id", "", "Run identifier (generated when empty)")
	f.StringVar(&runFlags.resumeID, "resume", "", "Resume from a stored run's evaluations")

	_ = runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, _ []string) error {
	spec, err := loadRunSpec(runFlags.specPath)
	if err != nil {
		return err
	}
	target, err := spec.buildStructure()
	if err != nil {
		return err
	}
	cfg, err := spec.buildConfig()
	if err != nil {
		return err
	}
	evaluator, err := newCommandEvaluator(spec.Evaluator.Command)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client, err := spinsearch.New(spinsearch.Options{
		StoreKind: runFlags.storeKind,
		DBPath:    runFlags.dbPath,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(cmd.Context(), spinsearch.RunRequest{
		RunID:       runFlags.runID,
		ResumeRunID: runFlags.resumeID,
		Structure:   target,
		Magnitudes:  spec.Magnitudes,
		Evaluator:   evaluator,
		Config:      cfg,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := summary.Result
	fmt.Fprintf(out, "Run:          %s\n", summary.RunID)
	fmt.Fprintf(out, "State:        %s\n", result.State)
	fmt.Fprintf(out, "Generations:  %d\n", result.Generations)
	fmt.Fprintf(out, "Evaluations:  %d ok, %d failed (%d attempts)\n",
		result.Evaluations.Succeeded, result.Evaluations.Failed, result.Evaluations.Attempts)
	if result.Best != nil {
		fmt.Fprintf(out, "Best energy:  %g\n", result.BestEnergy)
		fmt.Fprintf(out, "Best id:      %s\n", result.Best.ID)
		for i, v := range result.Best.Moments {
			fmt.Fprintf(out, "  atom %-3d %10.5f %10.5f %10.5f  |m|=%.4f\n", i, v.X, v.Y, v.Z, v.Norm())
		}
	} else {
		fmt.Fprintln(out, "No configuration was successfully evaluated.")
	}
	return nil
}
