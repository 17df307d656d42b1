package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"spinsearch/internal/storage"
	"spinsearch/pkg/spinsearch"
)

var inspectFlags struct {
	storeKind string
	dbPath    string
	runID     string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	RunE:  runRuns,
}

var bestCmd = &cobra.Command{
	Use:   "best",
	Short: "Print the best stored configuration of a run as JSON",
	RunE:  runBest,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the best-energy-by-generation trace of a run",
	RunE:  runHistory,
}

func init() {
	for _, cmd := range []*cobra.Command{runsCmd, bestCmd, historyCmd} {
		f := cmd.Flags()
		f.StringVar(&inspectFlags.storeKind, "store", storage.DefaultStoreKind(), "Store backend: memory|sqlite")
		f.StringVar(&inspectFlags.dbPath, "db-path", "spinsearch.db", "SQLite database path")
	}
	bestCmd.Flags().StringVar(&inspectFlags.runID, "run-id", "", "Run identifier (required)")
	historyCmd.Flags().StringVar(&inspectFlags.runID, "run-id", "", "Run identifier (required)")
	_ = bestCmd.MarkFlagRequired("run-id")
	_ = historyCmd.MarkFlagRequired("run-id")
}

func inspectClient() (*spinsearch.Client, error) {
	return spinsearch.New(spinsearch.Options{
		StoreKind: inspectFlags.storeKind,
		DBPath:    inspectFlags.dbPath,
		Logger:    slog.New(slog.NewTextHandler(os.Stderr, nil)),
	})
}

func runRuns(cmd *cobra.Command, _ []string) error {
	client, err := inspectClient()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No stored runs.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(out, "%s  %s  state=%s gen=%d best=%g ok=%d failed=%d seed=%d\n",
			run.ID, run.CreatedAtUTC, run.State, run.Generations, run.BestEnergy, run.Succeeded, run.Failed, run.Seed)
	}
	return nil
}

func runBest(cmd *cobra.Command, _ []string) error {
	client, err := inspectClient()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	best, err := client.BestOf(cmd.Context(), inspectFlags.runID)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(best, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	client, err := inspectClient()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.History(cmd.Context(), inspectFlags.runID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for gen, best := range history {
		fmt.Fprintf(out, "generation %-4d best=%g\n", gen, best)
	}
	return nil
}
