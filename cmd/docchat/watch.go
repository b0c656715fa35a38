package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bull/docchat-cli/internal/backend"
	"github.com/bull/docchat-cli/internal/watch"
)

var watchSessionID string

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Watch a directory and ingest new files as they appear",
	Long: `Monitors DIR and uploads every new or changed file into one session once
it has settled on disk. Without --session the first file creates the session.
Only extensions listed under watch.extensions in the config are picked up.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchSessionID, "session", "", "ingest into an existing session")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	client := newBackendClient()
	ingestor, err := newIngestor(client)
	if err != nil {
		return err
	}

	w, err := watch.New(ingestor, args[0], watchSessionID,
		watch.WithDebounce(cfg.WatchDebounce()),
		watch.WithExtensions(cfg.Watch.Extensions),
		watch.WithLogger(logger))
	if err != nil {
		return err
	}
	w.OnIngest = func(result *backend.IngestResult) {
		for _, r := range result.Results {
			fmt.Printf("ingested %s (%d chunks) into %s\n",
				r.DocumentName, r.ChunkCount, result.SessionID)
		}
	}
	w.OnError = func(path string, err error) {
		fmt.Printf("failed to ingest %s: %v\n", path, err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	fmt.Printf("Watching %s. Press Ctrl-C to stop.\n", args[0])
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if id := w.SessionID(); id != "" {
		fmt.Printf("session: %s\n", id)
	}
	return nil
}
