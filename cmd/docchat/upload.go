package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bull/docchat-cli/internal/backend"
)

var uploadSessionID string

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload documents and wait until the session is queryable",
	Long: `Uploads files one at a time, in argument order, then drives the backend's
processing pipeline to completion. Without --session the first upload creates
a new session and the remaining files join it.

If a file fails mid-batch the command stops there: earlier files stay
uploaded server-side and are reported, later files are never attempted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadSessionID, "session", "", "add files to an existing session")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	client := newBackendClient()
	ingestor, err := newIngestor(client)
	if err != nil {
		return err
	}

	progress := func(current, total int, filename string) {
		fmt.Println(out.UploadLine(current, total, filename))
	}
	onStatus := func(status backend.ProcessingStatus) {
		fmt.Println(out.StageLine(status))
	}

	result, err := ingestor.Ingest(cmd.Context(), uploadSessionID, args, progress, onStatus)
	if err != nil {
		return err
	}
	fmt.Println(out.StageLine(result.Status))

	totalChunks := 0
	for _, r := range result.Results {
		totalChunks += r.ChunkCount
	}
	fmt.Println()
	fmt.Printf("Session: %s\n", result.SessionID)
	fmt.Printf("  Files:  %d\n", len(result.Results))
	fmt.Printf("  Chunks: %d\n", totalChunks)
	return nil
}
