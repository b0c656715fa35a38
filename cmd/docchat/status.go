package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bull/docchat-cli/internal/backend"
)

var statusFollow bool

var statusCmd = &cobra.Command{
	Use:   "status SESSION_ID",
	Short: "Show a session's processing status",
	Long: `Fetches the current pipeline stage for a session. With --follow the status
is re-checked once per poll interval until the pipeline reaches ready or
error, printing a line per change.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusFollow, "follow", "f", false, "poll until a terminal stage")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := newBackendClient()
	sessionID := args[0]

	if !statusFollow {
		status, err := client.Status(cmd.Context(), sessionID)
		if err != nil {
			return err
		}
		fmt.Println(out.StageLine(*status))
		return nil
	}

	final, err := client.PollUntilDone(cmd.Context(), sessionID, func(status backend.ProcessingStatus) {
		fmt.Println(out.StageLine(status))
	})
	if err != nil {
		return err
	}
	fmt.Println(out.StageLine(*final))
	return nil
}
