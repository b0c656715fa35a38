package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteYes bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved document sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions in the backend's order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newBackendClient()
		sessions, err := client.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Print(out.Sessions(sessions))
		return nil
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename SESSION_ID NEW_NAME",
	Short: "Change a session's display name",
	Long: `Changes the collection name shown for a session. The session identifier
itself never changes.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newBackendClient()
		session, err := client.RenameSession(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s renamed to %q\n", session.SessionID, session.CollectionName)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete SESSION_ID",
	Short: "Delete a session and its indexed documents",
	Long: `Deletes a session permanently. There is no undo; the command asks for
confirmation unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		if !deleteYes && !confirm(fmt.Sprintf("Delete session %s and all its documents?", sessionID)) {
			fmt.Println("aborted")
			return nil
		}
		client := newBackendClient()
		if err := client.DeleteSession(cmd.Context(), sessionID); err != nil {
			return err
		}
		fmt.Printf("%s deleted\n", sessionID)
		return nil
	},
}

func init() {
	sessionsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsRenameCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// confirm asks a yes/no question on the terminal, defaulting to no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
