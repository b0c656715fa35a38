package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bull/docchat-cli/internal/backend"
)

var (
	askMaxResults  int
	transcriptPath string
)

var askCmd = &cobra.Command{
	Use:   "ask SESSION_ID QUESTION",
	Short: "Ask one question against a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newBackendClient()
		conv := backend.NewConversation(args[0])
		msg, err := conv.Ask(cmd.Context(), client, args[1], maxResults())
		if err != nil {
			return err
		}
		printAnswer(msg)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat SESSION_ID",
	Short: "Interactive question-answering against a session",
	Long: `Starts a read-eval loop against a session's indexed documents. The
conversation lives in memory only; pass --transcript to write it out as JSON
when the loop ends. Type "exit" or press Ctrl-D to leave.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	askCmd.Flags().IntVarP(&askMaxResults, "max-results", "k", 0, "source-count hint (0: configured default)")
	chatCmd.Flags().IntVarP(&askMaxResults, "max-results", "k", 0, "source-count hint (0: configured default)")
	chatCmd.Flags().StringVar(&transcriptPath, "transcript", "", "write the conversation to this JSON file on exit")
	rootCmd.AddCommand(askCmd, chatCmd)
}

func maxResults() int {
	if askMaxResults > 0 {
		return askMaxResults
	}
	return cfg.Backend.MaxResults
}

func runChat(cmd *cobra.Command, args []string) error {
	client := newBackendClient()
	conv := backend.NewConversation(args[0])

	fmt.Printf("Chatting with session %s. Type \"exit\" to leave.\n\n", conv.SessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "exit" || query == "quit" {
			break
		}

		msg, err := conv.Ask(cmd.Context(), client, query, maxResults())
		if err != nil {
			if errors.Is(err, backend.ErrEmptyQuery) {
				continue
			}
			if errors.Is(err, backend.ErrSessionNotFound) || errors.Is(err, backend.ErrBackendUnreachable) {
				return err
			}
			// Per-question failures keep the loop alive.
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		printAnswer(msg)
	}

	if transcriptPath != "" && len(conv.Messages) > 0 {
		if err := writeTranscript(conv, transcriptPath); err != nil {
			return err
		}
		fmt.Printf("transcript written to %s\n", transcriptPath)
	}
	return scanner.Err()
}

func printAnswer(msg *backend.ChatMessage) {
	fmt.Print(out.Answer(msg))
	resp := backend.QueryResponse{Sources: msg.Sources}
	if err := resp.ValidateSources(); err != nil {
		logger.Warn("backend similarity score contract violation", zap.Error(err))
	}
}

func writeTranscript(conv *backend.Conversation, path string) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
