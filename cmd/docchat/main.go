// Package main provides the docchat CLI: uploads, pipeline monitoring,
// session management, and question answering against a document-processing
// backend.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bull/docchat-cli/internal/backend"
	"github.com/bull/docchat-cli/internal/config"
	"github.com/bull/docchat-cli/internal/logging"
	"github.com/bull/docchat-cli/internal/render"
)

var (
	cfgFile     string
	plainOutput bool

	cfg    *config.Config
	logger *zap.Logger
	out    *render.Renderer
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents through a processing backend",
	Long: `docchat drives an asynchronous document-ingestion backend: upload files
into a session, watch the processing pipeline, then ask questions against the
indexed content.

Configuration comes from docchat.yaml (or --config) and DOCCHAT_* environment
variables, e.g.:

  DOCCHAT_BACKEND__BASE_URL  Backend address (default: http://localhost:8000)
  DOCCHAT_BACKEND__PROTOCOL  Ingestion contract: "two-stage" or "sync"
  DOCCHAT_LOG__LEVEL         debug, info, warn, error`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: docchat.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "disable colors and markdown styling")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	out = render.New(plainOutput)
	return nil
}

// newBackendClient builds the client all subcommands share.
func newBackendClient() *backend.Client {
	return backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.RequestTimeout()),
		backend.WithPollInterval(cfg.PollInterval()),
		backend.WithLogger(logger))
}

// newIngestor builds the protocol-appropriate ingestor.
func newIngestor(client *backend.Client) (backend.Ingestor, error) {
	return backend.NewIngestor(cfg.Backend.Protocol, client)
}

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
