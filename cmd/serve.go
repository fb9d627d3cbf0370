package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/learning-designer/pkg/config"
	"github.com/nikogura/learning-designer/pkg/intake"
	"github.com/nikogura/learning-designer/pkg/llm"
	"github.com/nikogura/learning-designer/pkg/renderer"
	"github.com/nikogura/learning-designer/pkg/server"
	"github.com/nikogura/learning-designer/pkg/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listenAddr string

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the curriculum builder HTTP API",
	Long: `Run the curriculum builder HTTP API.

Sessions are kept in the backend named by sessions.backend (memory, file or
redis). The server starts without an API key so the intake flow can be
checked, but every generation call fails until one is configured.

Example:
  learning-designer serve
  learning-designer serve --addr :9090
  SESSION_BACKEND=redis REDIS_ADDR=localhost:6379 learning-designer serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if listenAddr != "" {
		cfg.Server.Addr = listenAddr
	}

	err = cfg.Validate()
	if errors.Is(err, config.ErrMissingAPIKey) {
		logger.Warn("no Anthropic API key configured, generation requests will fail")
		err = nil
	}
	if err != nil {
		err = errors.Wrap(err, "invalid configuration")
		return err
	}

	if cfg.LogMode == "production" || cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := session.Open(ctx, cfg.Sessions, logger)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	client := llm.NewClient(cfg, logger)

	srv, err := server.New(server.Deps{
		Config:    cfg,
		Store:     store,
		Extractor: client,
		Generator: client,
		Text:      intake.NewTextExtractor(cfg.Pandoc.Binary),
		Fetch:     intake.FetchNarrative,
		Documents: renderer.NewPandoc(cfg.Pandoc),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	err = srv.Run(ctx)
	return err
}
