package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-application-assistant/internal/browser"
	"github.com/jonathan/job-application-assistant/internal/config"
	"github.com/jonathan/job-application-assistant/internal/ingestion"
	"github.com/jonathan/job-application-assistant/internal/observability"
	"github.com/jonathan/job-application-assistant/internal/pipeline"
	"github.com/jonathan/job-application-assistant/internal/rendering"
	"github.com/jonathan/job-application-assistant/internal/server"
	"github.com/jonathan/job-application-assistant/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web form and REST API server",
	Long: `Start an HTTP server with a browser form at / and JSON endpoints under /api/v1.

The resume named by RESUME_TXT is used when a request does not include resume text.`,
	RunE: runServe,
}

var (
	servePort      int
	servePDF       bool
	serveCacheTTL  time.Duration
	serveCacheSize int
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on (defaults to PORT)")
	serveCmd.Flags().BoolVar(&servePDF, "pdf", false, "Also print PDFs with headless Chrome")
	serveCmd.Flags().DurationVar(&serveCacheTTL, "cache-ttl", 15*time.Minute, "How long identical submissions reuse a result")
	serveCmd.Flags().IntVar(&serveCacheSize, "cache-size", 128, "Maximum cached results")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(func(cfg *config.Config) {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
	})
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	engine, logger, err := setup(ctx, cfg, metrics)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var resumeText string
	if cfg.Output.Resume != "" {
		resumeText, err = ingestion.ReadResumeFile(cfg.Output.Resume)
		if err != nil {
			return fmt.Errorf("failed to read resume: %w", err)
		}
	} else {
		logger.Warn("no resume configured; requests must include resume_text", zap.String("env", config.EnvResume))
	}

	var printer rendering.PDFPrinter
	if servePDF {
		printer = browser.NewPDFPrinter()
	}

	srv, err := server.New(server.Config{
		App:        cfg,
		Engine:     engine,
		Gateway:    rendering.NewHTMLGateway(cfg.Output.Template, printer, logger),
		Cache:      pipeline.NewCache(serveCacheTTL, serveCacheSize, metrics),
		Metrics:    metrics,
		Limiter:    ratelimit.NewLimiter(ratelimit.LoadConfig(os.Getenv)),
		ResumeText: resumeText,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
