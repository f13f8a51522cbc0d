package pipeline

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-application-assistant/internal/config"
)

// RunContext carries the per-invocation settings of one run. It is created for a single
// submission and discarded afterwards.
type RunContext struct {
	ID        uuid.UUID
	Started   time.Time
	OutputDir string
	Label     string
	Model     string
	MaxPages  int
	Logger    *zap.Logger
}

// NewRunContext creates a run context from the configuration. The logger is tagged with the run ID.
func NewRunContext(cfg *config.Config, label string, logger *zap.Logger) *RunContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	model := ""
	if cfg.AIEnabled() {
		model = cfg.AI.Provider + "/" + cfg.AI.Model
	}
	return &RunContext{
		ID:        id,
		Started:   time.Now(),
		OutputDir: cfg.Output.Dir,
		Label:     label,
		Model:     model,
		MaxPages:  cfg.MaxPages,
		Logger:    logger.With(zap.String("run_id", id.String())),
	}
}
