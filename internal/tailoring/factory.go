package tailoring

import (
	"go.uber.org/zap"

	"github.com/jonathan/job-application-assistant/internal/llm"
	"github.com/jonathan/job-application-assistant/internal/signals"
)

// Select picks the strategy for a run: AI when a generator is available, heuristic otherwise.
// The AI strategy always carries the heuristic one for fallback.
func Select(gen llm.Generator, m *signals.Matcher, opts Options, logger *zap.Logger) Tailor {
	heuristic := NewHeuristicStrategy(m, opts, logger)
	if gen == nil {
		return heuristic
	}
	return NewAIStrategy(gen, heuristic, logger)
}
