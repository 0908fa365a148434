package quizgen

import (
	"context"
	"strings"
	"time"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// transientIndicators mark capacity-exhaustion responses worth retrying.
// Substring matching on the error description is a heuristic; keeping it in
// one place makes the rule independently testable and replaceable.
var transientIndicators = []string{"429", "503", "overloaded"}

// classifyModelError reports whether a model call failure is a transient
// overload that deserves a retry. Every other failure class is fatal.
func classifyModelError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, indicator := range transientIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// generateWithRetry calls the model with bounded exponential backoff. Only
// transient overload errors trigger a retry; anything else fails
// immediately. The backoff starts at the configured delay and doubles per
// attempt.
func (g *Generator) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	l := logger.Get()
	delay := g.initialBackoff

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		response, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
			llms.WithTemperature(g.temperature))
		if err == nil {
			return response, nil
		}
		lastErr = err

		if classifyModelError(err) && attempt < g.maxRetries {
			l.Warn("Model overloaded, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", g.maxRetries),
				zap.Duration("delay", delay),
				zap.Error(err))
			g.sleep(delay)
			delay *= 2
			continue
		}

		return "", domain.NewModelError(err)
	}

	return "", domain.NewModelError(lastErr)
}

// defaultSleep is replaced in tests to observe backoff without waiting.
func defaultSleep(d time.Duration) {
	time.Sleep(d)
}
