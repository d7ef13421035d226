package translation

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"virtual-doctor/internal/platform/monitoring"
	"virtual-doctor/internal/platform/tracking"
)

// AutoSource asks the backend to work out the source language itself.
const AutoSource = "auto"

// Backend performs one translation attempt.
type Backend interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Gateway wraps a Backend with a two step fallback chain. It never fails:
// when both attempts come back empty or with an error the input is returned
// unchanged.
type Gateway struct {
	backend Backend
	logger  *zap.SugaredLogger
}

func NewGateway(backend Backend, logger *zap.SugaredLogger) *Gateway {
	return &Gateway{backend: backend, logger: logger}
}

func (g *Gateway) Translate(ctx context.Context, text, source, target string) string {
	if text == "" || strings.EqualFold(source, target) {
		return text
	}

	if out, ok := g.attempt(ctx, text, source, target); ok {
		return out
	}
	if out, ok := g.attempt(ctx, text, AutoSource, target); ok {
		return out
	}

	monitoring.ObserveBackendCall("translation", monitoring.OutcomeFallback, time.Time{})
	g.logger.Warnw("translation unavailable, passing text through", "source", source, "target", target)
	return text
}

func (g *Gateway) attempt(ctx context.Context, text, source, target string) (string, bool) {
	started := time.Now()
	out, err := g.backend.Translate(ctx, text, source, target)
	if err != nil {
		monitoring.ObserveBackendCall("translation", monitoring.OutcomeError, started)
		g.logger.Infow("translation attempt failed", "source", source, "target", target, "error", err)
		tracking.CaptureError(err, map[string]interface{}{
			"component": "translation",
			"source":    source,
			"target":    target,
		})
		return "", false
	}
	if strings.TrimSpace(out) == "" {
		monitoring.ObserveBackendCall("translation", monitoring.OutcomeEmpty, started)
		return "", false
	}

	monitoring.ObserveBackendCall("translation", monitoring.OutcomeOK, started)
	return out, true
}
