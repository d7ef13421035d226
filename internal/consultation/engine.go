package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"virtual-doctor/internal/agent"
	"virtual-doctor/internal/platform/monitoring"
	"virtual-doctor/internal/platform/tracking"
)

// Kind classifies how an advice request ended.
type Kind int

const (
	KindNone Kind = iota
	KindTransient
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransient:
		return "transient"
	case KindConfiguration:
		return "configuration"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Advice is always displayable: on failure Text holds the fixed message
// for the failure kind and Err the underlying cause.
type Advice struct {
	Text string
	Kind Kind
	Err  error
}

// GenerativeClient is the part of the generative backend the engine needs.
type GenerativeClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Engine struct {
	client GenerativeClient
	logger *zap.SugaredLogger
}

func NewEngine(client GenerativeClient, logger *zap.SugaredLogger) *Engine {
	return &Engine{client: client, logger: logger}
}

// Advise makes one generation call for symptoms (pivot language) with the
// patient's prior records as context. It does not retry.
func (e *Engine) Advise(ctx context.Context, symptoms string, history []Record) Advice {
	prompt := BuildPrompt(symptoms, history)

	started := time.Now()
	text, err := e.client.Generate(ctx, prompt)
	if err == nil {
		monitoring.ObserveBackendCall("generative", monitoring.OutcomeOK, started)
		return Advice{Text: text, Kind: KindNone}
	}

	monitoring.ObserveBackendCall("generative", monitoring.OutcomeError, started)
	kind := ClassifyError(err)
	e.logger.Errorw("advice generation failed", "kind", kind.String(), "error", err)
	tracking.CaptureError(err, map[string]interface{}{"component": "consultation_engine", "kind": kind.String()})

	if kind == KindConfiguration {
		return Advice{Text: ConfigurationFailureMessage, Kind: kind, Err: err}
	}
	return Advice{Text: fmt.Sprintf(transientFailureFormat, err), Kind: kind, Err: err}
}

// ClassifyError decides whether a generation failure is a configuration
// problem (model or endpoint missing) or worth retrying later.
func ClassifyError(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, agent.ErrModelNotFound) {
		return KindConfiguration
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "404") || strings.Contains(msg, "not found") {
		return KindConfiguration
	}
	return KindTransient
}
