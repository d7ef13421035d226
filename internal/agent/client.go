package agent

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrModelNotFound means the configured model or API version is not served by the backend.
	ErrModelNotFound = errors.New("generative model not found")
	// ErrUnintelligible means the speech backend could not make sense of the audio.
	ErrUnintelligible = errors.New("speech not intelligible")
	// ErrEmptyResponse is returned when a backend answers without content.
	ErrEmptyResponse = errors.New("empty response from backend")
)

// GenerativeClient produces a completion for a single prompt.
type GenerativeClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
