package language

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"virtual-doctor/internal/platform/monitoring"
	"virtual-doctor/internal/platform/tracking"
)

// minDetectRunes is the shortest trimmed input worth sending to the classifier.
const minDetectRunes = 5

// Backend classifies text. Errors are absorbed by Detector.
type Backend interface {
	Detect(ctx context.Context, text string) (string, error)
}

// Detector guards the backend against inputs it handles badly: very short
// text and single capitalized words, which are usually names.
type Detector struct {
	backend Backend
	logger  *zap.SugaredLogger
}

func NewDetector(backend Backend, logger *zap.SugaredLogger) *Detector {
	return &Detector{backend: backend, logger: logger}
}

// Detect never fails; anything it cannot classify is Baseline.
func (d *Detector) Detect(ctx context.Context, text string) string {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < minDetectRunes {
		return Baseline
	}
	if isSingleCapitalizedWord(trimmed) {
		return Baseline
	}

	started := time.Now()
	code, err := d.backend.Detect(ctx, trimmed)
	if err != nil {
		monitoring.ObserveBackendCall("detection", monitoring.OutcomeFallback, started)
		d.logger.Warnw("language detection failed, using baseline", "error", err)
		tracking.CaptureError(err, map[string]interface{}{"component": "detection"})
		return Baseline
	}
	code = strings.TrimSpace(code)
	if code == "" {
		monitoring.ObserveBackendCall("detection", monitoring.OutcomeEmpty, started)
		return Baseline
	}

	monitoring.ObserveBackendCall("detection", monitoring.OutcomeOK, started)
	return code
}

func isSingleCapitalizedWord(text string) bool {
	fields := strings.Fields(text)
	if len(fields) != 1 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(fields[0])
	return unicode.IsUpper(first)
}
