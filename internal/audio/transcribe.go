package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"virtual-doctor/internal/agent"
	"virtual-doctor/internal/platform/monitoring"
	"virtual-doctor/internal/platform/tracking"
)

// Sentinel transcripts. They are shown and processed like any other text.
const (
	UnintelligibleText = "Could not understand audio"
	UnavailableText    = "Could not request results"
)

type Kind int

const (
	KindTranscribed Kind = iota
	KindUnintelligible
	KindUnavailable
)

// Transcript is never empty: failures carry the matching sentinel text.
type Transcript struct {
	Text string
	Kind Kind
	Err  error
}

// SpeechBackend is the speech-to-text service.
type SpeechBackend interface {
	Transcribe(ctx context.Context, wavData []byte, language string) (string, error)
}

type Transcriber struct {
	backend SpeechBackend
	tempDir string
	logger  *zap.SugaredLogger
}

// NewTranscriber writes its temporary WAV files to tempDir, or the system
// temp directory when tempDir is empty.
func NewTranscriber(backend SpeechBackend, tempDir string, logger *zap.SugaredLogger) *Transcriber {
	return &Transcriber{backend: backend, tempDir: tempDir, logger: logger}
}

// Transcribe encodes rec as a temporary WAV file and submits it tagged with
// speechCode. The file is removed on every path, after the backend answers.
func (t *Transcriber) Transcribe(ctx context.Context, rec Recording, speechCode string) Transcript {
	f, err := os.CreateTemp(t.tempDir, "capture-*.wav")
	if err != nil {
		return t.encodeFailed(fmt.Errorf("create temp wav: %w", err))
	}
	defer os.Remove(f.Name())

	wavData, err := encode(f, rec)
	if err != nil {
		return t.encodeFailed(err)
	}

	started := time.Now()
	text, err := t.backend.Transcribe(ctx, wavData, speechCode)
	switch {
	case err == nil:
		monitoring.ObserveBackendCall("speech", monitoring.OutcomeOK, started)
		return Transcript{Text: text, Kind: KindTranscribed}
	case errors.Is(err, agent.ErrUnintelligible):
		monitoring.ObserveBackendCall("speech", monitoring.OutcomeEmpty, started)
		t.logger.Infow("speech not understood", "speech_code", speechCode, "seconds", rec.Duration())
		return Transcript{Text: UnintelligibleText, Kind: KindUnintelligible, Err: err}
	default:
		monitoring.ObserveBackendCall("speech", monitoring.OutcomeError, started)
		t.logger.Warnw("speech backend unavailable", "speech_code", speechCode, "error", err)
		tracking.CaptureError(err, map[string]interface{}{"component": "transcription", "speech_code": speechCode})
		return Transcript{Text: UnavailableText, Kind: KindUnavailable, Err: err}
	}
}

func (t *Transcriber) encodeFailed(err error) Transcript {
	t.logger.Errorw("failed to prepare audio for transcription", "error", err)
	tracking.CaptureError(err, map[string]interface{}{"component": "transcription", "stage": "encode"})
	return Transcript{Text: UnavailableText, Kind: KindUnavailable, Err: err}
}

// encode writes rec into f as WAV and returns the file contents.
func encode(f *os.File, rec Recording) ([]byte, error) {
	if err := writeWAV(f, rec.Samples, rec.SampleRate); err != nil {
		f.Close()
		return nil, fmt.Errorf("write temp wav: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp wav: %w", err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		return nil, fmt.Errorf("read temp wav: %w", err)
	}
	return data, nil
}
