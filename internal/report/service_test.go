package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"virtual-doctor/internal/consultation"
)

type fakeTelegram struct {
	chatID   int64
	fileName string
	data     []byte
	messages []string
	err      error
}

func (f *fakeTelegram) SendMessage(chatID int64, text string) error {
	f.chatID = chatID
	f.messages = append(f.messages, text)
	return f.err
}

func (f *fakeTelegram) SendDocument(chatID int64, fileData []byte, fileName string) error {
	f.chatID, f.data, f.fileName = chatID, fileData, fileName
	return f.err
}

func availableFont(t *testing.T) string {
	t.Helper()
	for _, path := range defaultFontPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skip("no DejaVu font installed")
	return ""
}

func sampleSession() Session {
	return Session{
		ID:       "session-1",
		Identity: "Asha_555",
		Patient:  consultation.PatientInfo{Name: "Asha", Age: "34", Gender: "Female", Phone: "555"},
		Language: "fr",
		Records: []consultation.Record{
			{Symptoms: "headache for three days", Response: "Rest.\nSee a doctor if it worsens.", InputMethod: consultation.InputText, Timestamp: "2025-03-14 09:26:53"},
			{FollowupQuestion: "can I take ibuprofen?", FollowupResponse: "Usually yes.", InputMethod: consultation.InputText, Timestamp: "2025-03-14 09:28:10"},
		},
	}
}

func TestSendSessionReportSkipsEmptySession(t *testing.T) {
	t.Parallel()

	tg := &fakeTelegram{}
	svc := NewService(tg, 42, t.TempDir(), "", zap.NewNop().Sugar())
	if err := svc.SendSessionReport(context.Background(), Session{ID: "empty"}); err != nil {
		t.Fatalf("expected no error for empty session, got %v", err)
	}
	if tg.data != nil {
		t.Error("expected nothing to be sent")
	}
}

func TestRenderFailsWithoutFont(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, 0, "", "", zap.NewNop().Sugar())
	svc.fontPaths = []string{filepath.Join(t.TempDir(), "missing.ttf")}

	_, err := svc.Render(sampleSession())
	if err == nil || !strings.Contains(err.Error(), "failed to load font") {
		t.Fatalf("expected font error, got %v", err)
	}
}

func TestSendSessionReportDelivers(t *testing.T) {
	t.Parallel()

	font := availableFont(t)
	dir := t.TempDir()
	tg := &fakeTelegram{}
	svc := NewService(tg, 42, dir, font, zap.NewNop().Sugar())

	if err := svc.SendSessionReport(context.Background(), sampleSession()); err != nil {
		t.Fatalf("SendSessionReport returned error: %v", err)
	}

	written, err := os.ReadFile(filepath.Join(dir, "report_session-1.pdf"))
	if err != nil {
		t.Fatalf("expected report file: %v", err)
	}
	if !bytes.HasPrefix(written, []byte("%PDF")) {
		t.Error("expected a PDF document")
	}
	if tg.chatID != 42 || tg.fileName != "report_session-1.pdf" || !bytes.Equal(tg.data, written) {
		t.Errorf("unexpected telegram delivery: chat=%d file=%q", tg.chatID, tg.fileName)
	}
}

func TestSendSessionReportJoinsErrors(t *testing.T) {
	t.Parallel()

	font := availableFont(t)
	tg := &fakeTelegram{err: errors.New("chat not found")}
	svc := NewService(tg, 42, filepath.Join(t.TempDir(), "missing"), font, zap.NewNop().Sugar())

	err := svc.SendSessionReport(context.Background(), sampleSession())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to write report") || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected both failures in error, got %v", err)
	}
}

func TestSendSessionReportFallsBackToText(t *testing.T) {
	t.Parallel()

	tg := &fakeTelegram{}
	svc := NewService(tg, 42, "", "", zap.NewNop().Sugar())
	svc.fontPaths = []string{filepath.Join(t.TempDir(), "missing.ttf")}

	err := svc.SendSessionReport(context.Background(), sampleSession())
	if err == nil || !strings.Contains(err.Error(), "failed to load font") {
		t.Fatalf("expected render error to be reported, got %v", err)
	}
	if tg.data != nil {
		t.Error("expected no document to be sent")
	}
	if len(tg.messages) != 1 || tg.chatID != 42 {
		t.Fatalf("expected one summary message to chat 42, got %d to %d", len(tg.messages), tg.chatID)
	}
	for _, want := range []string{"session-1", "Asha (Asha_555)", "Symptoms: headache for three days", "Question: can I take ibuprofen?"} {
		if !strings.Contains(tg.messages[0], want) {
			t.Errorf("expected %q in summary, got:\n%s", want, tg.messages[0])
		}
	}
}

func TestSendSessionReportFallbackFailure(t *testing.T) {
	t.Parallel()

	tg := &fakeTelegram{err: errors.New("bot was blocked")}
	svc := NewService(tg, 42, "", "", zap.NewNop().Sugar())
	svc.fontPaths = []string{filepath.Join(t.TempDir(), "missing.ttf")}

	err := svc.SendSessionReport(context.Background(), sampleSession())
	if err == nil || !strings.Contains(err.Error(), "failed to load font") || !strings.Contains(err.Error(), "bot was blocked") {
		t.Fatalf("expected render and send failures, got %v", err)
	}
}

func TestSummaryFitsOneMessage(t *testing.T) {
	t.Parallel()

	sess := sampleSession()
	sess.Records[0].Response = strings.Repeat("Drink water. ", 1000)

	got := Summary(sess)
	if n := len([]rune(got)); n != maxMessageRunes {
		t.Errorf("expected %d runes, got %d", maxMessageRunes, n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected truncated summary to end with an ellipsis")
	}
}
