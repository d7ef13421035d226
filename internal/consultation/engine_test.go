package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"virtual-doctor/internal/agent"
)

type stubClient struct {
	text    string
	err     error
	prompts []string
}

func (s *stubClient) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.text, s.err
}

func TestAdviseSuccess(t *testing.T) {
	t.Parallel()

	client := &stubClient{text: "Drink water and rest."}
	engine := NewEngine(client, zap.NewNop().Sugar())

	advice := engine.Advise(context.Background(), "headache", nil)
	if advice.Kind != KindNone || advice.Err != nil {
		t.Fatalf("expected success, got kind=%s err=%v", advice.Kind, advice.Err)
	}
	if advice.Text != "Drink water and rest." {
		t.Errorf("expected verbatim text, got %q", advice.Text)
	}
	if len(client.prompts) != 1 {
		t.Fatalf("expected one generation call, got %d", len(client.prompts))
	}
	prompt := client.prompts[0]
	if !strings.Contains(prompt, "The patient has reported the following symptoms: headache") {
		t.Error("expected symptoms in prompt")
	}
	if !strings.Contains(prompt, "Patient history: No previous records") {
		t.Error("expected empty history marker in prompt")
	}
	for _, item := range []string{"1. Possible conditions", "2. Recommendations for home care", "3. Clear advice on when to seek", "4. Any follow-up questions"} {
		if !strings.Contains(prompt, item) {
			t.Errorf("expected prompt to ask for %q", item)
		}
	}
}

func TestAdviseFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantText string
	}{
		{
			name:     "sentinel not found",
			err:      fmt.Errorf("gemini x: %w", agent.ErrModelNotFound),
			wantKind: KindConfiguration,
			wantText: ConfigurationFailureMessage,
		},
		{
			name:     "404 in message",
			err:      errors.New("Error 404, Message: models/gemini-pro is gone"),
			wantKind: KindConfiguration,
			wantText: ConfigurationFailureMessage,
		},
		{
			name:     "not found in message",
			err:      errors.New("publisher model Not Found"),
			wantKind: KindConfiguration,
			wantText: ConfigurationFailureMessage,
		},
		{
			name:     "timeout",
			err:      context.DeadlineExceeded,
			wantKind: KindTransient,
			wantText: "I'm having trouble generating a response. Please try again later. Error: context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := &stubClient{err: tt.err}
			advice := NewEngine(client, zap.NewNop().Sugar()).Advise(context.Background(), "fever", nil)
			if advice.Kind != tt.wantKind {
				t.Errorf("expected kind %s, got %s", tt.wantKind, advice.Kind)
			}
			if advice.Text != tt.wantText {
				t.Errorf("expected text %q, got %q", tt.wantText, advice.Text)
			}
			if !errors.Is(advice.Err, tt.err) {
				t.Errorf("expected cause to be kept, got %v", advice.Err)
			}
			if len(client.prompts) != 1 {
				t.Errorf("expected no retry, got %d calls", len(client.prompts))
			}
		})
	}
}

func TestSummarizeHistory(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", 150)
	history := []Record{
		{Timestamp: "2025-01-01 10:00:00", Symptoms: "oldest", Response: "r0"},
		{Timestamp: "2025-01-02 10:00:00", Symptoms: "cough", Response: long},
		{Timestamp: "2025-01-03 10:00:00", FollowupQuestion: "is it contagious?", FollowupResponse: "Possibly."},
		{Symptoms: "fever"},
	}

	summary := SummarizeHistory(history)
	lines := strings.Split(summary, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 summarized records, got %d: %q", len(lines), summary)
	}
	if strings.Contains(summary, "oldest") {
		t.Error("expected only the three newest records")
	}
	wantFirst := "Date: 2025-01-02 10:00:00, Symptoms: cough, Diagnosis: " + strings.Repeat("é", 100) + "..."
	if lines[0] != wantFirst {
		t.Errorf("expected %q, got %q", wantFirst, lines[0])
	}
	if lines[1] != "Date: 2025-01-03 10:00:00, Follow-up question: is it contagious?, Answer: Possibly...." {
		t.Errorf("unexpected follow-up summary %q", lines[1])
	}
	if lines[2] != "Date: Unknown, Symptoms: fever, Diagnosis: None..." {
		t.Errorf("unexpected defaults summary %q", lines[2])
	}
}

func TestFollowupContext(t *testing.T) {
	t.Parallel()

	got := FollowupContext("headache", "should I take ibuprofen?")
	want := "Previous symptoms: headache\nFollow-up question: should I take ibuprofen?"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	if got := ClassifyError(nil); got != KindNone {
		t.Errorf("expected none for nil, got %s", got)
	}
	if got := ClassifyError(errors.New("connection reset by peer")); got != KindTransient {
		t.Errorf("expected transient, got %s", got)
	}
}
