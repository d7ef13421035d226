package consultation

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local) }
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, phone, want string
	}{
		{name: "Asha", phone: "555", want: "Asha_555"},
		{name: "Asha", phone: "", want: "Asha_unknown"},
		{name: " Asha ", phone: "  ", want: "Asha_unknown"},
	}
	for _, tt := range tests {
		if got := Identity(tt.name, tt.phone); got != tt.want {
			t.Errorf("Identity(%q, %q): expected %q, got %q", tt.name, tt.phone, tt.want, got)
		}
	}
}

func TestOpenStoreMissingFile(t *testing.T) {
	t.Parallel()

	s := OpenStore(filepath.Join(t.TempDir(), "patient_records.json"), zap.NewNop().Sugar())
	if got := s.History("Asha_555"); len(got) != 0 {
		t.Errorf("expected empty history, got %d records", len(got))
	}
}

func TestOpenStoreCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "patient_records.json")
	if err := os.WriteFile(path, []byte(`{"Asha_555": [`), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	s := OpenStore(path, zap.NewNop().Sugar())
	if got := s.History("Asha_555"); len(got) != 0 {
		t.Errorf("expected empty history for corrupt file, got %d records", len(got))
	}
	if _, err := s.Append(context.Background(), "Asha_555", Record{Symptoms: "fever", InputMethod: InputText}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if got := len(OpenStore(path, zap.NewNop().Sugar()).History("Asha_555")); got != 1 {
		t.Errorf("expected corrupt file to be replaced with 1 record, got %d", got)
	}
}

func TestAppendPersistsAndReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "patient_records.json")
	s := OpenStore(path, zap.NewNop().Sugar(), WithClock(fixedClock()))

	info := &PatientInfo{Name: "Asha", Age: "34", Gender: "Female", Phone: "555"}
	stored, err := s.Append(context.Background(), "Asha_555", Record{
		Symptoms:           "headache",
		OriginalSymptoms:   "mal de tête",
		Response:           "Rest.",
		TranslatedResponse: "Reposez-vous.",
		Language:           "fr",
		PatientInfo:        info,
		InputMethod:        InputText,
	})
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if stored.Timestamp != "2025-03-14 09:26:53" {
		t.Errorf("expected stamped timestamp, got %q", stored.Timestamp)
	}
	if stored.ID == "" {
		t.Error("expected record id to be assigned")
	}

	// The caller's struct must not alias the stored snapshot.
	info.Name = "Changed"

	reloaded := OpenStore(path, zap.NewNop().Sugar())
	history := reloaded.History("Asha_555")
	if len(history) != 1 {
		t.Fatalf("expected 1 record after reload, got %d", len(history))
	}
	got := history[0]
	if got.OriginalSymptoms != "mal de tête" || got.Language != "fr" || got.PatientInfo == nil || got.PatientInfo.Name != "Asha" {
		t.Errorf("unexpected reloaded record: %+v", got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(raw), "mal de tête") {
		t.Error("expected UTF-8 text to be written unescaped")
	}
	if !strings.Contains(string(raw), "\n            \"symptoms\"") {
		t.Error("expected four space indentation")
	}
	var generic map[string][]map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("stored file is not valid JSON: %v", err)
	}
	if _, ok := generic["Asha_555"][0]["followup_question"]; ok {
		t.Error("expected follow-up fields to be omitted from a consultation record")
	}
}

func TestRecentReturnsNewestInOrder(t *testing.T) {
	t.Parallel()

	s := OpenStore(filepath.Join(t.TempDir(), "records.json"), zap.NewNop().Sugar())
	for _, symptom := range []string{"a", "b", "c", "d", "e"} {
		if _, err := s.Append(context.Background(), "p", Record{Symptoms: symptom}); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	recent := s.Recent("p", 3)
	if len(recent) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recent))
	}
	for i, want := range []string{"c", "d", "e"} {
		if recent[i].Symptoms != want {
			t.Errorf("record %d: expected %q, got %q", i, want, recent[i].Symptoms)
		}
	}

	recent[0].Symptoms = "mutated"
	if s.History("p")[2].Symptoms != "c" {
		t.Error("expected Recent to return a copy")
	}
	if got := len(s.History("p")); got != 5 {
		t.Errorf("expected full history of 5, got %d", got)
	}
}

func TestAppendWriteFailureKeepsRecordInMemory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing-dir", "records.json")
	s := OpenStore(path, zap.NewNop().Sugar())

	if _, err := s.Append(context.Background(), "p", Record{Symptoms: "cough"}); err == nil {
		t.Fatal("expected write error for missing directory")
	}
	if got := len(s.History("p")); got != 1 {
		t.Errorf("expected record to stay in memory, got %d", got)
	}
}

func TestAppendKeepsFileMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing os.FileMode
		want     os.FileMode
	}{
		{name: "existing readable file", existing: 0o644, want: 0o644},
		{name: "existing private file", existing: 0o600, want: 0o600},
		{name: "new file", want: defaultFileMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "patient_records.json")
			if tt.existing != 0 {
				if err := os.WriteFile(path, []byte("{}"), tt.existing); err != nil {
					t.Fatalf("write file: %v", err)
				}
				if err := os.Chmod(path, tt.existing); err != nil {
					t.Fatalf("chmod file: %v", err)
				}
			}

			s := OpenStore(path, zap.NewNop().Sugar())
			if _, err := s.Append(context.Background(), "Asha_555", Record{Symptoms: "fever", InputMethod: InputText}); err != nil {
				t.Fatalf("Append returned error: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stat store: %v", err)
			}
			if got := info.Mode().Perm(); got != tt.want {
				t.Errorf("expected mode %v, got %v", tt.want, got)
			}
		})
	}
}

type recordingSink struct {
	identities []string
	err        error
}

func (r *recordingSink) Append(_ context.Context, identity string, _ Record) error {
	r.identities = append(r.identities, identity)
	return r.err
}

func TestSinksReceiveAppendsAndCannotFailThem(t *testing.T) {
	t.Parallel()

	ok := &recordingSink{}
	failing := &recordingSink{err: errors.New("broker down")}
	s := OpenStore(filepath.Join(t.TempDir(), "records.json"), zap.NewNop().Sugar(), WithSink(ok), WithSink(failing))

	if _, err := s.Append(context.Background(), "p", Record{Symptoms: "cough"}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if len(ok.identities) != 1 || len(failing.identities) != 1 {
		t.Errorf("expected both sinks to be called once, got %d and %d", len(ok.identities), len(failing.identities))
	}
}
