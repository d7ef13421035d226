package language

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

type fakeBackend struct {
	code  string
	err   error
	calls int
}

func (f *fakeBackend) Detect(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.code, f.err
}

func TestDetectorGuards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		backend   *fakeBackend
		want      string
		wantCalls int
	}{
		{name: "short input", text: "  hola ", backend: &fakeBackend{code: "es"}, want: "en", wantCalls: 0},
		{name: "single capitalized token", text: "Priyanka", backend: &fakeBackend{code: "hi"}, want: "en", wantCalls: 0},
		{name: "single lowercase token", text: "bonjour", backend: &fakeBackend{code: "fr"}, want: "fr", wantCalls: 1},
		{name: "sentence", text: "J'ai mal à la tête", backend: &fakeBackend{code: "fr"}, want: "fr", wantCalls: 1},
		{name: "backend failure", text: "something long enough", backend: &fakeBackend{err: errors.New("boom")}, want: "en", wantCalls: 1},
		{name: "empty answer", text: "something long enough", backend: &fakeBackend{}, want: "en", wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := NewDetector(tt.backend, zap.NewNop().Sugar())
			if got := d.Detect(context.Background(), tt.text); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if tt.backend.calls != tt.wantCalls {
				t.Errorf("expected %d backend calls, got %d", tt.wantCalls, tt.backend.calls)
			}
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	if got := len(c.Entries()); got != 15 {
		t.Fatalf("expected 15 numbered languages, got %d", got)
	}
	if got := len(c.Additional()); got != 20 {
		t.Fatalf("expected 20 additional languages, got %d", got)
	}

	lang, ok := c.Lookup("6")
	if !ok || lang.Code != "zh-CN" || lang.Name != "Chinese" {
		t.Errorf("unexpected entry for key 6: %+v (found=%v)", lang, ok)
	}
	if _, ok := c.Lookup("16"); ok {
		t.Error("expected key 16 to be unknown")
	}

	lang, ok = c.ByCode("IT")
	if !ok || lang.Name != "Italian" {
		t.Errorf("expected Italian for IT, got %+v (found=%v)", lang, ok)
	}
	if lang.Key != "" {
		t.Errorf("expected additional language without key, got %q", lang.Key)
	}
}

func TestSpeechCode(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	tests := map[string]string{
		"fr":    "fr-FR",
		"pt":    "pt-BR",
		"zh-cn": "zh-CN",
		"tr":    "tr-TR",
		"xx":    DefaultSpeechCode,
		"":      DefaultSpeechCode,
	}
	for code, want := range tests {
		if got := c.SpeechCode(code); got != want {
			t.Errorf("SpeechCode(%q): expected %q, got %q", code, want, got)
		}
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	entries := c.Entries()
	entries[0].Name = "Klingon"
	if lang, _ := c.Lookup("1"); lang.Name != "English" {
		t.Errorf("expected catalog to stay immutable, got %q", lang.Name)
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	logger := zap.NewNop().Sugar()
	dir := t.TempDir()

	valid := filepath.Join(dir, "languages.json")
	content := `{"languages":[{"key":"1","name":"English","code":"en","speech_code":"en-GB"},{"key":"2","name":"Swahili","code":"sw"}],"additional":[{"name":"Yoruba","code":"yo"}]}`
	if err := os.WriteFile(valid, []byte(content), 0o600); err != nil {
		t.Fatalf("write table: %v", err)
	}
	invalid := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(invalid, []byte(`{"languages":[`), 0o600); err != nil {
		t.Fatalf("write table: %v", err)
	}
	duplicate := filepath.Join(dir, "duplicate.json")
	if err := os.WriteFile(duplicate, []byte(`{"languages":[{"key":"1","code":"en"},{"key":"1","code":"fr"}]}`), 0o600); err != nil {
		t.Fatalf("write table: %v", err)
	}

	c := LoadCatalog(valid, logger)
	if got := len(c.Entries()); got != 2 {
		t.Fatalf("expected 2 entries from file, got %d", got)
	}
	if got := c.SpeechCode("en"); got != "en-GB" {
		t.Errorf("expected en-GB, got %q", got)
	}
	if got := c.SpeechCode("sw"); got != DefaultSpeechCode {
		t.Errorf("expected default speech code for sw, got %q", got)
	}
	if _, ok := c.ByCode("yo"); !ok {
		t.Error("expected additional language from file")
	}

	for _, path := range []string{"", filepath.Join(dir, "missing.json"), invalid, duplicate} {
		if got := len(LoadCatalog(path, logger).Entries()); got != 15 {
			t.Errorf("LoadCatalog(%q): expected built-in table, got %d entries", path, got)
		}
	}
}
