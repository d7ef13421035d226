package tracking

import (
	"errors"
	"testing"
)

func TestInitWithoutDSNIsDisabled(t *testing.T) {
	if err := Init("", "test", "dev"); err != nil {
		t.Fatalf("expected no error without DSN, got %v", err)
	}
	// Must not panic when no client is bound.
	CaptureError(errors.New("translation failed"), map[string]interface{}{"component": "translation"})
	CaptureError(nil, nil)
}

func TestInitRejectsMalformedDSN(t *testing.T) {
	if err := Init("not a dsn", "test", "dev"); err == nil {
		t.Fatal("expected error for malformed DSN")
	}
}

func TestReleaseName(t *testing.T) {
	tests := map[string]string{
		"1.0.0":                "virtual-doctor@1.0.0",
		"virtual-doctor@1.0.0": "virtual-doctor@1.0.0",
		"dev":                  "virtual-doctor@dev",
	}
	for version, want := range tests {
		if got := releaseName(version); got != want {
			t.Errorf("releaseName(%q): expected %q, got %q", version, want, got)
		}
	}
}
