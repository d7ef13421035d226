package tracking

import (
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// releasePrefix names the application in Sentry release tags.
const releasePrefix = "virtual-doctor@"

// Init configures the Sentry client. An empty dsn leaves reporting disabled.
func Init(dsn, environment, version string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          releaseName(version),
		TracesSampleRate: 0.2,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	return nil
}

// releaseName tags version with the application name unless it already is.
func releaseName(version string) string {
	if strings.HasPrefix(version, releasePrefix) {
		return version
	}
	return releasePrefix + version
}

// Flush waits for buffered events before the process exits.
func Flush() {
	sentry.Flush(2 * time.Second)
}

// CaptureError reports an error that was handled locally and not surfaced
// to the user. It is a no-op when Sentry was never initialized.
func CaptureError(err error, extras map[string]interface{}) {
	if err == nil {
		return
	}
	if hub := sentry.CurrentHub(); hub != nil && hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			for k, v := range extras {
				scope.SetExtra(k, v)
			}
			if component, ok := extras["component"].(string); ok {
				scope.SetTag("component", component)
			}
			hub.CaptureException(err)
		})
	}
}
