package advisory

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// Reporter records terminal advisory failures for later inspection.
type Reporter interface {
	Report(ctx context.Context, call string, code FailureCode, err error)
}

// NopReporter discards every report.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(context.Context, string, FailureCode, error) {}

// SentryReporter sends terminal failures to Sentry. It relies on sentry.Init
// having been called; without a client the reports are dropped.
type SentryReporter struct{}

// Report implements Reporter.
func (SentryReporter) Report(ctx context.Context, call string, code FailureCode, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "advisory")
		scope.SetTag("advisory_call", call)
		scope.SetTag("failure_code", string(code))
		hub.CaptureException(err)
	})
}
