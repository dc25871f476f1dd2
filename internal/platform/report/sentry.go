package report

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/getsentry/sentry-go"
)

// Setup initialises the Sentry client. An empty DSN leaves reporting disabled.
func Setup(dsn, env, version string) error {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          "mappy@" + version,
		EnableTracing:    true,
		TracesSampleRate: 0.2,
	}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("go_version", runtime.Version())
		scope.SetContext("host_info", map[string]interface{}{
			"hostname": hostname(),
		})
	})
	return nil
}

func Flush() {
	sentry.Flush(2 * time.Second)
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

// ReportError sends err to Sentry with optional tags. Nil errors are ignored.
func ReportError(err error, tags map[string]string) {
	if err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		scope.SetLevel(sentry.LevelError)
		sentry.CaptureException(err)
	})
}
