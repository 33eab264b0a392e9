package observe

import "errors"

// Config errors. Validate wraps the one for the first failing field.
var (
	ErrMissingServiceName     = errors.New("observe: service_name is required")
	ErrInvalidSamplePct       = errors.New("observe: tracing.sample_pct must be within [0, 1]")
	ErrInvalidTracingExporter = errors.New("observe: tracing.exporter must be otlp, jaeger, stdout or none")
	ErrInvalidMetricsExporter = errors.New("observe: metrics.exporter must be otlp, prometheus, stdout or none")
	ErrInvalidLogLevel        = errors.New("observe: logging.level must be debug, info, warn or error")
)

// ErrNilObserver is returned by MiddlewareFromObserver for a nil Observer.
var ErrNilObserver = errors.New("observe: nil observer")

// RedactedFields are log field keys whose values are replaced before
// writing. Bearer tokens reach the logs under these names.
var RedactedFields = []string{
	"authorization",
	"bearer",
	"token",
	"token_value",
	"credential",
	"cookie",
	"password",
	"secret",
}
