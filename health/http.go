package health

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

type reportJSON struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	Checks    []checkJSON `json:"checks"`
}

type checkJSON struct {
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Handler serves the aggregator's report as JSON. Unhealthy reports are
// served with 503; healthy and degraded ones with 200.
func Handler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := agg.Run(r.Context())

		out := reportJSON{
			Status:    report.Status.String(),
			Timestamp: report.Timestamp.UTC().Format(time.RFC3339),
			Checks:    make([]checkJSON, len(report.Checks)),
		}
		for i, c := range report.Checks {
			out.Checks[i] = checkJSON{
				Name:     c.Name,
				Status:   c.Status.String(),
				Message:  c.Message,
				Duration: c.Duration.String(),
				Details:  c.Details,
			}
			if c.Error != nil {
				out.Checks[i].Error = c.Error.Error()
			}
		}

		body, err := sonic.ConfigStd.Marshal(out)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_, _ = w.Write(body)
	}
}
