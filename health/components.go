package health

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jonwraymond/sirenstore/store"
	"github.com/jonwraymond/sirenstore/transport"
)

var validate = validator.New()

func validateConfig(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidThreshold, err)
	}
	return nil
}

// StoreStats is implemented by *store.Store.
type StoreStats interface {
	Stats() store.Stats
}

// StoreCheckerConfig configures StoreChecker.
type StoreCheckerConfig struct {
	// ErrorRatioWarning is the share of error entries that degrades health.
	// Default: 0.1
	ErrorRatioWarning float64 `validate:"gte=0,lte=1"`

	// ErrorRatioCritical is the share of error entries that makes the store
	// unhealthy. It must not be below ErrorRatioWarning.
	// Default: 0.5
	ErrorRatioCritical float64 `validate:"gte=0,lte=1,gtefield=ErrorRatioWarning"`

	// MinEntries is the number of entries below which error ratios are not
	// judged.
	// Default: 10
	MinEntries int `validate:"gte=0"`

	// MaxEntries degrades health when exceeded. The store never evicts, so
	// this is the signal that it is growing without bound.
	// Default: 0 (no limit)
	MaxEntries int `validate:"gte=0"`
}

// StoreChecker reports the health of an entity cache.
type StoreChecker struct {
	source StoreStats
	config StoreCheckerConfig
}

// NewStoreChecker creates a StoreChecker over source.
func NewStoreChecker(source StoreStats, config StoreCheckerConfig) (*StoreChecker, error) {
	if config.ErrorRatioWarning == 0 {
		config.ErrorRatioWarning = 0.1
	}
	if config.ErrorRatioCritical == 0 {
		config.ErrorRatioCritical = 0.5
	}
	if config.MinEntries == 0 {
		config.MinEntries = 10
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &StoreChecker{source: source, config: config}, nil
}

// Name returns "store".
func (c *StoreChecker) Name() string { return "store" }

// Check inspects the store's occupancy.
func (c *StoreChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	st := c.source.Stats()
	var ratio float64
	if st.Entries > 0 {
		ratio = float64(st.Errors) / float64(st.Entries)
	}
	details := map[string]any{
		"entries":                st.Entries,
		"fetching":               st.Fetching,
		"ready":                  st.Ready,
		"errors":                 st.Errors,
		"partitions":             st.Partitions,
		"listeners":              st.Listeners,
		"invalidation_listeners": st.InvalidationListeners,
		"error_ratio":            ratio,
	}

	judged := st.Entries >= c.config.MinEntries
	switch {
	case judged && ratio >= c.config.ErrorRatioCritical:
		return Unhealthy(fmt.Sprintf("%.0f%% of entries failed", ratio*100), ErrCheckFailed).WithDetails(details)
	case judged && ratio >= c.config.ErrorRatioWarning:
		return Degraded(fmt.Sprintf("%.0f%% of entries failed", ratio*100)).WithDetails(details)
	case c.config.MaxEntries > 0 && st.Entries > c.config.MaxEntries:
		return Degraded(fmt.Sprintf("%d entries exceed limit %d", st.Entries, c.config.MaxEntries)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d entries", st.Entries)).WithDetails(details)
}

// QueueBacklog is implemented by *queue.Queue.
type QueueBacklog interface {
	Len() int
}

// QueueCheckerConfig configures QueueChecker.
type QueueCheckerConfig struct {
	// MaxPending is the backlog above which health is degraded.
	// Default: 100
	MaxPending int `validate:"gte=0"`
}

// QueueChecker reports the backlog of an action queue.
type QueueChecker struct {
	queue  QueueBacklog
	config QueueCheckerConfig
}

// NewQueueChecker creates a QueueChecker over q.
func NewQueueChecker(q QueueBacklog, config QueueCheckerConfig) *QueueChecker {
	if config.MaxPending <= 0 {
		config.MaxPending = 100
	}
	return &QueueChecker{queue: q, config: config}
}

// Name returns "action_queue".
func (c *QueueChecker) Name() string { return "action_queue" }

// Check inspects the queue backlog.
func (c *QueueChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	pending := c.queue.Len()
	details := map[string]any{"pending": pending, "max_pending": c.config.MaxPending}
	if pending > c.config.MaxPending {
		return Degraded(fmt.Sprintf("%d actions pending", pending)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d actions pending", pending)).WithDetails(details)
}

// TransportStats is implemented by *transport.HTTP.
type TransportStats interface {
	Stats() transport.Stats
}

// TransportCheckerConfig configures TransportChecker.
type TransportCheckerConfig struct {
	// SaturationWarning is the share of busy request slots that degrades
	// health.
	// Default: 0.9
	SaturationWarning float64 `validate:"gte=0,lte=1"`
}

// TransportChecker reports request slot pressure. Requests rejected since
// the previous check degrade health.
type TransportChecker struct {
	source TransportStats
	config TransportCheckerConfig

	mu           sync.Mutex
	lastRejected int64
}

// NewTransportChecker creates a TransportChecker over source.
func NewTransportChecker(source TransportStats, config TransportCheckerConfig) (*TransportChecker, error) {
	if config.SaturationWarning == 0 {
		config.SaturationWarning = 0.9
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return &TransportChecker{source: source, config: config}, nil
}

// Name returns "transport".
func (c *TransportChecker) Name() string { return "transport" }

// Check inspects the request slots.
func (c *TransportChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	st := c.source.Stats()
	if st.MaxConcurrent == 0 {
		return Healthy("no request limit")
	}

	c.mu.Lock()
	rejected := st.Rejected - c.lastRejected
	c.lastRejected = st.Rejected
	c.mu.Unlock()

	saturation := float64(st.Active) / float64(st.MaxConcurrent)
	details := map[string]any{
		"active":         st.Active,
		"max_active":     st.MaxActive,
		"max_concurrent": st.MaxConcurrent,
		"rejected":       st.Rejected,
		"saturation":     saturation,
	}

	switch {
	case rejected > 0:
		return Degraded(fmt.Sprintf("%d requests rejected since last check", rejected)).WithDetails(details)
	case saturation >= c.config.SaturationWarning:
		return Degraded(fmt.Sprintf("%d of %d request slots busy", st.Active, st.MaxConcurrent)).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d of %d request slots busy", st.Active, st.MaxConcurrent)).WithDetails(details)
}
