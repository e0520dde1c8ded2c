package usecase

import (
	"context"
	"time"

	"github.com/wekeepgrowing/semo-partner/internal/domain/entity"
	"github.com/wekeepgrowing/semo-partner/pkg/messaging"
	"go.uber.org/zap"
)

// Default lock timings
const (
	DefaultLockWait  = 3 * time.Second
	DefaultLockLease = 10 * time.Second

	// DefaultEventChannel is the pub/sub channel team events are published on
	DefaultEventChannel = "partner.team.events"
)

// Metrics records service-level measurements
type Metrics interface {
	ObserveLockWait(scope string, wait time.Duration, acquired bool)
	IncMembershipOp(op, result string)
	IncCacheRefresh(result string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveLockWait(string, time.Duration, bool) {}
func (nopMetrics) IncMembershipOp(string, string)              {}
func (nopMetrics) IncCacheRefresh(string)                      {}

type serviceOptions struct {
	publisher    messaging.Publisher
	eventChannel string
	metrics      Metrics
	now          func() time.Time
	lockWait     time.Duration
	lockLease    time.Duration
}

// Option configures the team services
type Option func(*serviceOptions)

// WithPublisher publishes team events through p
func WithPublisher(p messaging.Publisher, channel string) Option {
	return func(o *serviceOptions) {
		o.publisher = p
		if channel != "" {
			o.eventChannel = channel
		}
	}
}

// WithMetrics records measurements through m
func WithMetrics(m Metrics) Option {
	return func(o *serviceOptions) {
		o.metrics = m
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		o.now = now
	}
}

// WithLockTimings sets how long to wait for a team or user lock and how long it is leased
func WithLockTimings(wait, lease time.Duration) Option {
	return func(o *serviceOptions) {
		if wait > 0 {
			o.lockWait = wait
		}
		if lease > 0 {
			o.lockLease = lease
		}
	}
}

func newServiceOptions(opts []Option) *serviceOptions {
	o := &serviceOptions{
		publisher:    messaging.NopPublisher{},
		eventChannel: DefaultEventChannel,
		metrics:      nopMetrics{},
		now:          func() time.Time { return time.Now().UTC() },
		lockWait:     DefaultLockWait,
		lockLease:    DefaultLockLease,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// publish sends a team event; failures are logged and never fail the operation
func (o *serviceOptions) publish(ctx context.Context, logger *zap.Logger, event entity.TeamEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = o.now()
	}
	if err := o.publisher.Publish(ctx, o.eventChannel, event); err != nil {
		logger.Warn("Failed to publish team event",
			zap.String("type", event.Type),
			zap.Int64("team_id", event.TeamID),
			zap.Error(err))
	}
}
