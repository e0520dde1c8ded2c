package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	apperrors "github.com/wekeepgrowing/semo-partner/pkg/errors"
)

const namespace = "partner"

var (
	histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
)

// Collector records service metrics in Prometheus. It implements usecase.Metrics.
type Collector struct {
	gatherer       prometheus.Gatherer
	lockWait       *prometheus.HistogramVec
	membershipOps  *prometheus.CounterVec
	cacheRefresh   *prometheus.CounterVec
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewCollector registers the collectors on reg. Collectors already registered
// on reg are reused.
func NewCollector(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Collector {
	c := &Collector{
		gatherer: gatherer,
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lock",
			Name:      "wait_duration_seconds",
			Help:      "Time spent waiting for team and user locks",
			Buckets:   histogramBuckets,
		}, []string{"scope", "acquired"}),
		membershipOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "team",
			Name:      "operations_total",
			Help:      "Team lifecycle and membership operations by result",
		}, []string{"op", "result"}),
		cacheRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recommend",
			Name:      "cache_refresh_total",
			Help:      "Recommendation cache refresh runs by result",
		}, []string{"result"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
	}

	c.lockWait = register(reg, c.lockWait)
	c.membershipOps = register(reg, c.membershipOps)
	c.cacheRefresh = register(reg, c.cacheRefresh)
	c.requestTotal = register(reg, c.requestTotal)
	c.requestLatency = register(reg, c.requestLatency)
	return c
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) T {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return collector
}

func (c *Collector) ObserveLockWait(scope string, wait time.Duration, acquired bool) {
	c.lockWait.WithLabelValues(scope, strconv.FormatBool(acquired)).Observe(wait.Seconds())
}

func (c *Collector) IncMembershipOp(op, result string) {
	c.membershipOps.WithLabelValues(op, result).Inc()
}

func (c *Collector) IncCacheRefresh(result string) {
	c.cacheRefresh.WithLabelValues(result).Inc()
}

// Middleware records count and latency per matched route
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if err != nil {
				// the error handler writes the response after this middleware returns
				var he *echo.HTTPError
				var appErr *apperrors.AppError
				switch {
				case errors.As(err, &he):
					status = he.Code
				case errors.As(err, &appErr):
					status = apperrors.ToHTTPStatus(appErr.Code())
				default:
					status = http.StatusInternalServerError
				}
			}

			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			labels := prometheus.Labels{
				"method": ctx.Request().Method,
				"route":  route,
				"status": strconv.Itoa(status),
			}
			c.requestTotal.With(labels).Inc()
			c.requestLatency.With(labels).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the gathered metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
