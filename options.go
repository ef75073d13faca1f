package docindex

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientOptions)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientOptions)

func (f optionFunc) apply(o *clientOptions) { f(o) }

type clientOptions struct {
	httpClient *http.Client
	userAgent  string

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithHTTPClient sets the HTTP client used for every request.
// The client imposes no timeout of its own; configure one here or use ctx.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(o *clientOptions) {
		o.httpClient = hc
	})
}

// WithUserAgent overrides the User-Agent header.
// Default: docindex-go/<version>.
func WithUserAgent(ua string) Option {
	return optionFunc(func(o *clientOptions) {
		o.userAgent = ua
	})
}

// WithLogger enables structured logging of every request.
// Failures are logged at Warn, successes at Debug. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *clientOptions) {
		o.logger = l
	})
}

// WithPrometheus registers client metrics (request counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(o *clientOptions) {
		o.metricsReg = reg
	})
}
