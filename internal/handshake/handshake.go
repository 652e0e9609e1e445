package handshake

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/congo-pay/bankcore/internal/payment"
)

const defaultDialTimeout = 5 * time.Second

// TLSChannel completes a TLS handshake with the endpoint registered for a vendor.
type TLSChannel struct {
	endpoints map[string]string
	config    *tls.Config
	timeout   time.Duration
	logger    *slog.Logger
}

// Option customises a TLSChannel.
type Option func(*TLSChannel)

// WithTLSConfig overrides the client TLS configuration, e.g. to pin root CAs.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *TLSChannel) { c.config = cfg }
}

// WithTimeout bounds dial plus handshake.
func WithTimeout(d time.Duration) Option {
	return func(c *TLSChannel) { c.timeout = d }
}

// WithLogger sets the logger used for handshake errors.
func WithLogger(l *slog.Logger) Option {
	return func(c *TLSChannel) { c.logger = l }
}

// NewTLSChannel builds a channel over vendor id to "host:port" endpoints.
func NewTLSChannel(endpoints map[string]string, opts ...Option) *TLSChannel {
	c := &TLSChannel{
		endpoints: make(map[string]string, len(endpoints)),
		config:    &tls.Config{MinVersion: tls.VersionTLS12},
		timeout:   defaultDialTimeout,
	}
	for id, ep := range endpoints {
		c.endpoints[id] = ep
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PerformHandshake dials the vendor endpoint and verifies its certificate chain.
func (c *TLSChannel) PerformHandshake(ctx context.Context, vendorID string) payment.Outcome {
	endpoint, ok := c.endpoints[vendorID]
	if !ok {
		return payment.Fail(fmt.Sprintf("no secure endpoint registered for vendor %s", vendorID))
	}

	host, _, err := net.SplitHostPort(endpoint)
	if err != nil {
		return payment.Fail(fmt.Sprintf("invalid endpoint for vendor %s", vendorID))
	}
	cfg := c.config.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	dialer := &tls.Dialer{Config: cfg}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("tls handshake", slog.String("vendor_id", vendorID), slog.String("endpoint", endpoint), slog.Any("error", err))
		}
		return payment.Fail(fmt.Sprintf("secure handshake with vendor %s failed", vendorID))
	}
	_ = conn.Close()
	return payment.Ok()
}

// Static returns the same outcome for every vendor.
type Static struct {
	Outcome payment.Outcome
}

// PerformHandshake returns s.Outcome.
func (s Static) PerformHandshake(context.Context, string) payment.Outcome {
	return s.Outcome
}
