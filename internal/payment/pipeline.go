package payment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankcore/internal/metrics"
	"github.com/congo-pay/bankcore/internal/notification"
)

// VendorDirectory confirms that a vendor is known and can receive payments.
type VendorDirectory interface {
	EnsureVendorExists(ctx context.Context, vendorID string) Outcome
}

// SecureChannel establishes a secure channel with a vendor.
type SecureChannel interface {
	PerformHandshake(ctx context.Context, vendorID string) Outcome
}

// ConsentService checks that a payer agreed to spend amount.
type ConsentService interface {
	VerifyUserConsent(ctx context.Context, payerID string, amount decimal.Decimal) Outcome
}

// Pipeline runs validation and the three capability checks in order,
// returning the first failure unchanged.
type Pipeline struct {
	validator Validator
	vendors   VendorDirectory
	channel   SecureChannel
	consent   ConsentService
	notifier  notification.Notifier
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithNotifier sets the sink for confirmation events.
func WithNotifier(n notification.Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = r }
}

// NewPipeline wires the capabilities into a pipeline. None of them may be nil.
func NewPipeline(validator Validator, vendors VendorDirectory, channel SecureChannel, consent ConsentService, opts ...Option) (*Pipeline, error) {
	if vendors == nil || channel == nil || consent == nil {
		return nil, fmt.Errorf("vendor directory, secure channel and consent service are required")
	}
	p := &Pipeline{
		validator: validator,
		vendors:   vendors,
		channel:   channel,
		consent:   consent,
		metrics:   metrics.NoOp{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p, nil
}

// ProcessPayment runs every stage once, stopping at the first failure.
// A confirmation event is sent only when all stages pass; its delivery does
// not affect the returned outcome.
func (p *Pipeline) ProcessPayment(ctx context.Context, payerID, vendorID string, amount decimal.Decimal) Outcome {
	if out := p.validator.Validate(payerID, vendorID, amount); !out.Success {
		return p.fail(StageValidateInput, out, payerID, vendorID)
	}
	if out := p.vendors.EnsureVendorExists(ctx, vendorID); !out.Success {
		return p.fail(StageVendorExists, out, payerID, vendorID)
	}
	if out := p.channel.PerformHandshake(ctx, vendorID); !out.Success {
		return p.fail(StageSecureHandshake, out, payerID, vendorID)
	}
	if out := p.consent.VerifyUserConsent(ctx, payerID, amount); !out.Success {
		return p.fail(StageUserConsent, out, payerID, vendorID)
	}

	p.metrics.RecordPayment(string(StageSucceeded), true)
	p.confirm(ctx, payerID, vendorID, amount)
	return Ok()
}

func (p *Pipeline) fail(stage Stage, out Outcome, payerID, vendorID string) Outcome {
	out.Success = false
	out.Stage = stage
	p.metrics.RecordPayment(string(stage), false)
	p.logger.Info("payment rejected",
		slog.String("stage", string(stage)),
		slog.String("payer_id", payerID),
		slog.String("vendor_id", vendorID),
		slog.String("reason", out.ErrorMessage),
	)
	return out
}

func (p *Pipeline) confirm(ctx context.Context, payerID, vendorID string, amount decimal.Decimal) {
	if p.notifier == nil {
		return
	}
	msg := notification.Message{
		ID:          uuid.NewString(),
		Kind:        notification.KindPaymentConfirmed,
		Destination: vendorID,
		Body:        fmt.Sprintf("Payment of %s from %s to %s succeeded.", amount.StringFixed(2), payerID, vendorID),
		Attributes: map[string]string{
			"payer_id":  payerID,
			"vendor_id": vendorID,
			"amount":    amount.String(),
		},
	}
	if err := p.notifier.Send(ctx, msg); err != nil {
		p.logger.Warn("payment confirmation not delivered",
			slog.String("payer_id", payerID),
			slog.String("vendor_id", vendorID),
			slog.Any("error", err),
		)
	}
}
