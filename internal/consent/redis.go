package consent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankcore/internal/payment"
)

const keyPrefix = "consent:v1:"

// RedisGrants stores per-payer spending limits in Redis, optionally expiring.
type RedisGrants struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisGrants builds a Redis grant store. A zero ttl keeps grants until revoked.
func NewRedisGrants(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisGrants {
	return &RedisGrants{client: client, ttl: ttl, logger: logger}
}

// Grant records that payerID consents to payments up to limit.
func (g *RedisGrants) Grant(ctx context.Context, payerID string, limit decimal.Decimal) error {
	if !limit.IsPositive() {
		return fmt.Errorf("consent limit must be positive")
	}
	if err := g.client.Set(ctx, keyPrefix+payerID, limit.String(), g.ttl).Err(); err != nil {
		return fmt.Errorf("store consent: %w", err)
	}
	return nil
}

// Revoke removes any consent for payerID.
func (g *RedisGrants) Revoke(ctx context.Context, payerID string) error {
	if err := g.client.Del(ctx, keyPrefix+payerID).Err(); err != nil {
		return fmt.Errorf("revoke consent: %w", err)
	}
	return nil
}

// VerifyUserConsent succeeds when a stored limit for payerID covers amount.
func (g *RedisGrants) VerifyUserConsent(ctx context.Context, payerID string, amount decimal.Decimal) payment.Outcome {
	raw, err := g.client.Get(ctx, keyPrefix+payerID).Result()
	if errors.Is(err, redis.Nil) {
		return noConsent(payerID)
	}
	if err != nil {
		g.logError(payerID, err)
		return payment.Fail(MsgLookupFailed)
	}
	limit, err := decimal.NewFromString(raw)
	if err != nil {
		g.logError(payerID, err)
		return payment.Fail(MsgLookupFailed)
	}
	return check(payerID, amount, limit, true)
}

func (g *RedisGrants) logError(payerID string, err error) {
	if g.logger == nil {
		return
	}
	g.logger.Error("consent lookup", slog.String("payer_id", payerID), slog.Any("error", err))
}
