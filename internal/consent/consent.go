package consent

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankcore/internal/payment"
)

// Messages reported by consent checks.
const (
	MsgLookupFailed = "consent lookup failed"
)

func noConsent(payerID string) payment.Outcome {
	return payment.Fail(fmt.Sprintf("payer %s has not consented to payments", payerID))
}

func overLimit(amount, limit decimal.Decimal) payment.Outcome {
	return payment.Fail(fmt.Sprintf("amount %s exceeds consented limit %s", amount.String(), limit.String()))
}

// check compares amount to a granted spending limit.
func check(payerID string, amount, limit decimal.Decimal, granted bool) payment.Outcome {
	if !granted {
		return noConsent(payerID)
	}
	if amount.GreaterThan(limit) {
		return overLimit(amount, limit)
	}
	return payment.Ok()
}

// MemoryGrants keeps per-payer spending limits in process.
type MemoryGrants struct {
	mu     sync.RWMutex
	limits map[string]decimal.Decimal
}

// NewMemoryGrants returns an empty grant store.
func NewMemoryGrants() *MemoryGrants {
	return &MemoryGrants{limits: make(map[string]decimal.Decimal)}
}

// Grant records that payerID consents to payments up to limit.
func (g *MemoryGrants) Grant(_ context.Context, payerID string, limit decimal.Decimal) error {
	if !limit.IsPositive() {
		return fmt.Errorf("consent limit must be positive")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limits[payerID] = limit
	return nil
}

// Revoke removes any consent for payerID.
func (g *MemoryGrants) Revoke(_ context.Context, payerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.limits, payerID)
	return nil
}

// VerifyUserConsent succeeds when payerID granted a limit of at least amount.
func (g *MemoryGrants) VerifyUserConsent(_ context.Context, payerID string, amount decimal.Decimal) payment.Outcome {
	g.mu.RLock()
	limit, ok := g.limits[payerID]
	g.mu.RUnlock()
	return check(payerID, amount, limit, ok)
}
