package account

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Registry owns a set of accounts in creation order and hands out unique ids.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	accounts []*Account
	ids      map[int]struct{}
	next     int
}

// NewRegistry returns an empty registry whose first id is 1.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[int]struct{}), next: 1}
}

// CreateAccount opens an account with the given initial balance and appends it
// to the registry. The initial balance is trusted as given.
func (r *Registry) CreateAccount(initialBalance decimal.Decimal) *Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc := newAccount(r.allocateID(), initialBalance)
	r.accounts = append(r.accounts, acc)
	r.ids[acc.id] = struct{}{}
	return acc
}

// allocateID scans forward from the counter past taken ids and advances the
// counter beyond the chosen one. Callers must hold r.mu.
func (r *Registry) allocateID() int {
	for {
		if _, taken := r.ids[r.next]; !taken {
			break
		}
		r.next++
	}
	id := r.next
	r.next++
	return id
}

// RemoveAccount drops acc from the registry. Unknown accounts are ignored.
func (r *Registry) RemoveAccount(acc *Account) {
	if acc == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, candidate := range r.accounts {
		if candidate == acc {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			delete(r.ids, acc.id)
			return
		}
	}
}

// GetAccountByID returns the account with the given id or ErrAccountNotFound.
func (r *Registry) GetAccountByID(id int) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acc := range r.accounts {
		if acc.id == id {
			return acc, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrAccountNotFound, id)
}

// ListAccounts returns a snapshot of the accounts in creation order. Later
// registry changes are not reflected in the returned slice.
func (r *Registry) ListAccounts() []*Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Account, len(r.accounts))
	copy(out, r.accounts)
	return out
}

// Len reports how many accounts the registry holds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
