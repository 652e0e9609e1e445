package account

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when a deposit or withdrawal amount is zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds occurs when a withdrawal exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidTarget indicates a transfer was requested without a destination account.
	ErrInvalidTarget = errors.New("invalid transfer target")

	// ErrSameAccountTransfer indicates the transfer source and destination are the same account.
	ErrSameAccountTransfer = errors.New("cannot transfer funds to the same account")

	// ErrAccountNotFound is returned when a lookup by id has no match in the registry.
	ErrAccountNotFound = errors.New("account not found")
)

// Account is a balance-bearing entity. The balance is never negative and only
// changes through Deposit, Withdraw and TransferTo.
type Account struct {
	mu      sync.Mutex
	lockSeq uint64
	id      int
	balance decimal.Decimal
}

// nextLockSeq orders mutex acquisition in transfers, including across registries
// where ids may collide.
var nextLockSeq atomic.Uint64

func newAccount(id int, initialBalance decimal.Decimal) *Account {
	return &Account{lockSeq: nextLockSeq.Add(1), id: id, balance: initialBalance}
}

// ID returns the registry-assigned identifier.
func (a *Account) ID() int {
	return a.id
}

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Deposit increases the balance by amount.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if err := checkAmount("deposit", amount); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amount)
	return nil
}

// Withdraw decreases the balance by amount when enough funds are available.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if err := checkAmount("withdraw", amount); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.withdrawLocked(amount)
}

// TransferTo withdraws amount from a and deposits it into target.
//
// The withdrawal and the deposit are two steps with no rollback between them.
// The deposit cannot fail once the withdrawal succeeded because the amount has
// already been checked positive, so both accounts are locked for the duration
// and observers never see one side updated without the other.
func (a *Account) TransferTo(target *Account, amount decimal.Decimal) error {
	if target == nil {
		return ErrInvalidTarget
	}
	if target == a {
		return ErrSameAccountTransfer
	}
	if err := checkAmount("transfer", amount); err != nil {
		return err
	}

	first, second := a, target
	if second.lockSeq < first.lockSeq {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if err := a.withdrawLocked(amount); err != nil {
		return err
	}
	target.balance = target.balance.Add(amount)
	return nil
}

func (a *Account) withdrawLocked(amount decimal.Decimal) error {
	if amount.GreaterThan(a.balance) {
		return ErrInsufficientFunds
	}
	a.balance = a.balance.Sub(amount)
	return nil
}

func checkAmount(op string, amount decimal.Decimal) error {
	switch {
	case amount.IsZero():
		return fmt.Errorf("%w: amount to %s cannot be zero", ErrInvalidAmount, op)
	case amount.IsNegative():
		return fmt.Errorf("%w: amount to %s cannot be negative", ErrInvalidAmount, op)
	}
	return nil
}
