package account

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRegistryStartsEmpty(t *testing.T) {
	reg := NewRegistry()
	if n := len(reg.ListAccounts()); n != 0 {
		t.Fatalf("expected empty registry, got %d accounts", n)
	}
}

func TestCreateAccount(t *testing.T) {
	reg := NewRegistry()
	acc := reg.CreateAccount(decimal.Zero)
	if acc.ID() <= 0 {
		t.Fatalf("expected positive id, got %d", acc.ID())
	}
	if !acc.Balance().IsZero() {
		t.Fatalf("expected zero balance, got %s", acc.Balance())
	}
	list := reg.ListAccounts()
	if len(list) != 1 || list[0] != acc {
		t.Fatalf("expected registry to contain the new account")
	}

	funded := reg.CreateAccount(d("500"))
	if !funded.Balance().Equal(d("500")) {
		t.Fatalf("expected initial balance 500, got %s", funded.Balance())
	}
}

func TestCreateAccountUniqueIDs(t *testing.T) {
	reg := NewRegistry()
	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		acc := reg.CreateAccount(decimal.Zero)
		if seen[acc.ID()] {
			t.Fatalf("duplicate id %d", acc.ID())
		}
		seen[acc.ID()] = true
	}
}

func TestCreateAccountUniqueAfterRemovals(t *testing.T) {
	reg := NewRegistry()
	var accounts []*Account
	for i := 0; i < 10; i++ {
		accounts = append(accounts, reg.CreateAccount(decimal.Zero))
	}
	reg.RemoveAccount(accounts[2])
	reg.RemoveAccount(accounts[7])
	for i := 0; i < 10; i++ {
		reg.CreateAccount(decimal.Zero)
	}

	seen := make(map[int]bool)
	for _, acc := range reg.ListAccounts() {
		if seen[acc.ID()] {
			t.Fatalf("duplicate id %d", acc.ID())
		}
		seen[acc.ID()] = true
	}
	if reg.Len() != 18 {
		t.Fatalf("expected 18 accounts, got %d", reg.Len())
	}
}

func TestAllocateIDSkipsTakenIDs(t *testing.T) {
	reg := NewRegistry()
	first := reg.CreateAccount(decimal.Zero)
	second := reg.CreateAccount(decimal.Zero)

	// Simulate a lagging counter pointing at ids that are still in use.
	reg.next = first.ID()
	third := reg.CreateAccount(decimal.Zero)

	if third.ID() == first.ID() || third.ID() == second.ID() {
		t.Fatalf("allocated taken id %d", third.ID())
	}
	if third.ID() != 3 {
		t.Fatalf("expected id 3, got %d", third.ID())
	}
}

func TestRemoveAccount(t *testing.T) {
	reg := NewRegistry()
	acc := reg.CreateAccount(decimal.Zero)
	other := reg.CreateAccount(decimal.Zero)

	reg.RemoveAccount(acc)

	list := reg.ListAccounts()
	if len(list) != 1 || list[0] != other {
		t.Fatalf("expected only the remaining account, got %d accounts", len(list))
	}
	if _, err := reg.GetAccountByID(acc.ID()); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected not found after removal, got %v", err)
	}
}

func TestRemoveAccountAbsentIsNoop(t *testing.T) {
	reg := NewRegistry()
	reg.CreateAccount(decimal.Zero)

	foreign := NewRegistry().CreateAccount(decimal.Zero)
	reg.RemoveAccount(foreign)
	reg.RemoveAccount(nil)

	if reg.Len() != 1 {
		t.Fatalf("expected 1 account, got %d", reg.Len())
	}
}

func TestGetAccountByID(t *testing.T) {
	reg := NewRegistry()
	acc := reg.CreateAccount(decimal.Zero)

	got, err := reg.GetAccountByID(acc.ID())
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got != acc {
		t.Fatalf("expected same account instance")
	}
}

func TestGetAccountByUnknownID(t *testing.T) {
	reg := NewRegistry()
	acc := reg.CreateAccount(decimal.Zero)

	for _, id := range []int{acc.ID() + 1, -1, 0, math.MaxInt32} {
		if _, err := reg.GetAccountByID(id); !errors.Is(err, ErrAccountNotFound) {
			t.Fatalf("id %d: expected not found, got %v", id, err)
		}
	}
}

func TestListAccountsIsSnapshot(t *testing.T) {
	reg := NewRegistry()
	first := reg.CreateAccount(decimal.Zero)
	snapshot := reg.ListAccounts()

	reg.CreateAccount(decimal.Zero)
	reg.RemoveAccount(first)

	if len(snapshot) != 1 || snapshot[0] != first {
		t.Fatalf("snapshot mutated by later registry changes")
	}
}

func TestConcurrentCreateUniqueIDs(t *testing.T) {
	reg := NewRegistry()
	const workers = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				acc := reg.CreateAccount(decimal.Zero)
				if j%3 == 0 {
					reg.RemoveAccount(acc)
				}
			}
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	for _, acc := range reg.ListAccounts() {
		if seen[acc.ID()] {
			t.Fatalf("duplicate id %d under concurrency", acc.ID())
		}
		seen[acc.ID()] = true
	}
}
