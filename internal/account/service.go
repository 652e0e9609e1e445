package account

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/congo-pay/bankcore/internal/logging"
	"github.com/congo-pay/bankcore/internal/metrics"
)

// Service exposes ledger operations over a registry addressed by account id.
type Service struct {
	registry *Registry
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewService builds an account service. A nil recorder disables metrics.
func NewService(registry *Registry, logger *slog.Logger, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.NoOp{}
	}
	return &Service{registry: registry, logger: logger, metrics: recorder}
}

// Open creates an account with the given initial balance.
func (s *Service) Open(initialBalance decimal.Decimal) *Account {
	acc := s.registry.CreateAccount(initialBalance)
	s.metrics.RecordLedgerOperation("create", nil)
	s.logger.Info("account opened",
		slog.Int("account_id", acc.ID()),
		logging.Amount("balance", initialBalance),
	)
	return acc
}

// Get looks up an account by id.
func (s *Service) Get(id int) (*Account, error) {
	return s.registry.GetAccountByID(id)
}

// List returns the accounts in creation order.
func (s *Service) List() []*Account {
	return s.registry.ListAccounts()
}

// Close removes the account with the given id, if present.
func (s *Service) Close(id int) {
	acc, err := s.registry.GetAccountByID(id)
	if err != nil {
		return
	}
	s.registry.RemoveAccount(acc)
	s.metrics.RecordLedgerOperation("remove", nil)
	s.logger.Info("account closed", slog.Int("account_id", id))
}

// Deposit credits the account with amount.
func (s *Service) Deposit(id int, amount decimal.Decimal) (*Account, error) {
	acc, err := s.registry.GetAccountByID(id)
	if err != nil {
		return nil, err
	}
	err = acc.Deposit(amount)
	s.record("deposit", id, amount, err)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Withdraw debits the account by amount.
func (s *Service) Withdraw(id int, amount decimal.Decimal) (*Account, error) {
	acc, err := s.registry.GetAccountByID(id)
	if err != nil {
		return nil, err
	}
	err = acc.Withdraw(amount)
	s.record("withdraw", id, amount, err)
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Transfer moves amount between two accounts of the registry.
func (s *Service) Transfer(fromID, toID int, amount decimal.Decimal) (from, to *Account, err error) {
	from, err = s.registry.GetAccountByID(fromID)
	if err != nil {
		return nil, nil, err
	}
	to, err = s.registry.GetAccountByID(toID)
	if err != nil {
		return nil, nil, err
	}
	err = from.TransferTo(to, amount)
	s.record("transfer", fromID, amount, err, slog.Int("target_id", toID))
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func (s *Service) record(op string, id int, amount decimal.Decimal, err error, extra ...any) {
	s.metrics.RecordLedgerOperation(op, err)
	attrs := append([]any{
		slog.String("operation", op),
		slog.Int("account_id", id),
		logging.Amount("amount", amount),
	}, extra...)
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		s.logger.Warn("ledger operation rejected", attrs...)
		return
	}
	s.logger.Info("ledger operation applied", attrs...)
}
