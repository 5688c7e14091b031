package services

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"github.com/tiendapos/backend/internal/models"
	"github.com/tiendapos/backend/internal/store"
)

// AccountService is the account ledger: it owns all pending-balance
// mutations. Each charge or payment is an atomic delta applied under the
// customer's entity lock.
type AccountService struct {
	accounts store.AccountRepository
	locker   *entityLocker
}

func NewAccountService(accounts store.AccountRepository) *AccountService {
	return &AccountService{
		accounts: accounts,
		locker:   newEntityLocker(),
	}
}

// Charge adds amount to the customer's balance and returns the new
// balance. The account is created lazily at balance zero on first charge.
func (s *AccountService) Charge(ctx context.Context, customerID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	unlock := s.locker.lock("account:" + customerID)
	defer unlock()

	a, err := s.accounts.LoadAccount(ctx, customerID)
	if err != nil {
		if !errors.Is(err, store.ErrAccountNotFound) {
			return decimal.Zero, &PersistenceError{Op: "load account", Err: err}
		}
		a = &models.PendingAccount{CustomerID: customerID, Balance: decimal.Zero}
	}

	a.Balance = a.Balance.Add(amount)
	if err := s.accounts.SaveAccount(ctx, a); err != nil {
		return decimal.Zero, &PersistenceError{Op: "save account", Err: err}
	}

	log.Printf("[ACCOUNT] Charged %s to %s, balance now %s", amount, customerID, a.Balance)
	return a.Balance, nil
}

// RecordPayment subtracts amount from the customer's balance and returns
// the new balance. The balance is permitted to go negative (customer
// credit); overpayment is accepted rather than rejected.
func (s *AccountService) RecordPayment(ctx context.Context, customerID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	unlock := s.locker.lock("account:" + customerID)
	defer unlock()

	a, err := s.accounts.LoadAccount(ctx, customerID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, &PersistenceError{Op: "load account", Err: err}
	}

	a.Balance = a.Balance.Sub(amount)
	if err := s.accounts.SaveAccount(ctx, a); err != nil {
		return decimal.Zero, &PersistenceError{Op: "save account", Err: err}
	}

	log.Printf("[ACCOUNT] Payment of %s from %s, balance now %s", amount, customerID, a.Balance)
	return a.Balance, nil
}

// GetBalance returns the customer's balance, or zero without error when
// the account has never been created.
func (s *AccountService) GetBalance(ctx context.Context, customerID string) (decimal.Decimal, error) {
	a, err := s.accounts.LoadAccount(ctx, customerID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, &PersistenceError{Op: "load account", Err: err}
	}
	return a.Balance, nil
}

// ListOpenAccounts returns every account with a nonzero balance.
func (s *AccountService) ListOpenAccounts(ctx context.Context) ([]*models.PendingAccount, error) {
	accounts, err := s.accounts.ListOpenAccounts(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list accounts", Err: err}
	}
	return accounts, nil
}
