package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/bank-ledger/src/internal/domain"
)

// Store keeps accounts, transactions and customers in process memory.
// Values are copied on the way in and out, so callers never share state with the store.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]domain.Account
	txns       []domain.Transaction
	txnNumbers map[string]struct{}
	customers  map[string]domain.Customer
	alerts     map[string]struct{}
}

var (
	_ repo_interfaces.AccountRepository     = (*Store)(nil)
	_ repo_interfaces.TransactionRepository = (*Store)(nil)
	_ repo_interfaces.CustomerRepository    = (*Store)(nil)
	_ repo_interfaces.LedgerCommitter       = (*Store)(nil)
	_ repo_interfaces.AlertRepository       = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		accounts:   make(map[string]domain.Account),
		txnNumbers: make(map[string]struct{}),
		customers:  make(map[string]domain.Customer),
		alerts:     make(map[string]struct{}),
	}
}

func (s *Store) GetByAccountNumber(_ context.Context, accountNumber string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[strings.TrimSpace(accountNumber)]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *Store) GetAllActive(_ context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		if account.IsActive() {
			out = append(out, account.Clone())
		}
	}
	sortAccounts(out)
	return out, nil
}

func (s *Store) GetByCustomerID(_ context.Context, customerID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customerID = strings.TrimSpace(customerID)
	out := make([]domain.Account, 0)
	for _, account := range s.accounts {
		if account.CustomerID == customerID {
			out = append(out, account.Clone())
		}
	}
	sortAccounts(out)
	return out, nil
}

func (s *Store) Upsert(_ context.Context, account domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkVersion(account); err != nil {
		return domain.Account{}, err
	}
	return s.put(account), nil
}

func (s *Store) Remove(_ context.Context, accountNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accountNumber = strings.TrimSpace(accountNumber)
	if _, ok := s.accounts[accountNumber]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(s.accounts, accountNumber)
	return nil
}

func (s *Store) Insert(_ context.Context, txn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTransaction(txn); err != nil {
		return err
	}
	s.appendTransaction(txn)
	return nil
}

func (s *Store) GetByAccount(_ context.Context, accountNumber string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountNumber = strings.TrimSpace(accountNumber)
	out := make([]domain.Transaction, 0)
	for _, txn := range s.txns {
		if txn.Touches(accountNumber) {
			out = append(out, txn)
		}
	}
	domain.SortTransactions(out)
	return out, nil
}

func (s *Store) GetAll(_ context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, len(s.txns))
	copy(out, s.txns)
	domain.SortTransactions(out)
	return out, nil
}

// Commit validates every account version and transaction number before writing anything.
func (s *Store) Commit(_ context.Context, accounts []domain.Account, txns []domain.Transaction) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(txns))
	for _, account := range accounts {
		if err := s.checkVersion(account); err != nil {
			return nil, err
		}
	}
	for _, txn := range txns {
		if err := s.checkTransaction(txn); err != nil {
			return nil, err
		}
		if _, dup := seen[txn.Number()]; dup {
			return nil, fmt.Errorf("transaction %s: %w", txn.Number(), domain.ErrDuplicateRecord)
		}
		seen[txn.Number()] = struct{}{}
	}

	updated := make([]domain.Account, 0, len(accounts))
	for _, account := range accounts {
		updated = append(updated, s.put(account))
	}
	for _, txn := range txns {
		s.appendTransaction(txn)
	}
	return updated, nil
}

func (s *Store) Create(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer.ID = strings.TrimSpace(customer.ID)
	if customer.ID == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer id is required", domain.ErrInvalidArgument)
	}
	if _, exists := s.customers[customer.ID]; exists {
		return domain.Customer{}, fmt.Errorf("customer %s: %w", customer.ID, domain.ErrDuplicateRecord)
	}
	s.customers[customer.ID] = customer
	return customer, nil
}

func (s *Store) GetByID(_ context.Context, id string) (domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[strings.TrimSpace(id)]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func (s *Store) GetTransactionPinHash(ctx context.Context, id string) (string, error) {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return customer.TransactionPinHash, nil
}

func (s *Store) MarkRaised(_ context.Context, key string, _ string, _ time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, raised := s.alerts[key]; raised {
		return false, nil
	}
	s.alerts[key] = struct{}{}
	return true, nil
}

func (s *Store) checkVersion(account domain.Account) error {
	existing, ok := s.accounts[account.AccountNumber]
	if !ok {
		if account.Version != 0 {
			return fmt.Errorf("account %s: %w", account.AccountNumber, domain.ErrAccountNotFound)
		}
		return nil
	}
	if account.Version == 0 {
		return fmt.Errorf("account %s: %w", account.AccountNumber, domain.ErrDuplicateRecord)
	}
	if existing.Version != account.Version {
		return fmt.Errorf("account %s at version %d, stored %d: %w",
			account.AccountNumber, account.Version, existing.Version, domain.ErrConcurrentModification)
	}
	return nil
}

func (s *Store) checkTransaction(txn domain.Transaction) error {
	if txn.Number() == "" {
		return fmt.Errorf("%w: transaction number is required", domain.ErrInvalidArgument)
	}
	if _, exists := s.txnNumbers[txn.Number()]; exists {
		return fmt.Errorf("transaction %s: %w", txn.Number(), domain.ErrDuplicateRecord)
	}
	return nil
}

func (s *Store) put(account domain.Account) domain.Account {
	stored := account.Clone()
	stored.Version = account.Version + 1
	s.accounts[stored.AccountNumber] = stored
	return stored.Clone()
}

func (s *Store) appendTransaction(txn domain.Transaction) {
	s.txns = append(s.txns, txn)
	s.txnNumbers[txn.Number()] = struct{}{}
}

func sortAccounts(accounts []domain.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountNumber < accounts[j].AccountNumber
	})
}
