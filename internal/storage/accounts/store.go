// Package accounts persists user accounts in a local JSON file.
package accounts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/smartinvest/server/internal/domain"
)

const fileName = "accounts.json"

// Store keeps all registered accounts in memory and persists every change to
// a single JSON file so restarts keep balances.
type Store struct {
	mu       sync.RWMutex
	path     string
	accounts map[string]domain.Account
}

type storedAccount struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Balance      string    `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewStore loads (or initializes) the account file under dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create accounts dir")
	}

	store := &Store{
		path:     filepath.Join(dir, fileName),
		accounts: make(map[string]domain.Account),
	}

	payload, err := os.ReadFile(store.path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read accounts file")
	}

	var stored map[string]storedAccount
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, errors.Wrap(err, "decode accounts file")
	}

	for username, rec := range stored {
		balance, err := decimal.NewFromString(rec.Balance)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid balance for %s", username)
		}
		store.accounts[username] = domain.Account{
			Username:     rec.Username,
			Email:        rec.Email,
			PasswordHash: rec.PasswordHash,
			Balance:      balance,
			CreatedAt:    rec.CreatedAt,
		}
	}

	return store, nil
}

// Get returns the account for the username.
func (s *Store) Get(username string) (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[username]
	return account, ok
}

// Put inserts or replaces an account and persists the change.
func (s *Store) Put(account domain.Account) error {
	if account.Username == "" {
		return errors.New("account username is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[account.Username] = account
	return s.persist()
}

// persist writes the whole account table atomically. Caller holds the lock.
func (s *Store) persist() error {
	stored := make(map[string]storedAccount, len(s.accounts))
	for username, account := range s.accounts {
		stored[username] = storedAccount{
			Username:     account.Username,
			Email:        account.Email,
			PasswordHash: account.PasswordHash,
			Balance:      account.Balance.String(),
			CreatedAt:    account.CreatedAt,
		}
	}

	payload, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal accounts")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write accounts file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist accounts file")
	}
	return nil
}
