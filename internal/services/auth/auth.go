// Package auth handles registration, login and session tokens.
package auth

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartinvest/server/internal/domain"
)

// Expected business outcomes surfaced to the API layer.
var (
	ErrUserExists     = errors.New("username already taken")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrUserNotFound   = errors.New("user not found")
)

// Accounts is the persistent account store.
type Accounts interface {
	Get(username string) (domain.Account, bool)
	Put(account domain.Account) error
}

// Service registers users and verifies logins. Sessions are opaque tokens
// held in memory; this is an educational simulator, not a real auth system.
type Service struct {
	accounts       Accounts
	openingBalance decimal.Decimal
	logger         *zap.Logger

	mu     sync.RWMutex
	tokens map[string]string
}

// NewService creates an auth service. New accounts open with openingBalance
// of simulated cash.
func NewService(accounts Accounts, openingBalance decimal.Decimal, logger *zap.Logger) (*Service, error) {
	if accounts == nil {
		return nil, errors.New("accounts store is required")
	}
	if openingBalance.IsNegative() {
		return nil, errors.Errorf("opening balance must not be negative, got %s", openingBalance.String())
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		accounts:       accounts,
		openingBalance: openingBalance,
		logger:         logger,
		tokens:         make(map[string]string),
	}, nil
}

// Register creates a new account with the configured opening balance.
func (s *Service) Register(username, password, email string) (domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Account{}, errors.New("username and password are required")
	}

	if _, exists := s.accounts.Get(username); exists {
		return domain.Account{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Account{}, errors.Wrap(err, "hash password")
	}

	account, err := domain.NewAccount(username, email, string(hash), s.openingBalance)
	if err != nil {
		return domain.Account{}, err
	}

	if err := s.accounts.Put(account); err != nil {
		return domain.Account{}, errors.Wrap(err, "persist account")
	}

	s.logger.Info("user registered",
		zap.String("user", username),
		zap.String("opening_balance", s.openingBalance.String()))

	return account, nil
}

// Login verifies credentials and mints a session token.
func (s *Service) Login(username, password string) (domain.Account, string, error) {
	account, ok := s.accounts.Get(strings.TrimSpace(username))
	if !ok {
		return domain.Account{}, "", ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("failed login attempt", zap.String("user", username))
		return domain.Account{}, "", ErrBadCredentials
	}

	token := uuid.New().String()

	s.mu.Lock()
	s.tokens[token] = account.Username
	s.mu.Unlock()

	s.logger.Info("user logged in", zap.String("user", account.Username))
	return account, token, nil
}

// Authenticate resolves a session token to a username.
func (s *Service) Authenticate(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username, ok := s.tokens[token]
	return username, ok
}

// Logout invalidates a session token.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, token)
}

// Account returns the stored account for the username.
func (s *Service) Account(username string) (domain.Account, error) {
	account, ok := s.accounts.Get(username)
	if !ok {
		return domain.Account{}, ErrUserNotFound
	}
	return account, nil
}
