package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds is returned when a withdrawal exceeds the cash balance.
var ErrInsufficientFunds = errors.New("insufficient balance")

// Account is a registered user with a simulated cash balance.
type Account struct {
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewAccount creates an account with the given opening balance.
func NewAccount(username, email, passwordHash string, openingBalance decimal.Decimal) (Account, error) {
	if username == "" {
		return Account{}, errors.New("username is required")
	}
	if passwordHash == "" {
		return Account{}, errors.New("password hash is required")
	}
	if openingBalance.IsNegative() {
		return Account{}, errors.Errorf("opening balance must not be negative, got %s", openingBalance.String())
	}

	return Account{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Balance:      openingBalance,
		CreatedAt:    time.Now(),
	}, nil
}

// Deposit credits the cash balance. Non-positive amounts are ignored.
func (a *Account) Deposit(amount decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	a.Balance = a.Balance.Add(amount)
}

// Withdraw debits the cash balance. The balance never goes negative.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("withdrawal amount must be positive, got %s", amount.String())
	}
	if amount.GreaterThan(a.Balance) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}
