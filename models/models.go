package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType identifies the kind of balance-affecting event
type TransactionType string

const (
	TransactionDeposit       TransactionType = "DEPOSIT"
	TransactionWithdrawal    TransactionType = "WITHDRAWAL"
	TransactionTransferOut   TransactionType = "TRANSFER_OUT"
	TransactionTransferIn    TransactionType = "TRANSFER_IN"
	TransactionInterest      TransactionType = "INTEREST"
	TransactionMonthlyCharge TransactionType = "MONTHLY_CHARGE"
)

// AccountType is one of the three products the bank offers
type AccountType string

const (
	AccountSavings  AccountType = "SAVINGS"
	AccountChecking AccountType = "CHECKING"
	AccountCredit   AccountType = "CREDIT"
)

// ParseAccountType matches s against the known account types. The match is case-sensitive.
func ParseAccountType(s string) (AccountType, bool) {
	switch AccountType(s) {
	case AccountSavings, AccountChecking, AccountCredit:
		return AccountType(s), true
	}
	return "", false
}

// Transaction represents one entry of an account's ledger.
// Values are handed out by copy and never modified after they are recorded.
type Transaction struct {
	ID           string          `json:"id"`
	Type         TransactionType `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	CreatedAt    time.Time       `json:"createdAt"`
	Description  string          `json:"description,omitempty"`
}

// now is swapped in tests that need deterministic timestamps.
var now = time.Now

func newTransaction(t TransactionType, amount, balanceAfter decimal.Decimal, at time.Time) Transaction {
	return Transaction{
		ID:           uuid.New().String(),
		Type:         t,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		CreatedAt:    at,
	}
}

func (t Transaction) String() string {
	return fmt.Sprintf("[%s] %s: Amount=%s, Balance=%s",
		t.CreatedAt.Format("2006-01-02 15:04:05"), t.Type, t.Amount.StringFixed(2), t.BalanceAfter.StringFixed(2))
}
