package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is the only currency the ledger books in.
const Currency = "USD"

var (
	DefaultMinimumBalance = decimal.NewFromInt(100)
	DefaultInterestRate   = decimal.RequireFromString("0.02")

	monthsPerYear = decimal.NewFromInt(12)
)

// Account represents a bank account owned by exactly one customer.
// Balance changes only through the methods below; each accepted change appends
// one Transaction to the account's ledger.
type Account struct {
	number         string
	accountType    AccountType
	balance        decimal.Decimal
	minimumBalance decimal.Decimal
	interestRate   decimal.Decimal
	active         bool
	customerID     int64
	transactions   []Transaction
}

// NewAccount opens an active account with the default minimum balance and interest rate.
func NewAccount(number string, accountType AccountType, balance decimal.Decimal, customerID int64) *Account {
	return &Account{
		number:         number,
		accountType:    accountType,
		balance:        balance,
		minimumBalance: DefaultMinimumBalance,
		interestRate:   DefaultInterestRate,
		active:         true,
		customerID:     customerID,
	}
}

func (a *Account) Number() string { return a.number }
func (a *Account) Type() AccountType { return a.accountType }
func (a *Account) Balance() decimal.Decimal { return a.balance }
func (a *Account) MinimumBalance() decimal.Decimal { return a.minimumBalance }
func (a *Account) InterestRate() decimal.Decimal { return a.interestRate }
func (a *Account) IsActive() bool { return a.active }
func (a *Account) CustomerID() int64 { return a.customerID }
func (a *Account) Currency() string { return Currency }

// SetMinimumBalance ignores negative values.
func (a *Account) SetMinimumBalance(v decimal.Decimal) {
	if v.Sign() >= 0 {
		a.minimumBalance = v
	}
}

// SetInterestRate ignores rates outside [0, 1].
func (a *Account) SetInterestRate(v decimal.Decimal) {
	if v.Sign() >= 0 && v.LessThanOrEqual(decimal.NewFromInt(1)) {
		a.interestRate = v
	}
}

// Deposit credits a positive amount to an active account.
func (a *Account) Deposit(amount decimal.Decimal) bool {
	if amount.Sign() <= 0 || !a.active {
		return false
	}
	a.balance = a.balance.Add(amount)
	a.record(TransactionDeposit, amount)
	return true
}

// Withdraw debits amount as long as the balance stays at or above the minimum balance.
func (a *Account) Withdraw(amount decimal.Decimal) bool {
	if amount.Sign() <= 0 || !a.active {
		return false
	}
	if !a.keepsFloor(amount) {
		return false
	}
	a.balance = a.balance.Sub(amount)
	a.record(TransactionWithdrawal, amount)
	return true
}

// Transfer moves amount from a to target. Only the source's minimum balance is
// checked. Both sides are mutated together after every check has passed, so a
// rejected transfer leaves both accounts untouched.
func (a *Account) Transfer(target *Account, amount decimal.Decimal) bool {
	if amount.Sign() <= 0 || target == nil {
		return false
	}
	if !a.active || !target.active {
		return false
	}
	if !a.keepsFloor(amount) {
		return false
	}
	a.balance = a.balance.Sub(amount)
	target.balance = target.balance.Add(amount)
	a.record(TransactionTransferOut, amount)
	target.record(TransactionTransferIn, amount)
	return true
}

// CalculateInterest credits one month of interest (balance * rate / 12) and
// returns the amount credited. Inactive and non-positive accounts earn nothing.
func (a *Account) CalculateInterest() decimal.Decimal {
	if !a.active || a.balance.Sign() <= 0 {
		return decimal.Zero
	}
	interest := a.balance.Mul(a.interestRate).Div(monthsPerYear)
	a.balance = a.balance.Add(interest)
	a.record(TransactionInterest, interest)
	return interest
}

// ApplyMonthlyCharge debits a non-negative charge. Unlike Withdraw the floor is
// zero, not the minimum balance.
func (a *Account) ApplyMonthlyCharge(charge decimal.Decimal) bool {
	if charge.Sign() < 0 || !a.active {
		return false
	}
	if a.balance.Sub(charge).Sign() < 0 {
		return false
	}
	a.balance = a.balance.Sub(charge)
	a.record(TransactionMonthlyCharge, charge)
	return true
}

// TransactionHistory returns the last n transactions, oldest first.
func (a *Account) TransactionHistory(n int) []Transaction {
	if n <= 0 {
		return []Transaction{}
	}
	start := max(0, len(a.transactions)-n)
	out := make([]Transaction, len(a.transactions)-start)
	copy(out, a.transactions[start:])
	return out
}

// Transactions returns a copy of the full ledger.
func (a *Account) Transactions() []Transaction {
	return a.TransactionHistory(len(a.transactions))
}

// Deactivate only takes effect while the balance is positive; empty accounts
// are expected to be closed instead.
func (a *Account) Deactivate() {
	if a.balance.Sign() > 0 {
		a.active = false
	}
}

func (a *Account) Activate() {
	a.active = true
}

func (a *Account) keepsFloor(amount decimal.Decimal) bool {
	return a.balance.Sub(amount).GreaterThanOrEqual(a.minimumBalance)
}

func (a *Account) record(t TransactionType, amount decimal.Decimal) {
	at := now()
	if n := len(a.transactions); n > 0 && at.Before(a.transactions[n-1].CreatedAt) {
		at = a.transactions[n-1].CreatedAt
	}
	a.transactions = append(a.transactions, newTransaction(t, amount, a.balance, at))
}

func (a *Account) String() string {
	return fmt.Sprintf("Account{accountNumber='%s', accountType='%s', balance=%s, isActive=%t}",
		a.number, a.accountType, a.balance.StringFixed(2), a.active)
}

// AccountState is a detached copy of an account, used for persistence and read-only views.
type AccountState struct {
	Number         string          `json:"accountNumber"`
	Type           AccountType     `json:"accountType"`
	Balance        decimal.Decimal `json:"balance"`
	MinimumBalance decimal.Decimal `json:"minimumBalance"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	Active         bool            `json:"active"`
	CustomerID     int64           `json:"customerId"`
	Currency       string          `json:"currency"`
	Transactions   []Transaction   `json:"transactions"`
}

func (a *Account) State() AccountState {
	return AccountState{
		Number:         a.number,
		Type:           a.accountType,
		Balance:        a.balance,
		MinimumBalance: a.minimumBalance,
		InterestRate:   a.interestRate,
		Active:         a.active,
		CustomerID:     a.customerID,
		Currency:       Currency,
		Transactions:   a.Transactions(),
	}
}

// RestoreAccount rebuilds an account from a previously exported state.
// Out-of-range minimum balance or interest rate values fall back to the defaults.
func RestoreAccount(s AccountState) *Account {
	a := NewAccount(s.Number, s.Type, s.Balance, s.CustomerID)
	a.SetMinimumBalance(s.MinimumBalance)
	a.SetInterestRate(s.InterestRate)
	a.active = s.Active
	a.transactions = make([]Transaction, len(s.Transactions))
	copy(a.transactions, s.Transactions)
	return a
}
