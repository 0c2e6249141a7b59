// Package service is the single entry point for ledger operations. It resolves
// customers and accounts, applies system-wide policy and delegates balance
// changes to the accounts themselves.
//
// Every operation runs under one service-wide lock, so multi-account
// operations such as TransferFunds check and mutate both sides in a single
// critical section. Business-rule rejections are reported as false, never as
// errors.
package service

import (
	"io"
	"log/slog"
	"sync"

	"retail-ledger/models"
	"retail-ledger/snapshot"
	"retail-ledger/store"

	"github.com/shopspring/decimal"
)

// DefaultHistoryLimit replaces non-positive history sizes.
const DefaultHistoryLimit = 10

// Operations accepted by ProcessTransaction.
const (
	OpDeposit    = "DEPOSIT"
	OpWithdrawal = "WITHDRAWAL"
	OpInterest   = "INTEREST"
	OpCharge     = "CHARGE"
)

var (
	DefaultDailyTransferLimit     = decimal.NewFromInt(10000)
	DefaultMonthlyWithdrawalLimit = decimal.NewFromInt(50000)

	minimumAccountBalance = decimal.NewFromInt(100)
	savingsInterestRate   = decimal.RequireFromString("0.03")
	creditInterestRate    = decimal.RequireFromString("0.15")
)

// BankingService owns the customer registry and the system limits.
type BankingService struct {
	mu        sync.RWMutex
	customers *store.Store
	logger    *slog.Logger

	dailyTransferLimit decimal.Decimal
	// monthlyWithdrawalLimit is configurable but no withdrawal path consults it yet.
	monthlyWithdrawalLimit decimal.Decimal
}

// New returns an empty service with the default limits. A nil logger discards output.
func New(logger *slog.Logger) *BankingService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BankingService{
		customers:              store.New(),
		logger:                 logger,
		dailyTransferLimit:     DefaultDailyTransferLimit,
		monthlyWithdrawalLimit: DefaultMonthlyWithdrawalLimit,
	}
}

// RegisterCustomer adds a customer; nil customers and duplicate IDs are rejected.
func (s *BankingService) RegisterCustomer(c *models.Customer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.customers.AddCustomer(c) {
		s.reject("register customer", "nil or duplicate customer")
		return false
	}
	s.logger.Info("customer registered", "customer_id", c.ID())
	return true
}

// Customer looks up a registered customer.
func (s *BankingService) Customer(id int64) (*models.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers.GetCustomerByID(id)
}

// CreateAccount opens an account for a registered customer. SAVINGS accounts
// earn 0.03 and CREDIT accounts 0.15; CHECKING keeps the account default.
// A duplicate account number for the same customer is rejected.
func (s *BankingService) CreateAccount(customerID int64, number, accountType string, initialBalance decimal.Decimal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers.GetCustomerByID(customerID)
	if !ok {
		s.reject("create account", "customer not found", "customer_id", customerID)
		return false
	}
	if initialBalance.LessThan(minimumAccountBalance) {
		s.reject("create account", "initial balance below minimum", "customer_id", customerID, "amount", initialBalance)
		return false
	}
	typ, ok := models.ParseAccountType(accountType)
	if !ok {
		s.reject("create account", "unknown account type", "customer_id", customerID, "type", accountType)
		return false
	}

	account := models.NewAccount(number, typ, initialBalance, customerID)
	switch typ {
	case models.AccountSavings:
		account.SetInterestRate(savingsInterestRate)
	case models.AccountCredit:
		account.SetInterestRate(creditInterestRate)
	}

	if !customer.AddAccount(account) {
		s.reject("create account", "duplicate account number", "customer_id", customerID, "account", number)
		return false
	}
	s.logger.Info("account opened", "customer_id", customerID, "account", number, "type", typ)
	return true
}

// ProcessTransaction dispatches a single-account operation by name. INTEREST
// reports success even when no interest was credited.
func (s *BankingService) ProcessTransaction(customerID int64, number, op string, amount decimal.Decimal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, account, ok := s.resolve(customerID, number)
	if !ok {
		s.reject("process transaction", "account not found", "customer_id", customerID, "account", number)
		return false
	}

	var accepted bool
	switch op {
	case OpDeposit:
		accepted = account.Deposit(amount)
	case OpWithdrawal:
		accepted = account.Withdraw(amount)
	case OpInterest:
		account.CalculateInterest()
		accepted = true
	case OpCharge:
		accepted = account.ApplyMonthlyCharge(amount)
	default:
		s.reject("process transaction", "unknown operation", "op", op)
		return false
	}

	if !accepted {
		s.reject("process transaction", "rejected by account", "customer_id", customerID, "account", number, "op", op, "amount", amount)
	}
	return accepted
}

// TransferFunds moves amount between two accounts, possibly of different
// customers, within the daily transfer limit.
func (s *BankingService) TransferFunds(fromCustomerID int64, fromNumber string, toCustomerID int64, toNumber string, amount decimal.Decimal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, from, ok := s.resolve(fromCustomerID, fromNumber)
	if !ok {
		s.reject("transfer", "source account not found", "customer_id", fromCustomerID, "account", fromNumber)
		return false
	}
	_, to, ok := s.resolve(toCustomerID, toNumber)
	if !ok {
		s.reject("transfer", "target account not found", "customer_id", toCustomerID, "account", toNumber)
		return false
	}
	if amount.Sign() <= 0 {
		s.reject("transfer", "non-positive amount", "amount", amount)
		return false
	}
	if amount.GreaterThan(s.dailyTransferLimit) {
		s.reject("transfer", "daily transfer limit exceeded", "amount", amount, "limit", s.dailyTransferLimit)
		return false
	}
	if !from.IsActive() || !to.IsActive() {
		s.reject("transfer", "inactive account", "from", fromNumber, "to", toNumber)
		return false
	}
	if !from.Transfer(to, amount) {
		s.reject("transfer", "source would fall below minimum balance", "from", fromNumber, "amount", amount)
		return false
	}
	s.logger.Debug("transfer completed", "from", fromNumber, "to", toNumber, "amount", amount)
	return true
}

// AccountBalance returns the balance of one account.
func (s *BankingService) AccountBalance(customerID int64, number string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.customers.GetCustomerByID(customerID)
	if !ok {
		return decimal.Zero, false
	}
	return customer.AccountBalance(number)
}

// ApplyMonthlyCharges debits a non-negative charge no larger than the balance.
func (s *BankingService) ApplyMonthlyCharges(customerID int64, number string, charge decimal.Decimal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, account, ok := s.resolve(customerID, number)
	if !ok {
		s.reject("monthly charge", "account not found", "customer_id", customerID, "account", number)
		return false
	}
	if charge.Sign() < 0 || account.Balance().LessThan(charge) {
		s.reject("monthly charge", "invalid charge", "account", number, "amount", charge)
		return false
	}
	return account.ApplyMonthlyCharge(charge)
}

// ApplyInterest credits a month of interest and reports success only when a
// positive amount was credited.
func (s *BankingService) ApplyInterest(customerID int64, number string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, account, ok := s.resolve(customerID, number)
	if !ok || !account.IsActive() {
		s.reject("apply interest", "account not found or inactive", "customer_id", customerID, "account", number)
		return false
	}
	interest := account.CalculateInterest()
	if interest.Sign() <= 0 {
		s.reject("apply interest", "no interest earned", "account", number)
		return false
	}
	s.logger.Debug("interest credited", "account", number, "amount", interest)
	return true
}

// CloseAccount removes an account whose balance is exactly zero. The account
// is deactivated first, which has no effect on an empty account.
func (s *BankingService) CloseAccount(customerID int64, number string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, account, ok := s.resolve(customerID, number)
	if !ok {
		s.reject("close account", "account not found", "customer_id", customerID, "account", number)
		return false
	}
	if !account.Balance().IsZero() {
		s.reject("close account", "balance is not zero", "account", number, "balance", account.Balance())
		return false
	}
	account.Deactivate()
	if !customer.RemoveAccount(number) {
		return false
	}
	s.logger.Info("account closed", "customer_id", customerID, "account", number)
	return true
}

// TotalCustomerBalance sums the customer's active account balances.
func (s *BankingService) TotalCustomerBalance(customerID int64) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.customers.GetCustomerByID(customerID)
	if !ok {
		return decimal.Zero, false
	}
	return customer.TotalBalance(), true
}

// AllCustomers returns the customers in registration order. The slice is a copy.
func (s *BankingService) AllCustomers() []*models.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers.Customers()
}

// TotalAccounts counts accounts across all customers.
func (s *BankingService) TotalAccounts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers.AccountCount()
}

// SetDailyTransferLimit ignores non-positive values.
func (s *BankingService) SetDailyTransferLimit(limit decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit.Sign() > 0 {
		s.dailyTransferLimit = limit
	}
}

// SetMonthlyWithdrawalLimit ignores non-positive values.
func (s *BankingService) SetMonthlyWithdrawalLimit(limit decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit.Sign() > 0 {
		s.monthlyWithdrawalLimit = limit
	}
}

func (s *BankingService) DailyTransferLimit() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dailyTransferLimit
}

func (s *BankingService) MonthlyWithdrawalLimit() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monthlyWithdrawalLimit
}

// MinimumAccountBalance is the smallest initial balance CreateAccount accepts.
func (s *BankingService) MinimumAccountBalance() decimal.Decimal {
	return minimumAccountBalance
}

func (s *BankingService) resolve(customerID int64, number string) (*models.Customer, *models.Account, bool) {
	customer, ok := s.customers.GetCustomerByID(customerID)
	if !ok {
		return nil, nil, false
	}
	account, ok := customer.Account(number)
	if !ok {
		return nil, nil, false
	}
	return customer, account, true
}

func (s *BankingService) reject(op, reason string, args ...any) {
	s.logger.Debug("operation rejected", append([]any{"op", op, "reason", reason}, args...)...)
}

// Snapshot exports the registry and limits.
func (s *BankingService) Snapshot() snapshot.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot.Snapshot{
		Limits: snapshot.Limits{
			DailyTransfer:     s.dailyTransferLimit,
			MonthlyWithdrawal: s.monthlyWithdrawalLimit,
		},
	}
	for _, c := range s.customers.Customers() {
		snap.Customers = append(snap.Customers, c.State())
	}
	return snap
}

// Restore replaces the registry with the snapshot content. Non-positive limits
// in the snapshot leave the current limits in place.
func (s *BankingService) Restore(snap snapshot.Snapshot) {
	customers := make([]*models.Customer, 0, len(snap.Customers))
	for _, cs := range snap.Customers {
		customers = append(customers, models.RestoreCustomer(cs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers.Reset(customers)
	if snap.Limits.DailyTransfer.Sign() > 0 {
		s.dailyTransferLimit = snap.Limits.DailyTransfer
	}
	if snap.Limits.MonthlyWithdrawal.Sign() > 0 {
		s.monthlyWithdrawalLimit = snap.Limits.MonthlyWithdrawal
	}
	s.logger.Info("ledger restored", "customers", s.customers.Len())
}
