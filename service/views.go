package service

import (
	"retail-ledger/models"
	"retail-ledger/store"

	"github.com/shopspring/decimal"
)

// CustomerView is a read-only copy of a customer with the derived total balance.
type CustomerView struct {
	models.CustomerState
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

// Stats summarizes the whole ledger.
type Stats struct {
	Customers              int             `json:"customers"`
	VerifiedCustomers      int             `json:"verifiedCustomers"`
	Accounts               int             `json:"accounts"`
	ActiveAccounts         int             `json:"activeAccounts"`
	TotalBalance           decimal.Decimal `json:"totalBalance"`
	DailyTransferLimit     decimal.Decimal `json:"dailyTransferLimit"`
	MonthlyWithdrawalLimit decimal.Decimal `json:"monthlyWithdrawalLimit"`
}

// VerifyCustomer checks the supplied contact details against the stored ones.
func (s *BankingService) VerifyCustomer(customerID int64, email, phone string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	customer, ok := s.customers.GetCustomerByID(customerID)
	if !ok {
		s.reject("verify customer", "customer not found", "customer_id", customerID)
		return false
	}
	if !customer.Verify(email, phone) {
		s.reject("verify customer", "contact details do not match", "customer_id", customerID)
		return false
	}
	return true
}

// DeactivateAccount reports whether the account is inactive afterwards. Accounts
// without a positive balance stay active.
func (s *BankingService) DeactivateAccount(customerID int64, number string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, account, ok := s.resolve(customerID, number)
	if !ok {
		return false
	}
	account.Deactivate()
	return !account.IsActive()
}

func (s *BankingService) ActivateAccount(customerID int64, number string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, account, ok := s.resolve(customerID, number)
	if !ok {
		return false
	}
	account.Activate()
	return true
}

// TransactionHistory returns the last n entries of an account, oldest first.
// n <= 0 means DefaultHistoryLimit.
func (s *BankingService) TransactionHistory(customerID int64, number string, n int) ([]models.Transaction, bool) {
	if n <= 0 {
		n = DefaultHistoryLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, account, ok := s.resolve(customerID, number)
	if !ok {
		return nil, false
	}
	return account.TransactionHistory(n), true
}

func (s *BankingService) AccountDetails(customerID int64, number string) (models.AccountState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, account, ok := s.resolve(customerID, number)
	if !ok {
		return models.AccountState{}, false
	}
	return account.State(), true
}

func (s *BankingService) CustomerDetails(customerID int64) (CustomerView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.customers.GetCustomerByID(customerID)
	if !ok {
		return CustomerView{}, false
	}
	return CustomerView{CustomerState: customer.State(), TotalBalance: customer.TotalBalance()}, true
}

// ListCustomers returns views of every customer in registration order.
func (s *BankingService) ListCustomers() []CustomerView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customers := s.customers.Customers()
	out := make([]CustomerView, 0, len(customers))
	for _, c := range customers {
		out = append(out, CustomerView{CustomerState: c.State(), TotalBalance: c.TotalBalance()})
	}
	return out
}

// CustomerTransactions lists every ledger entry of a customer's accounts.
// Empty filters match everything.
func (s *BankingService) CustomerTransactions(customerID int64, accountNumber string, txType models.TransactionType) ([]store.CustomerTransaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.customers.GetCustomerByID(customerID); !ok {
		return nil, false
	}
	filtered := []store.CustomerTransaction{}
	for _, tx := range s.customers.TransactionsByCustomerID(customerID) {
		if accountNumber != "" && tx.AccountNumber != accountNumber {
			continue
		}
		if txType != "" && tx.Type != txType {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered, true
}

func (s *BankingService) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		TotalBalance:           decimal.Zero,
		DailyTransferLimit:     s.dailyTransferLimit,
		MonthlyWithdrawalLimit: s.monthlyWithdrawalLimit,
	}
	for _, c := range s.customers.Customers() {
		st.Customers++
		if c.IsVerified() {
			st.VerifiedCustomers++
		}
		st.Accounts += len(c.Accounts())
		st.ActiveAccounts += len(c.ActiveAccounts())
		st.TotalBalance = st.TotalBalance.Add(c.TotalBalance())
	}
	return st
}
