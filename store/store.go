package store

import (
	"retail-ledger/models"
	"sync"
)

// Store holds the registered customers in registration order, with an index by customer ID
type Store struct {
	customers []*models.Customer
	byID      map[int64]*models.Customer
	mutex     sync.RWMutex
}

// CustomerTransaction is a ledger entry tagged with the account it belongs to
type CustomerTransaction struct {
	AccountNumber string
	models.Transaction
}

// New returns an empty store
func New() *Store {
	return &Store{byID: make(map[int64]*models.Customer)}
}

// AddCustomer registers a customer; nil and duplicate IDs are rejected
func (s *Store) AddCustomer(customer *models.Customer) bool {
	if customer == nil {
		return false
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.byID[customer.ID()]; exists {
		return false
	}
	s.customers = append(s.customers, customer)
	s.byID[customer.ID()] = customer
	return true
}

// GetCustomerByID retrieves a customer by ID
func (s *Store) GetCustomerByID(id int64) (*models.Customer, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	customer, exists := s.byID[id]
	return customer, exists
}

// Customers returns the customers in registration order
func (s *Store) Customers() []*models.Customer {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]*models.Customer, len(s.customers))
	copy(out, s.customers)
	return out
}

// Len returns the number of registered customers
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.customers)
}

// AccountCount counts the accounts held across all customers
func (s *Store) AccountCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	count := 0
	for _, customer := range s.customers {
		count += len(customer.Accounts())
	}
	return count
}

// TransactionsByCustomerID retrieves all transactions for a customer's accounts
func (s *Store) TransactionsByCustomerID(id int64) []CustomerTransaction {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	customer, exists := s.byID[id]
	if !exists {
		return nil
	}
	var transactions []CustomerTransaction
	for _, account := range customer.Accounts() {
		for _, tx := range account.Transactions() {
			transactions = append(transactions, CustomerTransaction{AccountNumber: account.Number(), Transaction: tx})
		}
	}
	return transactions
}

// Reset replaces the registry content; later duplicates of an ID are dropped
func (s *Store) Reset(customers []*models.Customer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.customers = nil
	s.byID = make(map[int64]*models.Customer, len(customers))
	for _, customer := range customers {
		if customer == nil {
			continue
		}
		if _, exists := s.byID[customer.ID()]; exists {
			continue
		}
		s.customers = append(s.customers, customer)
		s.byID[customer.ID()] = customer
	}
}
