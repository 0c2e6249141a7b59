package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Customer represents a bank customer and the accounts they own.
type Customer struct {
	id        int64
	firstName string
	lastName  string
	email     string
	phone     string
	address   string
	verified  bool

	accounts []*Account
	byNumber map[string]*Account
}

// NewCustomer creates an unverified customer without contact details.
func NewCustomer(id int64, firstName, lastName string) *Customer {
	return &Customer{
		id:        id,
		firstName: firstName,
		lastName:  lastName,
		byNumber:  make(map[string]*Account),
	}
}

// NewCustomerWithContact creates an unverified customer with contact details.
func NewCustomerWithContact(id int64, firstName, lastName, email, phone, address string) *Customer {
	c := NewCustomer(id, firstName, lastName)
	c.email = email
	c.phone = phone
	c.address = address
	return c
}

func (c *Customer) ID() int64 { return c.id }
func (c *Customer) FirstName() string { return c.firstName }
func (c *Customer) LastName() string { return c.lastName }
func (c *Customer) Email() string { return c.email }
func (c *Customer) Phone() string { return c.phone }
func (c *Customer) Address() string { return c.address }
func (c *Customer) IsVerified() bool { return c.verified }
func (c *Customer) SetEmail(v string) { c.email = v }
func (c *Customer) SetPhone(v string) { c.phone = v }
func (c *Customer) SetAddress(v string) { c.address = v }

// AddAccount attaches an account owned by this customer. Account numbers are
// unique per customer only.
func (c *Customer) AddAccount(a *Account) bool {
	if a == nil || a.CustomerID() != c.id {
		return false
	}
	if _, exists := c.byNumber[a.Number()]; exists {
		return false
	}
	c.accounts = append(c.accounts, a)
	c.byNumber[a.Number()] = a
	return true
}

// Account looks up an account by its exact number.
func (c *Customer) Account(number string) (*Account, bool) {
	a, ok := c.byNumber[number]
	return a, ok
}

// RemoveAccount drops the account with the given number and reports whether one was removed.
func (c *Customer) RemoveAccount(number string) bool {
	if _, ok := c.byNumber[number]; !ok {
		return false
	}
	delete(c.byNumber, number)
	for i, a := range c.accounts {
		if a.Number() == number {
			c.accounts = append(c.accounts[:i], c.accounts[i+1:]...)
			break
		}
	}
	return true
}

// Accounts returns the customer's accounts in the order they were added.
func (c *Customer) Accounts() []*Account {
	out := make([]*Account, len(c.accounts))
	copy(out, c.accounts)
	return out
}

func (c *Customer) ActiveAccounts() []*Account {
	var out []*Account
	for _, a := range c.accounts {
		if a.IsActive() {
			out = append(out, a)
		}
	}
	return out
}

// TotalBalance sums the balances of active accounts. It is computed on every call.
func (c *Customer) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, a := range c.accounts {
		if a.IsActive() {
			total = total.Add(a.Balance())
		}
	}
	return total
}

// AccountBalance returns the balance of one account, or false if the customer has no such account.
func (c *Customer) AccountBalance(number string) (decimal.Decimal, bool) {
	a, ok := c.Account(number)
	if !ok {
		return decimal.Zero, false
	}
	return a.Balance(), true
}

// Verify marks the customer verified when both email and phone match the stored
// contact details exactly. A mismatch never clears an earlier verification.
func (c *Customer) Verify(email, phone string) bool {
	if c.email == "" || c.phone == "" {
		return false
	}
	if c.email != email || c.phone != phone {
		return false
	}
	c.verified = true
	return true
}

func (c *Customer) String() string {
	return fmt.Sprintf("Customer{id=%d, name='%s %s', email='%s', verified=%t}",
		c.id, c.firstName, c.lastName, c.email, c.verified)
}

// CustomerState is a detached copy of a customer and their accounts.
type CustomerState struct {
	ID        int64          `json:"customerId"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `json:"email,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	Address   string         `json:"address,omitempty"`
	Verified  bool           `json:"verified"`
	Accounts  []AccountState `json:"accounts"`
}

func (c *Customer) State() CustomerState {
	s := CustomerState{
		ID:        c.id,
		FirstName: c.firstName,
		LastName:  c.lastName,
		Email:     c.email,
		Phone:     c.phone,
		Address:   c.address,
		Verified:  c.verified,
		Accounts:  make([]AccountState, 0, len(c.accounts)),
	}
	for _, a := range c.accounts {
		s.Accounts = append(s.Accounts, a.State())
	}
	return s
}

// RestoreCustomer rebuilds a customer from an exported state. Accounts that
// belong to a different customer or repeat an account number are dropped.
func RestoreCustomer(s CustomerState) *Customer {
	c := NewCustomerWithContact(s.ID, s.FirstName, s.LastName, s.Email, s.Phone, s.Address)
	c.verified = s.Verified
	for _, as := range s.Accounts {
		c.AddAccount(RestoreAccount(as))
	}
	return c
}
