// Package seed fills an empty ledger with a few demo customers for manual testing.
package seed

import (
	"fmt"

	"retail-ledger/models"
	"retail-ledger/service"

	"github.com/shopspring/decimal"
)

type demoAccount struct {
	number  string
	typ     models.AccountType
	balance int64
}

type demoCustomer struct {
	id                                int64
	first, last, email, phone, street string
	accounts                          []demoAccount
}

var demoCustomers = []demoCustomer{
	{100, "John", "Doe", "john@example.com", "5550001001", "123 Main St", []demoAccount{
		{"ACC001", models.AccountSavings, 5000},
		{"ACC002", models.AccountChecking, 3000},
	}},
	{101, "Jane", "Smith", "jane@example.com", "5550001002", "456 Oak Ave", []demoAccount{
		{"ACC003", models.AccountSavings, 8000},
		{"ACC004", models.AccountCredit, 2000},
	}},
	{102, "Bob", "Wilson", "bob@example.com", "5550001003", "789 Pine Rd", []demoAccount{
		{"ACC005", models.AccountChecking, 4500},
		{"ACC006", models.AccountSavings, 6500},
	}},
}

// Populate registers the demo customers and their accounts through svc.
func Populate(svc *service.BankingService) error {
	for _, dc := range demoCustomers {
		c := models.NewCustomerWithContact(dc.id, dc.first, dc.last, dc.email, dc.phone, dc.street)
		if !svc.RegisterCustomer(c) {
			return fmt.Errorf("register demo customer %d", dc.id)
		}
		for _, da := range dc.accounts {
			if !svc.CreateAccount(dc.id, da.number, string(da.typ), decimal.NewFromInt(da.balance)) {
				return fmt.Errorf("create demo account %s", da.number)
			}
		}
	}
	return nil
}

// CustomerIDs lists the IDs Populate registers, for login hints.
func CustomerIDs() []int64 {
	ids := make([]int64, 0, len(demoCustomers))
	for _, dc := range demoCustomers {
		ids = append(ids, dc.id)
	}
	return ids
}
