// Package cli is the interactive, line-oriented front end to the ledger.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"retail-ledger/models"
	"retail-ledger/service"
	"retail-ledger/validation"

	"github.com/shopspring/decimal"
)

const loggedOut int64 = -1

var invalidAmount = decimal.NewFromInt(-1)

// CLI reads menu choices and prompts from in and writes everything to out.
type CLI struct {
	svc     *service.BankingService
	in      *bufio.Scanner
	out     io.Writer
	logger  *slog.Logger
	persist func() error

	customerID int64
	running    bool
}

// New builds a CLI. persist runs after every successful mutation and may be nil.
func New(svc *service.BankingService, in io.Reader, out io.Writer, logger *slog.Logger, persist func() error) *CLI {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CLI{
		svc:        svc,
		in:         bufio.NewScanner(in),
		out:        out,
		logger:     logger,
		persist:    persist,
		customerID: loggedOut,
	}
}

// Run loops over the menus until the user exits or the input ends.
func (c *CLI) Run() error {
	c.running = true
	for c.running {
		if c.customerID == loggedOut {
			c.printMainMenu()
		} else {
			c.printCustomerMenu()
		}

		choice, ok := c.promptInt("Choose an option: ")
		if !ok {
			break
		}
		if c.customerID == loggedOut {
			c.mainMenu(choice)
		} else {
			c.customerMenu(choice)
		}
	}
	return c.in.Err()
}

func (c *CLI) mainMenu(choice int) {
	switch choice {
	case 1:
		c.register()
	case 2:
		c.login()
	case 3:
		c.adminMenu()
	case 4:
		c.exit()
	default:
		c.println("Invalid choice.")
	}
}

func (c *CLI) customerMenu(choice int) {
	switch choice {
	case 1:
		c.createAccount()
	case 2:
		c.singleAccountOp(service.OpDeposit, "Deposit")
	case 3:
		c.singleAccountOp(service.OpWithdrawal, "Withdrawal")
	case 4:
		c.transfer()
	case 5:
		c.viewBalance()
	case 6:
		c.viewTransactions()
	case 7:
		c.applyInterest()
	case 8:
		c.closeAccount()
	case 9:
		c.verifyContact()
	case 10:
		c.logout()
	case 11:
		c.exit()
	default:
		c.println("Invalid choice.")
	}
}

func (c *CLI) printMainMenu() {
	c.println("\n=== MINI BANKING ===")
	c.println("1. Register")
	c.println("2. Login")
	c.println("3. Admin")
	c.println("4. Exit")
}

func (c *CLI) printCustomerMenu() {
	name := "Unknown"
	if customer, ok := c.svc.Customer(c.customerID); ok {
		name = customer.FirstName()
	}
	c.println("\n=== ACCOUNT (" + name + ") ===")
	c.println("1. Create Account")
	c.println("2. Deposit")
	c.println("3. Withdraw")
	c.println("4. Transfer")
	c.println("5. View Balance")
	c.println("6. View Transactions")
	c.println("7. Apply Interest")
	c.println("8. Close Account")
	c.println("9. Verify Contact")
	c.println("10. Logout")
	c.println("11. Exit")
}

func (c *CLI) register() {
	id := c.promptInt64("Customer ID: ")
	first := c.prompt("First name: ")
	last := c.prompt("Last name: ")
	email := c.prompt("Email: ")
	phone := c.prompt("Phone: ")
	address := c.prompt("Address: ")

	switch {
	case !validation.IsValidCustomerID(id):
		c.println("Invalid customer ID.")
		return
	case !validation.IsValidEmail(email):
		c.println("Invalid email format.")
		return
	case !validation.IsValidPhone(phone):
		c.println("Invalid phone format.")
		return
	}

	if !c.svc.RegisterCustomer(models.NewCustomerWithContact(id, first, last, email, phone, address)) {
		c.println("Failed to register customer (maybe duplicate ID).")
		return
	}
	c.saved()
	c.println("Customer registered successfully.")
}

func (c *CLI) login() {
	id := c.promptInt64("Customer ID: ")
	customer, ok := c.svc.Customer(id)
	if !ok {
		c.println("Customer not found.")
		return
	}
	c.customerID = id
	c.println("Logged in successfully: " + customer.FirstName())
}

func (c *CLI) logout() {
	name := "User"
	if customer, ok := c.svc.Customer(c.customerID); ok {
		name = customer.FirstName()
	}
	c.println("Logged out. Bye " + name)
	c.customerID = loggedOut
}

func (c *CLI) exit() {
	c.running = false
	c.println("Goodbye!")
}

func (c *CLI) createAccount() {
	number := c.prompt("Account number (10-16 digits): ")
	accountType := c.prompt("Account type (SAVINGS/CHECKING/CREDIT): ")
	balance := c.promptAmount("Initial balance: ")

	switch {
	case !validation.IsValidAccountNumber(number):
		c.println("Invalid account number.")
		return
	case !validation.IsValidAccountType(accountType):
		c.println("Invalid account type.")
		return
	case !validation.IsValidAmount(balance):
		c.println("Invalid amount.")
		return
	}

	if !c.svc.CreateAccount(c.customerID, number, accountType, balance) {
		c.println("Failed to create account.")
		return
	}
	c.saved()
	c.println("Account created successfully.")
}

// singleAccountOp runs a deposit or withdrawal on one of the customer's accounts.
func (c *CLI) singleAccountOp(op, label string) {
	number := c.prompt("Account number: ")
	amount := c.promptAmount("Amount: ")
	if !validation.IsValidAmount(amount) {
		c.println("Invalid amount.")
		return
	}
	if !c.svc.ProcessTransaction(c.customerID, number, op, amount) {
		c.println(label + " failed.")
		return
	}
	c.saved()
	c.println(label + " successful.")
}

func (c *CLI) transfer() {
	from := c.prompt("From account number: ")
	toCustomer := c.promptInt64("To customer id: ")
	to := c.prompt("To account number: ")
	amount := c.promptAmount("Amount: ")
	if !validation.IsValidAmount(amount) {
		c.println("Invalid amount.")
		return
	}
	if !c.svc.TransferFunds(c.customerID, from, toCustomer, to, amount) {
		c.println("Transfer failed.")
		return
	}
	c.saved()
	c.println("Transfer successful.")
}

func (c *CLI) viewBalance() {
	number := c.prompt("Account number: ")
	balance, ok := c.svc.AccountBalance(c.customerID, number)
	if !ok {
		c.println("Account not found.")
		return
	}
	c.printf("Balance: %s\n", balance.StringFixed(2))
}

func (c *CLI) viewTransactions() {
	number := c.prompt("Account number: ")
	n, _ := c.promptInt("How many recent transactions: ")
	if n <= 0 {
		n = service.DefaultHistoryLimit
	}

	history, ok := c.svc.TransactionHistory(c.customerID, number, n)
	if !ok {
		c.println("Account not found.")
		return
	}
	if len(history) == 0 {
		c.println("No transactions found.")
		return
	}
	for _, tx := range history {
		c.println(tx.String())
	}
}

func (c *CLI) applyInterest() {
	number := c.prompt("Account number: ")
	if !c.svc.ApplyInterest(c.customerID, number) {
		c.println("No interest applied.")
		return
	}
	c.saved()
	balance, _ := c.svc.AccountBalance(c.customerID, number)
	c.printf("Interest applied. Balance: %s\n", balance.StringFixed(2))
}

func (c *CLI) closeAccount() {
	number := c.prompt("Account number: ")
	if !c.svc.CloseAccount(c.customerID, number) {
		c.println("Failed to close account (balance must be zero).")
		return
	}
	c.saved()
	c.println("Account closed.")
}

func (c *CLI) verifyContact() {
	email := c.prompt("Email: ")
	phone := c.prompt("Phone: ")
	if !c.svc.VerifyCustomer(c.customerID, email, phone) {
		c.println("Verification failed.")
		return
	}
	c.saved()
	c.println("Customer verified.")
}

func (c *CLI) adminMenu() {
	for c.running {
		c.println("\n=== ADMIN ===")
		c.println("1. Set Daily Transfer Limit")
		c.println("2. Set Monthly Withdrawal Limit")
		c.println("3. View Statistics")
		c.println("4. Back")

		choice, ok := c.promptInt("Choose an option: ")
		if !ok {
			c.running = false
			return
		}
		switch choice {
		case 1:
			c.setLimit("Daily transfer limit", c.svc.SetDailyTransferLimit, c.svc.DailyTransferLimit)
		case 2:
			c.setLimit("Monthly withdrawal limit", c.svc.SetMonthlyWithdrawalLimit, c.svc.MonthlyWithdrawalLimit)
		case 3:
			c.printStats()
		case 4:
			return
		default:
			c.println("Invalid choice.")
		}
	}
}

func (c *CLI) setLimit(label string, set func(decimal.Decimal), get func() decimal.Decimal) {
	amount := c.promptAmount(label + ": ")
	if amount.Sign() <= 0 {
		c.println("Invalid amount.")
		return
	}
	set(amount)
	c.saved()
	c.printf("%s set to %s\n", label, get().StringFixed(2))
}

func (c *CLI) printStats() {
	s := c.svc.Stats()
	c.printf("Customers: %d (verified %d)\n", s.Customers, s.VerifiedCustomers)
	c.printf("Accounts: %d (active %d)\n", s.Accounts, s.ActiveAccounts)
	c.printf("Total balance: %s\n", s.TotalBalance.StringFixed(2))
	c.printf("Daily transfer limit: %s\n", s.DailyTransferLimit.StringFixed(2))
	c.printf("Monthly withdrawal limit: %s\n", s.MonthlyWithdrawalLimit.StringFixed(2))
}

func (c *CLI) saved() {
	if c.persist == nil {
		return
	}
	if err := c.persist(); err != nil {
		c.logger.Error("persisting ledger failed", "error", err)
	}
}

// prompt prints label and returns the next trimmed line, or "" at end of input.
func (c *CLI) prompt(label string) string {
	c.printf("%s", label)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

// promptInt reads an int; unparsable input reads as -1. ok is false at end of input.
func (c *CLI) promptInt(label string) (int, bool) {
	c.printf("%s", label)
	if !c.in.Scan() {
		return -1, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(c.in.Text()))
	if err != nil {
		return -1, true
	}
	return n, true
}

func (c *CLI) promptInt64(label string) int64 {
	n, err := strconv.ParseInt(c.prompt(label), 10, 64)
	if err != nil {
		return -1
	}
	return n
}

func (c *CLI) promptAmount(label string) decimal.Decimal {
	amount, err := decimal.NewFromString(c.prompt(label))
	if err != nil {
		return invalidAmount
	}
	return amount
}

func (c *CLI) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
