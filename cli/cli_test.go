package cli

import (
	"bytes"
	"strings"
	"testing"

	"retail-ledger/models"
	"retail-ledger/service"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func run(t *testing.T, svc *service.BankingService, lines ...string) (string, int) {
	t.Helper()
	var out bytes.Buffer
	saves := 0
	c := New(svc, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, nil, func() error {
		saves++
		return nil
	})
	if err := c.Run(); err != nil {
		t.Fatalf("Run err=%v", err)
	}
	return out.String(), saves
}

func mustContain(t *testing.T, printed string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(printed, w) {
			t.Fatalf("output missing %q:\n%s", w, printed)
		}
	}
}

func TestRegisterLoginAndExit(t *testing.T) {
	svc := service.New(nil)
	printed, saves := run(t, svc,
		"1", "5001", "Alice", "Blue", "alice@x.com", "1234567890", "Addr Lane",
		"2", "5001",
		"11",
	)
	mustContain(t, printed, "Customer registered successfully.", "Logged in successfully: Alice", "=== ACCOUNT (Alice) ===", "Goodbye!")
	if _, ok := svc.Customer(5001); !ok {
		t.Fatal("customer should be registered")
	}
	if saves != 1 {
		t.Fatalf("saves=%d want 1", saves)
	}
}

func TestRegisterInvalidContact(t *testing.T) {
	svc := service.New(nil)
	printed, saves := run(t, svc,
		"1", "6001", "Bad", "User", "bad-email", "123", "Somewhere",
		"1", "6001", "Bad", "User", "bad@x.com", "123", "Somewhere",
		"4",
	)
	mustContain(t, printed, "Invalid email format.", "Invalid phone format.")
	if _, ok := svc.Customer(6001); ok {
		t.Fatal("customer should not be registered")
	}
	if saves != 0 {
		t.Fatalf("saves=%d want 0", saves)
	}
}

func TestInvalidChoices(t *testing.T) {
	svc := service.New(nil)
	printed, _ := run(t, svc, "abc", "99", "2", "424242", "4")
	if strings.Count(printed, "Invalid choice.") != 2 {
		t.Fatalf("expected two invalid choices:\n%s", printed)
	}
	mustContain(t, printed, "Customer not found.", "Goodbye!")
}

func TestEndOfInputStops(t *testing.T) {
	svc := service.New(nil)
	printed, _ := run(t, svc, "2")
	if strings.Contains(printed, "Goodbye!") {
		t.Fatal("end of input should stop without the exit message")
	}
}

func TestTransactionsFlow(t *testing.T) {
	svc := service.New(nil)
	svc.RegisterCustomer(models.NewCustomerWithContact(7002, "Rita", "Recv", "rita@x.com", "1234567891", ""))
	svc.CreateAccount(7002, "2222222222", "CHECKING", d("500"))

	printed, saves := run(t, svc,
		"1", "7001", "Sam", "Send", "sam@x.com", "1234567890", "",
		"2", "7001",
		"1", "1111111111", "SAVINGS", "1500",
		"2", "1111111111", "200",
		"3", "1111111111", "400",
		"4", "1111111111", "7002", "2222222222", "300",
		"5", "1111111111",
		"6", "1111111111", "0",
		"10",
		"4",
	)
	mustContain(t, printed,
		"Account created successfully.",
		"Deposit successful.",
		"Withdrawal successful.",
		"Transfer successful.",
		"Balance: 1000.00",
		"TRANSFER_OUT: Amount=300.00, Balance=1000.00",
		"Logged out. Bye Sam",
	)
	if saves != 5 {
		t.Fatalf("saves=%d want 5", saves)
	}
	if bal, _ := svc.AccountBalance(7002, "2222222222"); !bal.Equal(d("800")) {
		t.Fatalf("receiver=%s want 800", bal)
	}
}

func TestRejectedOperations(t *testing.T) {
	svc := service.New(nil)
	svc.RegisterCustomer(models.NewCustomerWithContact(8001, "Max", "Min", "max@x.com", "1234567890", ""))
	svc.CreateAccount(8001, "3333333333", "CHECKING", d("150"))

	printed, saves := run(t, svc,
		"2", "8001",
		"1", "12", "SAVINGS", "500",
		"1", "3333333334", "LOAN", "500",
		"1", "3333333334", "SAVINGS", "x",
		"3", "3333333333", "51",
		"3", "3333333333", "-5",
		"4", "3333333333", "8001", "0000000000", "10",
		"5", "0000000000",
		"6", "0000000000", "5",
		"8", "3333333333",
		"9", "max@x.com", "0000000000",
		"11",
	)
	mustContain(t, printed,
		"Invalid account number.",
		"Invalid account type.",
		"Invalid amount.",
		"Withdrawal failed.",
		"Transfer failed.",
		"Account not found.",
		"Failed to close account (balance must be zero).",
		"Verification failed.",
	)
	if saves != 0 {
		t.Fatalf("saves=%d want 0", saves)
	}
}

func TestInterestCloseAndVerify(t *testing.T) {
	svc := service.New(nil)
	svc.RegisterCustomer(models.NewCustomerWithContact(9001, "Ivy", "Int", "ivy@x.com", "1234567890", ""))
	svc.CreateAccount(9001, "4444444444", "SAVINGS", d("1200"))
	svc.CreateAccount(9001, "5555555555", "CHECKING", d("100"))
	svc.ApplyMonthlyCharges(9001, "5555555555", d("100"))

	printed, saves := run(t, svc,
		"2", "9001",
		"7", "4444444444",
		"7", "5555555555",
		"8", "5555555555",
		"9", "ivy@x.com", "1234567890",
		"11",
	)
	mustContain(t, printed,
		"Interest applied. Balance: 1203.00",
		"No interest applied.",
		"Account closed.",
		"Customer verified.",
	)
	if saves != 3 {
		t.Fatalf("saves=%d want 3", saves)
	}
	if svc.TotalAccounts() != 1 {
		t.Fatalf("accounts=%d want 1", svc.TotalAccounts())
	}
}

func TestAdminMenu(t *testing.T) {
	svc := service.New(nil)
	printed, saves := run(t, svc,
		"3",
		"1", "20000",
		"2", "0",
		"3",
		"9",
		"4",
		"4",
	)
	mustContain(t, printed,
		"=== ADMIN ===",
		"Daily transfer limit set to 20000.00",
		"Invalid amount.",
		"Monthly withdrawal limit: 50000.00",
		"Invalid choice.",
		"Goodbye!",
	)
	if !svc.DailyTransferLimit().Equal(d("20000")) {
		t.Fatalf("limit=%s", svc.DailyTransferLimit())
	}
	if saves != 1 {
		t.Fatalf("saves=%d want 1", saves)
	}
}
