package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"retail-ledger/models"
	"retail-ledger/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	svc    *service.BankingService
	saves  int
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestAPI(t *testing.T, origins ...string) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(logger)

	john := models.NewCustomerWithContact(1001, "John", "Doe", "john@example.com", "9876543210", "123 Main St")
	jane := models.NewCustomerWithContact(1002, "Jane", "Smith", "jane@example.com", "9876543211", "456 Oak Ave")
	if !svc.RegisterCustomer(john) || !svc.RegisterCustomer(jane) {
		t.Fatal("register fixtures")
	}
	if !svc.CreateAccount(1001, "1000000001", "SAVINGS", d("5000")) ||
		!svc.CreateAccount(1002, "2000000001", "CHECKING", d("3000")) {
		t.Fatal("create fixture accounts")
	}

	ta := &testAPI{svc: svc}
	persist := func() error {
		ta.saves++
		return nil
	}
	ta.router = NewRouter(logger, NewHandlers(logger, svc, persist), origins)
	return ta
}

func (ta *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status=%d want %d body=%s", rec.Code, want, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	ta := newTestAPI(t)
	rec := ta.do(t, http.MethodGet, "/healthz", "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("body=%s", rec.Body.String())
	}
}

func TestCreateCustomer(t *testing.T) {
	ta := newTestAPI(t)

	body := `{"customerId":1003,"firstName":"Bob","lastName":"Wilson","email":"bob@example.com","phone":"5550001003","address":"789 Pine Rd"}`
	rec := ta.do(t, http.MethodPost, "/api/customers", body)
	expectStatus(t, rec, http.StatusCreated)
	var created CustomerResponse
	decode(t, rec, &created)
	if created.CustomerID != 1003 || created.FirstName != "Bob" || len(created.Accounts) != 0 {
		t.Fatalf("created=%+v", created)
	}
	if ta.saves != 1 {
		t.Fatalf("saves=%d want 1", ta.saves)
	}

	rec = ta.do(t, http.MethodPost, "/api/customers", body)
	expectStatus(t, rec, http.StatusConflict)
	if ta.saves != 1 {
		t.Fatalf("rejected request persisted, saves=%d", ta.saves)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	ta := newTestAPI(t)
	tests := map[string]string{
		"bad phone":      `{"customerId":1003,"firstName":"Bob","lastName":"W","email":"bob@example.com","phone":"555-1003"}`,
		"bad email":      `{"customerId":1003,"firstName":"Bob","lastName":"W","email":"bob","phone":"5550001003"}`,
		"missing id":     `{"firstName":"Bob","lastName":"W","email":"bob@example.com","phone":"5550001003"}`,
		"id too large":   `{"customerId":10000000000,"firstName":"Bob","lastName":"W","email":"bob@example.com","phone":"5550001003"}`,
		"malformed json": `{"customerId":`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := ta.do(t, http.MethodPost, "/api/customers", body)
			expectStatus(t, rec, http.StatusBadRequest)
			var resp struct {
				Errors []string `json:"errors"`
			}
			decode(t, rec, &resp)
			if len(resp.Errors) == 0 {
				t.Fatal("expected error list")
			}
		})
	}
}

func TestGetCustomer(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, http.MethodGet, "/api/customers/1001", "")
	expectStatus(t, rec, http.StatusOK)
	var c CustomerResponse
	decode(t, rec, &c)
	if c.Email != "john@example.com" || !c.TotalBalance.Equal(d("5000")) || len(c.Accounts) != 1 {
		t.Fatalf("customer=%+v", c)
	}

	expectStatus(t, ta.do(t, http.MethodGet, "/api/customers/9999", ""), http.StatusNotFound)
	expectStatus(t, ta.do(t, http.MethodGet, "/api/customers/abc", ""), http.StatusBadRequest)

	rec = ta.do(t, http.MethodGet, "/api/customers", "")
	expectStatus(t, rec, http.StatusOK)
	var list struct {
		Customers []CustomerResponse `json:"customers"`
	}
	decode(t, rec, &list)
	if len(list.Customers) != 2 {
		t.Fatalf("customers=%d want 2", len(list.Customers))
	}
}

func TestVerifyCustomer(t *testing.T) {
	ta := newTestAPI(t)
	expectStatus(t, ta.do(t, http.MethodPost, "/api/customers/1001/verify", `{"email":"john@example.com","phone":"0000000000"}`), http.StatusUnprocessableEntity)
	expectStatus(t, ta.do(t, http.MethodPost, "/api/customers/1001/verify", `{"email":"john@example.com","phone":"9876543210"}`), http.StatusOK)
	if c, _ := ta.svc.CustomerDetails(1001); !c.Verified {
		t.Fatal("customer should be verified")
	}
}

func TestCreateAccount(t *testing.T) {
	ta := newTestAPI(t)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"below minimum", `{"accountNumber":"1000000002","accountType":"CHECKING","initialBalance":50}`, http.StatusUnprocessableEntity},
		{"unknown type", `{"accountNumber":"1000000002","accountType":"LOAN","initialBalance":500}`, http.StatusBadRequest},
		{"short number", `{"accountNumber":"123","accountType":"CHECKING","initialBalance":500}`, http.StatusBadRequest},
		{"duplicate", `{"accountNumber":"1000000001","accountType":"CHECKING","initialBalance":500}`, http.StatusConflict},
		{"created", `{"accountNumber":"1000000002","accountType":"CREDIT","initialBalance":"500.00"}`, http.StatusCreated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expectStatus(t, ta.do(t, http.MethodPost, "/api/customers/1001/accounts", tc.body), tc.want)
		})
	}

	rec := ta.do(t, http.MethodGet, "/api/customers/1001/accounts/1000000002", "")
	expectStatus(t, rec, http.StatusOK)
	var a AccountResponse
	decode(t, rec, &a)
	if a.Type != models.AccountCredit || !a.Balance.Equal(d("500")) || !a.InterestRate.Equal(d("0.15")) || !a.Active {
		t.Fatalf("account=%+v", a)
	}

	rec = ta.do(t, http.MethodGet, "/api/customers/1001/accounts", "")
	expectStatus(t, rec, http.StatusOK)
	var list struct {
		Accounts     []AccountResponse `json:"accounts"`
		TotalBalance decimal.Decimal   `json:"totalBalance"`
	}
	decode(t, rec, &list)
	if len(list.Accounts) != 2 || !list.TotalBalance.Equal(d("5500")) {
		t.Fatalf("accounts=%+v", list)
	}
}

func TestPostTransaction(t *testing.T) {
	ta := newTestAPI(t)
	path := "/api/customers/1001/accounts/1000000001/transactions"

	rec := ta.do(t, http.MethodPost, path, `{"type":"DEPOSIT","amount":500}`)
	expectStatus(t, rec, http.StatusOK)
	var resp struct {
		Balance decimal.Decimal `json:"balance"`
	}
	decode(t, rec, &resp)
	if !resp.Balance.Equal(d("5500")) {
		t.Fatalf("balance=%s want 5500", resp.Balance)
	}

	expectStatus(t, ta.do(t, http.MethodPost, path, `{"type":"WITHDRAWAL","amount":5401}`), http.StatusUnprocessableEntity)
	expectStatus(t, ta.do(t, http.MethodPost, path, `{"type":"WITHDRAWAL","amount":0}`), http.StatusBadRequest)
	expectStatus(t, ta.do(t, http.MethodPost, path, `{"type":"REFUND","amount":10}`), http.StatusBadRequest)
	expectStatus(t, ta.do(t, http.MethodPost, "/api/customers/1001/accounts/9999999999/transactions", `{"type":"DEPOSIT","amount":10}`), http.StatusNotFound)

	rec = ta.do(t, http.MethodPost, path, `{"type":"WITHDRAWAL","amount":5400}`)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &resp)
	if !resp.Balance.Equal(d("100")) {
		t.Fatalf("balance=%s want 100", resp.Balance)
	}

	rec = ta.do(t, http.MethodGet, path+"?limit=1", "")
	expectStatus(t, rec, http.StatusOK)
	var history struct {
		Transactions []TransactionResponse `json:"transactions"`
	}
	decode(t, rec, &history)
	if len(history.Transactions) != 1 || history.Transactions[0].Type != models.TransactionWithdrawal {
		t.Fatalf("history=%+v", history.Transactions)
	}

	rec = ta.do(t, http.MethodGet, path, "")
	decode(t, rec, &history)
	if len(history.Transactions) != 2 {
		t.Fatalf("history len=%d want 2", len(history.Transactions))
	}
	expectStatus(t, ta.do(t, http.MethodGet, path+"?limit=x", ""), http.StatusBadRequest)
}

func TestTransfer(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, http.MethodPost, "/api/transfers",
		`{"fromCustomerId":1001,"fromAccountNumber":"1000000001","toCustomerId":1002,"toAccountNumber":"2000000001","amount":1000}`)
	expectStatus(t, rec, http.StatusCreated)
	var resp struct {
		Status      string          `json:"status"`
		FromBalance decimal.Decimal `json:"fromBalance"`
		ToBalance   decimal.Decimal `json:"toBalance"`
	}
	decode(t, rec, &resp)
	if resp.Status != "success" || !resp.FromBalance.Equal(d("4000")) || !resp.ToBalance.Equal(d("4000")) {
		t.Fatalf("resp=%+v", resp)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"over daily limit", `{"fromCustomerId":1001,"fromAccountNumber":"1000000001","toCustomerId":1002,"toAccountNumber":"2000000001","amount":15000}`, http.StatusUnprocessableEntity},
		{"breaks floor", `{"fromCustomerId":1001,"fromAccountNumber":"1000000001","toCustomerId":1002,"toAccountNumber":"2000000001","amount":3901}`, http.StatusUnprocessableEntity},
		{"unknown source", `{"fromCustomerId":1001,"fromAccountNumber":"1000000009","toCustomerId":1002,"toAccountNumber":"2000000001","amount":10}`, http.StatusNotFound},
		{"unknown target", `{"fromCustomerId":1001,"fromAccountNumber":"1000000001","toCustomerId":1003,"toAccountNumber":"2000000001","amount":10}`, http.StatusNotFound},
		{"negative amount", `{"fromCustomerId":1001,"fromAccountNumber":"1000000001","toCustomerId":1002,"toAccountNumber":"2000000001","amount":-5}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expectStatus(t, ta.do(t, http.MethodPost, "/api/transfers", tc.body), tc.want)
		})
	}

	from, _ := ta.svc.AccountBalance(1001, "1000000001")
	to, _ := ta.svc.AccountBalance(1002, "2000000001")
	if !from.Equal(d("4000")) || !to.Equal(d("4000")) {
		t.Fatalf("rejected transfers moved money: from=%s to=%s", from, to)
	}
}

func TestCustomerTransactionsFilter(t *testing.T) {
	ta := newTestAPI(t)
	ta.svc.CreateAccount(1001, "1000000002", "CHECKING", d("1000"))
	ta.svc.ProcessTransaction(1001, "1000000001", service.OpDeposit, d("10"))
	ta.svc.ProcessTransaction(1001, "1000000002", service.OpWithdrawal, d("20"))
	ta.svc.TransferFunds(1001, "1000000001", 1001, "1000000002", d("30"))

	var resp struct {
		CustomerID   int64                 `json:"customerId"`
		Transactions []TransactionResponse `json:"transactions"`
	}
	rec := ta.do(t, http.MethodGet, "/api/customers/1001/transactions", "")
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &resp)
	if len(resp.Transactions) != 4 {
		t.Fatalf("all=%d want 4", len(resp.Transactions))
	}

	rec = ta.do(t, http.MethodGet, "/api/customers/1001/transactions?accountNumber=1000000002", "")
	decode(t, rec, &resp)
	if len(resp.Transactions) != 2 {
		t.Fatalf("by account=%d want 2", len(resp.Transactions))
	}

	rec = ta.do(t, http.MethodGet, "/api/customers/1001/transactions?type=TRANSFER_IN", "")
	decode(t, rec, &resp)
	if len(resp.Transactions) != 1 || resp.Transactions[0].AccountNumber != "1000000002" {
		t.Fatalf("by type=%+v", resp.Transactions)
	}

	rec = ta.do(t, http.MethodGet, "/api/customers/1002/transactions", "")
	decode(t, rec, &resp)
	if resp.Transactions == nil || len(resp.Transactions) != 0 {
		t.Fatalf("empty customer transactions=%v", resp.Transactions)
	}
}

func TestInterestAndCharges(t *testing.T) {
	ta := newTestAPI(t)
	base := "/api/customers/1001/accounts/1000000001"

	rec := ta.do(t, http.MethodPost, base+"/interest", "")
	expectStatus(t, rec, http.StatusOK)
	var resp struct {
		Balance decimal.Decimal `json:"balance"`
	}
	decode(t, rec, &resp)
	if !resp.Balance.Equal(d("5012.5")) {
		t.Fatalf("balance=%s want 5012.5", resp.Balance)
	}

	rec = ta.do(t, http.MethodPost, base+"/charges", `{"amount":12.5}`)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &resp)
	if !resp.Balance.Equal(d("5000")) {
		t.Fatalf("balance=%s want 5000", resp.Balance)
	}

	expectStatus(t, ta.do(t, http.MethodPost, base+"/charges", `{"amount":6000}`), http.StatusUnprocessableEntity)
}

func TestDeactivateActivateAndClose(t *testing.T) {
	ta := newTestAPI(t)
	base := "/api/customers/1001/accounts/1000000001"

	rec := ta.do(t, http.MethodPost, base+"/deactivate", "")
	expectStatus(t, rec, http.StatusOK)
	var a AccountResponse
	decode(t, rec, &a)
	if a.Active {
		t.Fatal("account should be inactive")
	}
	expectStatus(t, ta.do(t, http.MethodPost, base+"/transactions", `{"type":"DEPOSIT","amount":1}`), http.StatusUnprocessableEntity)

	rec = ta.do(t, http.MethodPost, base+"/activate", "")
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &a)
	if !a.Active {
		t.Fatal("account should be active")
	}

	expectStatus(t, ta.do(t, http.MethodDelete, base, ""), http.StatusUnprocessableEntity)
	if ta.svc.TotalAccounts() != 2 {
		t.Fatal("non-empty account must not be closed")
	}
}

func TestAdminLimitsAndStats(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, http.MethodGet, "/api/admin/limits", "")
	expectStatus(t, rec, http.StatusOK)
	var limits LimitsResponse
	decode(t, rec, &limits)
	if !limits.DailyTransferLimit.Equal(d("10000")) || !limits.MinimumAccountBalance.Equal(d("100")) {
		t.Fatalf("limits=%+v", limits)
	}

	rec = ta.do(t, http.MethodPut, "/api/admin/limits", `{"dailyTransferLimit":20000,"monthlyWithdrawalLimit":-1}`)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &limits)
	if !limits.DailyTransferLimit.Equal(d("20000")) || !limits.MonthlyWithdrawalLimit.Equal(d("50000")) {
		t.Fatalf("limits=%+v", limits)
	}
	if ta.saves != 1 {
		t.Fatalf("saves=%d want 1", ta.saves)
	}

	rec = ta.do(t, http.MethodGet, "/api/admin/stats", "")
	expectStatus(t, rec, http.StatusOK)
	var stats service.Stats
	decode(t, rec, &stats)
	if stats.Customers != 2 || stats.Accounts != 2 || !stats.TotalBalance.Equal(d("8000")) {
		t.Fatalf("stats=%+v", stats)
	}
}

func TestCORS(t *testing.T) {
	ta := newTestAPI(t, "http://frontend.test")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://frontend.test")
	rec := httptest.NewRecorder()
	ta.router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://frontend.test" {
		t.Fatalf("allow-origin=%q", got)
	}

	plain := newTestAPI(t)
	rec = httptest.NewRecorder()
	plain.router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("cors should be off, allow-origin=%q", got)
	}
}
