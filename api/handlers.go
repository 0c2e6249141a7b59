package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"retail-ledger/models"
	"retail-ledger/service"
	"retail-ledger/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Handlers exposes the banking service over HTTP.
type Handlers struct {
	svc     *service.BankingService
	logger  *slog.Logger
	persist func() error
}

// NewHandlers builds the handler set. persist runs after every successful
// mutation and may be nil.
func NewHandlers(logger *slog.Logger, svc *service.BankingService, persist func() error) *Handlers {
	return &Handlers{svc: svc, logger: logger, persist: persist}
}

func (h *Handlers) saved() {
	if h.persist == nil {
		return
	}
	if err := h.persist(); err != nil {
		h.logger.Error("persisting ledger failed", "error", err)
	}
}

func (h *Handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) createCustomer(c *gin.Context) {
	var req CustomerRequest
	if !bind(c, &req) {
		return
	}

	customer := models.NewCustomerWithContact(req.CustomerID, req.FirstName, req.LastName, req.Email, req.Phone, req.Address)
	if !h.svc.RegisterCustomer(customer) {
		c.JSON(http.StatusConflict, gin.H{"error": "Customer already exists"})
		return
	}
	h.saved()

	view, _ := h.svc.CustomerDetails(req.CustomerID)
	c.JSON(http.StatusCreated, toCustomerResponse(view))
}

func (h *Handlers) listCustomers(c *gin.Context) {
	views := h.svc.ListCustomers()
	customers := make([]CustomerResponse, len(views))
	for i, v := range views {
		customers[i] = toCustomerResponse(v)
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *Handlers) getCustomer(c *gin.Context) {
	customerID, ok := h.requireCustomer(c)
	if !ok {
		return
	}
	view, _ := h.svc.CustomerDetails(customerID)
	c.JSON(http.StatusOK, toCustomerResponse(view))
}

func (h *Handlers) verifyCustomer(c *gin.Context) {
	customerID, ok := h.requireCustomer(c)
	if !ok {
		return
	}
	var req VerifyRequest
	if !bind(c, &req) {
		return
	}
	if !h.svc.VerifyCustomer(customerID, req.Email, req.Phone) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Contact details do not match"})
		return
	}
	h.saved()
	c.JSON(http.StatusOK, gin.H{"customerId": customerID, "verified": true})
}

func (h *Handlers) createAccount(c *gin.Context) {
	customerID, ok := h.requireCustomer(c)
	if !ok {
		return
	}
	var req AccountRequest
	if !bind(c, &req) {
		return
	}

	if floor := h.svc.MinimumAccountBalance(); req.InitialBalance.LessThan(floor) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Initial balance must be at least %s", floor.StringFixed(2))})
		return
	}
	if !h.svc.CreateAccount(customerID, req.AccountNumber, req.AccountType, req.InitialBalance) {
		c.JSON(http.StatusConflict, gin.H{"error": "Account number already in use"})
		return
	}
	h.saved()

	account, _ := h.svc.AccountDetails(customerID, req.AccountNumber)
	c.JSON(http.StatusCreated, toAccountResponse(account))
}

func (h *Handlers) getCustomerAccounts(c *gin.Context) {
	customerID, ok := h.requireCustomer(c)
	if !ok {
		return
	}
	view, _ := h.svc.CustomerDetails(customerID)
	resp := toCustomerResponse(view)
	c.JSON(http.StatusOK, gin.H{
		"customerId":   customerID,
		"totalBalance": resp.TotalBalance,
		"accounts":     resp.Accounts,
	})
}

func (h *Handlers) getAccount(c *gin.Context) {
	customerID, number, ok := h.requireAccount(c)
	if !ok {
		return
	}
	account, _ := h.svc.AccountDetails(customerID, number)
	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (h *Handlers) closeAccount(c *gin.Context) {
	customerID, number, ok := h.requireAccount(c)
	if !ok {
		return
	}
	if !h.svc.CloseAccount(customerID, number) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Account balance must be zero to close"})
		return
	}
	h.saved()
	c.Status(http.StatusNoContent)
}

func (h *Handlers) postTransaction(c *gin.Context) {
	customerID, number, ok := h.requireAccount(c)
	if !ok {
		return
	}
	var req TransactionRequest
	if !bind(c, &req) {
		return
	}
	if req.Type != service.OpInterest && !validation.IsValidAmount(req.Amount) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Amount must be positive and at most 1000000"}})
		return
	}

	if !h.svc.ProcessTransaction(customerID, number, req.Type, req.Amount) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Transaction rejected"})
		return
	}
	h.saved()
	h.balanceResponse(c, customerID, number)
}

func (h *Handlers) getAccountTransactions(c *gin.Context) {
	customerID, number, ok := h.requireAccount(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"limit must be an integer"}})
			return
		}
		limit = n
	}

	history, _ := h.svc.TransactionHistory(customerID, number, limit)
	transactions := make([]TransactionResponse, len(history))
	for i, tx := range history {
		transactions[i] = toTransactionResponse(number, tx)
	}
	c.JSON(http.StatusOK, gin.H{
		"customerId":    customerID,
		"accountNumber": number,
		"transactions":  transactions,
	})
}

func (h *Handlers) applyInterest(c *gin.Context) {
	customerID, number, ok := h.requireAccount(c)
	if !ok {
		return
	}
	if !h.svc.ApplyInterest(customerID, number) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No interest to apply"})
		return
	}
	h.saved()
	h.balanceResponse(c, customerID, number)
}

func (h *Handlers) applyCharge(c *gin.Context) {
	customerID, number, ok := h.requireAccount(c)
	if !ok {
		return
	}
	var req ChargeRequest
	if !bind(c, &req) {
		return
	}
	if !h.svc.ApplyMonthlyCharges(customerID, number, req.Amount) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Charge rejected"})
		return
	}
	h.saved()
	h.balanceResponse(c, customerID, number)
}

func (h *Handlers) deactivateAccount(c *gin.Context) {
	customerID, number, ok := h.requireAccount(c)
	if !ok {
		return
	}
	if !h.svc.DeactivateAccount(customerID, number) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Only accounts with a positive balance can be deactivated"})
		return
	}
	h.saved()
	account, _ := h.svc.AccountDetails(customerID, number)
	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (h *Handlers) activateAccount(c *gin.Context) {
	customerID, number, ok := h.requireAccount(c)
	if !ok {
		return
	}
	h.svc.ActivateAccount(customerID, number)
	h.saved()
	account, _ := h.svc.AccountDetails(customerID, number)
	c.JSON(http.StatusOK, toAccountResponse(account))
}

func (h *Handlers) getCustomerTransactions(c *gin.Context) {
	customerID, ok := h.requireCustomer(c)
	if !ok {
		return
	}

	accountNumber := c.Query("accountNumber")
	txType := models.TransactionType(c.Query("type"))
	txs, _ := h.svc.CustomerTransactions(customerID, accountNumber, txType)

	resp := struct {
		CustomerID   int64                 `json:"customerId"`
		Transactions []TransactionResponse `json:"transactions"`
	}{
		CustomerID:   customerID,
		Transactions: toCustomerTransactions(txs),
	}
	h.logger.Debug("fetched customer transactions", "customer_id", customerID, "count", len(resp.Transactions))
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) transferMoney(c *gin.Context) {
	var req TransferRequest
	if !bind(c, &req) {
		return
	}

	var errs []string
	if !validation.IsValidAmount(req.Amount) {
		errs = append(errs, "Amount must be positive and at most 1000000")
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	if _, found := h.svc.AccountDetails(req.FromCustomerID, req.FromAccountNumber); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Source account %s not found", req.FromAccountNumber)})
		return
	}
	if _, found := h.svc.AccountDetails(req.ToCustomerID, req.ToAccountNumber); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Destination account %s not found", req.ToAccountNumber)})
		return
	}
	if limit := h.svc.DailyTransferLimit(); req.Amount.GreaterThan(limit) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Amount exceeds daily transfer limit of %s", limit.StringFixed(2))})
		return
	}

	if !h.svc.TransferFunds(req.FromCustomerID, req.FromAccountNumber, req.ToCustomerID, req.ToAccountNumber, req.Amount) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Transfer rejected"})
		return
	}
	h.saved()

	from, _ := h.svc.AccountBalance(req.FromCustomerID, req.FromAccountNumber)
	to, _ := h.svc.AccountBalance(req.ToCustomerID, req.ToAccountNumber)
	c.JSON(http.StatusCreated, gin.H{
		"status":      "success",
		"fromBalance": from,
		"toBalance":   to,
	})
}

func (h *Handlers) getLimits(c *gin.Context) {
	c.JSON(http.StatusOK, h.limits())
}

// updateLimits applies the supplied limits; non-positive values are ignored
// and the response shows what is in effect.
func (h *Handlers) updateLimits(c *gin.Context) {
	var req LimitsRequest
	if !bind(c, &req) {
		return
	}
	if req.DailyTransferLimit != nil {
		h.svc.SetDailyTransferLimit(*req.DailyTransferLimit)
	}
	if req.MonthlyWithdrawalLimit != nil {
		h.svc.SetMonthlyWithdrawalLimit(*req.MonthlyWithdrawalLimit)
	}
	h.saved()
	c.JSON(http.StatusOK, h.limits())
}

func (h *Handlers) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

func (h *Handlers) limits() LimitsResponse {
	return LimitsResponse{
		DailyTransferLimit:     h.svc.DailyTransferLimit(),
		MonthlyWithdrawalLimit: h.svc.MonthlyWithdrawalLimit(),
		MinimumAccountBalance:  h.svc.MinimumAccountBalance(),
	}
}

func (h *Handlers) balanceResponse(c *gin.Context, customerID int64, number string) {
	balance, _ := h.svc.AccountBalance(customerID, number)
	c.JSON(http.StatusOK, gin.H{
		"customerId":    customerID,
		"accountNumber": number,
		"balance":       balance,
	})
}

func (h *Handlers) requireCustomer(c *gin.Context) (int64, bool) {
	customerID, err := strconv.ParseInt(c.Param("customerId"), 10, 64)
	if err != nil || !validation.IsValidCustomerID(customerID) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Invalid customer ID"}})
		return 0, false
	}
	if _, found := h.svc.Customer(customerID); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return 0, false
	}
	return customerID, true
}

func (h *Handlers) requireAccount(c *gin.Context) (int64, string, bool) {
	customerID, ok := h.requireCustomer(c)
	if !ok {
		return 0, "", false
	}
	number := c.Param("accountNumber")
	if _, found := h.svc.AccountDetails(customerID, number); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return 0, "", false
	}
	return customerID, number, true
}

// bind decodes the JSON body into req and writes a 400 listing every failed
// field when it does not validate.
func bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"Invalid request body"}})
		return false
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed the %q rule", fe.Field(), fe.Tag()))
	}
	c.JSON(http.StatusBadRequest, gin.H{"errors": msgs})
	return false
}
