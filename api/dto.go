package api

import (
	"time"

	"retail-ledger/models"
	"retail-ledger/service"
	"retail-ledger/store"

	"github.com/shopspring/decimal"
)

type CustomerRequest struct {
	CustomerID int64  `json:"customerId" binding:"required,customer_id"`
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Email      string `json:"email" binding:"required,contact_email"`
	Phone      string `json:"phone" binding:"required,phone10"`
	Address    string `json:"address"`
}

type VerifyRequest struct {
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

type AccountRequest struct {
	AccountNumber  string          `json:"accountNumber" binding:"required,account_number"`
	AccountType    string          `json:"accountType" binding:"required,account_type"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

type TransactionRequest struct {
	Type   string          `json:"type" binding:"required,oneof=DEPOSIT WITHDRAWAL INTEREST CHARGE"`
	Amount decimal.Decimal `json:"amount"`
}

type ChargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type TransferRequest struct {
	FromCustomerID    int64           `json:"fromCustomerId" binding:"required,customer_id"`
	FromAccountNumber string          `json:"fromAccountNumber" binding:"required"`
	ToCustomerID      int64           `json:"toCustomerId" binding:"required,customer_id"`
	ToAccountNumber   string          `json:"toAccountNumber" binding:"required"`
	Amount            decimal.Decimal `json:"amount"`
}

type LimitsRequest struct {
	DailyTransferLimit     *decimal.Decimal `json:"dailyTransferLimit"`
	MonthlyWithdrawalLimit *decimal.Decimal `json:"monthlyWithdrawalLimit"`
}

type LimitsResponse struct {
	DailyTransferLimit     decimal.Decimal `json:"dailyTransferLimit"`
	MonthlyWithdrawalLimit decimal.Decimal `json:"monthlyWithdrawalLimit"`
	MinimumAccountBalance  decimal.Decimal `json:"minimumAccountBalance"`
}

type AccountResponse struct {
	AccountNumber  string             `json:"accountNumber"`
	CustomerID     int64              `json:"customerId"`
	Type           models.AccountType `json:"type"`
	Balance        decimal.Decimal    `json:"balance"`
	MinimumBalance decimal.Decimal    `json:"minimumBalance"`
	InterestRate   decimal.Decimal    `json:"interestRate"`
	Active         bool               `json:"active"`
	Currency       string             `json:"currency"`
}

type CustomerResponse struct {
	CustomerID   int64             `json:"customerId"`
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Address      string            `json:"address,omitempty"`
	Verified     bool              `json:"verified"`
	TotalBalance decimal.Decimal   `json:"totalBalance"`
	Accounts     []AccountResponse `json:"accounts"`
}

type TransactionResponse struct {
	ID            string                 `json:"id"`
	AccountNumber string                 `json:"accountNumber,omitempty"`
	Type          models.TransactionType `json:"type"`
	Amount        decimal.Decimal        `json:"amount"`
	BalanceAfter  decimal.Decimal        `json:"balanceAfter"`
	Description   string                 `json:"description,omitempty"`
	CreatedAt     string                 `json:"createdAt"`
}

func toAccountResponse(a models.AccountState) AccountResponse {
	return AccountResponse{
		AccountNumber:  a.Number,
		CustomerID:     a.CustomerID,
		Type:           a.Type,
		Balance:        a.Balance,
		MinimumBalance: a.MinimumBalance,
		InterestRate:   a.InterestRate,
		Active:         a.Active,
		Currency:       a.Currency,
	}
}

func toCustomerResponse(v service.CustomerView) CustomerResponse {
	resp := CustomerResponse{
		CustomerID:   v.ID,
		FirstName:    v.FirstName,
		LastName:     v.LastName,
		Email:        v.Email,
		Phone:        v.Phone,
		Address:      v.Address,
		Verified:     v.Verified,
		TotalBalance: v.TotalBalance,
		Accounts:     make([]AccountResponse, 0, len(v.Accounts)),
	}
	for _, a := range v.Accounts {
		resp.Accounts = append(resp.Accounts, toAccountResponse(a))
	}
	return resp
}

func toTransactionResponse(accountNumber string, tx models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:            tx.ID,
		AccountNumber: accountNumber,
		Type:          tx.Type,
		Amount:        tx.Amount,
		BalanceAfter:  tx.BalanceAfter,
		Description:   tx.Description,
		CreatedAt:     tx.CreatedAt.Format(time.RFC3339),
	}
}

func toCustomerTransactions(txs []store.CustomerTransaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionResponse(tx.AccountNumber, tx.Transaction)
	}
	return out
}
