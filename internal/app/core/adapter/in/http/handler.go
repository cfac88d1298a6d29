package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

// TransferIDHeader 成功轉帳時回傳的交易 ID header
const TransferIDHeader = "X-Transfer-Id"

type Handler struct {
	transfers *usecase.TransferUseCase
	accounts  *usecase.AccountUseCase
	logger    *zap.Logger
}

func NewHandler(transfers *usecase.TransferUseCase, accounts *usecase.AccountUseCase, logger *zap.Logger) *Handler {
	return &Handler{
		transfers: transfers,
		accounts:  accounts,
		logger:    logger.Named("http"),
	}
}

// TransferRequest POST /v1/amount/transfer 的 body
type TransferRequest struct {
	AccountFromID  string      `json:"accountFromId" binding:"required"`
	AccountToID    string      `json:"accountToId" binding:"required"`
	TransferAmount json.Number `json:"transferAmount" binding:"required,nonnegative_amount"`
}

// Transfer handles POST /v1/amount/transfer
func (h *Handler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.TransferAmount.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.transfers.Transfer(c.Request.Context(), domain.TransferRequest{
		FromAccountID: req.AccountFromID,
		ToAccountID:   req.AccountToID,
		Amount:        amount,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header(TransferIDHeader, receipt.ID.String())
	c.Status(http.StatusOK)
}

// CreateAccountRequest POST /v1/accounts 的 body
type CreateAccountRequest struct {
	AccountID string      `json:"accountId" binding:"required"`
	Balance   json.Number `json:"balance" binding:"required,nonnegative_amount"`
}

// AccountResponse 帳戶查詢結果
// Balance 以字串輸出，保留小數位數
type AccountResponse struct {
	AccountID string `json:"accountId"`
	Balance   string `json:"balance"`
}

func toAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: account.ID,
		Balance:   domain.FormatAmount(account.Balance),
	}
}

// CreateAccount handles POST /v1/accounts
func (h *Handler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	balance, err := decimal.NewFromString(req.Balance.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account := domain.NewAccount(req.AccountID, balance)
	if err := h.accounts.Create(c.Request.Context(), account); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccount handles GET /v1/accounts/:accountId
func (h *Handler) GetAccount(c *gin.Context) {
	account, err := h.accounts.Get(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAccountResponse(account))
}

// ListAccounts handles GET /v1/accounts
func (h *Handler) ListAccounts(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, toAccountResponse(account))
	}
	c.JSON(http.StatusOK, resp)
}

// writeError 業務錯誤以純文字回傳訊息，其餘一律 500
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInconsistentState):
		h.logger.Error("transfer left ledger inconsistent", zap.Error(err))
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrDuplicateAccountID):
		c.String(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		c.String(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrAmountPrecision),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidAccountID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
