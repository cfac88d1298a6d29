package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferRequest 轉帳請求，只存在於單次 Transfer 呼叫期間
type TransferRequest struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
}

// Validate 防禦性檢查，API 層應已先驗證過
func (r TransferRequest) Validate() error {
	if r.FromAccountID == "" || r.ToAccountID == "" {
		return ErrInvalidAccountID
	}
	return ValidateAmount(r.Amount)
}

// IsSelfTransfer 同一帳戶轉給自己，結果餘額不變
func (r TransferRequest) IsSelfTransfer() bool {
	return r.FromAccountID == r.ToAccountID
}

// TransferReceipt 成功轉帳的回執
type TransferReceipt struct {
	// ID: UUIDv7，可依時間排序，方便追蹤
	ID            uuid.UUID
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
}
