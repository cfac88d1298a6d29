package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction 餘額變動方向
type Direction string

const (
	DirectionDebited  Direction = "debited"
	DirectionCredited Direction = "credited"
)

const notificationMessageTemplate = "Your account %s has been %s by %s"

// TransferMessage 產生通知帳戶持有人的文字
func TransferMessage(accountID string, direction Direction, amount decimal.Decimal) string {
	return fmt.Sprintf(notificationMessageTemplate, accountID, direction, FormatAmount(amount))
}

// Notification 送往通知管道的單筆訊息
type Notification struct {
	ID        uuid.UUID `json:"id"`
	AccountID string    `json:"account_id"`
	// Balance: 通知建立當下的帳戶餘額快照
	Balance   decimal.Decimal `json:"balance"`
	Message   string          `json:"message"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewNotification(account Account, message string) Notification {
	return Notification{
		ID:        uuid.New(),
		AccountID: account.ID,
		Balance:   account.Balance,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}
