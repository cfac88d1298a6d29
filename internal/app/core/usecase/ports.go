package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

// AccountStore 是帳戶餘額的唯一擁有者
// 所有餘額變動都必須透過 Debit / Credit，且每個呼叫對單一帳戶是原子的
type AccountStore interface {
	// Get 取得帳戶快照 (值複製)
	Get(ctx context.Context, accountID string) (domain.Account, error)
	// Debit 原子地檢查餘額並扣款，餘額不足回傳 domain.ErrInsufficientFunds 且不變動狀態
	Debit(ctx context.Context, accountID string, amount decimal.Decimal) error
	// Credit 原子地入帳
	Credit(ctx context.Context, accountID string, amount decimal.Decimal) error
	// Create 建立新帳戶，ID 重複回傳 domain.ErrDuplicateAccountID
	Create(ctx context.Context, account domain.Account) error
	// List 依 ID 排序回傳所有帳戶快照
	List(ctx context.Context) ([]domain.Account, error)
}

// AccountLoader 啟動時載入初始帳戶的來源 (設定檔 / MySQL)
type AccountLoader interface {
	LoadAllAccounts(ctx context.Context) ([]domain.Account, error)
}

// Notifier 通知帳戶持有人餘額變動
// fire-and-forget：不回傳錯誤，也不可阻塞轉帳流程
type Notifier interface {
	Notify(ctx context.Context, account domain.Account, message string)
}
