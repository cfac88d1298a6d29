package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/telemetry"
)

// AccountUseCase 帳戶建立與查詢
type AccountUseCase struct {
	store  AccountStore
	logger *zap.Logger
}

func NewAccountUseCase(store AccountStore, logger *zap.Logger) *AccountUseCase {
	return &AccountUseCase{
		store:  store,
		logger: logger.Named("account"),
	}
}

// Create 建立帳戶
func (u *AccountUseCase) Create(ctx context.Context, account domain.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	if err := u.store.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicateAccountID) {
			return &domain.DuplicateAccountError{AccountID: account.ID}
		}
		return err
	}
	telemetry.AccountCount.Inc()
	return nil
}

// Get 取得帳戶快照
func (u *AccountUseCase) Get(ctx context.Context, accountID string) (domain.Account, error) {
	return u.store.Get(ctx, accountID)
}

// List 取得所有帳戶快照
func (u *AccountUseCase) List(ctx context.Context) ([]domain.Account, error) {
	return u.store.List(ctx)
}

// Seed 從 loader 載入初始帳戶並寫入 Store
//
// 參數:
//
//	ctx: 上下文
//	loader: 帳戶來源
//
// 回傳:
//
//	int: 載入的帳戶數
//	error: 載入或建立錯誤
func (u *AccountUseCase) Seed(ctx context.Context, loader AccountLoader) (int, error) {
	accounts, err := loader.LoadAllAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load accounts: %w", err)
	}
	for _, account := range accounts {
		if err := u.Create(ctx, account); err != nil {
			return 0, fmt.Errorf("failed to seed account %q: %w", account.ID, err)
		}
	}
	u.logger.Info("accounts seeded", zap.Int("count", len(accounts)))
	return len(accounts), nil
}
