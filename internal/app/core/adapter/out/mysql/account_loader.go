package mysql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-transfer/pkg/mysql"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	ID        string          `gorm:"primaryKey;size:64"`
	Balance   decimal.Decimal `gorm:"type:decimal(38,18)"`
	UpdatedAt int64           `gorm:"autoUpdateTime:milli"`
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

// AccountLoader 啟動時從 MySQL 讀取帳戶作為記憶體帳本的初始資料
// 之後的轉帳不會寫回資料庫
type AccountLoader struct {
	client *mysql.Client
}

func NewAccountLoader(client *mysql.Client) *AccountLoader {
	return &AccountLoader{
		client: client,
	}
}

// LoadAllAccounts implements usecase.AccountLoader.
func (l *AccountLoader) LoadAllAccounts(ctx context.Context) ([]domain.Account, error) {
	var rows []sqlAccount
	if err := l.client.DB().WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}

	accounts := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, domain.NewAccount(row.ID, row.Balance))
	}
	return accounts, nil
}

var _ usecase.AccountLoader = (*AccountLoader)(nil)
