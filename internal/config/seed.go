package config

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

// SeedLoader 以設定檔中的 seed.accounts 作為初始帳戶
type SeedLoader struct {
	accounts []SeedAccount
}

func NewSeedLoader(cfg SeedConfig) *SeedLoader {
	return &SeedLoader{accounts: cfg.Accounts}
}

// LoadAllAccounts implements usecase.AccountLoader.
func (l *SeedLoader) LoadAllAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts := make([]domain.Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		balance, err := decimal.NewFromString(a.Balance)
		if err != nil {
			return nil, fmt.Errorf("invalid balance %q for account %q: %w", a.Balance, a.ID, err)
		}
		accounts = append(accounts, domain.NewAccount(a.ID, balance))
	}
	return accounts, nil
}

var _ usecase.AccountLoader = (*SeedLoader)(nil)
