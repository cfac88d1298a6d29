package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

// storeFactories 兩種 Store 實作跑同一套測試
func storeFactories() map[string]func(t *testing.T) usecase.AccountStore {
	return map[string]func(t *testing.T) usecase.AccountStore{
		"mutex": func(t *testing.T) usecase.AccountStore {
			return NewMutexStore()
		},
		"actor": func(t *testing.T) usecase.AccountStore {
			s := NewActorStore(16)
			s.Start()
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seed(t *testing.T, store usecase.AccountStore, balances map[string]string) {
	t.Helper()
	for id, balance := range balances {
		require.NoError(t, store.Create(context.Background(), domain.NewAccount(id, dec(balance))))
	}
}

func balanceOf(t *testing.T, store usecase.AccountStore, id string) decimal.Decimal {
	t.Helper()
	account, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	return account.Balance
}

func TestStore_CreateAndGet(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()

			require.NoError(t, store.Create(ctx, domain.NewAccount("1", dec("15.000"))))

			account, err := store.Get(ctx, "1")
			require.NoError(t, err)
			assert.Equal(t, "1", account.ID)
			assert.True(t, account.Balance.Equal(dec("15")))

			_, err = store.Get(ctx, "missing")
			assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		})
	}
}

func TestStore_CreateRejectsInvalidAccounts(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()
			require.NoError(t, store.Create(ctx, domain.NewAccount("1", dec("1"))))

			assert.ErrorIs(t, store.Create(ctx, domain.NewAccount("1", dec("2"))), domain.ErrDuplicateAccountID)
			assert.ErrorIs(t, store.Create(ctx, domain.NewAccount("", dec("2"))), domain.ErrInvalidAccountID)
			assert.ErrorIs(t, store.Create(ctx, domain.NewAccount("2", dec("-0.01"))), domain.ErrNegativeAmount)

			// 重複建立不可覆蓋原本的餘額
			assert.True(t, balanceOf(t, store, "1").Equal(dec("1")))
		})
	}
}

func TestStore_DebitAndCredit(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()
			seed(t, store, map[string]string{"1": "15.000"})

			require.NoError(t, store.Debit(ctx, "1", dec("10.000")))
			assert.True(t, balanceOf(t, store, "1").Equal(dec("5")))

			require.NoError(t, store.Credit(ctx, "1", dec("0.5")))
			assert.True(t, balanceOf(t, store, "1").Equal(dec("5.5")))

			// 剛好扣到 0
			require.NoError(t, store.Debit(ctx, "1", dec("5.5")))
			assert.True(t, balanceOf(t, store, "1").IsZero())
		})
	}
}

func TestStore_DebitInsufficientFundsLeavesBalance(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			seed(t, store, map[string]string{"1": "15.000"})

			err := store.Debit(context.Background(), "1", dec("15.001"))
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
			assert.True(t, balanceOf(t, store, "1").Equal(dec("15")))
		})
	}
}

func TestStore_MissingAccountAndNegativeAmount(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			ctx := context.Background()
			seed(t, store, map[string]string{"1": "15"})

			assert.ErrorIs(t, store.Debit(ctx, "missing", dec("1")), domain.ErrAccountNotFound)
			assert.ErrorIs(t, store.Credit(ctx, "missing", dec("1")), domain.ErrAccountNotFound)
			assert.ErrorIs(t, store.Debit(ctx, "1", dec("-1")), domain.ErrNegativeAmount)
			assert.ErrorIs(t, store.Credit(ctx, "1", dec("-1")), domain.ErrNegativeAmount)
			assert.True(t, balanceOf(t, store, "1").Equal(dec("15")))
		})
	}
}

func TestStore_ListSortedByID(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			seed(t, store, map[string]string{"b": "2", "a": "1", "c": "3"})

			accounts, err := store.List(context.Background())
			require.NoError(t, err)
			require.Len(t, accounts, 3)
			assert.Equal(t, "a", accounts[0].ID)
			assert.Equal(t, "b", accounts[1].ID)
			assert.Equal(t, "c", accounts[2].ID)
		})
	}
}

// 同一帳戶被大量併發扣款：成功次數必須剛好是 floor(B/a)，餘額不可為負
func TestStore_ConcurrentDebitsAreLinearizable(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			seed(t, store, map[string]string{"1": "100"})

			const workers = 64
			amount := dec("7")
			var wg sync.WaitGroup
			var success, insufficient atomic.Int64
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := store.Debit(context.Background(), "1", amount)
					switch {
					case err == nil:
						success.Add(1)
					case errors.Is(err, domain.ErrInsufficientFunds):
						insufficient.Add(1)
					default:
						t.Errorf("unexpected debit error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, int64(14), success.Load())
			assert.Equal(t, int64(workers-14), insufficient.Load())
			assert.True(t, balanceOf(t, store, "1").Equal(dec("2")))
		})
	}
}

func TestStore_ConcurrentCreditsAreNotLost(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			seed(t, store, map[string]string{"1": "0"})

			const workers = 200
			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, store.Credit(context.Background(), "1", dec("0.01")))
				}()
			}
			wg.Wait()

			assert.True(t, balanceOf(t, store, "1").Equal(dec("2")))
		})
	}
}
