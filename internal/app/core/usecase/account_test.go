package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

type staticLoader struct {
	accounts []domain.Account
	err      error
}

func (l staticLoader) LoadAllAccounts(ctx context.Context) ([]domain.Account, error) {
	return l.accounts, l.err
}

func TestAccountUseCase_CreateAndGet(t *testing.T) {
	uc := usecase.NewAccountUseCase(memory.NewMutexStore(), zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, uc.Create(ctx, domain.NewAccount("Id-123", dec("1000"))))

	account, err := uc.Get(ctx, "Id-123")
	require.NoError(t, err)
	assert.Equal(t, "Id-123", account.ID)
	assert.True(t, account.Balance.Equal(dec("1000")))

	err = uc.Create(ctx, domain.NewAccount("Id-123", dec("1")))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateAccountID)
	assert.Equal(t, "Account id Id-123 already exists!", err.Error())

	assert.ErrorIs(t, uc.Create(ctx, domain.NewAccount("Id-456", dec("-1"))), domain.ErrNegativeAmount)
	assert.ErrorIs(t, uc.Create(ctx, domain.NewAccount("", dec("1"))), domain.ErrInvalidAccountID)
	assert.ErrorIs(t, uc.Create(ctx, domain.NewAccount("Id-789", dec("1e-2000000"))), domain.ErrAmountPrecision)
	assert.ErrorIs(t, uc.Create(ctx, domain.NewAccount("Id-789", dec("1e21"))), domain.ErrAmountTooLarge)

	_, err = uc.Get(ctx, "Id-789")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountUseCase_Seed(t *testing.T) {
	uc := usecase.NewAccountUseCase(memory.NewMutexStore(), zaptest.NewLogger(t))
	ctx := context.Background()

	n, err := uc.Seed(ctx, staticLoader{accounts: []domain.Account{
		domain.NewAccount("1", dec("15.000")),
		domain.NewAccount("2", dec("20.000")),
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	accounts, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "1", accounts[0].ID)
	assert.Equal(t, "2", accounts[1].ID)
}

func TestAccountUseCase_SeedErrors(t *testing.T) {
	ctx := context.Background()

	uc := usecase.NewAccountUseCase(memory.NewMutexStore(), zaptest.NewLogger(t))
	_, err := uc.Seed(ctx, staticLoader{err: errors.New("connection refused")})
	assert.ErrorContains(t, err, "connection refused")

	uc = usecase.NewAccountUseCase(memory.NewMutexStore(), zaptest.NewLogger(t))
	_, err = uc.Seed(ctx, staticLoader{accounts: []domain.Account{
		domain.NewAccount("1", dec("1")),
		domain.NewAccount("1", dec("2")),
	}})
	assert.ErrorIs(t, err, domain.ErrDuplicateAccountID)
}
