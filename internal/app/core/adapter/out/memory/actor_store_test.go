package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

func TestActorStore_RejectsAfterClose(t *testing.T) {
	s := NewActorStore(4)
	s.Start()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, domain.NewAccount("1", dec("1"))))

	require.NoError(t, s.Close())
	// 重複關閉不會卡住
	require.NoError(t, s.Close())

	_, err := s.Get(ctx, "1")
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	assert.ErrorIs(t, s.Debit(ctx, "1", dec("1")), domain.ErrStoreClosed)
}

func TestActorStore_CloseWithoutStart(t *testing.T) {
	s := NewActorStore(0)
	require.NoError(t, s.Close())

	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
}

// Close 前已送出的請求都必須得到回應
func TestActorStore_CloseAnswersInFlightRequests(t *testing.T) {
	s := NewActorStore(1)
	s.Start()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, domain.NewAccount("1", dec("0"))))

	var wg sync.WaitGroup
	var mu sync.Mutex
	credited := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Credit(ctx, "1", dec("1")); err == nil {
				mu.Lock()
				credited++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrStoreClosed)
			}
		}()
	}
	require.NoError(t, s.Close())
	wg.Wait()

	// 關閉後無法再查詢，直接看內部狀態 (run loop 已結束)
	assert.True(t, s.accounts["1"].Equal(decimal.NewFromInt(int64(credited))))
}
