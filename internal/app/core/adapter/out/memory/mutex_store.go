package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/sasha-s/go-deadlock"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

// EnableLockDiagnostics 開關帳戶鎖的死鎖偵測 (go-deadlock)
// 只能在啟動時、任何 Store 操作之前呼叫
func EnableLockDiagnostics(enabled bool) {
	deadlock.Opts.Disable = !enabled
}

// lockedAccount 單一帳戶的餘額與它自己的鎖
type lockedAccount struct {
	mu      deadlock.Mutex
	balance decimal.Decimal
}

// MutexStore 以「每個帳戶一把鎖」實作的 AccountStore
//
// 結構:
//
//	mu: 只保護 accounts map 本身 (新增帳戶 / 查找帳戶)
//	accounts: 帳戶 ID 對應的帳戶，帳戶建立後指標不變且永不刪除
//
// 任何操作最多只持有一把帳戶鎖，不同帳戶之間不會互相等待，也不會死鎖
type MutexStore struct {
	mu       sync.RWMutex
	accounts map[string]*lockedAccount
}

// NewMutexStore 建立一個空的 MutexStore
func NewMutexStore() *MutexStore {
	return &MutexStore{
		accounts: make(map[string]*lockedAccount),
	}
}

// lookup 只在讀鎖下查 map，拿到帳戶指標後立刻放開
func (s *MutexStore) lookup(accountID string) (*lockedAccount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[accountID]
	return account, ok
}

// Get 取得帳戶快照
//
// 參數:
//
//	ctx: 上下文
//	accountID: 帳戶 ID
//
// 回傳:
//
//	domain.Account: 帳戶快照 (值複製)
//	error: domain.ErrAccountNotFound
func (s *MutexStore) Get(ctx context.Context, accountID string) (domain.Account, error) {
	account, ok := s.lookup(accountID)
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	account.mu.Lock()
	balance := account.balance
	account.mu.Unlock()
	return domain.NewAccount(accountID, balance), nil
}

// Debit 檢查餘額與扣款在同一把帳戶鎖內完成
//
// 參數:
//
//	ctx: 上下文
//	accountID: 帳戶 ID
//	amount: 扣款金額
//
// 回傳:
//
//	error: domain.ErrInsufficientFunds / domain.ErrAccountNotFound / domain.ErrNegativeAmount
func (s *MutexStore) Debit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domain.ErrNegativeAmount
	}
	account, ok := s.lookup(accountID)
	if !ok {
		return domain.ErrAccountNotFound
	}

	account.mu.Lock()
	defer account.mu.Unlock()
	if account.balance.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}
	account.balance = account.balance.Sub(amount)
	return nil
}

// Credit 入帳
func (s *MutexStore) Credit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domain.ErrNegativeAmount
	}
	account, ok := s.lookup(accountID)
	if !ok {
		return domain.ErrAccountNotFound
	}

	account.mu.Lock()
	defer account.mu.Unlock()
	account.balance = account.balance.Add(amount)
	return nil
}

// Create 建立帳戶
func (s *MutexStore) Create(ctx context.Context, account domain.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; ok {
		return domain.ErrDuplicateAccountID
	}
	s.accounts[account.ID] = &lockedAccount{balance: account.Balance}
	return nil
}

// List 依 ID 排序回傳所有帳戶快照
// 每個帳戶各自一致，但整體不是同一時間點的快照
func (s *MutexStore) List(ctx context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.accounts))
	entries := make([]*lockedAccount, 0, len(s.accounts))
	for id, account := range s.accounts {
		ids = append(ids, id)
		entries = append(entries, account)
	}
	s.mu.RUnlock()

	result := make([]domain.Account, len(entries))
	for i, account := range entries {
		account.mu.Lock()
		result[i] = domain.NewAccount(ids[i], account.balance)
		account.mu.Unlock()
	}
	sortAccounts(result)
	return result, nil
}

func sortAccounts(accounts []domain.Account) {
	slices.SortFunc(accounts, func(a, b domain.Account) int {
		return strings.Compare(a.ID, b.ID)
	})
}

var _ usecase.AccountStore = (*MutexStore)(nil)
