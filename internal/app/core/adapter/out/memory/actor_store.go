package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
)

const defaultQueueSize = 1000

type opType uint8

const (
	opGet opType = iota + 1
	opDebit
	opCredit
	opCreate
	opList
)

// storeRequest 操作請求包裝 channel，讓呼叫端可以等待結果
type storeRequest struct {
	op      opType
	id      string
	amount  decimal.Decimal
	account domain.Account   // Create 的輸入 / Get 的輸出
	list    []domain.Account // List 的輸出
	Result  chan error       // 呼叫端等這個 channel
}

func (r *storeRequest) reset() {
	r.op = 0
	r.id = ""
	r.amount = decimal.Decimal{}
	r.account = domain.Account{}
	r.list = nil
}

// ActorStore 單一 goroutine 擁有所有帳戶狀態的 AccountStore (LMAX 風格)
// 所有操作經由輸送帶依序執行，run loop 內不需要任何鎖
type ActorStore struct {
	// 只有 run loop 可以讀寫
	accounts map[string]decimal.Decimal
	// 輸送帶 負責接收請求
	requestChan chan *storeRequest
	// Pool 減少 GC 壓力
	requestPool sync.Pool

	// mu 保護 closed，確保 Close 之後沒有人還在往輸送帶送請求
	mu      sync.RWMutex
	closed  bool
	quit    chan struct{}
	stopped chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
}

// NewActorStore 建立一個新的 ActorStore，需呼叫 Start 才會開始處理請求
//
// 參數:
//
//	queueSize: 輸送帶緩衝大小，<= 0 使用預設值
//
// 回傳:
//
//	*ActorStore: ActorStore 實例
func NewActorStore(queueSize int) *ActorStore {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &ActorStore{
		accounts:    make(map[string]decimal.Decimal),
		requestChan: make(chan *storeRequest, queueSize),
		requestPool: sync.Pool{
			New: func() interface{} {
				return &storeRequest{
					Result: make(chan error, 1),
				}
			},
		},
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start 啟動核心 loop (非同步)，重複呼叫無作用
func (s *ActorStore) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

// Close 停止接受新請求，處理完輸送帶上剩下的請求後返回
func (s *ActorStore) Close() error {
	s.closeOnce.Do(func() {
		// 確保 loop 有在跑，否則緩衝區內的請求沒人處理
		s.Start()

		s.mu.Lock()
		s.closed = true
		close(s.quit)
		s.mu.Unlock()

		<-s.stopped
	})
	return nil
}

func (s *ActorStore) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.quit:
			// 收到關閉信號，把剩下的請求處理完
			s.drain()
			return
		case req := <-s.requestChan:
			s.process(req)
		}
	}
}

func (s *ActorStore) drain() {
	for {
		select {
		case req := <-s.requestChan:
			s.process(req)
		default:
			return
		}
	}
}

// submit 把請求放上輸送帶並等待結果
// ctx 只能取消「尚未放上輸送帶」的請求；已送出的請求一定會被執行
func (s *ActorStore) submit(ctx context.Context, req *storeRequest) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return domain.ErrStoreClosed
	}
	select {
	case s.requestChan <- req:
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}
	s.mu.RUnlock()
	return <-req.Result
}

func (s *ActorStore) acquire(op opType) *storeRequest {
	req := s.requestPool.Get().(*storeRequest)
	req.op = op
	// 清空 Channel (理論上應該是空的)
	select {
	case <-req.Result:
	default:
	}
	return req
}

func (s *ActorStore) release(req *storeRequest) {
	req.reset()
	s.requestPool.Put(req)
}

// Get 取得帳戶快照
func (s *ActorStore) Get(ctx context.Context, accountID string) (domain.Account, error) {
	req := s.acquire(opGet)
	defer s.release(req)
	req.id = accountID
	if err := s.submit(ctx, req); err != nil {
		return domain.Account{}, err
	}
	return req.account, nil
}

// Debit 扣款
func (s *ActorStore) Debit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	req := s.acquire(opDebit)
	defer s.release(req)
	req.id = accountID
	req.amount = amount
	return s.submit(ctx, req)
}

// Credit 入帳
func (s *ActorStore) Credit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	req := s.acquire(opCredit)
	defer s.release(req)
	req.id = accountID
	req.amount = amount
	return s.submit(ctx, req)
}

// Create 建立帳戶
func (s *ActorStore) Create(ctx context.Context, account domain.Account) error {
	req := s.acquire(opCreate)
	defer s.release(req)
	req.account = account
	return s.submit(ctx, req)
}

// List 依 ID 排序回傳所有帳戶快照 (同一時間點)
func (s *ActorStore) List(ctx context.Context) ([]domain.Account, error) {
	req := s.acquire(opList)
	defer s.release(req)
	if err := s.submit(ctx, req); err != nil {
		return nil, err
	}
	return req.list, nil
}

// process 處理單筆請求並回傳結果，只在 run loop 中執行
func (s *ActorStore) process(req *storeRequest) {
	var err error
	switch req.op {
	case opGet:
		err = s.handleGet(req)
	case opDebit:
		err = s.handleDebit(req)
	case opCredit:
		err = s.handleCredit(req)
	case opCreate:
		err = s.handleCreate(req)
	case opList:
		s.handleList(req)
	}
	req.Result <- err
}

func (s *ActorStore) handleGet(req *storeRequest) error {
	balance, ok := s.accounts[req.id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	req.account = domain.NewAccount(req.id, balance)
	return nil
}

func (s *ActorStore) handleDebit(req *storeRequest) error {
	if req.amount.IsNegative() {
		return domain.ErrNegativeAmount
	}
	balance, ok := s.accounts[req.id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if balance.LessThan(req.amount) {
		return domain.ErrInsufficientFunds
	}
	s.accounts[req.id] = balance.Sub(req.amount)
	return nil
}

func (s *ActorStore) handleCredit(req *storeRequest) error {
	if req.amount.IsNegative() {
		return domain.ErrNegativeAmount
	}
	balance, ok := s.accounts[req.id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	s.accounts[req.id] = balance.Add(req.amount)
	return nil
}

func (s *ActorStore) handleCreate(req *storeRequest) error {
	if err := req.account.Validate(); err != nil {
		return err
	}
	if _, ok := s.accounts[req.account.ID]; ok {
		return domain.ErrDuplicateAccountID
	}
	s.accounts[req.account.ID] = req.account.Balance
	return nil
}

func (s *ActorStore) handleList(req *storeRequest) {
	list := make([]domain.Account, 0, len(s.accounts))
	for id, balance := range s.accounts {
		list = append(list, domain.NewAccount(id, balance))
	}
	sortAccounts(list)
	req.list = list
}

var _ usecase.AccountStore = (*ActorStore)(nil)
