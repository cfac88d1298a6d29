package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-transfer/internal/app/core/usecase"
	"github.com/JoeShih716/go-mem-transfer/internal/telemetry"
)

const (
	defaultQueueSize = 1024
	defaultWorkers   = 4
	sendTimeout      = 5 * time.Second
)

// Sender 實際把通知送出去的管道
type Sender interface {
	Send(ctx context.Context, notification domain.Notification) error
}

// Dispatcher 非同步通知派送器
// Notify 只負責把通知放進佇列，佇列滿了就丟棄，絕不阻塞呼叫端
// 送出失敗只記 log 與 metrics，不會回傳給轉帳流程
type Dispatcher struct {
	sender Sender
	logger *zap.Logger
	queue  chan domain.Notification

	// mu 保護 closed，避免 Close 後還往已關閉的 channel 送資料
	mu     sync.RWMutex
	closed bool

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDispatcher 建立派送器並啟動 worker
//
// 參數:
//
//	sender: 實際送出通知的管道
//	queueSize: 佇列大小，<= 0 使用預設值
//	workers: worker 數量，<= 0 使用預設值
//	logger: zap logger
func NewDispatcher(sender Sender, queueSize, workers int, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	d := &Dispatcher{
		sender: sender,
		logger: logger.Named("notifier"),
		queue:  make(chan domain.Notification, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// Notify implements usecase.Notifier.
func (d *Dispatcher) Notify(ctx context.Context, account domain.Account, message string) {
	notification := domain.NewNotification(account, message)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(notification, "dispatcher closed")
		return
	}
	// 先加再放，worker 的 Dec 不會讓 gauge 變成負數
	telemetry.NotificationQueueDepth.Inc()
	select {
	case d.queue <- notification:
	default:
		telemetry.NotificationQueueDepth.Dec()
		d.drop(notification, "queue full")
	}
}

func (d *Dispatcher) drop(notification domain.Notification, reason string) {
	telemetry.NotificationsTotal.WithLabelValues(telemetry.NotificationDropped).Inc()
	d.logger.Warn("notification dropped",
		zap.String("reason", reason),
		zap.String("account", notification.AccountID),
		zap.Stringer("notification_id", notification.ID),
	)
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for notification := range d.queue {
		telemetry.NotificationQueueDepth.Dec()
		d.deliver(notification)
	}
}

func (d *Dispatcher) deliver(notification domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.send(ctx, notification); err != nil {
		telemetry.NotificationsTotal.WithLabelValues(telemetry.NotificationFailed).Inc()
		d.logger.Warn("notification delivery failed",
			zap.String("account", notification.AccountID),
			zap.Stringer("notification_id", notification.ID),
			zap.Error(err),
		)
		return
	}
	telemetry.NotificationsTotal.WithLabelValues(telemetry.NotificationSent).Inc()
}

// send 把 sender 的 panic 轉成 error，worker 不會因此掛掉
func (d *Dispatcher) send(ctx context.Context, notification domain.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panic: %v", r)
		}
	}()
	return d.sender.Send(ctx, notification)
}

// Close 停止接收新通知並等待佇列送完
// ctx 逾時則直接返回，剩下的通知由 worker 在背景繼續處理
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ usecase.Notifier = (*Dispatcher)(nil)
