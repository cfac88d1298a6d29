package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

// LogSender 只把通知寫進 log，開發環境或沒有訊息佇列時使用
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("notification")}
}

func (s *LogSender) Send(ctx context.Context, notification domain.Notification) error {
	s.logger.Info("sending notification to owner of account",
		zap.String("account", notification.AccountID),
		zap.Stringer("notification_id", notification.ID),
		zap.String("message", notification.Message),
	)
	return nil
}
