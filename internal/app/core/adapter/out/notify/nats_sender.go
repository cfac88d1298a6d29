package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

// DefaultSubject 通知發佈的 NATS subject
const DefaultSubject = "accounts.notifications"

// DialNATS 建立 NATS 連線，斷線/重連只記 log
func DialNATS(url string, logger *zap.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("go-mem-transfer"),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return conn, nil
}

// NATSSender 把通知以 JSON 發佈到 NATS，由下游服務負責實際投遞 (email / push)
type NATSSender struct {
	conn    *nats.Conn
	subject string
}

func NewNATSSender(conn *nats.Conn, subject string) *NATSSender {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSSender{
		conn:    conn,
		subject: subject,
	}
}

func (s *NATSSender) Send(ctx context.Context, notification domain.Notification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
