package notify

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/JoeShih716/go-mem-transfer/internal/app/core/domain"
)

// 需要本機 NATS (docker run -p 4222:4222 nats)，連不上就跳過
func natsURL() string {
	if url := os.Getenv("NATS_URL"); url != "" {
		return url
	}
	return nats.DefaultURL
}

func TestNATSSender_Publish(t *testing.T) {
	conn, err := DialNATS(natsURL(), zaptest.NewLogger(t))
	if err != nil {
		t.Skipf("nats not available: %v", err)
	}
	defer conn.Close()

	subject := "test.notifications." + time.Now().Format("150405.000000")
	sub, err := conn.SubscribeSync(subject)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, conn.Flush())

	sender := NewNATSSender(conn, subject)
	n := domain.NewNotification(domain.NewAccount("1", decimal.RequireFromString("5.000")), "Your account 1 has been debited by 10.000")
	require.NoError(t, sender.Send(context.Background(), n))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)

	var got domain.Notification
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, "1", got.AccountID)
	assert.Equal(t, n.Message, got.Message)
	assert.True(t, n.Balance.Equal(got.Balance))
}

func TestNewNATSSender_DefaultSubject(t *testing.T) {
	s := NewNATSSender(nil, "")
	assert.Equal(t, DefaultSubject, s.subject)
}
