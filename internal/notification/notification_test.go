package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type recordingNotifier struct {
	sent []Message
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, msg Message) error {
	n.sent = append(n.sent, msg)
	return n.err
}

func TestLoggerNotifierWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	n := NewLoggerNotifier(logger)

	err := n.Send(context.Background(), Message{
		ID:         "evt-1",
		Kind:       KindPaymentConfirmed,
		Body:       "Payment of 10.00 from alice to acme succeeded.",
		Attributes: map[string]string{"payer_id": "alice"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, KindPaymentConfirmed) || !strings.Contains(out, `"payer_id":"alice"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestLoggerNotifierNilIsNoop(t *testing.T) {
	var n *LoggerNotifier
	if err := n.Send(context.Background(), Message{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestFanoutDeliversToAll(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("down")}
	healthy := &recordingNotifier{}

	err := Fanout{failing, nil, healthy}.Send(context.Background(), Message{ID: "x"})
	if err == nil || err.Error() != "down" {
		t.Fatalf("expected first error, got %v", err)
	}
	if len(healthy.sent) != 1 {
		t.Fatalf("expected healthy notifier to receive message")
	}
}

func TestRedisNotifierPublishes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, DefaultChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	n := NewRedisNotifier(client, "")
	if err := n.Send(ctx, Message{ID: "evt-1", Kind: KindPaymentConfirmed, Destination: "acme"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got Message
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.ID != "evt-1" || got.Destination != "acme" {
			t.Fatalf("unexpected message: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}
