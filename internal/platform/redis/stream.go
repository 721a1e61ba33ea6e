package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"message-relay-backend/internal/features/relay/models"
)

// StreamAdder is the subset of the go-redis client used by StreamPublisher.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// StreamPublisher appends relay events to a capped Redis stream.
type StreamPublisher struct {
	client StreamAdder
	stream string
	maxLen int64
}

func NewStreamPublisher(client StreamAdder, stream string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *StreamPublisher) Publish(ctx context.Context, ev models.Event) error {
	values := map[string]interface{}{
		"type":       string(ev.Type),
		"ip":         ev.Address,
		"attempts":   strconv.Itoa(ev.Attempts),
		"redirected": strconv.FormatBool(ev.Redirected),
		"at":         ev.At.UTC().Format(time.RFC3339Nano),
	}
	if ev.ChatID != "" {
		values["chat_id"] = ev.ChatID
	}
	if ev.Error != "" {
		values["error"] = ev.Error
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: values,
	}).Err()
}
