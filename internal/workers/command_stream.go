package workers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"message-relay-backend/internal/features/relay/service"
)

// StreamClient is the subset of the go-redis client the worker needs.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// CommandStreamWorker applies admin commands published to a Redis stream.
// It lets a bot or another service arm captures and reset addresses without
// calling the HTTP admin routes. Supported entries:
//
//	type=arm bot_token=<t> chat_id=<c>
//	type=disarm
//	type=reset            (all addresses)
//	type=reset ip=<addr>  (one address)
type CommandStreamWorker struct {
	client   StreamClient
	relay    service.RelayService
	stream   string
	group    string
	consumer string
	logger   zerolog.Logger
}

func NewCommandStreamWorker(client StreamClient, relay service.RelayService, stream, group, consumer string, logger zerolog.Logger) *CommandStreamWorker {
	return &CommandStreamWorker{
		client:   client,
		relay:    relay,
		stream:   stream,
		group:    group,
		consumer: consumer,
		logger:   logger.With().Str("component", "command_stream").Str("stream", stream).Logger(),
	}
}

// Start blocks until ctx is cancelled.
func (w *CommandStreamWorker) Start(ctx context.Context) {
	err := w.client.XGroupCreateMkStream(ctx, w.stream, w.group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		w.logger.Error().Err(err).Msg("Error creating consumer group")
	}

	w.logger.Info().Msg("Starting command stream worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping command stream worker")
			return
		default:
		}

		entries, err := w.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.group,
			Consumer: w.consumer,
			Streams:  []string{w.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			w.logger.Error().Err(err).Msg("Error reading from stream")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range entries {
			for _, msg := range stream.Messages {
				w.processMessage(ctx, msg.Values)
				if err := w.client.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
					w.logger.Warn().Err(err).Str("id", msg.ID).Msg("Failed to ack command")
				}
			}
		}
	}
}

func (w *CommandStreamWorker) processMessage(ctx context.Context, values map[string]interface{}) {
	str := func(key string) string {
		v, _ := values[key].(string)
		return v
	}

	switch cmd := str("type"); cmd {
	case "arm":
		if _, err := w.relay.Arm(ctx, str("bot_token"), str("chat_id")); err != nil {
			w.logger.Warn().Err(err).Msg("Rejected arm command")
		}
	case "disarm":
		w.relay.Disarm(ctx)
	case "reset":
		if ip := str("ip"); ip != "" {
			w.relay.ResetAddress(ctx, ip)
		} else {
			w.relay.ResetAll(ctx)
		}
	default:
		w.logger.Warn().Str("type", cmd).Msg("Unknown command")
	}
}
