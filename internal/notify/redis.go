// Package notify publishes sync batch summaries to Redis pub/sub so
// downstream services (web API, websocket fan-out) can react to fresh
// leaderboard data without polling the database.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"datasprint/leaderboard/internal/syncer"
)

// Publisher sends batch results to a Redis channel. Publishing is best
// effort: a Redis outage never fails a sync.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

// NewPublisher connects to Redis and verifies the connection.
func NewPublisher(addr, password string, db int, channel string) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().Str("addr", addr).Str("channel", channel).Msg("Redis notifier connected")
	return &Publisher{rdb: rdb, channel: channel}, nil
}

// PublishBatchResult sends the batch summary as JSON. Errors are logged and
// swallowed.
func (p *Publisher) PublishBatchResult(ctx context.Context, result syncer.BatchResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode batch result")
		return
	}

	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("channel", p.channel).Msg("Failed to publish batch result")
		return
	}

	log.Debug().
		Str("channel", p.channel).
		Int("total", result.Total).
		Msg("Batch result published")
}

// Close releases the Redis connection.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
