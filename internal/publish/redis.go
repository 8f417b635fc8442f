// Package publish fans finished trials out to Redis: an append-only stream
// per season and a short-lived key per game holding its latest result.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xtding233/diamond-sim/internal/store"
)

// DefaultResultTTL bounds how long a cached game result lives.
const DefaultResultTTL = 6 * time.Hour

var ErrNotFound = errors.New("result not cached")

func StreamKey(season int) string    { return fmt.Sprintf("sim.results.%d", season) }
func ResultKey(gameID string) string { return fmt.Sprintf("sim:game:%s:result", gameID) }
func RunKey(runID string) string     { return fmt.Sprintf("sim:run:%s", runID) }

// RedisPublisher writes results to Redis streams and keys.
type RedisPublisher struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPublisher(client *redis.Client, ttl time.Duration) *RedisPublisher {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &RedisPublisher{client: client, ttl: ttl}
}

// Connect parses url, pings the server and returns a publisher.
func Connect(ctx context.Context, url string, ttl time.Duration) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisPublisher(client, ttl), nil
}

func (p *RedisPublisher) Close() error { return p.client.Close() }

// PublishResult appends rec to the season stream and caches it by game id.
func (p *RedisPublisher) PublishResult(ctx context.Context, season int, rec store.GameRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	pipe := p.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(season),
		Values: map[string]interface{}{
			"data":    string(data),
			"game_id": rec.GameID,
			"run_id":  rec.RunID,
			"trial":   rec.Trial,
		},
	})
	pipe.Set(ctx, ResultKey(rec.GameID), data, p.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish result %s: %w", rec.GameID, err)
	}
	return nil
}

// PublishRun caches the run record under its id.
func (p *RedisPublisher) PublishRun(ctx context.Context, run store.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}
	return p.client.Set(ctx, RunKey(run.ID), data, p.ttl).Err()
}

// LatestResult returns the cached result of gameID.
func (p *RedisPublisher) LatestResult(ctx context.Context, gameID string) (store.GameRecord, error) {
	b, err := p.client.Get(ctx, ResultKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.GameRecord{}, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return store.GameRecord{}, err
	}
	var rec store.GameRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return store.GameRecord{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return rec, nil
}
