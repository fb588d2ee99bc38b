package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vaibhav-sd/MissionControlProject/internal/model"
)

// RedisSnapshotPublisher mirrors snapshots into Redis for external dashboards.
// The mirror is write-only; the client never reads it back.
//
// Layout under prefix:
//
//	<prefix>:missions        hash  mission_id -> {"status":..,"timestamp":..}
//	<prefix>:mission_counts  hash  status -> count
//	<prefix>:generation      string
type RedisSnapshotPublisher struct {
	client *redis.Client
	prefix string
	logger *zap.Logger

	mu            sync.Mutex
	lastPublished uint64
}

type missionEntry struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewRedisSnapshotPublisher connects to Redis and verifies the connection.
func NewRedisSnapshotPublisher(host string, port int, password string, db int, prefix string, logger *zap.Logger) (*RedisSnapshotPublisher, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisSnapshotPublisher(client, prefix, logger), nil
}

func newRedisSnapshotPublisher(client *redis.Client, prefix string, logger *zap.Logger) *RedisSnapshotPublisher {
	return &RedisSnapshotPublisher{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

// Publish replaces the mirrored state with snap in one transaction.
// Snapshots older than the last one published are skipped.
func (p *RedisSnapshotPublisher) Publish(ctx context.Context, snap *model.MissionSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if snap.Generation() <= p.lastPublished {
		return nil
	}

	missions, err := missionFields(snap)
	if err != nil {
		return err
	}
	counts := countFields(snap)

	missionsKey := p.key("missions")
	countsKey := p.key("mission_counts")

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, missionsKey)
		if len(missions) > 0 {
			pipe.HSet(ctx, missionsKey, missions)
		}
		pipe.HSet(ctx, countsKey, counts)
		pipe.Set(ctx, p.key("generation"), snap.Generation(), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mirror snapshot: %w", err)
	}

	p.lastPublished = snap.Generation()
	p.logger.Debug("snapshot mirrored to redis",
		zap.Uint64("generation", snap.Generation()),
		zap.Int("missions", snap.Len()))
	return nil
}

// Ping checks the Redis connection
func (p *RedisSnapshotPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (p *RedisSnapshotPublisher) Close() error {
	return p.client.Close()
}

func (p *RedisSnapshotPublisher) key(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + ":" + name
}

func missionFields(snap *model.MissionSnapshot) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, snap.Len())
	for id, rec := range snap.Records() {
		data, err := json.Marshal(missionEntry{
			Status:    string(rec.Status),
			Timestamp: rec.LastUpdated.Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal mission %s: %w", id, err)
		}
		fields[id] = string(data)
	}
	return fields, nil
}

func countFields(snap *model.MissionSnapshot) map[string]interface{} {
	fields := make(map[string]interface{}, len(model.AllStatuses))
	for _, s := range model.AllStatuses {
		fields[string(s)] = strconv.Itoa(snap.Count(s))
	}
	return fields
}
