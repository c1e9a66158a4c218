package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository caches rendered previews per managed table.
type RedisRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRepository(rdb *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{rdb: rdb, ttl: ttl}
}

func previewKey(tableID int64) string {
	return "gen:preview:" + strconv.FormatInt(tableID, 10)
}

// GetPreview returns the cached preview of a table, or nil when there is none.
func (r *RedisRepository) GetPreview(ctx context.Context, tableID int64) (map[string]string, error) {
	data, err := r.rdb.Get(ctx, previewKey(tableID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read preview cache: %w", err)
	}

	var preview map[string]string
	if err := json.Unmarshal(data, &preview); err != nil {
		return nil, nil
	}
	return preview, nil
}

func (r *RedisRepository) SetPreview(ctx context.Context, tableID int64, preview map[string]string) error {
	data, err := json.Marshal(preview)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, previewKey(tableID), data, r.ttl).Err()
}

// InvalidatePreview drops the cached previews of the given tables.
func (r *RedisRepository) InvalidatePreview(ctx context.Context, tableIDs ...int64) error {
	if len(tableIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tableIDs))
	for _, id := range tableIDs {
		keys = append(keys, previewKey(id))
	}
	return r.rdb.Del(ctx, keys...).Err()
}
