package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/tripgram/server/internal/agent/model"
	errx "github.com/tripgram/server/internal/core/error"
	logx "github.com/tripgram/server/pkg/logger"
)

// RedisChatHistoryRepository stores per-user chat history as a Redis list of
// JSON-encoded messages. The list is capped at maxTurns on write and its TTL
// is extended on every touch.
type RedisChatHistoryRepository struct {
	rdb      redis.Cmdable
	ttl      time.Duration
	maxTurns int
}

func NewRedisChatHistoryRepository(rdb redis.Cmdable, ttl time.Duration, maxTurns int) *RedisChatHistoryRepository {
	return &RedisChatHistoryRepository{rdb: rdb, ttl: ttl, maxTurns: maxTurns}
}

func (r *RedisChatHistoryRepository) historyKey(userID int64) string {
	return fmt.Sprintf("chat:%d:history", userID)
}

func (r *RedisChatHistoryRepository) AddMessage(ctx context.Context, userID int64, message *schema.Message) error {
	b, err := json.Marshal(message)
	if err != nil {
		logx.Error().Err(err).Int64("user_id", userID).Msg("failed to marshal message")
		return fmt.Errorf("marshal message: %w", err)
	}
	key := r.historyKey(userID)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push message to redis")
		return errx.WrapRedis(err)
	}
	// keep only the most recent turns
	if r.maxTurns > 0 {
		if err := r.rdb.LTrim(ctx, key, int64(-r.maxTurns), -1).Err(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to trim history")
			return errx.WrapRedis(err)
		}
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on history key")
		}
	}
	return nil
}

func (r *RedisChatHistoryRepository) LoadHistory(ctx context.Context, userID int64) (*model.ChatHistory, error) {
	key := r.historyKey(userID)

	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return &model.ChatHistory{UserID: userID, Messages: []*schema.Message{}}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load chat history from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var m schema.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Int64("user_id", userID).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, &m)
	}
	return &model.ChatHistory{UserID: userID, Messages: msgs}, nil
}

func (r *RedisChatHistoryRepository) ClearHistory(ctx context.Context, userID int64) error {
	key := r.historyKey(userID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete chat history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisChatHistoryRepository) MessageCount(ctx context.Context, userID int64) (int, error) {
	key := r.historyKey(userID)
	n, err := r.rdb.LLen(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to get message count from redis")
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

var _ model.ChatHistoryRepository = (*RedisChatHistoryRepository)(nil)
