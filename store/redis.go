package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidkit/vidkit/core"
)

// RedisStore 是 Redis 实现的 PreferenceStore，生产环境常用。
//
// 存储布局（每用户）：
//   - pref:model:{user}    模型 JSON（String）
//   - pref:events:{user}   事件日志（List，RPush 保持写入顺序）
//   - pref:history:{user}  搜索历史（List，LPush 新在前，LTrim 截断）
type RedisStore struct {
	client     *redis.Client
	maxHistory int64
}

func NewRedisStore(addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client, maxHistory: 200}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func modelKey(userID string) string   { return "pref:model:" + userID }
func eventsKey(userID string) string  { return "pref:events:" + userID }
func historyKey(userID string) string { return "pref:history:" + userID }

func (r *RedisStore) LoadModel(ctx context.Context, userID string) (*core.PreferenceModel, error) {
	data, err := r.client.Get(ctx, modelKey(userID)).Bytes()
	if err == redis.Nil {
		// "不存在"不是错误：新用户从全零模型开始
		return core.NewPreferenceModel(userID), nil
	}
	if err != nil {
		return nil, err
	}

	model := core.NewPreferenceModel(userID)
	if err := json.Unmarshal(data, model); err != nil {
		return nil, fmt.Errorf("decode model for %s: %w", userID, err)
	}
	return model, nil
}

func (r *RedisStore) SaveModel(ctx context.Context, model *core.PreferenceModel) error {
	if model == nil || model.UserID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalid, "store: model missing user id")
	}

	data, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode model for %s: %w", model.UserID, err)
	}
	if err := r.client.Set(ctx, modelKey(model.UserID), data, 0).Err(); err != nil {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodePersistence,
			fmt.Sprintf("store: save model for %s: %v", model.UserID, err))
	}
	return nil
}

func (r *RedisStore) AppendEvent(ctx context.Context, ev core.InteractionEvent, video *core.Video) error {
	data, err := json.Marshal(core.StoredEvent{Event: ev, Video: video})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.ID, err)
	}
	if err := r.client.RPush(ctx, eventsKey(ev.UserID), data).Err(); err != nil {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodePersistence,
			fmt.Sprintf("store: append event for %s: %v", ev.UserID, err))
	}
	return nil
}

func (r *RedisStore) Events(ctx context.Context, userID string) ([]core.StoredEvent, error) {
	raw, err := r.client.LRange(ctx, eventsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]core.StoredEvent, 0, len(raw))
	for _, item := range raw {
		var se core.StoredEvent
		if err := json.Unmarshal([]byte(item), &se); err != nil {
			return nil, fmt.Errorf("decode event for %s: %w", userID, err)
		}
		out = append(out, se)
	}
	return out, nil
}

func (r *RedisStore) RecordSearch(ctx context.Context, userID, query string, resultCount int) error {
	rec := core.SearchRecord{Query: query, ResultCount: resultCount, At: time.Now().UTC()}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, historyKey(userID), data)
	pipe.LTrim(ctx, historyKey(userID), 0, r.maxHistory-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) SearchHistory(ctx context.Context, userID string, limit int) ([]core.SearchRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := r.client.LRange(ctx, historyKey(userID), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	out := make([]core.SearchRecord, 0, len(raw))
	for _, item := range raw {
		var rec core.SearchRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode search record for %s: %w", userID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// 确保 RedisStore 实现了 core.PreferenceStore 接口
var _ core.PreferenceStore = (*RedisStore)(nil)
