package learn

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vidkit/vidkit/core"
	"github.com/vidkit/vidkit/feature"
	"github.com/vidkit/vidkit/pkg/kmutex"
)

// Learner 消费交互事件，增量更新偏好模型并持久化。
//
// 并发模型：
//   - 同一用户的 load → append → apply → save 是临界区，按 user id 加锁串行化，
//     避免交错读-改-写造成的丢失更新
//   - 不同用户完全独立，可并行
//   - 排序读路径不取该锁：接受文档化的 staleness window
//
// 失败处理：
//   - 存储写失败必须上抛（静默丢弃更新是正确性 bug）
//   - 视频快照缺失（无法派生特征）按异常记录并跳过学习，永不让
//     交互记录路径崩溃
type Learner struct {
	store     core.PreferenceStore
	extractor *feature.Extractor
	policy    DeltaPolicy
	locks     *kmutex.KMutex
	log       zerolog.Logger

	anomalies atomic.Int64
}

// LearnerOption 是 Learner 的配置选项。
type LearnerOption func(*Learner)

// WithExtractor 替换特征提取器（需与排序侧一致，否则重放不可复现）。
func WithExtractor(ex *feature.Extractor) LearnerOption {
	return func(l *Learner) { l.extractor = ex }
}

// WithPolicy 替换增量策略。
func WithPolicy(p DeltaPolicy) LearnerOption {
	return func(l *Learner) { l.policy = p }
}

// WithLogger 设置结构化日志。默认丢弃。
func WithLogger(log zerolog.Logger) LearnerOption {
	return func(l *Learner) { l.log = log }
}

func NewLearner(store core.PreferenceStore, opts ...LearnerOption) *Learner {
	l := &Learner{
		store:     store,
		extractor: feature.NewExtractor(),
		policy:    DefaultDeltaPolicy(),
		locks:     kmutex.New(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Apply 处理一条交互事件：追加事件日志、折叠进模型、持久化。
// video 是事件引用结果的快照；为 nil 时（未知结果引用）事件仍入日志，
// 学习步骤按异常跳过，返回 nil。
func (l *Learner) Apply(ctx context.Context, ev core.InteractionEvent, video *core.Video) error {
	if ev.UserID == "" {
		return core.NewDomainError(core.ModuleLearn, core.ErrorCodeInvalid, "learn: event missing user id")
	}
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	l.locks.Lock(ev.UserID)
	defer l.locks.Unlock(ev.UserID)

	// 事件日志先行：它是事实来源，模型只是可重建的物化缓存
	if err := l.store.AppendEvent(ctx, ev, video); err != nil {
		return fmt.Errorf("append event %s: %w", ev.ID, err)
	}

	if video == nil {
		l.anomalies.Add(1)
		l.log.Warn().
			Str("user_id", ev.UserID).
			Str("video_id", ev.VideoID).
			Str("action", string(ev.Action)).
			Msg("event references unknown result, learning skipped")
		return nil
	}

	model, err := l.store.LoadModel(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("load model for %s: %w", ev.UserID, err)
	}

	ApplyEvent(model, l.policy, ev, l.extractor.ExtractVideo(video))

	if err := l.store.SaveModel(ctx, model); err != nil {
		return fmt.Errorf("save model for %s: %w", ev.UserID, err)
	}

	l.log.Debug().
		Str("user_id", ev.UserID).
		Str("video_id", ev.VideoID).
		Str("action", string(ev.Action)).
		Msg("preference model updated")
	return nil
}

// Anomalies 返回已跳过的未知结果引用事件数。
func (l *Learner) Anomalies() int64 {
	return l.anomalies.Load()
}
