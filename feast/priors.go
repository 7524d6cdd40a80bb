package feast

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vidkit/vidkit/core"
	"github.com/vidkit/vidkit/pkg/conv"
)

// 冷启动先验的特征引用。离线任务按人群统计算好后物化到在线存储。
const (
	FeatureTopCategory    = "user_priors:top_category"
	FeatureCategoryWeight = "user_priors:top_category_weight"
	FeatureDurationBucket = "user_priors:preferred_duration_bucket"
	FeatureDurationWeight = "user_priors:preferred_duration_weight"
)

// PriorSource 给零交互的新用户注入冷启动先验。
//
// 只对全零模型生效：用户一旦有了自己的交互信号，先验就不再覆盖。
// 先验失败静默降级为全零模型——特征服务不可用绝不能拖垮搜索。
type PriorSource struct {
	client Client
	log    zerolog.Logger
}

// PriorOption 是 PriorSource 的配置选项。
type PriorOption func(*PriorSource)

// WithPriorLogger 设置结构化日志。默认丢弃。
func WithPriorLogger(log zerolog.Logger) PriorOption {
	return func(p *PriorSource) { p.log = log }
}

func NewPriorSource(client Client, opts ...PriorOption) *PriorSource {
	p := &PriorSource{client: client, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Seed 为全零模型注入先验；已有信号的模型原样返回。
func (p *PriorSource) Seed(ctx context.Context, model *core.PreferenceModel) *core.PreferenceModel {
	if model == nil || p.client == nil || hasSignal(model) {
		return model
	}

	resp, err := p.client.GetOnlineFeatures(ctx, &OnlineFeaturesRequest{
		Features: []string{
			FeatureTopCategory, FeatureCategoryWeight,
			FeatureDurationBucket, FeatureDurationWeight,
		},
		EntityRows: []map[string]any{{"user_id": model.UserID}},
	})
	if err != nil || len(resp.Rows) == 0 {
		p.log.Debug().Err(err).Str("user_id", model.UserID).Msg("cold-start priors unavailable")
		return model
	}
	row := resp.Rows[0]

	if cat, ok := row[FeatureTopCategory].(string); ok && cat != "" {
		weight := 1.0
		if w, ok := conv.ToFloat64(row[FeatureCategoryWeight]); ok && w > 0 {
			weight = w
		}
		model.CategoryWeights[cat] = weight
	}
	if bucket, ok := row[FeatureDurationBucket].(string); ok && bucket != "" {
		weight := 1.0
		if w, ok := conv.ToFloat64(row[FeatureDurationWeight]); ok && w > 0 {
			weight = w
		}
		model.DurationPrefs[core.DurationBucket(bucket)] = weight
	}

	p.log.Debug().Str("user_id", model.UserID).Msg("cold-start priors seeded")
	return model
}

// hasSignal 判断模型是否已有用户自己的交互信号。
func hasSignal(m *core.PreferenceModel) bool {
	return len(m.ChannelWeights) > 0 ||
		len(m.CategoryWeights) > 0 ||
		len(m.KeywordWeights) > 0 ||
		len(m.DurationPrefs) > 0 ||
		len(m.ExcludedChannels) > 0 ||
		len(m.ExcludedKeywords) > 0
}
