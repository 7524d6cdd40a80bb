package learn

import "github.com/vidkit/vidkit/core"

// DeltaPolicy 定义每种交互动作的权重增量。
//
// 固定常量（策略既定即文档化，确定性重放依赖它们不变）：
//   - click: +1.0
//   - like:  +3.0
//   - watch: +5.0 × WatchFraction（看完 = +5.0，看一半 = +2.5）
//
// 增量落点：
//   - 频道、类目、时长桶各得全额 delta
//   - 每个关键词得 delta / len(keywords)：长标题的泛化词不主导模型
//
// not_interested 不走增量：它进入排除集合，是独立于负权重的更强通道。
type DeltaPolicy struct {
	Click    float64
	Like     float64
	WatchMax float64
}

// DefaultDeltaPolicy 返回默认增量策略。
func DefaultDeltaPolicy() DeltaPolicy {
	return DeltaPolicy{
		Click:    1.0,
		Like:     3.0,
		WatchMax: 5.0,
	}
}

// Delta 计算一条事件的权重增量。未知动作贡献 0。
func (p DeltaPolicy) Delta(ev core.InteractionEvent) float64 {
	switch ev.Action {
	case core.ActionClick:
		return p.Click
	case core.ActionLike:
		return p.Like
	case core.ActionWatch:
		frac := ev.WatchFraction
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		return p.WatchMax * frac
	default:
		return 0
	}
}

// ApplyEvent 把一条事件按策略折叠进模型。纯函数（只改 model）：
// Learner 的在线路径和 Rebuild 的重放路径共用它，保证两者逐字节一致。
//
// 幂等性不是目标：同一事件应用两次，效果合法地翻倍。
func ApplyEvent(model *core.PreferenceModel, policy DeltaPolicy, ev core.InteractionEvent, fs *core.FeatureSet) {
	if model == nil || fs == nil {
		return
	}

	if ev.Action == core.ActionNotInterested {
		model.ExcludeChannel(fs.ChannelID)
		return
	}

	delta := policy.Delta(ev)
	if delta == 0 {
		return
	}

	if fs.ChannelID != "" {
		model.ChannelWeights[fs.ChannelID] += delta
	}
	if fs.Category != "" {
		model.CategoryWeights[fs.Category] += delta
	}
	if n := len(fs.Keywords); n > 0 {
		share := delta / float64(n)
		for _, kw := range fs.Keywords {
			model.KeywordWeights[kw] += share
		}
	}
	model.DurationPrefs[fs.DurationBucket] += delta
}
