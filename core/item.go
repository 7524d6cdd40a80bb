package core

import "github.com/vidkit/vidkit/pkg/utils"

// Item 是个性化链路中的统一承载结构：视频、特征、分数、标签。
// Labels 用于解释与观测；Score 用于排序决策。
type Item struct {
	Video    *Video
	Score    float64
	Features *FeatureSet
	Labels   map[string]utils.Label
}

func NewItem(v *Video) *Item {
	return &Item{
		Video:  v,
		Score:  0,
		Labels: make(map[string]utils.Label),
	}
}

// ID 返回视频 ID；Video 缺失时返回空串。
func (it *Item) ID() string {
	if it == nil || it.Video == nil {
		return ""
	}
	return it.Video.ID
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
