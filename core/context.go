package core

import "github.com/vidkit/vidkit/pkg/utils"

// SearchContext 承载用户/查询/模型信息，贯穿整个 Pipeline 透传。
type SearchContext struct {
	UserID string
	Query  string

	// MaxResults 是最终返回的结果数上限（ReRank 截断用）
	MaxResults int

	// Model 是本次排序使用的偏好模型快照。
	// 读路径不持学习锁：学习并发进行时这里可能是略旧的模型，
	// 这是文档化接受的 staleness window，不是正确性 bug。
	Model *PreferenceModel

	// Labels 是请求级标签，可驱动 Pipeline 行为与观测
	Labels map[string]utils.Label

	// Params 请求级上下文参数（region, safe_search, debug 等）
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (sctx *SearchContext) PutLabel(key string, lbl utils.Label) {
	if sctx.Labels == nil {
		sctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := sctx.Labels[key]; ok {
		sctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	sctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (sctx *SearchContext) GetLabel(key string) (utils.Label, bool) {
	if sctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := sctx.Labels[key]
	return lbl, ok
}
