package filter

import (
	"context"

	"github.com/vidkit/vidkit/core"
)

// ExclusionFilter 按偏好模型的硬排除集合过滤：
// 频道命中 ExcludedChannels，或任一关键词命中 ExcludedKeywords，即剔除。
//
// 排除与分数无关：被排除的结果无论权重多高都不会出现在输出中，
// 这是比负权重更强的独立信号通道。
type ExclusionFilter struct{}

func NewExclusionFilter() *ExclusionFilter {
	return &ExclusionFilter{}
}

func (f *ExclusionFilter) Name() string {
	return "filter.exclusion"
}

func (f *ExclusionFilter) ShouldFilter(
	_ context.Context,
	sctx *core.SearchContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if sctx == nil || sctx.Model == nil {
		return false, nil
	}
	return sctx.Model.Excludes(item.Features), nil
}
