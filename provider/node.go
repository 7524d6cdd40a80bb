package provider

import (
	"context"

	"github.com/vidkit/vidkit/core"
	"github.com/vidkit/vidkit/pipeline"
	"github.com/vidkit/vidkit/pkg/utils"
)

// FetchNode 是 Pipeline 的拉取节点：按 SearchContext 的查询调 provider，
// 把原始结果包成 Item 注入链路。
//
// 降级语义：上游不可用/限流时返回空集并打请求级标签，不让整条搜索失败；
// 其余错误（编程错误、非法输入）照常上抛。
type FetchNode struct {
	Provider   core.VideoProvider
	MaxResults int // 单次拉取上限（0 用 sctx.MaxResults，再缺省 25）
}

func (n *FetchNode) Name() string        { return "fetch." + n.Provider.Name() }
func (n *FetchNode) Kind() pipeline.Kind { return pipeline.KindFetch }

func (n *FetchNode) Process(
	ctx context.Context,
	sctx *core.SearchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	max := n.MaxResults
	if max <= 0 {
		max = sctx.MaxResults
	}
	if max <= 0 {
		max = 25
	}

	videos, err := n.Provider.Search(ctx, sctx.Query, max)
	if err != nil {
		if core.IsProviderUnavailable(err) {
			sctx.PutLabel("fetch_degraded", utils.Label{Value: n.Provider.Name(), Source: "fetch"})
			return items, nil
		}
		return nil, err
	}

	for _, v := range videos {
		items = append(items, core.NewItem(v))
	}
	return items, nil
}

var _ pipeline.Node = (*FetchNode)(nil)
