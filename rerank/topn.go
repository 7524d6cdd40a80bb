package rerank

import (
	"context"

	"github.com/vidkit/vidkit/core"
	"github.com/vidkit/vidkit/pipeline"
)

// TopNNode 是 Top-N 截断节点，用于在排序后截取前 N 个结果。
// N <= 0 时优先取 SearchContext.MaxResults；两者都未设置则不截断。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	sctx *core.SearchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && sctx != nil {
		limit = sctx.MaxResults
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
