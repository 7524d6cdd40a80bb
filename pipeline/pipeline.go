package pipeline

import (
	"context"

	"github.com/vidkit/vidkit/core"
)

// Pipeline 是 vidkit 的核心抽象：把个性化搜索逻辑拆成可组合的 Node 链。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	sctx *core.SearchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, sctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
