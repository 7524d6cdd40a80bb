package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vidkit/vidkit/core"
	"github.com/vidkit/vidkit/pkg/utils"
)

// Fanout 并发执行多个查询并合并结果（推荐流场景：
// 用偏好模型里的 top 关键词各发一路查询）。
//
// 合并语义：
//   - 按视频 ID 去重，保留第一次出现的（查询顺序即优先级）
//   - 单路失败不拖垮其他路：失败路按空结果处理
//   - 每条结果打 fetch_query 标签，支持 explain
type Fanout struct {
	Provider      core.VideoProvider
	Timeout       time.Duration // 每路查询的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
}

// Search 并发执行 queries，每路至多 perQuery 条，合并去重后返回。
func (f *Fanout) Search(ctx context.Context, queries []string, perQuery int) ([]*core.Item, error) {
	if len(queries) == 0 || f.Provider == nil {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		results = make([][]*core.Item, len(queries))
		eg, _   = errgroup.WithContext(ctx)
	)
	if f.MaxConcurrent > 0 {
		eg.SetLimit(f.MaxConcurrent)
	}

	for i, query := range queries {
		i, query := i, query
		eg.Go(func() error {
			queryCtx := ctx
			if f.Timeout > 0 {
				var cancel context.CancelFunc
				queryCtx, cancel = context.WithTimeout(ctx, f.Timeout)
				defer cancel()
			}

			videos, err := f.Provider.Search(queryCtx, query, perQuery)
			if err != nil {
				// 单路失败不中断其他查询
				return nil
			}

			items := make([]*core.Item, 0, len(videos))
			for _, v := range videos {
				it := core.NewItem(v)
				it.PutLabel("fetch_query", utils.Label{Value: query, Source: "fetch"})
				items = append(items, it)
			}

			mu.Lock()
			results[i] = items
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 按查询顺序合并，ID 去重保留先出现的；空 ID 无法判重，全部保留
	seen := make(map[string]struct{})
	var out []*core.Item
	for _, items := range results {
		for _, it := range items {
			if id := it.ID(); id != "" {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
			}
			out = append(out, it)
		}
	}
	return out, nil
}
