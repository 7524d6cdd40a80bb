package rank

import (
	"context"
	"sort"

	"github.com/vidkit/vidkit/core"
	"github.com/vidkit/vidkit/pipeline"
	"github.com/vidkit/vidkit/pkg/utils"
)

// PreferenceNode 是偏好排序 Node：用 SearchContext 中的模型为每个 Item 打分，
// 按分数降序排列。
//
// 确定性保证：
//   - 打分是模型与特征的纯函数
//   - sort.SliceStable：同分结果保持上游 provider 的相对顺序
//   - 全零模型下所有分数为 0，输出顺序与输入完全一致（稳定 no-op）
//
// 排序在新切片上进行，不改动调用方传入切片的顺序。
type PreferenceNode struct{}

func (n *PreferenceNode) Name() string        { return "rank.preference" }
func (n *PreferenceNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *PreferenceNode) Process(
	_ context.Context,
	sctx *core.SearchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	var model *core.PreferenceModel
	if sctx != nil {
		model = sctx.Model
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		it.Score = model.Score(it.Features)
		it.PutLabel("rank_model", utils.Label{Value: "preference", Source: "rank"})
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}
