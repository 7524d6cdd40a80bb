package feature

import (
	"context"

	"github.com/vidkit/vidkit/core"
	"github.com/vidkit/vidkit/pipeline"
	"github.com/vidkit/vidkit/pkg/utils"
)

// ExtractNode 是特征提取 Node：为链路中每个 Item 填充 FeatureSet。
// 已有特征的 Item 不重复提取（Fetch 侧可能已预填）。
type ExtractNode struct {
	Extractor *Extractor
}

func (n *ExtractNode) Name() string        { return "feature.extract" }
func (n *ExtractNode) Kind() pipeline.Kind { return pipeline.KindExtract }

func (n *ExtractNode) Process(
	_ context.Context,
	_ *core.SearchContext,
	items []*core.Item,
) ([]*core.Item, error) {
	ex := n.Extractor
	if ex == nil {
		ex = NewExtractor()
	}

	for _, it := range items {
		if it == nil || it.Features != nil {
			continue
		}
		it.Features = ex.ExtractVideo(it.Video)
		it.PutLabel("duration_bucket", utils.Label{
			Value:  string(it.Features.DurationBucket),
			Source: "extract",
		})
	}
	return items, nil
}
