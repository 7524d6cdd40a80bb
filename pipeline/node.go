package pipeline

import (
	"context"

	"github.com/vidkit/vidkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindFetch   Kind = "fetch"   // 拉取阶段：从上游 provider 获取原始结果
	KindExtract Kind = "extract" // 特征阶段：为每条结果派生 FeatureSet
	KindFilter  Kind = "filter"  // 过滤阶段：剔除命中排除集合/规则的结果
	KindRank    Kind = "rank"    // 排序阶段：按偏好模型打分并稳定排序
	KindReRank  Kind = "rerank"  // 重排阶段：截断/最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用"输入 items -> 输出 items"的形态，方便 Fetch 生成、Filter 剔除、ReRank 截断等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		sctx *core.SearchContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
