// Package vidkit 是一个个性化视频搜索工具包（Video Search Personalization Kit）。
//
// 设计要点：
// - Pipeline-first: 个性化逻辑通过 Node 串联（Fetch → Extract → Filter → Rank → ReRank）
// - 事件溯源: 交互事件日志是偏好模型的唯一事实来源，模型可随时全量重放重建
// - 可插拔: VideoProvider / PreferenceStore / Filter 均为接口，本地或远程实现均可替换
package vidkit

import "github.com/vidkit/vidkit/pipeline"

// 轻量 facade：便于用户直接 import "vidkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindFetch   = pipeline.KindFetch
	KindExtract = pipeline.KindExtract
	KindFilter  = pipeline.KindFilter
	KindRank    = pipeline.KindRank
	KindReRank  = pipeline.KindReRank
)
