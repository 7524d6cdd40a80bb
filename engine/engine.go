// Package engine 把拉取、特征、过滤、排序、学习组装成开箱即用的个性化搜索门面。
// 需要更细粒度控制时，直接用 pipeline + 各 Node 自行组装。
package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vidkit/vidkit/core"
	"github.com/vidkit/vidkit/feast"
	"github.com/vidkit/vidkit/feature"
	"github.com/vidkit/vidkit/filter"
	"github.com/vidkit/vidkit/learn"
	"github.com/vidkit/vidkit/pipeline"
	"github.com/vidkit/vidkit/provider"
	"github.com/vidkit/vidkit/rank"
	"github.com/vidkit/vidkit/rerank"
)

// Engine 是个性化搜索引擎。
//
// 降级阶梯（搜索路径永不因依赖故障整体失败）：
//   - 模型读失败 → 全零模型（恒等排序）
//   - 上游不可用/限流 → 空结果集
//   - 历史记录失败 → 只记日志
//
// 写路径（RecordInteraction）相反：持久化失败必须上抛。
type Engine struct {
	provider  core.VideoProvider
	store     core.PreferenceStore
	extractor *feature.Extractor
	learner   *learn.Learner
	priors    *feast.PriorSource
	rules     []filter.Filter
	log       zerolog.Logger

	maxResults int

	// served 记录每用户最近一次返回的结果快照，
	// RecordInteraction 用它把 VideoID 解析回完整视频。
	// 每次返回结果整体替换该用户的条目，单用户占用有上界（maxResults 条）；
	// 用户维度不回收，常驻开销与 kmutex 同一取舍。引用已被替换掉的
	// 结果按未知处理：事件入日志、学习跳过。
	mu     sync.RWMutex
	served map[string]map[string]*core.Video
}

// EngineOption 是 Engine 的配置选项。
type EngineOption func(*Engine)

// WithExtractor 替换特征提取器（学习侧自动保持一致）。
func WithExtractor(ex *feature.Extractor) EngineOption {
	return func(e *Engine) { e.extractor = ex }
}

// WithPriors 启用 Feast 冷启动先验（可选依赖）。
func WithPriors(p *feast.PriorSource) EngineOption {
	return func(e *Engine) { e.priors = p }
}

// WithRuleFilters 追加 CEL 规则过滤器（排除过滤器始终生效）。
func WithRuleFilters(rules ...filter.Filter) EngineOption {
	return func(e *Engine) { e.rules = append(e.rules, rules...) }
}

// WithLogger 设置结构化日志。默认丢弃。
func WithLogger(log zerolog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// WithMaxResults 设置默认返回结果数（默认 25）。
func WithMaxResults(n int) EngineOption {
	return func(e *Engine) { e.maxResults = n }
}

func NewEngine(p core.VideoProvider, s core.PreferenceStore, opts ...EngineOption) *Engine {
	e := &Engine{
		provider:   p,
		store:      s,
		extractor:  feature.NewExtractor(),
		log:        zerolog.Nop(),
		maxResults: 25,
		served:     make(map[string]map[string]*core.Video),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.learner = learn.NewLearner(s,
		learn.WithExtractor(e.extractor),
		learn.WithLogger(e.log),
	)
	return e
}

// Learner 返回内部学习器（Rebuild / Anomalies 等直接访问）。
func (e *Engine) Learner() *learn.Learner { return e.learner }

// PersonalizedSearch 执行一次个性化搜索：
// 拉取 → 特征 → 过滤 → 偏好排序 → Top-N 截断，并（尽力）记录搜索历史。
func (e *Engine) PersonalizedSearch(ctx context.Context, userID, query string) ([]*core.Item, error) {
	model := e.loadModelDegraded(ctx, userID)

	sctx := &core.SearchContext{
		UserID:     userID,
		Query:      query,
		MaxResults: e.maxResults,
		Model:      model,
	}

	filters := append([]filter.Filter{&filter.ExclusionFilter{}}, e.rules...)
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&provider.FetchNode{Provider: e.provider},
		&feature.ExtractNode{Extractor: e.extractor},
		&filter.FilterNode{Filters: filters},
		&rank.PreferenceNode{},
		&rerank.TopNNode{},
	}}

	items, err := p.Run(ctx, sctx, nil)
	if err != nil {
		return nil, err
	}

	e.rememberServed(userID, items)

	// 历史记录尽力而为，不影响搜索结果
	if err := e.store.RecordSearch(ctx, userID, query, len(items)); err != nil {
		e.log.Warn().Err(err).Str("user_id", userID).Msg("record search failed")
	}

	e.log.Debug().
		Str("user_id", userID).
		Str("query", query).
		Int("results", len(items)).
		Msg("personalized search done")
	return items, nil
}

// RecordInteraction 处理一条交互事件：从最近返回的结果解析视频快照，
// 交给 Learner 更新模型。引用未知结果时事件仍入日志，学习按异常跳过。
func (e *Engine) RecordInteraction(ctx context.Context, ev core.InteractionEvent) error {
	return e.learner.Apply(ctx, ev, e.lookupServed(ev.UserID, ev.VideoID))
}

// Recommendations 基于模型里权重最高的关键词并发发起查询，返回排序后的推荐流。
// 模型没有关键词信号时返回空集（冷启动用户先搜索再推荐）。
func (e *Engine) Recommendations(ctx context.Context, userID string, max int) ([]*core.Item, error) {
	if max <= 0 {
		max = e.maxResults
	}

	model := e.loadModelDegraded(ctx, userID)
	queries := topKeywords(model, 3)
	if len(queries) == 0 {
		return nil, nil
	}

	fanout := &provider.Fanout{Provider: e.provider}
	items, err := fanout.Search(ctx, queries, max)
	if err != nil {
		return nil, err
	}

	sctx := &core.SearchContext{UserID: userID, MaxResults: max, Model: model}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&feature.ExtractNode{Extractor: e.extractor},
		&filter.FilterNode{Filters: append([]filter.Filter{&filter.ExclusionFilter{}}, e.rules...)},
		&rank.PreferenceNode{},
		&rerank.TopNNode{N: max},
	}}
	out, err := p.Run(ctx, sctx, items)
	if err != nil {
		return nil, err
	}

	e.rememberServed(userID, out)
	return out, nil
}

// trendingFallbackQueries 是 provider 不支持榜单接口时的兜底查询。
var trendingFallbackQueries = []string{
	"trending today",
	"popular videos",
	"viral videos",
	"latest trending",
}

// Trending 返回按用户偏好个性化的热门流：拉热门候选，
// 走与搜索相同的特征→过滤→排序→截断链路。
// provider 实现 core.TrendingProvider 时用榜单接口；
// 否则用通用热门查询并发兜底。上游不可用时降级为空集。
func (e *Engine) Trending(ctx context.Context, userID string, max int) ([]*core.Item, error) {
	if max <= 0 {
		max = e.maxResults
	}

	model := e.loadModelDegraded(ctx, userID)

	var items []*core.Item
	if tp, ok := e.provider.(core.TrendingProvider); ok {
		videos, err := tp.Trending(ctx, max)
		if err != nil {
			if core.IsProviderUnavailable(err) {
				e.log.Warn().Err(err).Str("user_id", userID).Msg("trending unavailable, empty set")
				return nil, nil
			}
			return nil, err
		}
		items = make([]*core.Item, 0, len(videos))
		for _, v := range videos {
			items = append(items, core.NewItem(v))
		}
	} else {
		fanout := &provider.Fanout{Provider: e.provider}
		var err error
		items, err = fanout.Search(ctx, trendingFallbackQueries, max/len(trendingFallbackQueries)+1)
		if err != nil {
			return nil, err
		}
	}

	sctx := &core.SearchContext{UserID: userID, MaxResults: max, Model: model}
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&feature.ExtractNode{Extractor: e.extractor},
		&filter.FilterNode{Filters: append([]filter.Filter{&filter.ExclusionFilter{}}, e.rules...)},
		&rank.PreferenceNode{},
		&rerank.TopNNode{N: max},
	}}
	out, err := p.Run(ctx, sctx, items)
	if err != nil {
		return nil, err
	}

	e.rememberServed(userID, out)
	return out, nil
}

// SearchHistory 返回用户最近的搜索记录，新在前。
func (e *Engine) SearchHistory(ctx context.Context, userID string, limit int) ([]core.SearchRecord, error) {
	return e.store.SearchHistory(ctx, userID, limit)
}

// RebuildPreferences 从事件日志全量重建模型并落盘。
func (e *Engine) RebuildPreferences(ctx context.Context, userID string) (*core.PreferenceModel, error) {
	model, err := e.learner.Rebuild(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveModel(ctx, model); err != nil {
		return nil, err
	}
	return model, nil
}

// loadModelDegraded 读偏好模型；读失败降级为全零模型（恒等排序），只记日志。
func (e *Engine) loadModelDegraded(ctx context.Context, userID string) *core.PreferenceModel {
	model, err := e.store.LoadModel(ctx, userID)
	if err != nil || model == nil {
		e.log.Warn().Err(err).Str("user_id", userID).Msg("model load failed, ranking unpersonalized")
		model = core.NewPreferenceModel(userID)
	}
	if e.priors != nil {
		model = e.priors.Seed(ctx, model)
	}
	return model
}

func (e *Engine) rememberServed(userID string, items []*core.Item) {
	snapshot := make(map[string]*core.Video, len(items))
	for _, it := range items {
		if it != nil && it.Video != nil {
			v := *it.Video
			snapshot[v.ID] = &v
		}
	}
	e.mu.Lock()
	e.served[userID] = snapshot
	e.mu.Unlock()
}

func (e *Engine) lookupServed(userID, videoID string) *core.Video {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.served[userID][videoID]
}

// topKeywords 取权重最高的 n 个关键词；同权重按字典序，保证确定性。
func topKeywords(model *core.PreferenceModel, n int) []string {
	if model == nil || len(model.KeywordWeights) == 0 {
		return nil
	}
	keywords := make([]string, 0, len(model.KeywordWeights))
	for kw := range model.KeywordWeights {
		keywords = append(keywords, kw)
	}
	sort.Slice(keywords, func(i, j int) bool {
		wi, wj := model.KeywordWeights[keywords[i]], model.KeywordWeights[keywords[j]]
		if wi != wj {
			return wi > wj
		}
		return keywords[i] < keywords[j]
	})
	if len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}
