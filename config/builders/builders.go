// Package builders 注册内置 Node 的配置构建器。
// 在入口处 import _ "github.com/vidkit/vidkit/config/builders" 触发 init 注册。
package builders

import (
	"fmt"

	"github.com/vidkit/vidkit/config"
	"github.com/vidkit/vidkit/feature"
	"github.com/vidkit/vidkit/filter"
	"github.com/vidkit/vidkit/pipeline"
	"github.com/vidkit/vidkit/pkg/conv"
	"github.com/vidkit/vidkit/provider"
	"github.com/vidkit/vidkit/rank"
	"github.com/vidkit/vidkit/rerank"
)

func init() {
	config.Register("fetch.youtube", BuildYouTubeFetchNode)
	config.Register("feature.extract", BuildExtractNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.preference", BuildPreferenceNode)
	config.Register("rerank.topn", BuildTopNNode)
}

func BuildYouTubeFetchNode(cfg map[string]interface{}) (pipeline.Node, error) {
	apiKey := conv.ConfigGet(cfg, "api_key", "")
	if apiKey == "" {
		return nil, fmt.Errorf("api_key not found")
	}
	node := &provider.FetchNode{
		Provider: provider.NewYouTubeProvider(apiKey),
	}
	if n := conv.ConfigGetInt64(cfg, "max_results", 0); n > 0 {
		node.MaxResults = int(n)
	}
	return node, nil
}

func BuildExtractNode(cfg map[string]interface{}) (pipeline.Node, error) {
	var opts []feature.Option
	if words := conv.SliceAnyToString(cfg["stopwords"]); words != nil {
		opts = append(opts, feature.WithStopwords(words))
	}
	if conv.ConfigGet(cfg, "keep_stopwords", false) {
		opts = append(opts, feature.WithKeepStopwords())
	}
	if n := conv.ConfigGetInt64(cfg, "min_token_len", 0); n > 0 {
		opts = append(opts, feature.WithMinTokenLen(int(n)))
	}
	return &feature.ExtractNode{Extractor: feature.NewExtractor(opts...)}, nil
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "exclusion":
			filters = append(filters, filter.NewExclusionFilter())
		case "rule":
			expr := conv.ConfigGet(filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("rule filter requires expr")
			}
			rf, err := filter.NewRuleFilter(expr)
			if err != nil {
				return nil, fmt.Errorf("compile rule %q: %w", expr, err)
			}
			filters = append(filters, rf)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}

func BuildPreferenceNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rank.PreferenceNode{}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}
