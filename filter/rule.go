package filter

import (
	"context"

	"github.com/vidkit/vidkit/core"
	"github.com/vidkit/vidkit/pkg/dsl"
)

// RuleFilter 是 CEL 规则过滤器：表达式求值为 true 的结果被剔除。
// 用于配置驱动的结果治理，例如：
//
//	video.view_count < 1000
//	video.duration_seconds > 7200
//	label.duration_bucket == "long" && video.like_count == 0
//
// 规则在构造时编译一次，之后可并发求值。
type RuleFilter struct {
	prg *dsl.Program
}

// NewRuleFilter 编译表达式并创建规则过滤器。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &RuleFilter{prg: prg}, nil
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	sctx *core.SearchContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return f.prg.Eval(item, sctx)
}
