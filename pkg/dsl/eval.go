package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/vidkit/vidkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// getCELEnv 获取或创建 CEL 环境，定义变量。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("video", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("item", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的结果规则，使用 CEL (Common Expression Language) 实现。
// 编译一次，可并发多次求值。
//
// 表达式语法（CEL 标准语法）：
//   - 视频字段：video.view_count >= 1000 / video.channel_id == "UC1"
//   - 分数：item.score > 0.5
//   - 标签：label.duration_bucket == "short"
//   - 逻辑：video.category == "music" && video.like_count > 100
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译 CEL 表达式为可复用的 Program。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, iss.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}

	return &Program{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式（日志/标签用）。
func (p *Program) Expr() string { return p.expr }

// Eval 对一个 Item 求值，返回布尔结果。非布尔结果视为错误。
func (p *Program) Eval(it *core.Item, sctx *core.SearchContext) (bool, error) {
	video := map[string]any{}
	if it != nil && it.Video != nil {
		video = map[string]any{
			"id":               it.Video.ID,
			"title":            it.Video.Title,
			"channel_id":       it.Video.ChannelID,
			"category":         it.Video.Category,
			"duration_seconds": it.Video.DurationSeconds,
			"view_count":       it.Video.ViewCount,
			"like_count":       it.Video.LikeCount,
		}
	}

	labels := map[string]any{}
	if it != nil {
		for k, lbl := range it.Labels {
			labels[k] = lbl.Value
		}
	}

	item := map[string]any{}
	if it != nil {
		item["score"] = it.Score
	}

	out, _, err := p.prg.Eval(map[string]any{
		"video": video,
		"label": labels,
		"item":  item,
	})
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}

	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: non-boolean result %T", p.expr, out.Value())
	}
	return b, nil
}
