package feature

import (
	"sort"
	"strings"
	"unicode"

	"github.com/vidkit/vidkit/core"
)

// Extractor 从视频记录派生 FeatureSet。
//
// 提取是全函数：任何输入都能得到一个合法的 FeatureSet，缺失字段走默认值
// （缺失/非法时长 → medium 桶），绝不让提取失败拖垮搜索或学习链路。
//
// 关键词策略：
//   - 标题小写化、去标点、按空白切分
//   - 去停用词（可调策略，见 WithStopwords / WithKeepStopwords）
//   - 去重后排序，保证同一标题的特征表示字节级稳定
type Extractor struct {
	stopwords   map[string]struct{}
	minTokenLen int
}

// Option 是 Extractor 的配置选项。
type Option func(*Extractor)

// WithStopwords 替换默认停用词表。
func WithStopwords(words []string) Option {
	return func(e *Extractor) {
		e.stopwords = make(map[string]struct{}, len(words))
		for _, w := range words {
			e.stopwords[strings.ToLower(w)] = struct{}{}
		}
	}
}

// WithKeepStopwords 关闭停用词过滤（保留所有 token）。
func WithKeepStopwords() Option {
	return func(e *Extractor) {
		e.stopwords = map[string]struct{}{}
	}
}

// WithMinTokenLen 设置保留 token 的最小长度（默认 2）。
func WithMinTokenLen(n int) Option {
	return func(e *Extractor) {
		e.minTokenLen = n
	}
}

// defaultStopwords 是默认英文停用词表。
var defaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "been", "but", "by",
	"come", "for", "from", "good", "have", "here", "how", "in", "is",
	"it", "its", "just", "know", "like", "long", "make", "many", "much",
	"of", "on", "or", "over", "some", "such", "take", "than", "that",
	"the", "them", "they", "this", "time", "to", "very", "want", "well",
	"were", "when", "will", "with", "you", "your",
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{minTokenLen: 2}
	WithStopwords(defaultStopwords)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) Name() string { return "extractor.default" }

// ExtractVideo 从原始结果派生特征集合。
func (e *Extractor) ExtractVideo(v *core.Video) *core.FeatureSet {
	if v == nil {
		return &core.FeatureSet{DurationBucket: core.BucketMedium}
	}
	return &core.FeatureSet{
		ChannelID:      v.ChannelID,
		Category:       v.Category,
		Keywords:       e.Tokenize(v.Title),
		DurationBucket: core.BucketOf(v.DurationSeconds),
	}
}

// Tokenize 把标题转为关键词集合：小写、去标点、去停用词、去重、排序。
func (e *Extractor) Tokenize(title string) []string {
	if title == "" {
		return nil
	}

	lowered := strings.ToLower(title)
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len([]rune(tok)) < e.minTokenLen {
			continue
		}
		if _, stop := e.stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}

	sort.Strings(out)
	return out
}
