package core

import "context"

// VideoProvider 是上游视频搜索源的领域接口。
//
// 配额、重试、分页属于实现细节，不在契约内。
// 失败分类：
//   - 限流 / 配额耗尽 / 瞬时网络错误 → UNAVAILABLE / RATE_LIMITED
//   - 调用方统一按"当前无结果可用"降级，不透传上游错误细节
type VideoProvider interface {
	// Name 返回 provider 名称（用于日志/标签）
	Name() string

	// Search 按查询返回至多 maxResults 条原始结果，保持上游相关性顺序。
	Search(ctx context.Context, query string, maxResults int) ([]*Video, error)
}

// TrendingProvider 是可选能力：上游支持热门榜单时实现。
// 不实现的 provider 由调用方用通用热门查询兜底。
type TrendingProvider interface {
	// Trending 返回至多 maxResults 条当前热门视频，保持榜单顺序。
	Trending(ctx context.Context, maxResults int) ([]*Video, error)
}

// Provider 错误定义
var (
	// ErrProviderUnavailable 表示上游不可用（配额/网络）
	ErrProviderUnavailable = NewDomainError(ModuleProvider, ErrorCodeUnavailable, "provider: unavailable")

	// ErrProviderRateLimited 表示上游限流
	ErrProviderRateLimited = NewDomainError(ModuleProvider, ErrorCodeRateLimited, "provider: rate limited")
)
