package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidkit/vidkit/core"
)

// YouTubeProvider 是 YouTube Data API v3 的 VideoProvider 实现。
//
// 一次 Search 做两段调用：
//  1. search.list 取视频 ID 与 snippet（标题/频道/发布时间），保持上游相关性顺序
//  2. videos.list 批量补 statistics + contentDetails（播放量/点赞/时长/类目）
//
// 统计补全失败只降级不报错：排序仍可依赖标题与频道特征。
type YouTubeProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// YouTubeOption 是 YouTubeProvider 的配置选项。
type YouTubeOption func(*YouTubeProvider)

// WithHTTPClient 替换底层 HTTP 客户端（超时/代理/测试桩）。
func WithHTTPClient(c *http.Client) YouTubeOption {
	return func(p *YouTubeProvider) { p.client = c }
}

// WithBaseURL 替换 API 地址（测试用）。
func WithBaseURL(u string) YouTubeOption {
	return func(p *YouTubeProvider) { p.baseURL = strings.TrimSuffix(u, "/") }
}

// WithProviderLogger 设置结构化日志。默认丢弃。
func WithProviderLogger(log zerolog.Logger) YouTubeOption {
	return func(p *YouTubeProvider) { p.log = log }
}

func NewYouTubeProvider(apiKey string, opts ...YouTubeOption) *YouTubeProvider {
	p := &YouTubeProvider{
		apiKey:  apiKey,
		baseURL: "https://www.googleapis.com/youtube/v3",
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *YouTubeProvider) Name() string { return "provider.youtube" }

// API 响应结构（只声明用到的字段）

type searchListResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			ChannelID   string `json:"channelId"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			ChannelID   string `json:"channelId"`
			CategoryID  string `json:"categoryId"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// Search 实现 core.VideoProvider。
func (p *YouTubeProvider) Search(ctx context.Context, query string, maxResults int) ([]*core.Video, error) {
	if maxResults <= 0 {
		maxResults = 25
	}
	if maxResults > 50 {
		maxResults = 50 // API 单页上限
	}

	q := url.Values{}
	q.Set("part", "id,snippet")
	q.Set("type", "video")
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("order", "relevance")
	q.Set("key", p.apiKey)

	var searchResp searchListResponse
	if err := p.get(ctx, "/search", q, &searchResp); err != nil {
		return nil, err
	}

	videos := make([]*core.Video, 0, len(searchResp.Items))
	ids := make([]string, 0, len(searchResp.Items))
	for _, item := range searchResp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		v := &core.Video{
			ID:        item.ID.VideoID,
			Title:     item.Snippet.Title,
			ChannelID: item.Snippet.ChannelID,
		}
		if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			v.PublishedAt = ts
		}
		videos = append(videos, v)
		ids = append(ids, item.ID.VideoID)
	}

	if len(ids) > 0 {
		if err := p.addStatistics(ctx, videos, ids); err != nil {
			// 统计失败只降级：时长缺失会落 medium 桶
			p.log.Warn().Err(err).Str("query", query).Msg("video statistics unavailable")
		}
	}

	p.log.Debug().Str("query", query).Int("results", len(videos)).Msg("youtube search done")
	return videos, nil
}

// Trending 实现 core.TrendingProvider：videos.list chart=mostPopular。
// 榜单接口一次调用即带全 snippet + statistics + contentDetails，无需二段补全。
func (p *YouTubeProvider) Trending(ctx context.Context, maxResults int) ([]*core.Video, error) {
	if maxResults <= 0 {
		maxResults = 25
	}
	if maxResults > 50 {
		maxResults = 50
	}

	q := url.Values{}
	q.Set("part", "snippet,statistics,contentDetails")
	q.Set("chart", "mostPopular")
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("key", p.apiKey)

	var resp videosListResponse
	if err := p.get(ctx, "/videos", q, &resp); err != nil {
		return nil, err
	}

	videos := make([]*core.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID == "" {
			continue
		}
		v := &core.Video{
			ID:              item.ID,
			Title:           item.Snippet.Title,
			ChannelID:       item.Snippet.ChannelID,
			Category:        item.Snippet.CategoryID,
			DurationSeconds: ParseISO8601Duration(item.ContentDetails.Duration),
		}
		v.ViewCount, _ = strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		v.LikeCount, _ = strconv.ParseInt(item.Statistics.LikeCount, 10, 64)
		if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			v.PublishedAt = ts
		}
		videos = append(videos, v)
	}

	p.log.Debug().Int("results", len(videos)).Msg("youtube trending done")
	return videos, nil
}

func (p *YouTubeProvider) addStatistics(ctx context.Context, videos []*core.Video, ids []string) error {
	q := url.Values{}
	q.Set("part", "snippet,statistics,contentDetails")
	q.Set("id", strings.Join(ids, ","))
	q.Set("key", p.apiKey)

	var resp videosListResponse
	if err := p.get(ctx, "/videos", q, &resp); err != nil {
		return err
	}

	byID := make(map[string]int, len(videos))
	for i, v := range videos {
		byID[v.ID] = i
	}
	for _, item := range resp.Items {
		i, ok := byID[item.ID]
		if !ok {
			continue
		}
		v := videos[i]
		v.Category = item.Snippet.CategoryID
		v.DurationSeconds = ParseISO8601Duration(item.ContentDetails.Duration)
		v.ViewCount, _ = strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		v.LikeCount, _ = strconv.ParseInt(item.Statistics.LikeCount, 10, 64)
	}
	return nil
}

func (p *YouTubeProvider) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		// 瞬时网络错误对调用方统一呈现为"上游不可用"
		return core.ErrProviderUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		// 403 是配额耗尽 / key 失效
		return core.ErrProviderUnavailable
	case resp.StatusCode == http.StatusTooManyRequests:
		return core.ErrProviderRateLimited
	case resp.StatusCode != http.StatusOK:
		return core.NewDomainError(core.ModuleProvider, core.ErrorCodeUnavailable,
			fmt.Sprintf("provider: youtube api status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube response: %w", err)
	}
	return nil
}

var (
	_ core.VideoProvider    = (*YouTubeProvider)(nil)
	_ core.TrendingProvider = (*YouTubeProvider)(nil)
)
