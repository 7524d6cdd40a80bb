package core

import "time"

// Video 是上游搜索源返回的原始视频记录。
// 不可变：由 Provider 按查询生成，链路内只读。
type Video struct {
	ID              string
	Title           string
	ChannelID       string
	Category        string
	DurationSeconds int
	ViewCount       int64
	LikeCount       int64
	PublishedAt     time.Time
}

// DurationBucket 是视频时长分桶。
type DurationBucket string

const (
	BucketShort  DurationBucket = "short"
	BucketMedium DurationBucket = "medium"
	BucketLong   DurationBucket = "long"
)

// 分桶边界（秒）。边界值落入右侧桶：239s -> short，240s -> medium，
// 1199s -> medium，1200s -> long。
const (
	ShortMaxSeconds  = 240
	MediumMaxSeconds = 1200
)

// BucketOf 按固定边界对时长分桶。
// 缺失或非法时长（<= 0）归入 medium：分桶是全函数，永不失败。
func BucketOf(seconds int) DurationBucket {
	switch {
	case seconds <= 0:
		return BucketMedium
	case seconds < ShortMaxSeconds:
		return BucketShort
	case seconds < MediumMaxSeconds:
		return BucketMedium
	default:
		return BucketLong
	}
}
