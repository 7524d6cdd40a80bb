package core

import "time"

// Action 是用户对某条搜索结果的交互动作。
type Action string

const (
	ActionClick Action = "click"
	ActionLike  Action = "like"
	ActionWatch Action = "watch" // WatchFraction 仅对 watch 有意义

	// ActionNotInterested 是显式负反馈：进入排除集合而非负权重。
	ActionNotInterested = Action("not_interested")
)

// InteractionEvent 是一条交互事件记录。Append-only：写入后永不修改。
// 事件日志是偏好模型的事实来源；同一事件重放两次，效果合法地翻倍。
type InteractionEvent struct {
	ID      string `json:"id"` // uuid
	UserID  string `json:"user_id"`
	VideoID string `json:"video_id"`
	Action  Action `json:"action"`

	// WatchFraction ∈ [0,1]：观看完成度，仅 Action == watch 时使用。
	WatchFraction float64 `json:"watch_fraction,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// StoredEvent 是落盘形态：事件 + 当时的视频快照。
// 快照使得全量重放（learn.Rebuild）无需回查上游即可重建特征；
// 快照缺失的事件在重放时按异常跳过，与在线路径行为一致。
type StoredEvent struct {
	Event InteractionEvent `json:"event"`
	Video *Video           `json:"video,omitempty"`
}
