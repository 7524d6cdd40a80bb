package learn

import (
	"context"
	"fmt"

	"github.com/vidkit/vidkit/core"
)

// Rebuild 从事件日志全量重放，重建用户的偏好模型。
//
// 核心可复现性不变量：给定确定的增量规则，对同一事件序列的重放
// 必然得到与在线增量更新逐字节相同的模型状态。
// 快照缺失的事件按异常跳过——与在线路径的行为一致。
//
// 返回的模型不自动落盘；需要物化时由调用方 SaveModel。
func (l *Learner) Rebuild(ctx context.Context, userID string) (*core.PreferenceModel, error) {
	events, err := l.store.Events(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load events for %s: %w", userID, err)
	}

	model := core.NewPreferenceModel(userID)
	for _, se := range events {
		if se.Video == nil {
			continue
		}
		ApplyEvent(model, l.policy, se.Event, l.extractor.ExtractVideo(se.Video))
	}
	return model, nil
}
