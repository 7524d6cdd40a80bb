package core

// FeatureSet 是从视频或交互事件派生出的可比较特征集合。
// 只在内存中流转，不单独持久化。
type FeatureSet struct {
	ChannelID string
	Category  string

	// Keywords 是标题关键词集合：小写、去标点、去重、排序。
	// 排序保证同一输入的特征表示字节级稳定（确定性依赖它）。
	Keywords []string

	DurationBucket DurationBucket
}

// HasKeyword 判断关键词是否存在。
func (fs *FeatureSet) HasKeyword(token string) bool {
	for _, k := range fs.Keywords {
		if k == token {
			return true
		}
	}
	return false
}
