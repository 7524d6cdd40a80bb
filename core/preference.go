package core

// PreferenceModel 是单个用户的偏好模型：各维度的加权亲和度 + 硬排除集合。
//
// 一句话定义：偏好模型 = 事件日志的物化缓存 + Rank 的打分函数。
//
// 设计要点：
//   - 缺失 key 一律视为权重 0.0（未知即无偏好），不存在 "key not found" 错误路径
//   - 权重为无界实数，越大越偏好
//   - 排除集合优先于任何正权重：命中即硬过滤，而非低分
//   - 只由 learn.Learner 修改；Rank 侧只读
type PreferenceModel struct {
	UserID string `json:"user_id"`

	ChannelWeights  map[string]float64 `json:"channel_weights"`
	CategoryWeights map[string]float64 `json:"category_weights"`
	KeywordWeights  map[string]float64 `json:"keyword_weights"`

	DurationPrefs map[DurationBucket]float64 `json:"duration_prefs"`

	ExcludedChannels map[string]struct{} `json:"excluded_channels"`
	ExcludedKeywords map[string]struct{} `json:"excluded_keywords"`
}

// NewPreferenceModel 创建一个全零权重的空模型（新用户的初始状态）。
func NewPreferenceModel(userID string) *PreferenceModel {
	return &PreferenceModel{
		UserID:           userID,
		ChannelWeights:   make(map[string]float64),
		CategoryWeights:  make(map[string]float64),
		KeywordWeights:   make(map[string]float64),
		DurationPrefs:    make(map[DurationBucket]float64),
		ExcludedChannels: make(map[string]struct{}),
		ExcludedKeywords: make(map[string]struct{}),
	}
}

// Score 计算特征集合的偏好分：
//
//	channel + category + Σ keyword + duration
//
// 未知 key 贡献 0.0（加法单位元），因此全新用户对所有结果得分一致为 0，
// 初始排序退化为上游顺序的稳定 no-op。
func (m *PreferenceModel) Score(fs *FeatureSet) float64 {
	if m == nil || fs == nil {
		return 0
	}
	score := m.ChannelWeights[fs.ChannelID] + m.CategoryWeights[fs.Category]
	for _, kw := range fs.Keywords {
		score += m.KeywordWeights[kw]
	}
	score += m.DurationPrefs[fs.DurationBucket]
	return score
}

// Excludes 判断特征集合是否命中硬排除（频道或任一关键词）。
// 排除是绝对的：与分数无关，命中即从结果中剔除。
func (m *PreferenceModel) Excludes(fs *FeatureSet) bool {
	if m == nil || fs == nil {
		return false
	}
	if _, ok := m.ExcludedChannels[fs.ChannelID]; ok {
		return true
	}
	for _, kw := range fs.Keywords {
		if _, ok := m.ExcludedKeywords[kw]; ok {
			return true
		}
	}
	return false
}

// ExcludeChannel 将频道加入排除集合。
func (m *PreferenceModel) ExcludeChannel(channelID string) {
	if channelID == "" {
		return
	}
	if m.ExcludedChannels == nil {
		m.ExcludedChannels = make(map[string]struct{})
	}
	m.ExcludedChannels[channelID] = struct{}{}
}

// ExcludeKeyword 将关键词加入排除集合。
func (m *PreferenceModel) ExcludeKeyword(token string) {
	if token == "" {
		return
	}
	if m.ExcludedKeywords == nil {
		m.ExcludedKeywords = make(map[string]struct{})
	}
	m.ExcludedKeywords[token] = struct{}{}
}

// Clone 深拷贝模型。Store 实现用它避免调用方与存储共享可变 map。
func (m *PreferenceModel) Clone() *PreferenceModel {
	if m == nil {
		return nil
	}
	out := NewPreferenceModel(m.UserID)
	for k, v := range m.ChannelWeights {
		out.ChannelWeights[k] = v
	}
	for k, v := range m.CategoryWeights {
		out.CategoryWeights[k] = v
	}
	for k, v := range m.KeywordWeights {
		out.KeywordWeights[k] = v
	}
	for k, v := range m.DurationPrefs {
		out.DurationPrefs[k] = v
	}
	for k := range m.ExcludedChannels {
		out.ExcludedChannels[k] = struct{}{}
	}
	for k := range m.ExcludedKeywords {
		out.ExcludedKeywords[k] = struct{}{}
	}
	return out
}
