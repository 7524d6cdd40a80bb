package core

import (
	"context"
	"time"
)

// PreferenceStore 是偏好持久化的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置：领域层不依赖任何存储后端
//   - LoadModel 对不存在的用户返回全零空模型，"不存在"不是错误
//
// 实现：
//   - store.MemoryStore（测试/开发/原型）
//   - store.RedisStore（生产常用）
//   - store.SQLiteStore（单机嵌入式）
type PreferenceStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// LoadModel 读取用户的偏好模型。
	// 用户不存在时返回全零空模型而非错误；返回值为调用方独占的拷贝。
	LoadModel(ctx context.Context, userID string) (*PreferenceModel, error)

	// SaveModel 全量写入用户的偏好模型。
	// 写失败必须返回 PERSISTENCE 错误：学习调用方依赖它上抛。
	SaveModel(ctx context.Context, model *PreferenceModel) error

	// AppendEvent 追加一条交互事件及其视频快照到事件日志。
	AppendEvent(ctx context.Context, event InteractionEvent, video *Video) error

	// Events 按写入顺序返回用户的全部事件（重放用）。
	Events(ctx context.Context, userID string) ([]StoredEvent, error)

	// RecordSearch 记录一次搜索（query + 返回结果数）。尽力而为。
	RecordSearch(ctx context.Context, userID, query string, resultCount int) error

	// SearchHistory 返回用户最近的搜索记录，新在前。
	SearchHistory(ctx context.Context, userID string, limit int) ([]SearchRecord, error)

	// Close 关闭连接/释放资源
	Close() error
}

// SearchRecord 是一条搜索历史。
type SearchRecord struct {
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	At          time.Time `json:"at"`
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在（仅实现内部使用；LoadModel 永不返回它）
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrStorePersistence 表示写入失败
	ErrStorePersistence = NewDomainError(ModuleStore, ErrorCodePersistence, "store: write failed")
)

// IsStoreNotFound 检查错误是否为 key 不存在。
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
