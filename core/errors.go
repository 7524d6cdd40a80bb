package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 只有 I/O 边界（Store / Provider）会产生领域错误
//   - 特征提取与打分是全函数：永不失败，缺失字段走文档化默认值
//   - 提供错误代码（Code）与模块（Module），支持 IsXXX 检查函数
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "provider"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 从错误链中取出 DomainError，没有则返回 nil。
// 调用链普遍用 fmt.Errorf("...: %w", err) 包装，这里必须沿链展开，
// 否则 IsXXX 检查函数对包装后的错误全部失效。
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound    = "NOT_FOUND"    // 资源不存在
	ErrorCodeUnavailable = "UNAVAILABLE"  // 服务不可用 / 配额耗尽
	ErrorCodeRateLimited = "RATE_LIMITED" // 上游限流
	ErrorCodePersistence = "PERSISTENCE"  // 存储写入失败
	ErrorCodeInvalid     = "INVALID_INPUT"
)

// 模块名称常量
const (
	ModuleStore    = "store"
	ModuleProvider = "provider"
	ModuleLearn    = "learn"
)

// IsProviderUnavailable 判断是否为上游不可用类错误（含限流）。
// 调用方对此类错误的策略是"当前无结果可用"，而非透传上游细节。
func IsProviderUnavailable(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr == nil || domainErr.Module != ModuleProvider {
		return false
	}
	return domainErr.Code == ErrorCodeUnavailable || domainErr.Code == ErrorCodeRateLimited
}

// IsPersistenceFailure 判断是否为存储写入失败。
// 学习路径必须把它上抛给调用方：静默丢弃更新是正确性 bug。
func IsPersistenceFailure(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr == nil {
		return false
	}
	return domainErr.Module == ModuleStore && domainErr.Code == ErrorCodePersistence
}
