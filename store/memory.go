package store

import (
	"context"
	"sync"
	"time"

	"github.com/vidkit/vidkit/core"
)

// nowFunc 便于测试固定时间
var nowFunc = time.Now

// MemoryStore 是内存实现的 PreferenceStore，用于测试/开发/原型。
// 进程重启后数据丢失。
type MemoryStore struct {
	mu      sync.RWMutex
	models  map[string]*core.PreferenceModel
	events  map[string][]core.StoredEvent
	history map[string][]core.SearchRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		models:  make(map[string]*core.PreferenceModel),
		events:  make(map[string][]core.StoredEvent),
		history: make(map[string][]core.SearchRecord),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

// LoadModel 返回模型的深拷贝；用户不存在时返回全零空模型。
func (m *MemoryStore) LoadModel(_ context.Context, userID string) (*core.PreferenceModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if model, ok := m.models[userID]; ok {
		return model.Clone(), nil
	}
	return core.NewPreferenceModel(userID), nil
}

func (m *MemoryStore) SaveModel(_ context.Context, model *core.PreferenceModel) error {
	if model == nil || model.UserID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalid, "store: model missing user id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.models[model.UserID] = model.Clone()
	return nil
}

func (m *MemoryStore) AppendEvent(_ context.Context, ev core.InteractionEvent, video *core.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var snapshot *core.Video
	if video != nil {
		v := *video
		snapshot = &v
	}
	m.events[ev.UserID] = append(m.events[ev.UserID], core.StoredEvent{Event: ev, Video: snapshot})
	return nil
}

func (m *MemoryStore) Events(_ context.Context, userID string) ([]core.StoredEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := m.events[userID]
	out := make([]core.StoredEvent, len(events))
	copy(out, events)
	return out, nil
}

func (m *MemoryStore) RecordSearch(_ context.Context, userID, query string, resultCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history[userID] = append(m.history[userID], core.SearchRecord{
		Query:       query,
		ResultCount: resultCount,
		At:          nowFunc(),
	})
	return nil
}

func (m *MemoryStore) SearchHistory(_ context.Context, userID string, limit int) ([]core.SearchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.history[userID]
	out := make([]core.SearchRecord, 0, len(records))
	// 新在前
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

var _ core.PreferenceStore = (*MemoryStore)(nil)
