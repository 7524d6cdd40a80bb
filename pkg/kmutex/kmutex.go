// Package kmutex 提供按 key 的互斥锁，用于同一用户的读-改-写临界区串行化。
// 不同 key 完全独立，可并行。
package kmutex

import "sync"

// KMutex 是按 key 分配的互斥锁集合。
// 锁一经创建不回收：用户基数有限，常驻 mutex 的内存开销可忽略。
type KMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *KMutex {
	return &KMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock 锁住 key 对应的互斥锁，必要时创建。
func (k *KMutex) Lock(key string) {
	k.get(key).Lock()
}

// Unlock 释放 key 对应的互斥锁。
func (k *KMutex) Unlock(key string) {
	k.get(key).Unlock()
}

func (k *KMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
