package gateway

import (
	"sort"
	"sync"
)

// Registry 在线客户端标识集合。
// 同一标识的多条连接按引用计数，最后一条断开时才视为离线。
type Registry struct {
	mu    sync.RWMutex
	count map[string]int // ip -> live connections
}

func NewRegistry() *Registry {
	return &Registry{count: make(map[string]int)}
}

// Register 记录一条新连接
func (r *Registry) Register(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count[id]++
}

// Deregister 释放一条连接；不存在时为空操作
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.count[id]
	if !ok {
		return
	}
	if n <= 1 {
		delete(r.count, id)
		return
	}
	r.count[id] = n - 1
}

func (r *Registry) Contains(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.count[id]
	return ok
}

// Connections returns the number of live connections for id.
func (r *Registry) Connections(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count[id]
}

// List 返回当前快照，按字典序排列
func (r *Registry) List() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.count))
	for id := range r.count {
		out = append(out, id)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.count)
}
