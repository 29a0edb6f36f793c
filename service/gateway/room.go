package gateway

import (
	"sync"

	"PaketBild/logger"
	"PaketBild/tools/safe"

	"go.uber.org/zap"
)

// Router 按客户端标识分房间，一个标识一个房间，房间内可有多条连接
type Router struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Member // room -> conn_id -> member
	log   *zap.Logger
}

func NewRouter() *Router {
	return &Router{
		rooms: make(map[string]map[string]Member),
		log:   logger.Named("router"),
	}
}

func (r *Router) Join(room string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.rooms[room]
	if members == nil {
		members = make(map[string]Member)
		r.rooms[room] = members
	}
	members[m.ID()] = m
}

// Leave 移除一条连接；房间空了就删掉
func (r *Router) Leave(room string, m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.rooms[room]
	if members == nil {
		return
	}
	delete(members, m.ID())
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// Members 房间成员快照
func (r *Router) Members(room string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[room]
	if len(members) == 0 {
		return nil
	}
	out := make([]Member, 0, len(members))
	for _, m := range members {
		out = append(out, m)
	}
	return out
}

func (r *Router) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Emit 把同一帧交给房间内每个成员的发送队列，返回成功交付的成员数。
// 空房间是空操作；单个成员失败只记日志，不影响其他成员。
func (r *Router) Emit(event string, data any, room string) int {
	members := r.Members(room)
	if len(members) == 0 {
		r.log.Debug("emit to empty room", zap.String("event", event), zap.String("room", room))
		return 0
	}

	frame, err := EncodeFrame(event, data)
	if err != nil {
		r.log.Error("encode frame", zap.String("event", event), zap.Error(err))
		return 0
	}

	delivered := 0
	for _, m := range members {
		err := safe.Call(func() error { return m.Enqueue(frame) })
		if err != nil {
			r.log.Warn("deliver failed",
				zap.String("event", event),
				zap.String("room", room),
				zap.String("conn", m.ID()),
				zap.Error(err))
			continue
		}
		delivered++
	}
	r.log.Debug("emit",
		zap.String("event", event),
		zap.String("room", room),
		zap.Int("members", len(members)),
		zap.Int("delivered", delivered))
	return delivered
}
