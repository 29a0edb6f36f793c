package middleware

import (
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var manager = sync.OnceValue(func() *MiddlewareManager { return &MiddlewareManager{} })

// MiddlewareManager 鉴权路由共用的中间件链，RouteOpt{IsAuth: true} 的路由都会经过它。
// 链按整体替换，请求侧读快照不加锁。
type MiddlewareManager struct {
	chain atomic.Pointer[[]gin.HandlerFunc]
}

// Config 启动时注册鉴权链，会替换之前的配置
func Config(mids ...gin.HandlerFunc) {
	Manager().Set(mids...)
}

func Manager() *MiddlewareManager {
	return manager()
}

func (m *MiddlewareManager) Set(mids ...gin.HandlerFunc) {
	snapshot := append([]gin.HandlerFunc(nil), mids...)
	m.chain.Store(&snapshot)
}

func (m *MiddlewareManager) Reset() {
	m.chain.Store(nil)
}

func (m *MiddlewareManager) handlers() []gin.HandlerFunc {
	if p := m.chain.Load(); p != nil {
		return *p
	}
	return nil
}

// Use 依次执行链上的中间件，任一 Abort 即停止
func (m *MiddlewareManager) Use() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range m.handlers() {
			h(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}
