package gateway

import (
	"fmt"
	"sync"

	"PaketBild/global/config"
	"PaketBild/logger"
	"PaketBild/tools/errs"
	"PaketBild/tools/ids"

	"go.uber.org/zap"
)

// Gateway 进程内唯一的实时推送服务：持有在线表、房间路由和所有活动连接。
// 由 main 构造一次，注入到 ws 处理器和 HTTP 命令接口。
type Gateway struct {
	registry *Registry
	router   *Router
	ids      *ids.Generator
	opts     ClientOptions
	log      *zap.SugaredLogger

	mu      sync.Mutex
	clients map[string]*Client // conn_id -> client，仅用于关停
	closed  bool
	wg      sync.WaitGroup
}

func New(conf config.GatewayConfig) *Gateway {
	opts := ClientOptions{
		SendQueue:      conf.SendQueue,
		WriteWait:      conf.WriteWait,
		PongWait:       conf.PongWait,
		PingInterval:   conf.PingInterval,
		MaxMessageSize: conf.MaxMessageSize,
	}
	opts.norm()
	return &Gateway{
		registry: NewRegistry(),
		router:   NewRouter(),
		ids:      ids.NewGenerator(conf.NodeID),
		opts:     opts,
		log:      logger.Named("gateway").Sugar(),
		clients:  make(map[string]*Client),
	}
}

func (g *Gateway) Registry() *Registry { return g.registry }
func (g *Gateway) Router() *Router     { return g.router }

// ===== 命令接口（供 HTTP API 调用）=====

func (g *Gateway) IsConnected(ip string) bool {
	return g.registry.Contains(ip)
}

func (g *Gateway) ListConnected() []string {
	return g.registry.List()
}

// SendImages 向 ip 的房间推送 newImage；在线检查只是尽力而为，
// 检查后断开的情况下 Emit 仍然安全地成为空操作。
func (g *Gateway) SendImages(ip string, images []string) error {
	if !g.registry.Contains(ip) {
		return errs.ErrNotConnected.WrapMsg("send images", "ip", ip)
	}
	if images == nil {
		images = []string{}
	}
	n := g.router.Emit(EventNewImage, images, ip)
	g.log.Infof("[CMD] newImage ip=%s images=%d delivered=%d", ip, len(images), n)
	return nil
}

func (g *Gateway) SendClear(ip string) error {
	if !g.registry.Contains(ip) {
		return errs.ErrNotConnected.WrapMsg("clear images", "ip", ip)
	}
	n := g.router.Emit(EventClearImages, nil, ip)
	g.log.Infof("[CMD] clearImages ip=%s delivered=%d", ip, n)
	return nil
}

// ===== 连接管理 =====

func (g *Gateway) track(c *Client) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.clients[c.ID()] = c
	g.wg.Add(1)
	return true
}

func (g *Gateway) untrack(c *Client) {
	g.mu.Lock()
	delete(g.clients, c.ID())
	g.mu.Unlock()
	g.wg.Done()
}

// Close 关停时断开所有连接并等待其生命周期收尾
func (g *Gateway) Close() {
	g.mu.Lock()
	g.closed = true
	clients := make([]*Client, 0, len(g.clients))
	for _, c := range g.clients {
		clients = append(clients, c)
	}
	g.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	g.wg.Wait()
	g.log.Infof("[WS] gateway closed, dropped %d connections", len(clients))
}

func welcomeText(ip string) string {
	return fmt.Sprintf("Willkommen %s, Sie sind jetzt verbunden!", ip)
}
