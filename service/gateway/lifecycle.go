package gateway

// LifecycleKind 连接生命周期事件类型
type LifecycleKind int

const (
	Connected LifecycleKind = iota + 1
	Disconnected
)

func (k LifecycleKind) String() string {
	switch k {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// LifecycleEvent 由 ws 处理协程产生，同步交给 Registry/Router 消费
type LifecycleEvent struct {
	Kind   LifecycleKind
	IP     string
	Member Member
}

// Apply 按事件顺序更新在线表和房间：
// 连接时先登记再入房，断开时先出房再注销。
func (g *Gateway) Apply(ev LifecycleEvent) {
	switch ev.Kind {
	case Connected:
		g.registry.Register(ev.IP)
		g.router.Join(ev.IP, ev.Member)
		g.log.Infof("[WS] client connected ip=%s conn=%s online=%d", ev.IP, ev.Member.ID(), g.registry.Connections(ev.IP))
	case Disconnected:
		g.router.Leave(ev.IP, ev.Member)
		g.registry.Deregister(ev.IP)
		g.log.Infof("[WS] client disconnected ip=%s conn=%s remaining=%d", ev.IP, ev.Member.ID(), g.registry.Connections(ev.IP))
	}
}
