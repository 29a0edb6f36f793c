package gateway

import (
	"net/http"

	"PaketBild/tools/safe"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS 实时通道不做鉴权；房间名取自客户端 IP
func (g *Gateway) HandleWS(c *gin.Context) {
	ip := ClientIP(c.Request)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// 常见：非 WebSocket 请求/握手失败
		g.log.Infof("[WS] upgrade websocket error ip=%s err=%v", ip, err)
		return
	}

	client := NewClient(g.ids.NextString(), ip, ws, g.opts)
	if !g.track(client) {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			deadline(g.opts.WriteWait))
		_ = ws.Close()
		return
	}
	defer g.untrack(client)

	g.serve(client)
}

// serve 跑完一条连接的完整生命周期，返回时连接已处于 Disconnected
func (g *Gateway) serve(client *Client) {
	safe.SafeGo("ws-write-"+client.ID(), client.writePump)

	if client.transition(StateConnected) {
		g.Apply(LifecycleEvent{Kind: Connected, IP: client.IP(), Member: client})
	}

	// 欢迎消息只发给当前连接，不走房间广播
	if frame, err := EncodeFrame(EventMessage, welcomeText(client.IP())); err == nil {
		if err := client.Enqueue(frame); err != nil {
			g.log.Warnf("[WS] welcome dropped conn=%s err=%v", client.ID(), err)
		}
	}

	client.readPump()
	client.Close()

	if client.transition(StateDisconnected) {
		g.Apply(LifecycleEvent{Kind: Disconnected, IP: client.IP(), Member: client})
	}
	g.log.Debugf("[WS] conn=%s state=%s", client.ID(), client.State())
}
