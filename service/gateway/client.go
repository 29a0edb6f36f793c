package gateway

import (
	"errors"
	"net"
	"sync"
	"time"

	"PaketBild/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 每次投递失败都会记日志，这里用不带堆栈的哨兵错误
var (
	ErrQueueFull    = errors.New("send queue full")
	ErrClientClosed = errors.New("client closed")
)

// Member 房间成员：一条可投递的连接句柄
type Member interface {
	ID() string
	Enqueue(frame []byte) error
}

// State 连接状态机：Connecting -> Connected -> Disconnected(终态)
type State int32

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

type ClientOptions struct {
	SendQueue      int
	WriteWait      time.Duration
	PongWait       time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

func (o *ClientOptions) norm() {
	if o.SendQueue <= 0 {
		o.SendQueue = 16
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingInterval <= 0 || o.PingInterval >= o.PongWait {
		o.PingInterval = o.PongWait * 9 / 10
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 4096
	}
}

// Client 一条 WebSocket 连接。写操作只发生在 writePump 协程里。
type Client struct {
	id   string
	ip   string
	ws   *websocket.Conn
	opts ClientOptions
	log  *zap.Logger

	send chan []byte // 每连接独立发送队列

	mu    sync.Mutex
	state State

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(id, ip string, ws *websocket.Conn, opts ClientOptions) *Client {
	opts.norm()
	return &Client{
		id:    id,
		ip:    ip,
		ws:    ws,
		opts:  opts,
		log:   logger.Named("ws").With(zap.String("conn", id), zap.String("ip", ip)),
		send:  make(chan []byte, opts.SendQueue),
		state: StateConnecting,
		done:  make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }
func (c *Client) IP() string { return c.ip }

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// transition 只允许向前推进，返回是否发生了变化
func (c *Client) transition(to State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if to <= c.state {
		return false
	}
	c.state = to
	return true
}

// Enqueue 非阻塞投递；队列满或已关闭时直接返回错误，不会卡住调用方
func (c *Client) Enqueue(frame []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrQueueFull
	}
}

// Close 通知写协程发送 close 帧并关闭底层连接，可重复调用
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump 只读不写；任何读错误都结束连接
func (c *Client) readPump() {
	c.ws.SetReadLimit(c.opts.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			switch {
			case websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived):
				c.log.Debug("peer closed", zap.Error(err))
			case isTimeout(err):
				c.log.Info("read timeout", zap.Error(err))
			default:
				c.log.Debug("read err", zap.Error(err))
			}
			return
		}
		// 客户端没有上行事件，收到的业务帧一律忽略
		c.log.Debug("ignore inbound frame", zap.Int("type", mt), zap.Int("len", len(data)))
	}
}

// writePump 发送队列 + 心跳；退出时关闭底层连接，从而让 readPump 结束
func (c *Client) writePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Warn("write frame err", zap.Error(err))
				c.Close()
				return
			}

		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteWait)); err != nil {
				c.log.Info("ping err", zap.Error(err))
				c.Close()
				return
			}

		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.opts.WriteWait))
			return
		}
	}
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

func deadline(d time.Duration) time.Time { return time.Now().Add(d) }
