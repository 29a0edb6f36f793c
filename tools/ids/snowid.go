package ids

import (
	"strconv"
	"sync"
	"time"
)

const (
	seqBits  = 12
	nodeBits = 10
	seqMask  = (1 << seqBits) - 1
	maxNode  = (1 << nodeBits) - 1
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

// Generator 生成进程内单调递增的雪花 ID，用于给每条 WebSocket 连接编号
type Generator struct {
	mu       sync.Mutex
	nodeID   int64
	seq      int64
	lastTSMS int64
	now      func() int64
}

// NewGenerator nodeID 超出 0~1023 时回落到 1
func NewGenerator(nodeID int64) *Generator {
	if nodeID < 0 || nodeID > maxNode {
		nodeID = 1
	}
	return &Generator{
		nodeID: nodeID,
		now:    func() int64 { return time.Now().UnixMilli() },
	}
}

func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now < g.lastTSMS {
		// 时钟回拨：沿用上一个时间戳，靠序列号保证单调
		now = g.lastTSMS
	}
	if now == g.lastTSMS {
		g.seq = (g.seq + 1) & seqMask
		if g.seq == 0 {
			// 序列溢出，借用下一毫秒
			now++
		}
	} else {
		g.seq = 0
	}
	g.lastTSMS = now

	ts := (now - epoch) & ((1 << 41) - 1)
	return (ts << (seqBits + nodeBits)) | (g.nodeID << seqBits) | g.seq
}

func (g *Generator) NextString() string {
	return strconv.FormatInt(g.Next(), 10)
}
