package gateway

import (
	"encoding/json"
)

// 下行事件名
const (
	EventMessage     = "message"
	EventNewImage    = "newImage"
	EventClearImages = "clearImages"
)

// Frame 下行帧：{"event":"newImage","data":[...]}
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func EncodeFrame(event string, data any) ([]byte, error) {
	return json.Marshal(Frame{Event: event, Data: data})
}

// ParseFrameJSON 仅用于测试和客户端工具解析下行帧
func ParseFrameJSON(b []byte) (event string, data json.RawMessage, err error) {
	var f struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err = json.Unmarshal(b, &f); err != nil {
		return "", nil, err
	}
	return f.Event, f.Data, nil
}
