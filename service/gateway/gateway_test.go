package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PaketBild/global/config"
	"PaketBild/tools/errs"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newTestGateway(t *testing.T) (*Gateway, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conf := config.Default().Gateway
	conf.PongWait = 5 * time.Second
	conf.PingInterval = 2 * time.Second
	conf.WriteWait = time.Second
	g := New(conf)

	r := gin.New()
	r.GET("/socket", g.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		g.Close()
		srv.Close()
	})
	return g, "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket"
}

func dial(t *testing.T, url, ip string) *websocket.Conn {
	t.Helper()
	h := http.Header{}
	h.Set("X-Forwarded-For", ip)
	conn, _, err := websocket.DefaultDialer.Dial(url, h)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	event, data := readFrame(t, conn)
	if event != EventMessage {
		t.Fatalf("first event = %q, want %q", event, EventMessage)
	}
	var text string
	_ = json.Unmarshal(data, &text)
	if !strings.Contains(text, ip) {
		t.Fatalf("welcome %q does not mention %s", text, ip)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	event, data, err := ParseFrameJSON(b)
	if err != nil {
		t.Fatalf("parse %q: %v", b, err)
	}
	return event, data
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	waitWithin(t, 2*time.Second, what, cond)
}

func waitWithin(t *testing.T, d time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestConnectRegistersClient(t *testing.T) {
	g, url := newTestGateway(t)
	dial(t, url, "10.0.0.5")

	if !g.IsConnected("10.0.0.5") {
		t.Fatalf("10.0.0.5 should be connected")
	}
	if got := g.ListConnected(); len(got) != 1 || got[0] != "10.0.0.5" {
		t.Fatalf("ListConnected = %v", got)
	}
}

func TestSendImagesDelivers(t *testing.T) {
	g, url := newTestGateway(t)
	conn := dial(t, url, "10.0.0.5")

	if err := g.SendImages("10.0.0.5", []string{"QQ==", "Qg=="}); err != nil {
		t.Fatalf("SendImages: %v", err)
	}
	event, data := readFrame(t, conn)
	if event != EventNewImage {
		t.Fatalf("event = %q", event)
	}
	var images []string
	if err := json.Unmarshal(data, &images); err != nil {
		t.Fatal(err)
	}
	if len(images) != 2 || images[0] != "QQ==" || images[1] != "Qg==" {
		t.Fatalf("images = %v", images)
	}
}

func TestSendToUnknownClient(t *testing.T) {
	g, _ := newTestGateway(t)

	err := g.SendImages("10.0.0.9", []string{"QQ=="})
	if !errors.Is(err, errs.ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
	if n := g.Router().Emit(EventNewImage, []string{"QQ=="}, "10.0.0.9"); n != 0 {
		t.Fatalf("delivered = %d", n)
	}
}

func TestDisconnectDeregisters(t *testing.T) {
	g, url := newTestGateway(t)
	conn := dial(t, url, "10.0.0.5")

	_ = conn.Close()
	waitFor(t, "deregistration", func() bool { return !g.IsConnected("10.0.0.5") })

	if err := g.SendClear("10.0.0.5"); !errors.Is(err, errs.ErrNotConnected) {
		t.Fatalf("SendClear err = %v, want ErrNotConnected", err)
	}
	if g.Router().Rooms() != 0 {
		t.Fatalf("room should be torn down")
	}
}

func TestTwoTabsSameIP(t *testing.T) {
	g, url := newTestGateway(t)
	tab1 := dial(t, url, "10.0.0.5")
	tab2 := dial(t, url, "10.0.0.5")

	if err := g.SendImages("10.0.0.5", []string{"QQ=="}); err != nil {
		t.Fatal(err)
	}
	for _, c := range []*websocket.Conn{tab1, tab2} {
		if event, _ := readFrame(t, c); event != EventNewImage {
			t.Fatalf("event = %q", event)
		}
	}

	_ = tab1.Close()
	waitFor(t, "one connection left", func() bool { return g.Registry().Connections("10.0.0.5") == 1 })
	if !g.IsConnected("10.0.0.5") {
		t.Fatalf("identifier must stay connected while second tab is open")
	}

	if err := g.SendClear("10.0.0.5"); err != nil {
		t.Fatal(err)
	}
	if event, _ := readFrame(t, tab2); event != EventClearImages {
		t.Fatalf("event = %q", event)
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	g, url := newTestGateway(t)
	a := dial(t, url, "10.0.0.5")
	b := dial(t, url, "10.0.0.6")

	if err := g.SendClear("10.0.0.6"); err != nil {
		t.Fatal(err)
	}
	if event, _ := readFrame(t, b); event != EventClearImages {
		t.Fatalf("event = %q", event)
	}

	_ = a.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, msg, err := a.ReadMessage(); err == nil {
		t.Fatalf("room 10.0.0.5 received %s", msg)
	}
}

func TestInboundFramesIgnored(t *testing.T) {
	g, url := newTestGateway(t)
	conn := dial(t, url, "10.0.0.5")

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"hello"}`)); err != nil {
		t.Fatal(err)
	}
	if err := g.SendClear("10.0.0.5"); err != nil {
		t.Fatal(err)
	}
	if event, _ := readFrame(t, conn); event != EventClearImages {
		t.Fatalf("event = %q", event)
	}
}

func TestCloseDisconnectsEveryone(t *testing.T) {
	g, url := newTestGateway(t)
	conn := dial(t, url, "10.0.0.5")

	g.Close()

	if g.IsConnected("10.0.0.5") {
		t.Fatalf("registry must be empty after Close")
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}

func TestStalledClientDoesNotBlockOthers(t *testing.T) {
	g, url := newTestGateway(t)
	dial(t, url, "10.0.0.5") // 读完欢迎消息后不再读取
	other := dial(t, url, "10.0.0.6")

	big := []string{strings.Repeat("A", 1<<20)}
	dropped := 0
	start := time.Now()
	for i := 0; i < 200; i++ {
		if n := g.Router().Emit(EventNewImage, big, "10.0.0.5"); n == 0 {
			dropped++
		}
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("emit to a stalled client took %v", elapsed)
	}
	if dropped == 0 {
		t.Fatalf("expected frames to be dropped for the stalled client")
	}

	begin := time.Now()
	if err := g.SendClear("10.0.0.6"); err != nil {
		t.Fatalf("SendClear: %v", err)
	}
	if elapsed := time.Since(begin); elapsed > 100*time.Millisecond {
		t.Fatalf("SendClear took %v", elapsed)
	}
	if event, _ := readFrame(t, other); event != EventClearImages {
		t.Fatalf("event = %q", event)
	}

	// 写超时后服务端断开该连接
	waitWithin(t, 10*time.Second, "stalled client deregistered", func() bool {
		return !g.IsConnected("10.0.0.5")
	})
	if err := g.SendImages("10.0.0.5", big); !errors.Is(err, errs.ErrNotConnected) {
		t.Fatalf("SendImages err = %v, want ErrNotConnected", err)
	}
	if !g.IsConnected("10.0.0.6") {
		t.Fatalf("10.0.0.6 must stay connected")
	}
}

func TestDeliveryErrorsCarryNoStack(t *testing.T) {
	for _, err := range []error{ErrQueueFull, ErrClientClosed} {
		if got := fmt.Sprintf("%+v", err); got != err.Error() {
			t.Fatalf("%q formats with extra detail: %q", err.Error(), got)
		}
	}
}
