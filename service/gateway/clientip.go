package gateway

import (
	"net"
	"net/http"
	"strings"
)

const headerForwardedFor = "X-Forwarded-For"

// ClientIP 客户端标识：优先取 X-Forwarded-For 的第一项，否则取对端地址。
// 同一代理/NAT 后的多个客户端会得到同一个标识。
func ClientIP(r *http.Request) string {
	if v := r.Header.Get(headerForwardedFor); v != "" {
		first, _, _ := strings.Cut(v, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
