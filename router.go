package main

import (
	"net/http"

	"PaketBild/global/config"
	mid "PaketBild/middleware"
	midsec "PaketBild/middleware/security"
	"PaketBild/module/auth"
	"PaketBild/module/paketbild"
	"PaketBild/module/paketbild/service"
	"PaketBild/service/gateway"

	"github.com/gin-gonic/gin"
)

func newEngine(cfg config.AppConfig, gw *gateway.Gateway, svc *service.ImageService) *gin.Engine {
	secOpts := midsec.DefaultOptions([]byte(cfg.JwtSecret))
	secOpts.JWT.TTL = cfg.JwtTTL
	mid.Config(midsec.Middleware(secOpts))

	r := gin.New()
	r.Use(mid.Recovery(), mid.Logging(), mid.Origin())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": len(gw.ListConnected())})
	})

	// 实时通道：不鉴权，按客户端 IP 分房间
	r.GET("/socket", gw.HandleWS)

	authH := auth.NewHandler(cfg.AuthUser, cfg.AuthPassword, secOpts.JWT)
	mid.POST(r, "/auth/login", authH.HandlerLogin, mid.RouteOpt{IsAuth: false})

	paketbild.NewHandler(svc).Register(r.Group("/api"))
	return r
}
