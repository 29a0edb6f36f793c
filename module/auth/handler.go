package auth

import (
	"crypto/subtle"
	"net/http"

	"PaketBild/logger"
	"PaketBild/tools/errs"
	"PaketBild/tools/security"

	"github.com/gin-gonic/gin"
)

type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResp access_token_hash 可放在 authorizationHash 头里，要求服务端额外比对令牌哈希
type LoginResp struct {
	AccessToken     string `json:"access_token"`
	AccessTokenHash string `json:"access_token_hash"`
	ExpireAt        int64  `json:"expire_at"`
}

// Handler 单账号登录，账号密码来自配置
type Handler struct {
	user     string
	password string
	jwt      security.Options
}

func NewHandler(user, password string, jwt security.Options) *Handler {
	return &Handler{user: user, password: password, jwt: jwt}
}

func (h *Handler) HandlerLogin(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrArgs.WithDetail(err.Error()))
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		logger.Warnf("[auth] login failed user=%s client=%s", req.Username, c.ClientIP())
		c.JSON(http.StatusUnauthorized, errs.ErrLoginFailed)
		return
	}

	token, hash, exp, err := security.Generate(h.jwt, req.Username, nil)
	if err != nil {
		logger.Errorf("[auth] sign token err=%v", err)
		c.JSON(http.StatusInternalServerError, errs.ErrServerInternal)
		return
	}
	c.JSON(http.StatusOK, LoginResp{AccessToken: token, AccessTokenHash: hash, ExpireAt: exp.Unix()})
}
