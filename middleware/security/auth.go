package security

import (
	"strings"

	"PaketBild/tools/errs"
	jwt "PaketBild/tools/security"

	"github.com/gin-gonic/gin"
)

// context keys
// 后续模块统一用这几个 key 读取
const (
	PPCtxAuthKey     = "authorization"     // string
	PPCtxAuthHashKey = "authorizationHash" // string
	PPCtxSubjectKey  = "subject"           // string, jwt sub
)

type Options struct {
	// 读取哪个请求头
	HeaderToken               string // 默认 "authorization"
	HeaderHash                string // 默认 "authorizationHash"，可选
	EnableAuthorizationBearer bool   // 默认 true

	JWT jwt.Options
}

func DefaultOptions(secret []byte) *Options {
	return &Options{
		HeaderToken:               PPCtxAuthKey,
		HeaderHash:                PPCtxAuthHashKey,
		EnableAuthorizationBearer: true,
		JWT:                       jwt.DefaultOptions(secret),
	}
}

// Middleware 校验 Authorization: Bearer <jwt>；失败时 401 + CodeError。
// 不主动调用 c.Next()，方便挂在 MiddlewareManager 里串行执行。
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c, opts)
		if token == "" {
			abort(c, errs.ErrTokenMissing.Wrap())
			return
		}
		hash := strings.TrimSpace(c.GetHeader(opts.HeaderHash))

		claims, err := jwt.Verify(opts.JWT, token, hash)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(PPCtxAuthKey, token)
		if hash != "" {
			c.Set(PPCtxAuthHashKey, hash)
		}
		c.Set(PPCtxSubjectKey, claims.Subject())
	}
}

func bearerToken(c *gin.Context, opts *Options) string {
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if opts.EnableAuthorizationBearer && len(authz) > len("bearer ") &&
		strings.EqualFold(authz[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	// 兼容自定义头直接放 token（Authorization 与 HeaderToken 同名时不重复读）
	if !strings.EqualFold(opts.HeaderToken, "Authorization") {
		return strings.TrimSpace(c.GetHeader(opts.HeaderToken))
	}
	return ""
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errs.HTTPStatus(err), errs.AsCode(err))
}
