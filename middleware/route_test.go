package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRouteOptAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Config(func(c *gin.Context) {
		if c.GetHeader("X-Pass") != "1" {
			c.AbortWithStatus(http.StatusUnauthorized)
		}
	})
	t.Cleanup(func() { Manager().Reset() })

	r := gin.New()
	r.Use(Origin())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	GET(r, "/open", ok, RouteOpt{})
	GET(r, "/closed", ok, RouteOpt{IsAuth: true})
	POST(r, "/closed", ok, RouteOpt{IsAuth: true})
	DELETE(r, "/closed", ok, RouteOpt{IsAuth: true})

	check := func(method, path, pass string, want int) {
		t.Helper()
		req := httptest.NewRequest(method, path, nil)
		if pass != "" {
			req.Header.Set("X-Pass", pass)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("%s %s pass=%q: status %d, want %d", method, path, pass, w.Code, want)
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Fatalf("missing CORS header")
		}
	}

	check(http.MethodGet, "/open", "", http.StatusOK)
	check(http.MethodGet, "/closed", "", http.StatusUnauthorized)
	check(http.MethodGet, "/closed", "1", http.StatusOK)
	check(http.MethodPost, "/closed", "", http.StatusUnauthorized)
	check(http.MethodDelete, "/closed", "1", http.StatusOK)
	check(http.MethodOptions, "/closed", "", http.StatusNoContent)
}

func TestConfigReplacesChain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }
	Config(deny)
	Config()
	t.Cleanup(func() { Manager().Reset() })

	r := gin.New()
	GET(r, "/closed", func(c *gin.Context) { c.Status(http.StatusOK) }, RouteOpt{IsAuth: true})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/closed", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, earlier chain must be replaced", w.Code)
	}
}
