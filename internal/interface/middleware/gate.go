package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sportsin/sportsin/internal/application"
	handlers "github.com/sportsin/sportsin/internal/interface/http"
	"github.com/sportsin/sportsin/pkg/response"
)

// Gate guards protected routes with the auth gate decision for the
// calling browser's session. A still-resolving session answers 503 so
// clients retry instead of being bounced to sign-in mid-restoration.
func Gate() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get(handlers.CtxSessionManager)
		mgr, _ := v.(*application.Manager)
		if mgr == nil {
			response.AbortError[any](c, http.StatusServiceUnavailable, "session unavailable", nil)
			return
		}

		d := application.Decide(mgr.Snapshot())
		switch d.Kind {
		case application.ShowLoading:
			c.Header("Retry-After", "1")
			response.AbortError[any](c, http.StatusServiceUnavailable, "session resolving", nil)
		case application.RedirectSignIn:
			response.AbortError[any](c, http.StatusUnauthorized, "sign in required", map[string]any{"redirect_to": d.RedirectTo})
		default:
			c.Next()
		}
	}
}
