package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/sportsin/sportsin/internal/interface/http"
	"github.com/sportsin/sportsin/internal/interface/middleware"
)

// SessionModule mounts the session lifecycle endpoints. Everything here
// is public: sign-in state is the thing being established or queried.
type SessionModule struct {
	Handler *handlers.SessionHandler
	RDB     *redis.Client
}

func NewSessionModule(h *handlers.SessionHandler, rdb *redis.Client) *SessionModule {
	return &SessionModule{Handler: h, RDB: rdb}
}

func (m *SessionModule) Register(rg *gin.RouterGroup) {
	signUpLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	signInLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	resendLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	verifyLimiter := middleware.RateLimit(m.RDB, 30, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	rg.GET("/session", m.Handler.Session)
	rg.POST("/session/signup", signUpLimiter, m.Handler.SignUp)
	rg.POST("/session/signin", signInLimiter, m.Handler.SignIn)
	rg.POST("/session/signout", m.Handler.SignOut)
	rg.POST("/session/verify/resend", resendLimiter, m.Handler.ResendVerification)
	rg.POST("/session/verify/confirm", verifyLimiter, m.Handler.VerifyConfirm)
}
