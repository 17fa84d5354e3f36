package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/sportsin/sportsin/internal/interface/http"
	"github.com/sportsin/sportsin/internal/interface/middleware"
)

// ProfileModule mounts profile reads (public) and profile mutations
// (behind the auth gate).
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	RDB     *redis.Client
}

func NewProfileModule(h *handlers.ProfileHandler, rdb *redis.Client) *ProfileModule {
	return &ProfileModule{Handler: h, RDB: rdb}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/profiles/:id", readLimiter, m.Handler.Get)

	gated := rg.Group("/")
	gated.Use(middleware.Gate())
	gated.Use(middleware.RateLimit(m.RDB, 30, time.Minute, middleware.KeyByDevice(), nil))
	{
		gated.PATCH("/profile", m.Handler.Update)
		gated.POST("/profile/avatar", m.Handler.UploadAvatar)
	}
}
