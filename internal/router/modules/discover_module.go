package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/sportsin/sportsin/internal/interface/http"
	"github.com/sportsin/sportsin/internal/interface/middleware"
)

// DiscoverModule mounts athlete search behind the auth gate.
type DiscoverModule struct {
	Handler *handlers.DiscoverHandler
	RDB     *redis.Client
}

func NewDiscoverModule(h *handlers.DiscoverHandler, rdb *redis.Client) *DiscoverModule {
	return &DiscoverModule{Handler: h, RDB: rdb}
}

func (m *DiscoverModule) Register(rg *gin.RouterGroup) {
	gated := rg.Group("/")
	gated.Use(middleware.Gate())
	gated.Use(middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByDevice(), nil))
	{
		gated.GET("/discover", m.Handler.Search)
	}
}
