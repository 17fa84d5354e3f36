package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/sportsin/sportsin/internal/interface/http"
	"github.com/sportsin/sportsin/internal/interface/middleware"
)

// LikesModule mounts the liked-post endpoints. Registered only when the
// local backend is active, since likes live in the local state file.
type LikesModule struct {
	Handler *handlers.LikesHandler
}

func NewLikesModule(h *handlers.LikesHandler) *LikesModule {
	return &LikesModule{Handler: h}
}

func (m *LikesModule) Register(rg *gin.RouterGroup) {
	gated := rg.Group("/")
	gated.Use(middleware.Gate())
	{
		gated.GET("/likes", m.Handler.List)
		gated.PUT("/likes/:postID", m.Handler.Like)
		gated.DELETE("/likes/:postID", m.Handler.Unlike)
	}
}
