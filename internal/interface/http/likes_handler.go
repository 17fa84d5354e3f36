package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sportsin/sportsin/internal/infrastructure/localstore"
	"github.com/sportsin/sportsin/pkg/response"
)

// LikesHandler exposes the persisted liked-post set. Only the local
// backend carries one; the route group is registered in local mode.
type LikesHandler struct {
	Store *localstore.Store
}

func NewLikesHandler(store *localstore.Store) *LikesHandler {
	return &LikesHandler{Store: store}
}

// List GET /api/likes
func (h *LikesHandler) List(c *gin.Context) {
	ids := h.Store.LikedPosts()
	if ids == nil {
		ids = []string{}
	}
	response.Success(c, http.StatusOK, ids, "liked posts", nil)
}

// Like PUT /api/likes/:postID
func (h *LikesHandler) Like(c *gin.Context) {
	if err := h.Store.LikePost(c.Param("postID")); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "like failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"liked": true}, "liked", nil)
}

// Unlike DELETE /api/likes/:postID
func (h *LikesHandler) Unlike(c *gin.Context) {
	if err := h.Store.UnlikePost(c.Param("postID")); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "unlike failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"liked": false}, "unliked", nil)
}
