package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sportsin/sportsin/internal/application"
	"github.com/sportsin/sportsin/pkg/response"
)

// DiscoverHandler serves athlete search from the profile index.
type DiscoverHandler struct {
	Index application.ProfileIndexer
}

func NewDiscoverHandler(index application.ProfileIndexer) *DiscoverHandler {
	return &DiscoverHandler{Index: index}
}

// Search GET /api/discover?q=...&size=...
func (h *DiscoverHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	if h.Index == nil {
		response.Success(c, http.StatusOK, []map[string]any{}, "results", nil)
		return
	}
	hits, err := h.Index.Search(c.Request.Context(), q, size)
	if err != nil {
		response.Error[any](c, http.StatusBadGateway, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "results", map[string]any{"count": len(hits)})
}
