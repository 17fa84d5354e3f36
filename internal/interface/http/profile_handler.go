package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sportsin/sportsin/internal/application"
	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
	"github.com/sportsin/sportsin/pkg/helpers"
	"github.com/sportsin/sportsin/pkg/response"
	"github.com/sportsin/sportsin/pkg/validation"
)

const maxAvatarBytes = 5 << 20

// ProfileHandler serves profile reads, partial updates, and avatar
// uploads. Updates always flow through the session manager so the active
// session sees the store-confirmed row.
type ProfileHandler struct {
	Profiles  repository.ProfileStore
	Stats     repository.StatsStore
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewProfileHandler(profiles repository.ProfileStore, stats repository.StatsStore, gcs *storage.Client, bucket string, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Stats: stats, GCS: gcs, GCSBucket: bucket, Logger: logger}
}

type updateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,username"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
	Location *string `json:"location" binding:"omitempty,max=100"`
	Website  *string `json:"website" binding:"omitempty,url"`
}

// Get GET /api/profiles/:id
func (h *ProfileHandler) Get(c *gin.Context) {
	id := c.Param("id")
	p, err := h.Profiles.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "profile not found", nil)
			return
		}
		response.Error[any](c, http.StatusBadGateway, "profile lookup failed", nil)
		return
	}

	view := profileView(p)
	if h.Stats != nil {
		if st, err := h.Stats.Get(c.Request.Context(), id); err == nil {
			view["stats"] = gin.H{
				"matches_played": st.MatchesPlayed,
				"wins":           st.Wins,
				"losses":         st.Losses,
			}
		}
	}
	response.Success(c, http.StatusOK, view, "profile", nil)
}

// Update PATCH /api/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	mgr := managerFrom(c)
	p, err := mgr.UpdateProfile(c.Request.Context(), entity.ProfileChanges{
		Username: req.Username,
		FullName: req.FullName,
		Bio:      req.Bio,
		Location: req.Location,
		Website:  req.Website,
	})
	switch {
	case errors.Is(err, application.ErrNotSignedIn):
		response.Error[any](c, http.StatusUnauthorized, "not signed in", nil)
		return
	case err != nil:
		response.Error[any](c, http.StatusBadGateway, "profile update failed", nil)
		return
	}
	response.Success(c, http.StatusOK, profileView(p), "profile updated", nil)
}

// UploadAvatar POST /api/profile/avatar (multipart field "avatar")
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	mgr := managerFrom(c)
	snap := mgr.Snapshot()
	if snap.Identity == nil {
		response.Error[any](c, http.StatusUnauthorized, "not signed in", nil)
		return
	}
	if h.GCS == nil || h.GCSBucket == "" {
		response.Error[any](c, http.StatusNotImplemented, "avatar storage not configured", nil)
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing avatar file", nil)
		return
	}
	if file.Size > maxAvatarBytes {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "avatar too large", nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable avatar file", nil)
		return
	}
	defer func() { _ = src.Close() }()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	object := fmt.Sprintf("avatars/%s/%d%s", snap.Identity.ID, time.Now().UnixNano(), path.Ext(file.Filename))
	url, err := helpers.UploadObject(c.Request.Context(), h.GCS, h.GCSBucket, object, contentType, src)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("user_id", snap.Identity.ID).Error("avatar upload failed")
		}
		response.Error[any](c, http.StatusBadGateway, "avatar upload failed", nil)
		return
	}

	p, err := mgr.UpdateProfile(c.Request.Context(), entity.ProfileChanges{AvatarURL: &url})
	if err != nil {
		response.Error[any](c, http.StatusBadGateway, "avatar update failed", nil)
		return
	}
	response.Success(c, http.StatusOK, profileView(p), "avatar updated", nil)
}
