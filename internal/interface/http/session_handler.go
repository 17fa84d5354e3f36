package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sportsin/sportsin/internal/application"
	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
	"github.com/sportsin/sportsin/pkg/helpers"
	"github.com/sportsin/sportsin/pkg/response"
	"github.com/sportsin/sportsin/pkg/validation"
)

// SessionHandler exposes the session lifecycle over HTTP. Every route runs
// behind the registry middleware, so the manager and credential store for
// the calling browser are always on the context.
type SessionHandler struct {
	Cookies    *helpers.CookieManager
	SessionTTL time.Duration
	Logger     *logrus.Logger
}

func NewSessionHandler(cookies *helpers.CookieManager, sessionTTL time.Duration, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{Cookies: cookies, SessionTTL: sessionTTL, Logger: logger}
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Username string `json:"username" binding:"required,username"`
	Sport    string `json:"sport" binding:"required,sport"`
	UserType string `json:"user_type" binding:"required,usertype"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type resendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// SignUp POST /api/session/signup
func (h *SessionHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	mgr := managerFrom(c)
	res, err := mgr.SignUp(c.Request.Context(), application.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		Sport:    entity.Sport(req.Sport),
		UserType: entity.UserType(req.UserType),
	})
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "sign up failed", err.Error())
		return
	}

	h.syncSessionCookie(c)
	switch {
	case res.UserExists:
		// Soft outcome: registered emails are not distinguishable from a
		// fresh sign-up that still needs verification.
		response.Success(c, http.StatusOK, res, "check your email to verify your account", nil)
	case res.NeedsVerification:
		response.Success(c, http.StatusCreated, res, "check your email to verify your account", nil)
	default:
		response.Success(c, http.StatusCreated, sessionView(mgr.Snapshot()), "account created", nil)
	}
}

// SignIn POST /api/session/signin
func (h *SessionHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	mgr := managerFrom(c)
	err := mgr.SignIn(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, application.ErrEmailNotVerified):
		response.Error[any](c, http.StatusForbidden, "email not verified", nil)
		return
	case err != nil:
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	h.syncSessionCookie(c)
	response.Success(c, http.StatusOK, sessionView(mgr.Snapshot()), "signed in", nil)
}

// SignOut POST /api/session/signout
func (h *SessionHandler) SignOut(c *gin.Context) {
	mgr := managerFrom(c)
	_ = mgr.SignOut(c.Request.Context())
	h.Cookies.ClearSession(c)
	response.Success[any](c, http.StatusOK, map[string]any{"signed_out": true}, "signed out", nil)
}

// ResendVerification POST /api/session/verify/resend
func (h *SessionHandler) ResendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	mgr := managerFrom(c)
	if err := mgr.ResendVerification(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, application.ErrVerificationResendExhausted) {
			response.Error[any](c, http.StatusTooManyRequests, "verification resend attempts exhausted", nil)
			return
		}
		response.Error[any](c, http.StatusBadGateway, "verification email failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"sent": true}, "verification email sent", nil)
}

// VerifyConfirm POST /api/session/verify/confirm
func (h *SessionHandler) VerifyConfirm(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	verifier, ok := credsFrom(c).(repository.EmailVerifier)
	if !ok {
		response.Error[any](c, http.StatusNotFound, "verification not supported", nil)
		return
	}
	id, err := verifier.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
		return
	}

	h.syncSessionCookie(c)
	response.Success(c, http.StatusOK, map[string]any{
		"id":             id.ID,
		"email":          id.Email,
		"email_verified": id.EmailVerified,
	}, "email verified", nil)
}

// Session GET /api/session
func (h *SessionHandler) Session(c *gin.Context) {
	mgr := managerFrom(c)
	snap := mgr.Snapshot()
	response.Success(c, http.StatusOK, sessionView(snap), "session", nil)
}

// syncSessionCookie writes the credential store's current token to the
// browser after operations that can establish a session. Stores without
// a token carry their session elsewhere.
func (h *SessionHandler) syncSessionCookie(c *gin.Context) {
	tc, ok := credsFrom(c).(tokenCarrier)
	if !ok {
		return
	}
	token := tc.SessionToken()
	prev, _ := c.Cookie(helpers.SessionCookie)
	switch {
	case token == "" && prev != "":
		h.Cookies.ClearSession(c)
	case token != "" && token != prev:
		h.Cookies.SetSession(c, token, time.Now().Add(h.SessionTTL))
	}
}

func sessionView(s application.Session) gin.H {
	d := application.Decide(s)
	out := gin.H{
		"loading":  s.Loading,
		"decision": string(d.Kind),
	}
	if d.RedirectTo != "" {
		out["redirect_to"] = d.RedirectTo
	}
	if s.Identity != nil {
		out["identity"] = gin.H{
			"id":             s.Identity.ID,
			"email":          s.Identity.Email,
			"email_verified": s.Identity.EmailVerified,
		}
	}
	if s.Profile != nil {
		out["profile"] = profileView(s.Profile)
	}
	return out
}

func profileView(p *entity.Profile) gin.H {
	return gin.H{
		"id":              p.ID,
		"username":        p.Username,
		"email":           p.Email,
		"full_name":       p.FullName,
		"avatar_url":      p.AvatarURL,
		"sport":           string(p.Sport),
		"user_type":       string(p.UserType),
		"bio":             p.Bio,
		"location":        p.Location,
		"website":         p.Website,
		"followers_count": p.FollowersCount,
		"following_count": p.FollowingCount,
		"posts_count":     p.PostsCount,
		"created_at":      p.CreatedAt,
	}
}
