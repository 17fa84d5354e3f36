package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sportsin/sportsin/internal/application"
	"github.com/sportsin/sportsin/internal/domain/repository"
	"github.com/sportsin/sportsin/pkg/helpers"
)

const (
	// Gin context keys set by the session middleware.
	CtxSessionManager  = "session_manager"
	CtxCredentialStore = "credential_store"

	deviceCookieTTL = 365 * 24 * time.Hour
	defaultIdleTTL  = 30 * time.Minute
)

// tokenCarrier is implemented by credential stores that persist their
// session through a browser cookie. The local store does not carry one;
// its session lives in the state file instead.
type tokenCarrier interface {
	SessionToken() string
	SetSessionToken(string)
}

// SessionRegistry owns one session manager per browser, keyed by the
// device cookie. Managers are created lazily on first request and torn
// down after sitting idle.
type SessionRegistry struct {
	NewCredentialStore func() repository.CredentialStore
	Profiles           repository.ProfileStore
	Provisioner        *application.Provisioner
	Indexer            application.ProfileIndexer
	Logger             *logrus.Logger
	ResolveTimeout     time.Duration
	IdleTTL            time.Duration

	mu       sync.Mutex
	sessions map[string]*managedSession
}

type managedSession struct {
	Manager *application.Manager
	Creds   repository.CredentialStore

	cancel   context.CancelFunc
	lastSeen time.Time
}

// Acquire returns the managed session for deviceID, creating and starting
// one when the device is new. A non-empty token restores the session the
// browser's cookie refers to before restoration runs.
func (r *SessionRegistry) Acquire(deviceID, token string) *managedSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions == nil {
		r.sessions = map[string]*managedSession{}
	}
	r.evictIdleLocked()

	if ms, ok := r.sessions[deviceID]; ok {
		ms.lastSeen = time.Now()
		return ms
	}

	creds := r.NewCredentialStore()
	if tc, ok := creds.(tokenCarrier); ok && token != "" {
		tc.SetSessionToken(token)
	}

	mgr := application.NewManager(creds, r.Profiles, r.Provisioner, r.Indexer, r.Logger, r.ResolveTimeout)
	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	ms := &managedSession{Manager: mgr, Creds: creds, cancel: cancel, lastSeen: time.Now()}
	r.sessions[deviceID] = ms
	if r.Logger != nil {
		r.Logger.WithField("device_id", deviceID).Debug("session manager created")
	}
	return ms
}

func (r *SessionRegistry) evictIdleLocked() {
	ttl := r.IdleTTL
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}
	for id, ms := range r.sessions {
		if time.Since(ms.lastSeen) > ttl {
			ms.cancel()
			delete(r.sessions, id)
		}
	}
}

// Close tears down every managed session; used on shutdown.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ms := range r.sessions {
		ms.cancel()
		delete(r.sessions, id)
	}
}

// Middleware binds each request to its browser's session manager. The
// device cookie identifies the browser; the session cookie restores the
// credential-store token for stores that carry one.
func (r *SessionRegistry) Middleware(cookies *helpers.CookieManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID, err := c.Cookie(helpers.DeviceCookie)
		if err != nil || deviceID == "" {
			deviceID = uuid.NewString()
			cookies.SetDeviceID(c, deviceID, time.Now().Add(deviceCookieTTL))
		}

		token, _ := c.Cookie(helpers.SessionCookie)
		ms := r.Acquire(deviceID, token)
		if tc, ok := ms.Creds.(tokenCarrier); ok && token != "" && tc.SessionToken() == "" {
			tc.SetSessionToken(token)
		}

		c.Set(CtxSessionManager, ms.Manager)
		c.Set(CtxCredentialStore, ms.Creds)
		c.Next()
	}
}

func managerFrom(c *gin.Context) *application.Manager {
	v, _ := c.Get(CtxSessionManager)
	m, _ := v.(*application.Manager)
	return m
}

func credsFrom(c *gin.Context) repository.CredentialStore {
	v, _ := c.Get(CtxCredentialStore)
	s, _ := v.(repository.CredentialStore)
	return s
}
