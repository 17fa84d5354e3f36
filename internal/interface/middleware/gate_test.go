package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sportsin/sportsin/internal/application"
	"github.com/sportsin/sportsin/internal/domain/entity"
	"github.com/sportsin/sportsin/internal/domain/repository"
	handlers "github.com/sportsin/sportsin/internal/interface/http"
)

type stubCreds struct {
	current *entity.Identity
}

func (s *stubCreds) CurrentIdentity(context.Context) (*entity.Identity, error) {
	return s.current, nil
}

func (s *stubCreds) SignInWithPassword(context.Context, string, string) (*entity.Identity, error) {
	return nil, repository.ErrNotFound
}

func (s *stubCreds) SignUp(context.Context, string, string, entity.SignUpMetadata) (*entity.Identity, error) {
	return nil, repository.ErrNotFound
}

func (s *stubCreds) ResendVerification(context.Context, string) error { return nil }
func (s *stubCreds) SignOut(context.Context) error                    { return nil }
func (s *stubCreds) AuthChanges() <-chan repository.AuthChange        { return nil }

type emptyProfiles struct{}

func (emptyProfiles) Get(context.Context, string) (*entity.Profile, error) {
	return nil, repository.ErrNotFound
}

func (emptyProfiles) Insert(context.Context, *entity.Profile) (*entity.Profile, error) {
	return nil, repository.ErrConflict
}

func (emptyProfiles) Update(context.Context, string, entity.ProfileChanges) (*entity.Profile, error) {
	return nil, repository.ErrNotFound
}

func gatedRequest(t *testing.T, mgr *application.Manager) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected",
		func(c *gin.Context) {
			if mgr != nil {
				c.Set(handlers.CtxSessionManager, mgr)
			}
			c.Next()
		},
		Gate(),
		func(c *gin.Context) { c.String(http.StatusOK, "ok") },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	return w
}

func TestGateNoManager(t *testing.T) {
	if w := gatedRequest(t, nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestGateLoading(t *testing.T) {
	// Not started: the session is still in its initial loading state.
	mgr := application.NewManager(&stubCreds{}, emptyProfiles{}, nil, nil, nil, time.Second)
	w := gatedRequest(t, mgr)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestGateSignedOut(t *testing.T) {
	mgr := application.NewManager(&stubCreds{}, emptyProfiles{}, nil, nil, nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)

	if w := gatedRequest(t, mgr); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestGateSignedIn(t *testing.T) {
	creds := &stubCreds{current: &entity.Identity{ID: "u1", Email: "u1@example.com", EmailVerified: true}}
	mgr := application.NewManager(creds, emptyProfiles{}, nil, nil, nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)

	// Identity restored with no profile row still passes the gate.
	w := gatedRequest(t, mgr)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Fatalf("body = %q", w.Body.String())
	}
}
