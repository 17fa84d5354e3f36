package router

import (
	"time"

	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sportsin/sportsin/internal/application"
	"github.com/sportsin/sportsin/internal/domain/repository"
	"github.com/sportsin/sportsin/internal/infrastructure/localstore"
	handlers "github.com/sportsin/sportsin/internal/interface/http"
	"github.com/sportsin/sportsin/internal/router/modules"
	"github.com/sportsin/sportsin/pkg/helpers"
)

// Deps is everything the route modules need, wired explicitly by main.
// Optional collaborators (RDB, GCS, Index, Local) are nil when the
// active backend does not carry them.
type Deps struct {
	Sessions   *handlers.SessionRegistry
	Cookies    *helpers.CookieManager
	SessionTTL time.Duration

	Profiles repository.ProfileStore
	Stats    repository.StatsStore

	RDB       *redis.Client
	GCS       *storage.Client
	GCSBucket string
	Index     application.ProfileIndexer
	Local     *localstore.Store

	Logger *logrus.Logger
}

// InitModules builds the handlers and registers every module with the
// registry. Called once during startup, after the global middleware is
// installed.
func InitModules(r *Registry, d Deps) {
	r.Use(d.Sessions.Middleware(d.Cookies))

	sessionHandler := handlers.NewSessionHandler(d.Cookies, d.SessionTTL, d.Logger)
	profileHandler := handlers.NewProfileHandler(d.Profiles, d.Stats, d.GCS, d.GCSBucket, d.Logger)
	discoverHandler := handlers.NewDiscoverHandler(d.Index)

	r.Add(modules.NewSessionModule(sessionHandler, d.RDB))
	r.Add(modules.NewProfileModule(profileHandler, d.RDB))
	r.Add(modules.NewDiscoverModule(discoverHandler, d.RDB))
	if d.Local != nil {
		r.Add(modules.NewLikesModule(handlers.NewLikesHandler(d.Local)))
	}
}
