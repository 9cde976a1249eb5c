package server

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/codecast/codecast/internal/auth"
	"github.com/codecast/codecast/internal/geoip"
	"github.com/codecast/codecast/internal/model"
	"github.com/codecast/codecast/internal/ratelimit"
	"github.com/codecast/codecast/internal/store"
	"github.com/codecast/codecast/internal/video"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Store           store.Store
	Pinger          Pinger
	Storage         video.ObjectStorage
	GeoResolver     *geoip.Resolver
	WebFS           fs.FS
	JWTSecret       string
	BaseURL         string
	MaxUploadBytes  int64
	StorageEndpoint string
}

type Server struct {
	router       chi.Router
	pinger       Pinger
	authHandler  *auth.Handler
	videoHandler *video.Handler
	webFS        fs.FS
}

func New(cfg Config) *Server {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:         cfg.BaseURL,
		StorageEndpoint: cfg.StorageEndpoint,
	}))

	s := &Server{
		router:       r,
		pinger:       cfg.Pinger,
		authHandler:  auth.NewHandler(cfg.Store, cfg.JWTSecret),
		videoHandler: video.NewHandler(cfg.Store, cfg.Storage, cfg.MaxUploadBytes),
		webFS:        cfg.WebFS,
	}
	s.videoHandler.SetGeoResolver(cfg.GeoResolver)

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	authLimiter := ratelimit.NewLimiter(0.5, 5)
	s.router.Route("/api/auth", func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Post("/register", s.authHandler.Register)
		r.Post("/login", s.authHandler.Login)
	})

	s.router.Route("/api/users", func(r chi.Router) {
		r.Use(s.authHandler.Middleware)
		r.Get("/me", s.authHandler.Me)
	})

	s.router.Route("/api/videos", func(r chi.Router) {
		r.Get("/", s.videoHandler.List)
		r.Get("/{id}", s.videoHandler.Get)
		r.Get("/{id}/comments", s.videoHandler.ListComments)

		r.Group(func(r chi.Router) {
			r.Use(s.authHandler.Middleware)
			r.Post("/{id}/comments", s.videoHandler.PostComment)
			r.Post("/{id}/like", s.videoHandler.Like)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(model.RoleCreator, model.RoleAdmin))
				r.Post("/", s.videoHandler.Create)
				r.Post("/upload-url", s.videoHandler.UploadURL)
				r.Patch("/{id}", s.videoHandler.Update)
				r.Delete("/{id}", s.videoHandler.Delete)
			})
		})
	})

	s.router.Route("/api/creator", func(r chi.Router) {
		r.Use(s.authHandler.Middleware)
		r.Use(auth.RequireRole(model.RoleCreator, model.RoleAdmin))
		r.Get("/videos", s.videoHandler.CreatorList)
		r.Get("/videos/{id}/stats", s.videoHandler.Stats)
	})

	s.router.Route("/api/admin", func(r chi.Router) {
		r.Use(s.authHandler.Middleware)
		r.Use(auth.RequireRole(model.RoleAdmin))
		r.Get("/videos", s.videoHandler.AdminList)
		r.Patch("/videos/{id}/status", s.videoHandler.SetVideoStatus)
		r.Patch("/comments/{id}/status", s.videoHandler.SetCommentStatus)
	})

	s.router.Route("/api/watch-history", func(r chi.Router) {
		r.Use(s.authHandler.Middleware)
		r.Get("/", s.videoHandler.WatchHistoryList)
		r.Post("/", s.videoHandler.WatchHistoryUpsert)
		r.Delete("/{videoId}", s.videoHandler.WatchHistoryRemove)
	})

	s.router.Route("/api/watch-later", func(r chi.Router) {
		r.Use(s.authHandler.Middleware)
		r.Get("/", s.videoHandler.WatchLaterList)
		r.Post("/", s.videoHandler.WatchLaterAdd)
		r.Delete("/{videoId}", s.videoHandler.WatchLaterRemove)
	})

	if s.webFS != nil {
		spa := newSPAFileServer(s.webFS)
		s.router.NotFound(spa.ServeHTTP)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"database unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
