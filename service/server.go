package service

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/dkrizic/memorylove/service/memory"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultMaxUploadSize bounds the multipart body of POST /create.
const DefaultMaxUploadSize int64 = 32 << 20

// Config holds the HTTP surface settings.
type Config struct {
	PublicURL     string
	MaxUploadSize int64
	AuthEnabled   bool
	AuthUsername  string
	AuthPassword  string
	Version       string
}

// Server serves the pages and the JSON API on top of a memory store.
type Server struct {
	store     *memory.Store
	templates *template.Template
	config    Config
}

func NewServer(store *memory.Store, templates *template.Template, config Config) *Server {
	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = DefaultMaxUploadSize
	}
	config.PublicURL = strings.TrimRight(config.PublicURL, "/")
	return &Server{
		store:     store,
		templates: templates,
		config:    config,
	}
}

// Router returns the chi router with every route registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// pages
	r.Method(http.MethodGet, "/", traced(s.handleIndex, "handleIndex"))
	r.Method(http.MethodGet, "/create", traced(s.handleCreateForm, "handleCreateForm"))
	r.Method(http.MethodPost, "/create", traced(s.handleCreate, "handleCreate"))
	r.Method(http.MethodGet, "/success/{id}", traced(s.handleSuccess, "handleSuccess"))
	r.Method(http.MethodGet, "/memory/{id}", traced(s.handleMemory, "handleMemory"))
	r.Method(http.MethodGet, "/memory/{id}/qr.png", traced(s.handleQRCode, "handleQRCode"))

	// api
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/id", traced(s.handleGenerateID, "handleGenerateID"))
		r.Method(http.MethodPost, "/memories", traced(s.handleAPICreate, "handleAPICreate"))
		r.Method(http.MethodGet, "/memories/{id}", traced(s.handleAPIGet, "handleAPIGet"))
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Method(http.MethodGet, "/memories", traced(s.handleAPIList, "handleAPIList"))
			r.Method(http.MethodDelete, "/memories/{id}", traced(s.handleAPIDelete, "handleAPIDelete"))
		})
	})

	// health check
	r.Get("/health", s.handleHealth)

	return r
}

func traced(h http.HandlerFunc, operation string) http.Handler {
	return otelhttp.NewHandler(h, operation)
}

// origin is the public base URL used in share links. Without a configured
// public URL it is derived from the request.
func (s *Server) origin(r *http.Request) string {
	if s.config.PublicURL != "" {
		return s.config.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
