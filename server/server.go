package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/comix/api"
	"github.com/xiaoyuanzhu-com/comix/archive"
	"github.com/xiaoyuanzhu-com/comix/library"
	"github.com/xiaoyuanzhu-com/comix/log"
)

// Server owns and coordinates all application components
type Server struct {
	cfg *Config

	// Components (owned by server)
	index    *library.Index
	storage  *archive.Storage
	resolver *archive.Resolver

	// HTTP
	router   *gin.Engine
	http     *http.Server
	listener net.Listener
	serveErr chan error
}

// New indexes the collection and prepares every component. Nothing is
// listening until Start.
func New(cfg *Config) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		serveErr: make(chan error, 1),
	}

	// 1. Load the layout template
	layout, err := api.LoadLayout(cfg.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	// 2. Index the collection
	log.Info().Str("directory", cfg.CollectionDir).Msg("indexing collection")
	index, err := library.Build(cfg.ToLibraryConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to index collection: %w", err)
	}
	s.index = index
	log.Info().Msgf("Found %d comics", index.Total())

	// 3. Claim the extraction storage
	log.Info().Str("path", cfg.StorageDir).Msg("initializing storage")
	storage, err := archive.OpenStorage(cfg.StorageDir, log.GetLogger("storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	s.storage = storage

	// 4. Create the page resolver
	resolver, err := archive.NewResolver(cfg.ToArchiveConfig(index, storage))
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}
	s.resolver = resolver

	// 5. Setup HTTP router
	s.setupRouter()
	s.router.SetHTMLTemplate(layout)
	api.SetupRoutes(s.router, api.NewHandlers(cfg.ToAPIConfig(index, resolver, layout.Name())))

	log.Info().Msg("server initialized successfully")
	return s, nil
}

// setupRouter creates and configures the Gin router
func (s *Server) setupRouter() {
	if s.cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(log.RequestID())
	s.router.Use(log.GinLogger())
	s.router.Use(securityHeadersMiddleware())

	// Page bytes are already compressed images
	s.router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{
		"/page/",
	})))

	s.router.SetTrustedProxies(nil)
}

// securityHeadersMiddleware adds headers safe for a single-user LAN server
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// Clickjacking protection
		c.Header("X-Frame-Options", "SAMEORIGIN")

		c.Header("Referrer-Policy", "same-origin")

		c.Next()
	}
}

// Start binds the listener and serves in the background. A bind failure
// is returned; later serve errors arrive on Errors.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln

	s.http = &http.Server{
		Handler:  s.router,
		ErrorLog: log.StdErrorLogger(), // Route Go's internal HTTP errors through zerolog
	}

	log.Info().
		Str("addr", ln.Addr().String()).
		Str("env", s.cfg.Env).
		Int("titles", s.index.Len()).
		Msg("HTTP server starting")

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.serveErr <- err
		}
		close(s.serveErr)
	}()
	return nil
}

// Errors reports a serve failure after Start. It is closed once serving stops.
func (s *Server) Errors() <-chan error {
	return s.serveErr
}

// Addr returns the bound address, or nil before Start
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down server")

	// 1. Stop accepting requests and wait for in-flight ones
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http server shutdown error")
		}
	}

	// 2. Stop extractions
	s.resolver.Close()
	stats := s.resolver.Stats()
	log.Info().
		Int64("hits", stats.Hits).
		Int64("misses", stats.Misses).
		Int64("extractions", stats.Extractions).
		Int("cached", stats.Cached).
		Msg("resolver stats")

	// 3. Remove extracted pages last
	if err := s.storage.Close(); err != nil {
		log.Error().Err(err).Msg("storage close error")
		return err
	}

	log.Info().Msg("server shutdown complete")
	return nil
}

// Component accessors
func (s *Server) Index() *library.Index       { return s.index }
func (s *Server) Resolver() *archive.Resolver { return s.resolver }
func (s *Server) Router() *gin.Engine         { return s.router }
