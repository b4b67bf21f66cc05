package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"trip-route-planner/internal/database"
	"trip-route-planner/internal/directions"
	"trip-route-planner/internal/geocoding"
	"trip-route-planner/internal/handlers"
	"trip-route-planner/internal/routing"
	"trip-route-planner/internal/sqlite"
)

// Server wraps the HTTP server and all dependencies
type Server struct {
	httpServer *http.Server
	handler    *handlers.Handler
	db         database.DataStore
	listener   net.Listener
	addr       string
}

// New creates and initializes a new server (does not start it)
func New(cfg *database.AppConfig) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Initializing directions cache: backend=%s", cfg.Cache.Backend)
	db, err := openStore(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize directions cache: %w", err)
	}

	var cache database.DirectionsCacheRepository
	if db != nil {
		cache = db.DirectionsCache()
	}

	handler := &handlers.Handler{
		DB:        db,
		Optimizer: routing.NewNearestNeighborOptimizer(routing.Options{TwoOptMaxStops: cfg.Optimizer.TwoOptMaxStops}),
		Assembler: directions.NewAssembler(newProvider(cfg.Directions, cache)),
		Geocoder: geocoding.NewNominatimGeocoder(geocoding.NominatimConfig{
			BaseURL:   cfg.Geocoding.BaseURL,
			UserAgent: cfg.Geocoding.UserAgent,
		}),
		GeocodeRetries: 3,
	}

	mux := setupRoutes(handler)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      loggingMiddleware(corsMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
		db:         db,
		addr:       cfg.Server.Addr,
	}, nil
}

// openStore returns nil when caching is disabled
func openStore(cfg database.CacheConfig) (database.DataStore, error) {
	switch cfg.Backend {
	case database.CacheBackendNone:
		return nil, nil
	case database.CacheBackendFile:
		path := cfg.FilePath
		if path == "" {
			p, err := database.GetDirectionsCachePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		store, err := database.NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		path := cfg.DatabasePath
		if path == "" {
			p, err := database.GetDefaultDBPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		store, err := sqlite.New(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// newProvider returns nil when Google is selected without an API key for the
// public endpoint, so every route uses the straight-line fallback
func newProvider(cfg database.DirectionsConfig, cache database.DirectionsCacheRepository) directions.Provider {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.Provider == database.DirectionsProviderOSRM {
		log.Printf("[DIRECTIONS] Using OSRM provider: base_url=%s", cfg.BaseURL)
		return directions.NewOSRMProvider(directions.OSRMConfig{
			BaseURL: cfg.BaseURL,
			Timeout: timeout,
		}, cache)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if cfg.APIKey == "" && (baseURL == "" || baseURL == directions.DefaultGoogleBaseURL) {
		log.Printf("[DIRECTIONS] No API key configured, navigation uses straight-line routes")
		return nil
	}

	return directions.NewGoogleProvider(directions.GoogleConfig{
		BaseURL:  cfg.BaseURL,
		APIKey:   cfg.APIKey,
		Region:   cfg.Region,
		Language: cfg.Language,
		Timeout:  timeout,
	}, cache)
}

// Start starts the server and returns the actual address (useful for random port)
func (s *Server) Start() (string, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = listener
	actualAddr := listener.Addr().String()
	log.Printf("Starting server on %s", actualAddr)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return actualAddr, nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func methodHandler(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

// setupRoutes configures all HTTP routes
func setupRoutes(handler *handlers.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", methodHandler(http.MethodGet, handler.HandleHealthCheck))

	mux.HandleFunc("/api/v1/routes/optimize", methodHandler(http.MethodPost, handler.HandleOptimizeRoute))
	mux.HandleFunc("/api/v1/routes/optimize/batch", methodHandler(http.MethodPost, handler.HandleBatchOptimize))
	mux.HandleFunc("/api/v1/routes/navigation", methodHandler(http.MethodPost, handler.HandleNavigation))
	mux.HandleFunc("/api/v1/routes/navigation/geojson", methodHandler(http.MethodPost, handler.HandleNavigationGeoJSON))

	mux.HandleFunc("/api/v1/address-search", methodHandler(http.MethodGet, handler.HandleAddressSearch))

	mux.HandleFunc("/api/v1/cache/directions", methodHandler(http.MethodDelete, handler.HandleClearDirectionsCache))

	return mux
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		duration := time.Since(start)
		log.Printf("[HTTP] %s %s %d %v", r.Method, r.URL.Path, lrw.statusCode, duration)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Only allow localhost origins (the diary frontend in development)
		if origin == "" ||
			strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:") {
			if origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
