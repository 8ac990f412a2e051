package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/SuryanshShukla1002/Todo-Backend/pkg/access"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/audit"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/auth"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/httpx"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/metrics"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/models"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/ratelimit"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/store"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/stream"
	"github.com/SuryanshShukla1002/Todo-Backend/pkg/telemetry"
)

type userStore interface {
	Create(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (models.User, error)
}

type todoStore interface {
	Create(ctx context.Context, todo models.Todo) (models.Todo, error)
	Get(ctx context.Context, id string) (models.Todo, error)
	List(ctx context.Context, where string, args []any) ([]models.Todo, error)
	Update(ctx context.Context, todo models.Todo) (models.Todo, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (models.Stats, error)
}

type auditStore interface {
	Append(ctx context.Context, rec audit.Record) error
	ListRecent(ctx context.Context, limit int) ([]audit.Record, error)
}

type Server struct {
	Users            userStore
	Todos            todoStore
	Audit            auditStore
	Codec            *auth.Codec
	Cache            store.Cache
	Metrics          *metrics.Registry
	Events           *stream.Hub
	RateLimiter      ratelimit.Limiter
	LoginLimit       int
	RegisterLimit    int
	DBTimeout        time.Duration
	AuthTimeout      time.Duration
	StatsCacheTTL    time.Duration
	MaxBodyBytes     int64
	AllowedOrigins   string
	ServiceName      string
	AllowAnyWSOrigin bool
}

// userLoader adapts the store's sentinel to the one the identity resolver
// distinguishes.
type userLoader struct {
	users userStore
}

func (l userLoader) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := l.users.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, auth.ErrUserNotFound
	}
	return u, err
}

type serverDBCloser interface {
	store.DB
	Close()
}

// Testable variables for main()
var (
	logFatalf       = log.Fatalf
	initTelemetryFn = telemetry.Init
	openDBFn        = func(ctx context.Context) (serverDBCloser, error) { return store.NewPostgresPool(ctx) }
	openRedisFn     = store.NewRedis
	listenFn        = func(server *http.Server) error { return server.ListenAndServe() }
)

func main() {
	if err := runServer(); err != nil {
		logFatalf("server: %v", err)
	}
}

func runServer() error {
	ctx := context.Background()
	shutdown, err := initTelemetryFn(ctx, "todo-backend")
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	pool, err := openDBFn(ctx)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	var redisClient *redis.Client
	redisClient, err = openRedisFn(ctx)
	if err != nil {
		log.Printf("redis unavailable, falling back to in-memory cache/limits: %v", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	codec, err := auth.NewCodec(
		env("JWT_SECRET", ""),
		time.Minute*time.Duration(envInt("JWT_TTL_MIN", 1440)),
		env("JWT_ISSUER", "todo-backend"),
	)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	rateLimitWindow := time.Second * time.Duration(envInt("RATE_LIMIT_WINDOW_SEC", 60))
	var limiter ratelimit.Limiter
	if env("RATE_LIMIT_ENABLED", "true") == "true" {
		if redisClient != nil {
			limiter = ratelimit.NewRedis(redisClient, rateLimitWindow)
		} else {
			limiter = ratelimit.NewInMemory(rateLimitWindow)
		}
	}

	s := &Server{
		Users:          &store.Users{DB: pool},
		Todos:          &store.Todos{DB: pool},
		Audit:          &audit.Writer{DB: pool},
		Codec:          codec,
		Cache:          store.NewCache(ctx, redisClient),
		Metrics:        metrics.NewRegistry(),
		Events:         stream.NewHub(),
		RateLimiter:    limiter,
		LoginLimit:     envInt("LOGIN_RATE_LIMIT", 10),
		RegisterLimit:  envInt("REGISTER_RATE_LIMIT", 30),
		DBTimeout:      time.Millisecond * time.Duration(envInt("DB_TIMEOUT_MS", 3000)),
		AuthTimeout:    time.Millisecond * time.Duration(envInt("AUTH_TIMEOUT_MS", 5000)),
		StatsCacheTTL:  time.Second * time.Duration(envInt("STATS_CACHE_TTL_SEC", 30)),
		MaxBodyBytes:   int64(envInt("MAX_REQUEST_BODY_BYTES", 1<<20)),
		AllowedOrigins: env("CORS_ALLOWED_ORIGINS", ""),
		ServiceName:    "todo-backend",
	}

	server := &http.Server{
		Addr:              env("HTTP_ADDR", ":8080"),
		Handler:           s.routes(),
		ReadHeaderTimeout: envDurationSec("HTTP_READ_HEADER_TIMEOUT_SEC", 5),
		ReadTimeout:       envDurationSec("HTTP_READ_TIMEOUT_SEC", 15),
		WriteTimeout:      envDurationSec("HTTP_WRITE_TIMEOUT_SEC", 30),
		IdleTimeout:       envDurationSec("HTTP_IDLE_TIMEOUT_SEC", 120),
	}
	log.Printf("listening on %s", server.Addr)
	if err := listenFn(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(httpx.CORSMiddleware(s.AllowedOrigins))
	r.Use(httpx.SecurityHeadersMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(telemetry.HTTPMiddleware(s.ServiceName))
	r.Use(httpx.LimitBodyMiddleware(s.MaxBodyBytes))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": s.ServiceName})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", s.handleRegister)
		api.Post("/auth/login", s.handleLogin)

		api.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(s.Codec, userLoader{users: s.Users}, s.AuthTimeout))
			pr.Get("/auth/profile", s.handleProfile)

			pr.Get("/todos", s.handleListTodos)
			pr.Post("/todos", s.handleCreateTodo)
			pr.Get("/todos/{id}", s.handleGetTodo)
			pr.Put("/todos/{id}", s.handleUpdateTodo)
			pr.Delete("/todos/{id}", s.handleDeleteTodo)

			pr.Get("/admin/users", s.withRole(s.handleAdminListUsers, models.RoleAdmin))
			pr.Get("/admin/todos", s.withRole(s.handleAdminListTodos, models.RoleAdmin))
			pr.Patch("/admin/users/{id}/role", s.withRole(s.handleAdminUpdateRole, models.RoleAdmin))
			pr.Get("/admin/stats", s.withRole(s.handleAdminStats, models.RoleAdmin))
			pr.Get("/admin/audit", s.withRole(s.handleAdminAudit, models.RoleAdmin))
			pr.Get("/admin/metrics", s.withRole(s.Metrics.Handler(), models.RoleAdmin))
			pr.Get("/admin/events", s.withRole(s.handleAdminEvents, models.RoleAdmin))
		})
	})
	return r
}

// withRole gates a handler on the endpoint role requirement.
func (s *Server) withRole(h http.HandlerFunc, required models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			s.Metrics.IncAuthz(metrics.AuthzUnauthd)
			httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		if !access.CanAccessEndpoint(identity.Role, required) {
			s.Metrics.IncAuthz(metrics.AuthzForbidden)
			httpx.Error(w, http.StatusForbidden, "Access denied. Admin privileges required.")
			return
		}
		s.Metrics.IncAuthz(metrics.AuthzAllowed)
		h(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.Metrics.Observe(r.Method+" "+r.URL.Path, rec.status, time.Since(start))
	})
}

// dbCtx bounds a persistence call with the configured timeout.
func (s *Server) dbCtx(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := s.DBTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return context.WithTimeout(r.Context(), timeout)
}

func (s *Server) publish(eventType string, data interface{}) {
	if s.Events != nil {
		s.Events.Publish(stream.NewEvent(eventType, data))
	}
}

// internalError logs the full context and returns the generic message.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	httpx.Error(w, http.StatusInternalServerError, msg)
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr)); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envDurationSec(k string, def int) time.Duration {
	return time.Second * time.Duration(envInt(k, def))
}
