package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/m-mizutani/whisker/pkg/usecase/session"
	"github.com/m-mizutani/whisker/pkg/utils/logging"
)

const (
	SessionCookieName = "whisker_sid"
	sessionCookieAge  = 24 * time.Hour
)

type contextKey int

const (
	sessionIDKey contextKey = iota
	controllerKey
)

// Server is the HTTP front end of the cat discovery session
type Server struct {
	router  chi.Router
	manager *Manager
	secure  bool
}

type Option func(*Server)

// WithSecureCookie marks the session cookie as Secure
func WithSecureCookie(secure bool) Option {
	return func(s *Server) {
		s.secure = secure
	}
}

// New builds the router. Sessions are provided by manager.
func New(manager *Manager, opts ...Option) *Server {
	s := &Server{
		manager: manager,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.sessionMiddleware)
		r.Get("/state", s.getState)
		r.Post("/discover", s.postDiscover)
		r.Post("/dismiss", s.postDismiss)
		r.Post("/bans", s.postBan)
		r.Delete("/bans/{token}", s.deleteBan)
		r.Get("/ws", s.serveWebSocket)
	})

	r.Handle("/*", staticHandler())

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger puts a request scoped logger into the context and logs
// every request after it is served
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := logging.From(r.Context()).With("request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(logging.With(r.Context(), logger)))

		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// sessionMiddleware binds the request to the browser's session, issuing a
// new session cookie when the request has none or an invalid one
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookieName); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(sessionCookieAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   s.secure,
		})

		// session controllers must not carry the logger of this request
		base := logging.With(context.WithoutCancel(r.Context()), logging.Default())
		ctrl, err := s.manager.Acquire(base, id)
		if err != nil {
			Error(w, http.StatusServiceUnavailable, "server is shutting down")
			return
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, id)
		ctx = context.WithValue(ctx, controllerKey, ctrl)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func controllerFrom(ctx context.Context) *session.Controller {
	ctrl, _ := ctx.Value(controllerKey).(*session.Controller)
	return ctrl
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
