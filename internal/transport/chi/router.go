package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/metrics"
)

// compressLevel is the gzip level of JSON responses.
const compressLevel = 5

// NewRouter mounts s behind the standard middleware chain. An empty
// corsAllowOrigin leaves CORS off.
func NewRouter(s *Server, corsAllowOrigin string, log *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(Runtime())
	r.Use(JSONRecoverer(log))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(log))
	if corsAllowOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:       []string{corsAllowOrigin},
			AllowedMethods:       []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders:       []string{"*"},
			OptionsSuccessStatus: http.StatusNoContent,
		}))
	}
	r.Use(chiMiddleware.Compress(compressLevel, "application/json"))
	r.Use(metrics.Middleware())
	s.Register(r)
	return r
}
