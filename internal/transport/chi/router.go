package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/logdex/internal/logger"
)

// ServerOptions configures route registration.
type ServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions registers every API route of s on the base router.
func HandlerWithOptions(s *Server, options ServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	onErr := options.ErrorHandlerFunc
	if onErr == nil {
		onErr = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		}
	}

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/mapping", s.GetMapping)
		r.Post("/logs/index", s.ReindexBatch)
		r.Post("/logs/index-all", s.ReindexAll)
		r.Post("/logs/normalize", s.NormalizeEntry)
		r.Post("/logs/{key}/index", withKey(s.ReindexLog, onErr))
		r.Post("/logs/{key}/preview", withKey(s.PreviewLog, onErr))
		r.Head("/logs/{key}/document", withKey(s.HeadDocument, onErr))
		r.Get("/logs/{key}/document", withKey(s.GetDocument, onErr))
	})
	return r
}

// withKey binds the {key} path parameter and tags the request logger with it before calling h.
func withKey(
	h func(w http.ResponseWriter, r *http.Request, key string),
	onErr func(w http.ResponseWriter, r *http.Request, err error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var key string
		err := runtime.BindStyledParameterWithOptions("simple", "key", chi.URLParam(r, "key"), &key,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			onErr(w, r, err)
			return
		}
		ctx := logpkg.With(r.Context(), zap.String("log_key", key))
		h(w, r.WithContext(ctx), key)
	}
}
