package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	platformmw "milsabores/internal/platform/middleware"
	"milsabores/pkg/platform/httputil"
	"milsabores/pkg/platform/middleware/metadata"
	"milsabores/pkg/requestcontext"
)

// probeTimeout bounds each readiness probe.
const probeTimeout = 2 * time.Second

// Check is a readiness probe for one external dependency.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// NewRouter wires the storefront endpoints with health, readiness and
// metrics.
func NewRouter(h *Handler, logger *slog.Logger, gatherer prometheus.Gatherer, checks ...Check) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(propagateRequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(platformmw.Recovery(logger))
	r.Use(platformmw.Logger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", ready(logger, checks))
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	h.Register(r)
	return r
}

// propagateRequestID copies chi's request id into requestcontext.
func propagateRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithRequestID(r.Context(), chimw.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ready answers 200 when every probe passes, 503 naming the failures
// otherwise.
func ready(logger *slog.Logger, checks []Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		failed := map[string]string{}
		for _, c := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
			err := c.Probe(ctx)
			cancel()
			if err != nil {
				logger.WarnContext(r.Context(), "readiness probe failed", "dependency", c.Name, "error", err)
				failed[c.Name] = err.Error()
			}
		}
		if len(failed) > 0 {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
