package httpserver

import (
	"net/http"
	"time"

	"milsabores/internal/platform/config"
)

// readHeaderTimeout is fixed; slow header senders are never legitimate.
const readHeaderTimeout = 5 * time.Second

// New builds the storefront HTTP server. The write timeout must stay above
// the authentication timeout or slow logins are cut off mid-response.
func New(addr string, cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
