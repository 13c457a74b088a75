// Package httptransport exposes the storefront tabs as a JSON API. Every
// request acts on the tab named by the X-Tab-ID header.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	platformmw "milsabores/internal/platform/middleware"
	"milsabores/internal/pricing"
	"milsabores/internal/storefront"
	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/platform/httputil"
	"milsabores/pkg/requestcontext"
)

// TabHeader names the tab a request acts on. Responses always carry it.
const TabHeader = platformmw.TabHeader

// Tabs resolves a tab ID to its stores.
type Tabs interface {
	Get(ctx context.Context, tabID id.TabID) *storefront.Tab
}

type Handler struct {
	tabs      Tabs
	formatter pricing.Formatter
	logger    *slog.Logger
	authLimit func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithAuthLimit wraps the login and register routes, typically with a
// ratelimit rule.
func WithAuthLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		if mw != nil {
			h.authLimit = mw
		}
	}
}

func New(tabs Tabs, formatter pricing.Formatter, logger *slog.Logger, opts ...Option) *Handler {
	if formatter == nil {
		formatter = pricing.DefaultFormatter()
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		tabs:      tabs,
		formatter: formatter,
		logger:    logger,
		authLimit: func(next http.Handler) http.Handler { return next },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the storefront endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(resolveTab)

		r.Get("/session", h.HandleSession)
		r.With(h.authLimit).Post("/session/login", h.HandleLogin)
		r.With(h.authLimit).Post("/session/register", h.HandleRegister)
		r.Post("/session/logout", h.HandleLogout)

		r.Get("/cart", h.HandleCart)
		r.Post("/cart/items", h.HandleAddItem)
		r.Post("/cart/items/{code}/decrement", h.HandleDecrementItem)
		r.Delete("/cart/items/{code}", h.HandleRemoveItem)
		r.Delete("/cart", h.HandleClearCart)

		r.Post("/checkout", h.HandleCheckout)
		r.Get("/receipts", h.HandleReceipts)
	})
}

// resolveTab reads the tab from TabHeader, minting a new one when absent.
func resolveTab(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tabID := id.NewTabID()
		if raw := r.Header.Get(TabHeader); raw != "" {
			parsed, err := id.ParseTabID(raw)
			if err != nil {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid "+TabHeader+" header"))
				return
			}
			tabID = parsed
		}
		w.Header().Set(TabHeader, tabID.String())
		next.ServeHTTP(w, r.WithContext(requestcontext.WithTabID(r.Context(), tabID)))
	})
}

func (h *Handler) tab(r *http.Request) *storefront.Tab {
	ctx := r.Context()
	return h.tabs.Get(ctx, requestcontext.TabID(ctx))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"tab_id", requestcontext.TabID(ctx).String(),
		"device", requestcontext.Device(ctx),
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
