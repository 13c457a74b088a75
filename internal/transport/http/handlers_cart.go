package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"milsabores/internal/cart"
	"milsabores/internal/storefront"
	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/platform/httputil"
	"milsabores/pkg/requestcontext"
)

func (h *Handler) HandleCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, http.StatusOK, h.tab(r))
}

// HandleAddItem handles POST /cart/items.
func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[AddItemRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	tab := h.tab(r)
	if err := tab.Cart.Add(ctx, req.product()); err != nil {
		h.fail(w, r, "add to cart failed", err)
		return
	}
	h.writeCart(w, http.StatusOK, tab)
}

// HandleDecrementItem handles POST /cart/items/{code}/decrement.
func (h *Handler) HandleDecrementItem(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, "decrement failed", (*cart.Store).Decrement)
}

// HandleRemoveItem handles DELETE /cart/items/{code}.
func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, "remove failed", (*cart.Store).Remove)
}

// HandleClearCart handles DELETE /cart.
func (h *Handler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	tab := h.tab(r)
	if err := tab.Cart.Clear(r.Context()); err != nil {
		h.fail(w, r, "clear cart failed", err)
		return
	}
	h.writeCart(w, http.StatusOK, tab)
}

func (h *Handler) mutateLine(
	w http.ResponseWriter,
	r *http.Request,
	msg string,
	op func(*cart.Store, context.Context, id.ProductCode) error,
) {
	code, err := id.ParseProductCode(chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid product code"))
		return
	}
	tab := h.tab(r)
	if err := op(tab.Cart, r.Context(), code); err != nil {
		h.fail(w, r, msg, err)
		return
	}
	h.writeCart(w, http.StatusOK, tab)
}

func (h *Handler) writeCart(w http.ResponseWriter, status int, tab *storefront.Tab) {
	httputil.WriteJSON(w, status, toCartResponse(tab.Cart.Items(), tab.Quote(), h.formatter))
}
