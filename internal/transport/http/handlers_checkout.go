package httptransport

import (
	"net/http"

	"milsabores/pkg/platform/httputil"
)

// HandleCheckout handles POST /checkout.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.tab(r).Checkout.Checkout(r.Context())
	if err != nil {
		h.fail(w, r, "checkout failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toReceiptResponse(*receipt, h.formatter))
}

// HandleReceipts handles GET /receipts.
func (h *Handler) HandleReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.tab(r).Checkout.History(r.Context())
	if err != nil {
		h.fail(w, r, "receipt history failed", err)
		return
	}
	out := make([]ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		out = append(out, toReceiptResponse(receipt, h.formatter))
	}
	httputil.WriteJSON(w, http.StatusOK, ReceiptsResponse{Receipts: out})
}
