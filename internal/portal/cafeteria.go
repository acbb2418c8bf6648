// internal/portal/cafeteria.go
package portal

import (
	"net/http"

	"portalbackend/internal/logger"
	"portalbackend/internal/middleware"
)

type cartMutation struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// CartHandler returns the session's cart with its current totals.
func (h *Handlers) CartHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"lines":  sess.Ledger.Lines(),
		"totals": sess.Ledger.ComputeTotals(h.Checkout.Rules()).Rounded(),
	})
}

// CartAddHandler adds an item to the cart. A duplicate add arriving inside
// the debounce window reports added=false without failing the request.
func (h *Handlers) CartAddHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req cartMutation
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_json", err.Error(), "")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	added := sess.Ledger.Add(req.ItemID, req.Quantity)
	if added {
		h.Sessions.SaveCart(r.Context(), sess)
	}

	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"added":  added,
		"lines":  sess.Ledger.Lines(),
		"totals": sess.Ledger.ComputeTotals(h.Checkout.Rules()).Rounded(),
	})
}

// CartRemoveHandler drops a line from the cart.
func (h *Handlers) CartRemoveHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req cartMutation
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_json", err.Error(), "")
		return
	}

	sess.Ledger.Remove(req.ItemID)
	h.Sessions.SaveCart(r.Context(), sess)

	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"lines":  sess.Ledger.Lines(),
		"totals": sess.Ledger.ComputeTotals(h.Checkout.Rules()).Rounded(),
	})
}

// CartQuantityHandler sets a line's quantity; zero or less removes it.
func (h *Handlers) CartQuantityHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req cartMutation
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_json", err.Error(), "")
		return
	}

	sess.Ledger.SetQuantity(req.ItemID, req.Quantity)
	h.Sessions.SaveCart(r.Context(), sess)

	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"lines":  sess.Ledger.Lines(),
		"totals": sess.Ledger.ComputeTotals(h.Checkout.Rules()).Rounded(),
	})
}

// CheckoutHandler pays for the cart and returns the minted receipt.
func (h *Handlers) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Method string `json:"method"`
	}
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_json", err.Error(), "")
		return
	}

	rec, err := h.Checkout.Confirm(r.Context(), sess.Ledger, req.Method, sess.StudentID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// The cart is empty now; persist that so a restart doesn't resurrect
	// already-paid items.
	h.Sessions.SaveCart(r.Context(), sess)

	logger.LogInfo("Cafeteria checkout completed: token=%s total=%.2f", rec.Token, rec.Total)
	middleware.WriteAPISuccess(w, r, rec)
}
