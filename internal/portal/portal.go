// internal/portal/portal.go
package portal

import (
	"errors"
	"net/http"

	"portalbackend/internal/academics"
	"portalbackend/internal/activity"
	"portalbackend/internal/catalog"
	"portalbackend/internal/export"
	"portalbackend/internal/hostel"
	"portalbackend/internal/library"
	"portalbackend/internal/middleware"
	"portalbackend/internal/payment"
	"portalbackend/internal/receipt"
	"portalbackend/internal/session"
)

// Handlers wires every portal endpoint to its backing service. Flow state
// lives on the session resolved per request; the services here are the
// shared, long-lived pieces.
type Handlers struct {
	Catalog  *catalog.Service
	Receipts *receipt.Store
	Sessions *session.Manager
	Checkout *payment.Checkout
	Hostel   *hostel.Service
	Library  *library.Service
	Activity *activity.Service
	Syllabus *academics.Tracker
	Renderer *export.Renderer
}

// resolveSession returns the session for the validated token on the
// request, writing the error response itself when there is none.
func (h *Handlers) resolveSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	token := middleware.GetToken(r.Context())
	sess, err := h.Sessions.Get(token)
	if err != nil {
		middleware.WriteAPIError(w, r, http.StatusUnauthorized, "unknown_session",
			"No session for this token", "")
		return nil, false
	}
	return sess, true
}

// writeDomainError maps service errors onto API error responses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, payment.ErrNotEligible):
		middleware.WriteAPIError(w, r, http.StatusConflict, "stage_not_eligible",
			"Earlier stages must be paid first", "")
	case errors.Is(err, payment.ErrAlreadyPaid):
		middleware.WriteAPIError(w, r, http.StatusConflict, "stage_already_paid",
			"This stage is already paid", "")
	case errors.Is(err, payment.ErrUnknownStage):
		middleware.WriteAPIError(w, r, http.StatusNotFound, "unknown_stage",
			"No such fee stage", "")
	case errors.Is(err, payment.ErrEmptyCart):
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "empty_cart",
			"Add items to the cart before paying", "")
	case errors.Is(err, payment.ErrMissingMethod):
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "missing_method",
			"A payment method is required", "")
	case errors.Is(err, hostel.ErrRoomTaken):
		middleware.WriteAPIError(w, r, http.StatusConflict, "room_taken",
			"That room is no longer available", "")
	case errors.Is(err, hostel.ErrUnknownPlan):
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "unknown_plan",
			"Unknown room type or mess plan", "")
	case errors.Is(err, library.ErrBookUnavailable):
		middleware.WriteAPIError(w, r, http.StatusConflict, "book_unavailable",
			"One of the requested books is not available", "")
	case errors.Is(err, activity.ErrUnknownEvent):
		middleware.WriteAPIError(w, r, http.StatusNotFound, "unknown_event",
			"No such activity event", "")
	case errors.Is(err, activity.ErrAlreadyRecorded):
		middleware.WriteAPIError(w, r, http.StatusConflict, "already_recorded",
			"This event is already credited", "")
	case errors.Is(err, academics.ErrUnknownSubject):
		middleware.WriteAPIError(w, r, http.StatusNotFound, "unknown_subject",
			"No such subject or unit", "")
	default:
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_request",
			err.Error(), "")
	}
}

// StartSessionHandler creates a session and returns its access token.
func (h *Handlers) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		middleware.WriteAPIError(w, r, http.StatusMethodNotAllowed, "method_not_allowed",
			"POST required", "")
		return
	}

	var req struct {
		StudentID string `json:"student_id"`
	}
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_json", err.Error(), "")
		return
	}

	sess, err := h.Sessions.Create(r.Context(), req.StudentID)
	if err != nil {
		middleware.WriteAPIError(w, r, http.StatusInternalServerError, "session_failed",
			"Could not start session", "")
		return
	}

	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"access_token": sess.Token,
		"student_id":   sess.StudentID,
		"cart":         sess.Ledger.Lines(),
	})
}

// EndSessionHandler drops the caller's session.
func (h *Handlers) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	h.Sessions.SaveCart(r.Context(), sess)
	h.Sessions.End(sess.Token)
	middleware.WriteAPISuccess(w, r, map[string]string{"status": "ended"})
}

// CatalogHandler returns the cafeteria menu grouped by section.
func (h *Handlers) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"sections": h.Catalog.Sections(),
	})
}
