// internal/portal/campus.go
package portal

import (
	"net/http"
	"strconv"
	"time"

	"portalbackend/internal/hostel"
	"portalbackend/internal/library"
	"portalbackend/internal/middleware"
)

// RoomsHandler returns the hostel inventory and the charge tables.
func (h *Handlers) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveSession(w, r); !ok {
		return
	}

	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"rooms":      h.Hostel.Rooms(),
		"room_types": hostel.RoomTypes(),
		"mess_plans": hostel.MessPlans(),
	})
}

// RoomAllocateHandler reserves a room and mess plan for the session. The
// charges land on the next admission stage payment.
func (h *Handlers) RoomAllocateHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req struct {
		RoomID   string `json:"room_id"`
		MessPlan string `json:"mess_plan"`
	}
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_json", err.Error(), "")
		return
	}

	// Swapping rooms releases the old one first.
	if prev, has := sess.HostelSelection(); has {
		h.Hostel.Release(prev.RoomID)
	}

	sel, err := h.Hostel.Allocate(req.RoomID, req.MessPlan)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	sess.SetHostel(sel)

	charges, err := h.Hostel.Charges(sel)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"selection": sel,
		"charges":   charges,
	})
}

// BooksHandler searches the library catalog.
func (h *Handlers) BooksHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveSession(w, r); !ok {
		return
	}

	books := h.Library.Search(r.URL.Query().Get("q"), r.URL.Query().Get("category"))
	middleware.WriteAPISuccess(w, r, books)
}

// ReserveHandler places a book reservation.
func (h *Handlers) ReserveHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveSession(w, r); !ok {
		return
	}

	var req library.Request
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_json", err.Error(), "")
		return
	}

	res, err := h.Library.Reserve(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	middleware.WriteAPISuccess(w, r, res)
}

// ReservationsHandler lists the session student's reservations.
func (h *Handlers) ReservationsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	middleware.WriteAPISuccess(w, r, h.Library.ReservationsByERP(sess.StudentID))
}

// EventsHandler returns the activity event calendar.
func (h *Handlers) EventsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveSession(w, r); !ok {
		return
	}

	middleware.WriteAPISuccess(w, r, h.Activity.Events())
}

// EventRecordHandler credits the session student for an attended event.
func (h *Handlers) EventRecordHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req struct {
		EventID string `json:"event_id"`
	}
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_json", err.Error(), "")
		return
	}

	entry, err := h.Activity.Record(r.Context(), sess.StudentID, req.EventID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	middleware.WriteAPISuccess(w, r, entry)
}

// PointsHandler returns the student's total and monthly activity points.
func (h *Handlers) PointsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	year := time.Now().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_year",
				"Year must be a number", "")
			return
		}
		year = parsed
	}

	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"total":   h.Activity.TotalPoints(sess.StudentID),
		"year":    year,
		"monthly": h.Activity.MonthlySeries(sess.StudentID, year),
		"entries": h.Activity.EntriesByStudent(sess.StudentID),
	})
}
