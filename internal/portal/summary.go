// internal/portal/summary.go
package portal

import (
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"portalbackend/internal/academics"
	"portalbackend/internal/middleware"
	"portalbackend/internal/receipt"
)

// SummaryHandler is the dashboard: one call returning the state of every
// portal area for the session student.
func (h *Handlers) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	// Only this student's receipts count toward the dashboard figures.
	receipts := h.Receipts.ByStudent(sess.StudentID)
	var paidTotal float64
	var lastPayment *time.Time
	cafeteriaOrders := 0
	for _, rec := range receipts {
		paidTotal += rec.Total
		if rec.Context == receipt.ContextCafeteria {
			cafeteriaOrders++
		}
		created := rec.CreatedAt
		if lastPayment == nil || created.After(*lastPayment) {
			lastPayment = &created
		}
	}

	stages := sess.Plan.Stages()
	paidStages := 0
	for _, s := range stages {
		if s.Paid {
			paidStages++
		}
	}

	summary := map[string]interface{}{
		"student_id":       sess.StudentID,
		"cart_lines":       sess.Ledger.Len(),
		"cart_total":       sess.Ledger.ComputeTotals(h.Checkout.Rules()).Rounded().Total,
		"stages_paid":      paidStages,
		"stages_total":     len(stages),
		"admission_done":   sess.Plan.Completed(),
		"receipts":         len(receipts),
		"cafeteria_orders": cafeteriaOrders,
		"amount_paid":      paidTotal,
		"amount_paid_text": "Rs. " + humanize.CommafWithDigits(paidTotal, 2),
		"activity_points":  h.Activity.TotalPoints(sess.StudentID),
		"reservations":     len(h.Library.ReservationsByERP(sess.StudentID)),
		"attendance":       academics.OverallPercent(academics.DefaultAttendance()),
	}
	if lastPayment != nil {
		summary["last_payment"] = humanize.Time(*lastPayment)
	}
	if sel, has := sess.HostelSelection(); has {
		summary["hostel"] = sel
	}

	middleware.WriteAPISuccess(w, r, summary)
}
