// internal/portal/admission.go
package portal

import (
	"net/http"
	"strconv"

	"portalbackend/internal/logger"
	"portalbackend/internal/middleware"
	"portalbackend/internal/receipt"
)

// StagesHandler returns the fee schedule with paid flags and which stage
// is currently payable.
func (h *Handlers) StagesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	stages := sess.Plan.Stages()
	payable := 0
	for _, s := range stages {
		if !s.Paid {
			payable = s.Number
			break
		}
	}

	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"stages":    stages,
		"payable":   payable,
		"completed": sess.Plan.Completed(),
	})
}

// StagePayHandler pays one fee stage. The session's hostel selection, when
// present, is priced in as extra charges on top of the year's base fee.
func (h *Handlers) StagePayHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Stage  int    `json:"stage"`
		Method string `json:"method"`
	}
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_json", err.Error(), "")
		return
	}

	var extras []receipt.Charge
	if sel, has := sess.HostelSelection(); has {
		charges, err := h.Hostel.Charges(sel)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		extras = charges
	}

	rec, err := sess.Plan.ConfirmPayment(r.Context(), req.Stage, req.Method, sess.StudentID, extras)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger.LogInfo("Admission stage %d paid: token=%s total=%.2f", req.Stage, rec.Token, rec.Total)
	middleware.WriteAPISuccess(w, r, rec)
}

// ReceiptsHandler lists the session student's receipts, optionally
// filtered by context.
func (h *Handlers) ReceiptsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	receipts := h.Receipts.ByStudent(sess.StudentID)
	if ctx := r.URL.Query().Get("context"); ctx != "" {
		filtered := make([]receipt.Receipt, 0, len(receipts))
		for _, rec := range receipts {
			if rec.Context == ctx {
				filtered = append(filtered, rec)
			}
		}
		receipts = filtered
	}
	middleware.WriteAPISuccess(w, r, receipts)
}

// ReceiptDownloadHandler streams one receipt as a PDF, located either by
// token or by admission stage. Paid receipts stay downloadable forever.
func (h *Handlers) ReceiptDownloadHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var rec receipt.Receipt
	var found bool
	if token := r.URL.Query().Get("token"); token != "" {
		rec, found = h.Receipts.FindByToken(token)
	} else if stageStr := r.URL.Query().Get("stage"); stageStr != "" {
		stage, err := strconv.Atoi(stageStr)
		if err != nil {
			middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_stage",
				"Stage must be a number", "")
			return
		}
		rec, found = h.Receipts.FindByStage(sess.StudentID, stage)
	}

	if !found {
		middleware.WriteAPIError(w, r, http.StatusNotFound, "receipt_not_found",
			"No receipt matches that token or stage", "")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+rec.Token+".pdf")
	if err := h.Renderer.Render(w, rec); err != nil {
		// The receipt itself is committed and safe; only the export failed.
		logger.LogError("Receipt export failed for %s: %v", rec.Token, err)
	}
}
