// internal/portal/academics.go
package portal

import (
	"net/http"
	"strconv"
	"time"

	"portalbackend/internal/academics"
	"portalbackend/internal/middleware"
)

// AttendanceHandler returns per-subject and overall attendance.
func (h *Handlers) AttendanceHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveSession(w, r); !ok {
		return
	}

	subjects := academics.DefaultAttendance()
	type row struct {
		academics.SubjectAttendance
		Percent float64 `json:"percent"`
	}
	rows := make([]row, len(subjects))
	for i, s := range subjects {
		rows[i] = row{SubjectAttendance: s, Percent: s.Percent()}
	}

	middleware.WriteAPISuccess(w, r, map[string]interface{}{
		"subjects": rows,
		"overall":  academics.OverallPercent(subjects),
	})
}

// CalendarHandler returns one month laid out as a Sunday-first grid.
func (h *Handlers) CalendarHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveSession(w, r); !ok {
		return
	}

	now := time.Now()
	year, month := now.Year(), now.Month()

	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_year",
				"Year must be a number", "")
			return
		}
		year = parsed
	}
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_month",
				"Month must be 1-12", "")
			return
		}
		month = time.Month(parsed)
	}

	middleware.WriteAPISuccess(w, r, academics.BuildMonthGrid(year, month))
}

// SyllabusHandler returns every subject with current covered flags.
func (h *Handlers) SyllabusHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveSession(w, r); !ok {
		return
	}

	middleware.WriteAPISuccess(w, r, h.Syllabus.Subjects())
}

// SyllabusToggleHandler flips one unit's covered flag.
func (h *Handlers) SyllabusToggleHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveSession(w, r); !ok {
		return
	}

	var req struct {
		SubjectID string `json:"subject_id"`
		UnitID    string `json:"unit_id"`
	}
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_json", err.Error(), "")
		return
	}

	covered, err := h.Syllabus.Toggle(r.Context(), req.SubjectID, req.UnitID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	middleware.WriteAPISuccess(w, r, map[string]bool{"covered": covered})
}

// SyllabusBulkHandler marks a whole subject covered or uncovered.
func (h *Handlers) SyllabusBulkHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveSession(w, r); !ok {
		return
	}

	var req struct {
		SubjectID string `json:"subject_id"`
		Covered   bool   `json:"covered"`
	}
	if err := middleware.ParseJSONRequest(r, &req); err != nil {
		middleware.WriteAPIError(w, r, http.StatusBadRequest, "invalid_json", err.Error(), "")
		return
	}

	if err := h.Syllabus.SetAll(r.Context(), req.SubjectID, req.Covered); err != nil {
		writeDomainError(w, r, err)
		return
	}

	covered, total := h.Syllabus.Coverage(req.SubjectID)
	middleware.WriteAPISuccess(w, r, map[string]int{"covered": covered, "total": total})
}
