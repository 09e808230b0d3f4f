package handlers

import (
	"fmt"
	"net/http"
	"time"

	"rental-backend/internal/services"
	"rental-backend/internal/timeutil"
	"rental-backend/pkg/utils"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// Summary returns the dashboard headline numbers.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.GetDashboardSummary(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

// FleetPDF streams the fleet overview report.
func (h *ReportHandler) FleetPDF(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.Service.GenerateFleetPDF(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := fmt.Sprintf("fleet-%s.pdf", time.Now().Format("2006-01-02"))
	h.Service.ArchiveReport(r.Context(), name, pdf, "application/pdf")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(pdf)
}

// PaymentsCSV exports payments between ?from and ?to (defaults to the current month).
func (h *ReportHandler) PaymentsCSV(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := timeutil.StartOfMonth(now)
	to := now

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(timeutil.DateLayout, raw)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(timeutil.DateLayout, raw)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		to = parsed
	}

	csvData, err := h.Service.GeneratePaymentsCSV(r.Context(), from, to)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := fmt.Sprintf("payments-%s-to-%s.csv", from.Format("2006-01-02"), to.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(csvData)
}
