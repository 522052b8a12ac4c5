package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonops-backend/internal/repository"
)

type ReportHandler struct {
	Repo repository.ReportRepository
	now  func() time.Time
}

func NewReportHandler(repo repository.ReportRepository) ReportHandler {
	return ReportHandler{Repo: repo, now: time.Now}
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/dashboard", h.dashboard)
}

func (h ReportHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	branchID, ok := pathID(r.URL.Query().Get("branch_id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "branch_id is required")
		return
	}
	date := h.now()
	if v, err := parseDateQuery(r, "date"); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid date")
		return
	} else if v != nil {
		date = *v
	}
	dash, err := h.Repo.Dashboard(r.Context(), branchID, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"branch_id":        dash.BranchID,
		"date":             dash.Date.Format(dateLayout),
		"total_sales":      dash.TotalSales,
		"total_cash":       dash.TotalCash,
		"total_expense":    dash.TotalExpense,
		"total_net":        dash.TotalNet,
		"total_commission": dash.TotalCommission,
		"total_bonus":      dash.TotalBonus,
		"entries_count":    dash.EntriesCount,
		"employees_count":  dash.EmployeesCount,
		"day_closed":       dash.DayClosed,
		"pending_advances": dash.PendingAdvances,
	})
}
