package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
	"salonops-backend/internal/server/authctx"
	"salonops-backend/internal/service"
)

type DailyEntryHandler struct {
	Service *service.DailyEntryService
	Repo    repository.DailyEntryRepository
}

func (h DailyEntryHandler) RegisterRoutes(r chi.Router, guard Guard) {
	r.Get("/daily-entries", h.list)
	r.With(guard(domain.PermCreateDailyEntry)).Post("/daily-entries", h.create)
	r.Get("/daily-entries/export", h.export)
	r.Get("/daily-entries/stats/employee/{id}", h.employeeStats)
	r.Get("/daily-entries/{id}", h.get)
	r.With(guard(domain.PermUpdateDailyEntry)).Put("/daily-entries/{id}", h.update)
	r.With(guard(domain.PermDeleteDailyEntry)).Delete("/daily-entries/{id}", h.delete)
}

type dailyEntryPayload struct {
	EmployeeID        *int64  `json:"employee_id"`
	BranchID          *int64  `json:"branch_id"`
	Date              string  `json:"date"`
	Sales             *string `json:"sales"`
	Cash              *string `json:"cash"`
	Expense           *string `json:"expense"`
	CommissionRate    *string `json:"commission_rate"`
	Bonus             *string `json:"bonus"`
	BonusReason       *string `json:"bonus_reason"`
	Note              *string `json:"note"`
	TransactionsCount *int    `json:"transactions_count"`
	Source            string  `json:"source"`
}

func (h DailyEntryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dailyEntryPayload
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	if req.EmployeeID == nil || req.BranchID == nil || req.Date == "" {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "employee_id, branch_id and date are required")
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid date")
		return
	}

	params := service.CreateDailyEntryParams{
		ActorID:    authctx.ActorID(r.Context()),
		EmployeeID: *req.EmployeeID,
		BranchID:   *req.BranchID,
		Date:       date,
		Source:     domain.EntrySource(req.Source),
	}
	if params.Sales, err = parseAmount(req.Sales); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid sales")
		return
	}
	if params.Cash, err = parseAmount(req.Cash); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid cash")
		return
	}
	if params.Expense, err = parseAmount(req.Expense); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid expense")
		return
	}
	if params.Bonus, err = parseAmount(req.Bonus); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid bonus")
		return
	}
	if params.CommissionRate, err = parseOptionalAmount(req.CommissionRate); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid commission_rate")
		return
	}
	if req.BonusReason != nil {
		params.BonusReason = *req.BonusReason
	}
	if req.Note != nil {
		params.Note = *req.Note
	}
	if req.TransactionsCount != nil {
		params.TransactionsCount = *req.TransactionsCount
	}

	entry, err := h.Service.Create(r.Context(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, dailyEntryJSON(*entry), "daily entry created")
}

func (h DailyEntryHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid entry id")
		return
	}
	var req dailyEntryPayload
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}

	params := service.UpdateDailyEntryParams{
		ActorID:           authctx.ActorID(r.Context()),
		BonusReason:       req.BonusReason,
		Note:              req.Note,
		TransactionsCount: req.TransactionsCount,
	}
	var err error
	if params.Sales, err = parseOptionalAmount(req.Sales); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid sales")
		return
	}
	if params.Cash, err = parseOptionalAmount(req.Cash); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid cash")
		return
	}
	if params.Expense, err = parseOptionalAmount(req.Expense); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid expense")
		return
	}
	if params.Bonus, err = parseOptionalAmount(req.Bonus); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid bonus")
		return
	}
	if params.CommissionRate, err = parseOptionalAmount(req.CommissionRate); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid commission_rate")
		return
	}

	entry, err := h.Service.Update(r.Context(), id, params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, dailyEntryJSON(*entry), "daily entry updated")
}

func (h DailyEntryHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid entry id")
		return
	}
	if err := h.Service.Delete(r.Context(), id, authctx.ActorID(r.Context())); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "daily entry deleted")
}

func (h DailyEntryHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid entry id")
		return
	}
	entry, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, dailyEntryJSON(*entry))
}

func (h DailyEntryHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := dailyEntryFilter(r)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	page, perPage := parsePagination(r)
	items, total, err := h.Repo.List(r.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, e := range items {
		resp = append(resp, dailyEntryJSON(e))
	}
	writePaged(w, resp, page, perPage, total)
}

func (h DailyEntryHandler) employeeStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid employee id")
		return
	}
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid from")
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid to")
		return
	}
	now := time.Now()
	if to == nil {
		to = &now
	}
	if from == nil {
		monthStart := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
		from = &monthStart
	}

	stats, err := h.Service.Stats(r.Context(), id, *from, *to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	payload := map[string]any{
		"employee_id":         stats.EmployeeID,
		"from":                stats.From.Format(dateLayout),
		"to":                  stats.To.Format(dateLayout),
		"total_sales":         stats.TotalSales,
		"total_cash":          stats.TotalCash,
		"total_expense":       stats.TotalExpense,
		"total_net":           stats.TotalNet,
		"total_commission":    stats.TotalCommission,
		"total_bonus":         stats.TotalBonus,
		"total_earnings":      stats.TotalEarnings,
		"working_days":        stats.WorkingDays,
		"period_days":         stats.PeriodDays,
		"zero_days":           stats.ZeroDays,
		"avg_sales_per_day":   stats.AvgSalesPerDay,
		"avg_net_per_day":     stats.AvgNetPerDay,
		"avg_commission_rate": stats.AvgCommissionRate,
	}
	if stats.BestDay != nil {
		payload["best_day"] = map[string]any{"date": stats.BestDay.Date.Format(dateLayout), "sales": stats.BestDay.Sales}
	}
	if stats.WorstDay != nil {
		payload["worst_day"] = map[string]any{"date": stats.WorstDay.Date.Format(dateLayout), "sales": stats.WorstDay.Sales}
	}
	writeData(w, http.StatusOK, payload)
}

func (h DailyEntryHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	filter, err := dailyEntryFilter(r)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}
	items, _, err := h.Repo.List(r.Context(), filter, 2000, 0)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	suffix := time.Now().Format("20060102_150405")
	switch format {
	case "csv":
		data, err := exportDailyEntriesCSV(items)
		if err != nil {
			writeErrorCode(w, http.StatusInternalServerError, CodeInternal, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"daily_entries_%s.csv\"", suffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportDailyEntriesXLSX(items)
		if err != nil {
			writeErrorCode(w, http.StatusInternalServerError, CodeInternal, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"daily_entries_%s.xlsx\"", suffix))
		_, _ = w.Write(data)
	default:
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid format (use csv or xlsx)")
	}
}

func dailyEntryFilter(r *http.Request) (repository.DailyEntryFilter, error) {
	var f repository.DailyEntryFilter
	if v := r.URL.Query().Get("branch_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid branch_id")
		}
		f.BranchID = &id
	}
	if v := r.URL.Query().Get("employee_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid employee_id")
		}
		f.EmployeeID = &id
	}
	var err error
	if f.From, err = parseDateQuery(r, "from"); err != nil {
		return f, fmt.Errorf("invalid from")
	}
	if f.To, err = parseDateQuery(r, "to"); err != nil {
		return f, fmt.Errorf("invalid to")
	}
	return f, nil
}

func dailyEntryJSON(e domain.DailyEntry) map[string]any {
	out := map[string]any{
		"id":                 e.ID,
		"branch_id":          e.BranchID,
		"employee_id":        e.EmployeeID,
		"date":               e.Date.Format(dateLayout),
		"sales":              e.Sales,
		"cash":               e.Cash,
		"expense":            e.Expense,
		"commission_rate":    e.CommissionRate,
		"commission":         e.Commission,
		"bonus":              e.Bonus,
		"bonus_reason":       e.BonusReason,
		"note":               e.Note,
		"transactions_count": e.TransactionsCount,
		"source":             string(e.Source),
		"net":                e.Net,
		"total_earnings":     e.TotalEarnings(),
		"is_locked":          e.IsLocked,
		"created_at":         e.CreatedAt,
		"updated_at":         e.UpdatedAt,
	}
	if e.LockedAt != nil {
		out["locked_at"] = e.LockedAt
		out["locked_by"] = e.LockedBy
	}
	return out
}

func exportDailyEntriesCSV(items []domain.DailyEntry) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "branch_id", "employee_id", "date", "sales", "cash", "expense", "commission_rate", "commission", "bonus", "net", "locked"})
	for _, e := range items {
		_ = w.Write([]string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.BranchID, 10),
			strconv.FormatInt(e.EmployeeID, 10),
			e.Date.Format(dateLayout),
			e.Sales.StringFixed(2),
			e.Cash.StringFixed(2),
			e.Expense.StringFixed(2),
			e.CommissionRate.StringFixed(2),
			e.Commission.StringFixed(2),
			e.Bonus.StringFixed(2),
			e.Net.StringFixed(2),
			strconv.FormatBool(e.IsLocked),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportDailyEntriesXLSX(items []domain.DailyEntry) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "DailyEntries"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Branch", "Employee", "Date", "Sales", "Cash", "Expense", "Rate", "Commission", "Bonus", "Net", "Locked"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for row, e := range items {
		values := []any{
			e.ID, e.BranchID, e.EmployeeID, e.Date.Format(dateLayout),
			e.Sales.StringFixed(2), e.Cash.StringFixed(2), e.Expense.StringFixed(2),
			e.CommissionRate.StringFixed(2), e.Commission.StringFixed(2),
			e.Bonus.StringFixed(2), e.Net.StringFixed(2), e.IsLocked,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheet, "A1", "L1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseAmount(v *string) (decimal.Decimal, error) {
	if v == nil || *v == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*v)
}

func parseOptionalAmount(v *string) (*decimal.Decimal, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
