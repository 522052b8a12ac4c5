package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"salonops-backend/internal/domain"
	"salonops-backend/internal/repository"
	"salonops-backend/internal/server/authctx"
	"salonops-backend/internal/service"
)

type LedgerHandler struct {
	Service   *service.LedgerService
	Repo      repository.LedgerRepository
	Employees repository.EmployeeRepository
	Branches  repository.BranchRepository
}

func (h LedgerHandler) RegisterRoutes(r chi.Router, guard Guard) {
	r.Get("/ledger-entries", h.list)
	r.With(guard(domain.PermCreateLedgerEntry)).Post("/ledger-entries", h.create)
	r.Get("/ledger-entries/export", h.export)
	r.Get("/ledger-entries/balance/{partyType}/{partyId}", h.balance)
	r.With(guard(domain.PermUpdateLedgerEntry)).Patch("/ledger-entries/{id}/status", h.setStatus)
}

func (h LedgerHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PartyType     string `json:"party_type"`
		PartyID       int64  `json:"party_id"`
		Date          string `json:"date"`
		Direction     string `json:"direction"`
		Amount        string `json:"amount"`
		Description   string `json:"description"`
		Category      string `json:"category"`
		Source        string `json:"source"`
		PaymentMethod string `json:"payment_method"`
		Status        string `json:"status"`
		ReferenceType string `json:"reference_type"`
		ReferenceID   int64  `json:"reference_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}

	party, err := domain.ParseParty(req.PartyType, req.PartyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	amount, err := parseAmount(&req.Amount)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid amount")
		return
	}
	var date time.Time
	if req.Date != "" {
		if date, err = time.Parse(dateLayout, req.Date); err != nil {
			writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid date")
			return
		}
	}
	var reference *domain.Reference
	if req.ReferenceType != "" && req.ReferenceID > 0 {
		reference = &domain.Reference{Type: req.ReferenceType, ID: req.ReferenceID}
	}

	entry, balance, err := h.Service.Post(r.Context(), service.PostLedgerParams{
		ActorID:       authctx.ActorID(r.Context()),
		Party:         party,
		Date:          date,
		Direction:     domain.LedgerDirection(req.Direction),
		Amount:        amount,
		Description:   req.Description,
		Category:      req.Category,
		Source:        domain.LedgerSource(req.Source),
		Reference:     reference,
		PaymentMethod: req.PaymentMethod,
		Status:        domain.LedgerStatus(req.Status),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payload := ledgerEntryJSON(*entry)
	payload["new_balance"] = balance.Balance
	writeMessage(w, http.StatusCreated, payload, "ledger entry posted")
}

func (h LedgerHandler) balance(w http.ResponseWriter, r *http.Request) {
	partyID, ok := pathID(chi.URLParam(r, "partyId"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid party id")
		return
	}
	summary, err := h.Service.Balance(r.Context(), chi.URLParam(r, "partyType"), partyID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payload := map[string]any{
		"party_type":   string(summary.Party.Kind),
		"party_id":     summary.Party.ID,
		"balance":      summary.Balance,
		"label":        summary.Label(),
		"total_debit":  summary.TotalDebit,
		"total_credit": summary.TotalCredit,
		"entry_count":  summary.EntryCount,
	}
	if summary.LastEntryDate != nil {
		payload["last_entry_date"] = summary.LastEntryDate.Format(dateLayout)
	}
	writeData(w, http.StatusOK, payload)
}

func (h LedgerHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(chi.URLParam(r, "id"))
	if !ok {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid entry id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid payload")
		return
	}
	entry, err := h.Service.SetStatus(r.Context(), id, domain.LedgerStatus(req.Status), authctx.ActorID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, ledgerEntryJSON(*entry), "status updated")
}

func (h LedgerHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := h.ledgerFilter(r)
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
		payload := ledgerEntryJSON(e)
		payload["party_name"] = h.partyName(r, e.Party)
		resp = append(resp, payload)
	}
	writePaged(w, resp, page, perPage, total)
}

func (h LedgerHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	filter, err := h.ledgerFilter(r)
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
		data, err := exportLedgerCSV(items)
		if err != nil {
			writeErrorCode(w, http.StatusInternalServerError, CodeInternal, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.csv\"", suffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportLedgerXLSX(items)
		if err != nil {
			writeErrorCode(w, http.StatusInternalServerError, CodeInternal, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.xlsx\"", suffix))
		_, _ = w.Write(data)
	default:
		writeErrorCode(w, http.StatusBadRequest, CodeValidation, "invalid format (use csv or xlsx)")
	}
}

func (h LedgerHandler) ledgerFilter(r *http.Request) (repository.LedgerFilter, error) {
	var f repository.LedgerFilter
	q := r.URL.Query()
	if pt := q.Get("party_type"); pt != "" {
		id, err := strconv.ParseInt(q.Get("party_id"), 10, 64)
		if err != nil {
			return f, fmt.Errorf("party_id is required with party_type")
		}
		party, err := domain.ParseParty(pt, id)
		if err != nil {
			return f, fmt.Errorf("invalid party")
		}
		f.Party = &party
	}
	if v := q.Get("status"); v != "" {
		s := domain.LedgerStatus(v)
		if !s.Valid() {
			return f, fmt.Errorf("invalid status")
		}
		f.Status = &s
	}
	if v := q.Get("source"); v != "" {
		s := domain.LedgerSource(v)
		if !s.Valid() {
			return f, fmt.Errorf("invalid source")
		}
		f.Source = &s
	}
	var err error
	if f.From, err = parseDateQuery(r, "from"); err != nil {
		return f, fmt.Errorf("invalid from")
	}
	if f.To, err = parseDateQuery(r, "to"); err != nil {
		return f, fmt.Errorf("invalid to")
	}
	f.IncludeDeleted = q.Get("include_deleted") == "true"
	return f, nil
}

// partyName resolves display names for employee/branch parties; other kinds
// are labelled by their raw reference.
func (h LedgerHandler) partyName(r *http.Request, party domain.Party) string {
	var name string
	var err error
	switch party.Kind {
	case domain.PartyEmployee:
		name, err = h.Employees.Name(r.Context(), party.ID)
	case domain.PartyBranch:
		name, err = h.Branches.Name(r.Context(), party.ID)
	default:
		return party.String()
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return party.String()
		}
		return party.String()
	}
	return name
}

func ledgerEntryJSON(e domain.LedgerEntry) map[string]any {
	out := map[string]any{
		"id":             e.ID,
		"party_type":     string(e.Party.Kind),
		"party_id":       e.Party.ID,
		"date":           e.Date.Format(dateLayout),
		"direction":      string(e.Direction),
		"amount":         e.Amount,
		"description":    e.Description,
		"category":       e.Category,
		"source":         string(e.Source),
		"payment_method": e.PaymentMethod,
		"status":         string(e.Status),
		"created_at":     e.CreatedAt,
		"updated_at":     e.UpdatedAt,
	}
	if e.Reference != nil {
		out["reference_type"] = e.Reference.Type
		out["reference_id"] = e.Reference.ID
	}
	return out
}

func exportLedgerCSV(items []domain.LedgerEntry) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "party_type", "party_id", "date", "direction", "amount", "description", "category", "source", "status"})
	for _, e := range items {
		_ = w.Write([]string{
			strconv.FormatInt(e.ID, 10),
			string(e.Party.Kind),
			strconv.FormatInt(e.Party.ID, 10),
			e.Date.Format(dateLayout),
			string(e.Direction),
			e.Amount.StringFixed(2),
			e.Description,
			e.Category,
			string(e.Source),
			string(e.Status),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportLedgerXLSX(items []domain.LedgerEntry) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Ledger"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Party Type", "Party ID", "Date", "Direction", "Amount", "Description", "Category", "Source", "Status"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for row, e := range items {
		values := []any{
			e.ID, string(e.Party.Kind), e.Party.ID, e.Date.Format(dateLayout),
			string(e.Direction), e.Amount.StringFixed(2), e.Description,
			e.Category, string(e.Source), string(e.Status),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheet, "A1", "J1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
