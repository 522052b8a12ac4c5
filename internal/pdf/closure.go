// Package pdf renders day-closure summary documents.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"salonops-backend/internal/domain"
)

// ClosureRenderer produces a fixed-layout PDF for a closure snapshot. The
// output depends only on the closure row, so the same closure always renders
// to the same bytes; the creation date is pinned to closed_at for that
// reason.
type ClosureRenderer struct{}

func (ClosureRenderer) Render(c domain.DayClosure) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(c.ClosedAt.UTC())
	doc.SetTitle(fmt.Sprintf("Day Closure #%d", c.ID), false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.Cell(0, 12, fmt.Sprintf("Day Closure #%d", c.ID))
	doc.Ln(14)

	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, 7, fmt.Sprintf("Branch: %d", c.BranchID))
	doc.Ln(7)
	doc.Cell(0, 7, fmt.Sprintf("Date: %s", c.Date.Format("2006-01-02")))
	doc.Ln(7)
	doc.Cell(0, 7, fmt.Sprintf("Closed at: %s", c.ClosedAt.UTC().Format("2006-01-02 15:04")))
	doc.Ln(11)

	rows := []struct {
		label string
		value string
	}{
		{"Total sales", c.TotalSales.StringFixed(2)},
		{"Total cash", c.TotalCash.StringFixed(2)},
		{"Total expense", c.TotalExpense.StringFixed(2)},
		{"Total net", c.TotalNet.StringFixed(2)},
		{"Total commission", c.TotalCommission.StringFixed(2)},
		{"Total bonus", c.TotalBonus.StringFixed(2)},
		{"Entries", fmt.Sprintf("%d", c.EntriesCount)},
		{"Employees", fmt.Sprintf("%d", c.EmployeesCount)},
	}
	doc.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		doc.CellFormat(60, 8, row.label, "1", 0, "L", false, 0, "")
		doc.CellFormat(60, 8, row.value, "1", 1, "R", false, 0, "")
	}

	if c.Notes != "" {
		doc.Ln(6)
		doc.SetFont("Helvetica", "I", 10)
		doc.MultiCell(0, 6, "Notes: "+c.Notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render closure pdf: %w", err)
	}
	return buf.Bytes(), nil
}
