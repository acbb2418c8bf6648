// internal/export/export.go
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"

	"portalbackend/internal/receipt"
)

// Renderer turns finalized receipts into PDF documents. Rendering happens
// strictly after a receipt is appended to the store; a render failure is
// reported to the caller and never touches committed receipt state.
type Renderer struct {
	outputDir string
}

func NewRenderer(outputDir string) *Renderer {
	return &Renderer{outputDir: outputDir}
}

// Render writes the receipt PDF to w.
func (rend *Renderer) Render(w io.Writer, r receipt.Receipt) error {
	pdf := buildReceiptPDF(r)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render receipt %s: %w", r.Token, err)
	}
	return nil
}

// RenderToFile writes the receipt PDF under the renderer's output
// directory and returns the file path.
func (rend *Renderer) RenderToFile(r receipt.Receipt) (string, error) {
	if err := os.MkdirAll(rend.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(rend.outputDir, fmt.Sprintf("receipt-%s.pdf", r.Token))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create receipt file: %w", err)
	}
	defer f.Close()

	if err := rend.Render(f, r); err != nil {
		return "", err
	}
	return path, nil
}

func buildReceiptPDF(r receipt.Receipt) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title(r))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Receipt No: %s", r.Token))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", r.CreatedAt.Format("02 Jan 2006 15:04")))
	pdf.Ln(6)
	if r.StudentID != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Student: %s", r.StudentID))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Payment Method: %s", r.Method))
	pdf.Ln(10)

	if len(r.Lines) > 0 {
		writeLineTable(pdf, r.Lines)
	}
	if r.Context == receipt.ContextAdmission {
		writeAmountRow(pdf, r.Details["stage_label"]+" Fee", r.Subtotal, false)
	}
	for _, c := range r.Charges {
		writeAmountRow(pdf, c.Name, c.Amount, false)
	}
	writeAmountRow(pdf, "Total", r.Total, true)

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "This is a computer-generated receipt.")
	return pdf
}

func title(r receipt.Receipt) string {
	switch r.Context {
	case receipt.ContextAdmission:
		return "Admission Fee Receipt"
	case receipt.ContextCafeteria:
		return "Cafeteria Receipt"
	default:
		return "Payment Receipt"
	}
}

func writeLineTable(pdf *gofpdf.Fpdf, lines []receipt.Line) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(80, 7, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 7, "Rate", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range lines {
		pdf.CellFormat(80, 7, line.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", line.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, money(line.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, money(line.Amount), "1", 1, "R", false, 0, "")
	}
}

func writeAmountRow(pdf *gofpdf.Fpdf, label string, amount float64, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 10)
	pdf.CellFormat(140, 7, label, "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, money(amount), "1", 1, "R", false, 0, "")
}

func money(v float64) string {
	return "Rs. " + humanize.CommafWithDigits(v, 2)
}
