// internal/export/export_test.go
package export

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalbackend/internal/receipt"
)

func cafeteriaReceipt() receipt.Receipt {
	return receipt.Receipt{
		Token:   "tok-cafe-1",
		Context: receipt.ContextCafeteria,
		Method:  "UPI",
		Lines: []receipt.Line{
			{ItemID: "idli-sambar", Name: "Idli Sambar", Quantity: 1, UnitPrice: 40, Amount: 40},
			{ItemID: "masala-dosa", Name: "Masala Dosa", Quantity: 2, UnitPrice: 60, Amount: 120},
		},
		Charges: []receipt.Charge{
			{Name: "Service Fee", Amount: 8},
			{Name: "GST", Amount: 8.4},
		},
		Subtotal:  160,
		Total:     176.4,
		CreatedAt: time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC),
	}
}

func TestRenderProducesPDF(t *testing.T) {
	rend := NewRenderer(t.TempDir())

	var buf bytes.Buffer
	require.NoError(t, rend.Render(&buf, cafeteriaReceipt()))

	assert.True(t, strings.HasPrefix(buf.String(), "%PDF"))
	assert.Greater(t, buf.Len(), 500)
	t.Log("✅ Receipt rendered as a PDF document")
}

func TestRenderToFileWritesUnderOutputDir(t *testing.T) {
	dir := t.TempDir()
	rend := NewRenderer(dir)

	adm := receipt.Receipt{
		Token:     "tok-adm-1",
		Context:   receipt.ContextAdmission,
		Stage:     1,
		StudentID: "ERP-1001",
		Method:    "NetBanking",
		Charges: []receipt.Charge{
			{Name: "Room (Single)", Amount: 8000},
			{Name: "Mess (Veg)", Amount: 2000},
		},
		Subtotal:  100000,
		Total:     110000,
		Details:   map[string]string{"stage_label": "1st Year"},
		CreatedAt: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
	}

	path, err := rend.RenderToFile(adm)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(500))
	assert.Contains(t, path, "receipt-tok-adm-1.pdf")
	t.Log("✅ Receipt PDF written to the export directory")
}
