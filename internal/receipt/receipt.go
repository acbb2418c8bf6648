// internal/receipt/receipt.go
package receipt

import (
	"time"
)

// Receipt contexts. Cafeteria receipts come from a cart checkout; admission
// receipts come from a staged fee payment and carry the year in Stage.
const (
	ContextCafeteria = "cafeteria"
	ContextAdmission = "admission"
)

// Line is one priced item on a receipt, frozen at payment time.
type Line struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Amount    float64 `json:"amount"`
}

// Charge is one surcharge amount on a receipt.
type Charge struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Receipt is an immutable record of a completed payment. Once appended to
// the store it is never modified.
type Receipt struct {
	Token     string            `json:"token"`
	Context   string            `json:"context"`
	Stage     int               `json:"stage,omitempty"`
	StudentID string            `json:"student_id,omitempty"`
	Method    string            `json:"method"`
	Lines     []Line            `json:"lines,omitempty"`
	Charges   []Charge          `json:"charges,omitempty"`
	Subtotal  float64           `json:"subtotal"`
	Total     float64           `json:"total"`
	Details   map[string]string `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
