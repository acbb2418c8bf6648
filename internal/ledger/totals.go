// internal/ledger/totals.go
package ledger

import "math"

// SurchargeRule is one percentage charge applied on top of the subtotal.
// Non-compound rules take Rate of the raw subtotal; a Compound rule takes
// Rate of the running total including every charge computed before it.
// Rules are applied in slice order.
type SurchargeRule struct {
	Name     string  `json:"name"`
	Rate     float64 `json:"rate"`
	Compound bool    `json:"compound"`
}

// Charge is one computed surcharge amount on a totals breakdown.
type Charge struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Totals is a full price breakdown for a cart.
type Totals struct {
	Subtotal float64  `json:"subtotal"`
	Charges  []Charge `json:"charges"`
	Total    float64  `json:"total"`
}

// DefaultRules returns the cafeteria charge cascade: a 5% service fee on
// the subtotal, then 5% GST on subtotal plus service fee.
func DefaultRules() []SurchargeRule {
	return []SurchargeRule{
		{Name: "Service Fee", Rate: 0.05},
		{Name: "GST", Rate: 0.05, Compound: true},
	}
}

// ComputeTotals prices the cart against the catalog and applies the given
// surcharge rules in order. It reads the cart under lock but is otherwise
// pure: no state changes, same cart and rules give the same breakdown.
// Lines whose item has left the catalog contribute nothing. Amounts keep
// full precision; rounding happens only at the display and receipt
// boundaries via Rounded.
func (l *Ledger) ComputeTotals(rules []SurchargeRule) Totals {
	lines := l.Lines()

	var subtotal float64
	for _, line := range lines {
		price, ok := l.catalog.Price(line.ItemID)
		if !ok {
			continue
		}
		subtotal += price * float64(line.Quantity)
	}

	totals := Totals{Subtotal: subtotal}
	running := subtotal
	for _, rule := range rules {
		base := subtotal
		if rule.Compound {
			base = running
		}
		amount := base * rule.Rate
		running += amount
		totals.Charges = append(totals.Charges, Charge{Name: rule.Name, Amount: amount})
	}
	totals.Total = running
	return totals
}

// Rounded returns a copy of the breakdown with every amount rounded to two
// decimals. Used when a receipt freezes the totals and when they are shown
// to the student.
func (t Totals) Rounded() Totals {
	out := Totals{Subtotal: round2(t.Subtotal), Total: round2(t.Total)}
	for _, c := range t.Charges {
		out.Charges = append(out.Charges, Charge{Name: c.Name, Amount: round2(c.Amount)})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
