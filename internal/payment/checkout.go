// internal/payment/checkout.go
package payment

import (
	"context"
	"sync"
	"time"

	"portalbackend/internal/catalog"
	"portalbackend/internal/ledger"
	"portalbackend/internal/receipt"
)

// Checkout turns a cart into a cafeteria receipt in a single step. It
// freezes names and prices at confirmation time so later catalog edits
// never change an issued receipt.
type Checkout struct {
	catalog *catalog.Service
	store   *receipt.Store
	rules   []ledger.SurchargeRule
	now     func() time.Time
	mutex   sync.Mutex
}

func NewCheckout(cat *catalog.Service, store *receipt.Store, rules []ledger.SurchargeRule) *Checkout {
	return &Checkout{
		catalog: cat,
		store:   store,
		rules:   rules,
		now:     time.Now,
	}
}

// SetClock overrides the receipt timestamp source for tests.
func (c *Checkout) SetClock(now func() time.Time) {
	c.mutex.Lock()
	c.now = now
	c.mutex.Unlock()
}

// Rules returns the surcharge cascade this checkout applies.
func (c *Checkout) Rules() []ledger.SurchargeRule {
	out := make([]ledger.SurchargeRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Confirm pays for the current cart. The cart is cleared only after the
// receipt is safely appended, so a store failure leaves it intact for a
// retry.
func (c *Checkout) Confirm(ctx context.Context, led *ledger.Ledger, method, studentID string) (receipt.Receipt, error) {
	if method == "" {
		return receipt.Receipt{}, ErrMissingMethod
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	lines := led.Lines()
	if len(lines) == 0 {
		return receipt.Receipt{}, ErrEmptyCart
	}

	// Mint time is where money freezes to two decimals; until here the
	// breakdown carries full precision.
	totals := led.ComputeTotals(c.rules).Rounded()

	frozen := make([]receipt.Line, 0, len(lines))
	for _, line := range lines {
		item, ok := c.catalog.Item(line.ItemID)
		if !ok {
			continue
		}
		frozen = append(frozen, receipt.Line{
			ItemID:    line.ItemID,
			Name:      item.Name,
			Quantity:  line.Quantity,
			UnitPrice: item.UnitPrice,
			Amount:    item.UnitPrice * float64(line.Quantity),
		})
	}

	charges := make([]receipt.Charge, 0, len(totals.Charges))
	for _, ch := range totals.Charges {
		charges = append(charges, receipt.Charge{Name: ch.Name, Amount: ch.Amount})
	}

	r := receipt.Receipt{
		Context:   receipt.ContextCafeteria,
		StudentID: studentID,
		Method:    method,
		Lines:     frozen,
		Charges:   charges,
		Subtotal:  totals.Subtotal,
		Total:     totals.Total,
		CreatedAt: c.now(),
	}
	if err := appendWithFreshToken(ctx, c.store, &r); err != nil {
		return receipt.Receipt{}, err
	}

	led.Clear()
	return r, nil
}
