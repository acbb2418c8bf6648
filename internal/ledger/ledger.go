// internal/ledger/ledger.go
package ledger

import (
	"sync"
	"time"

	"portalbackend/internal/catalog"
)

const defaultDebounceWindow = 400 * time.Millisecond

// CartLine is one selected catalog item with its quantity. A stored line
// always has Quantity >= 1; there is at most one line per item id.
type CartLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Ledger is the working set of selected items for one session. It is owned
// by the session that created it; nothing here is process-global.
type Ledger struct {
	catalog  *catalog.Service
	lines    []CartLine
	lastAdd  map[string]time.Time
	debounce time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

func New(cat *catalog.Service) *Ledger {
	return &Ledger{
		catalog:  cat,
		lastAdd:  make(map[string]time.Time),
		debounce: defaultDebounceWindow,
		now:      time.Now,
	}
}

// SetDebounce overrides the duplicate-add suppression window.
func (l *Ledger) SetDebounce(d time.Duration) {
	l.mu.Lock()
	l.debounce = d
	l.mu.Unlock()
}

// SetClock overrides the time source. Tests use this to step through the
// debounce window deterministically.
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

// Add puts qty units of itemID in the cart, merging into an existing line.
// Unknown items and non-positive quantities are rejected and a repeated Add
// for the same item inside the debounce window is swallowed as a duplicate
// UI event. Returns true when the cart changed.
func (l *Ledger) Add(itemID string, qty int) bool {
	if qty < 1 {
		return false
	}
	if !l.catalog.Validate(itemID) {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.lastAdd[itemID]; ok && now.Sub(last) < l.debounce {
		return false
	}
	l.lastAdd[itemID] = now

	for i := range l.lines {
		if l.lines[i].ItemID == itemID {
			l.lines[i].Quantity += qty
			return true
		}
	}
	l.lines = append(l.lines, CartLine{ItemID: itemID, Quantity: qty})
	return true
}

// Remove drops the line for itemID. Removing an absent line is a no-op.
func (l *Ledger) Remove(itemID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeLocked(itemID)
}

func (l *Ledger) removeLocked(itemID string) {
	for i := range l.lines {
		if l.lines[i].ItemID == itemID {
			l.lines = append(l.lines[:i], l.lines[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the quantity of an existing line. qty <= 0 removes the
// line; a missing line is left alone rather than created.
func (l *Ledger) SetQuantity(itemID string, qty int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if qty <= 0 {
		l.removeLocked(itemID)
		return
	}
	for i := range l.lines {
		if l.lines[i].ItemID == itemID {
			l.lines[i].Quantity = qty
			return
		}
	}
}

// Clear empties the cart. Called after a successful payment.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
	l.lastAdd = make(map[string]time.Time)
}

// Lines returns a copy of the current cart lines in insertion order.
func (l *Ledger) Lines() []CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]CartLine, len(l.lines))
	copy(out, l.lines)
	return out
}

// Len returns the number of distinct lines in the cart.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

// Restore replaces the cart contents with previously persisted lines,
// dropping anything the current catalog does not know about and merging
// lines that repeat an item id so the one-line-per-item invariant holds for
// restored carts too. Used for the one-shot load at session start; a bad
// saved cart degrades to empty.
func (l *Ledger) Restore(lines []CartLine) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = nil
	for _, line := range lines {
		if line.Quantity < 1 || !l.catalog.Validate(line.ItemID) {
			continue
		}
		merged := false
		for i := range l.lines {
			if l.lines[i].ItemID == line.ItemID {
				l.lines[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			l.lines = append(l.lines, line)
		}
	}
}
