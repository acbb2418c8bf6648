// internal/payment/plan.go
package payment

import (
	"context"
	"sync"
	"time"

	"portalbackend/internal/receipt"
)

// Stage is one sequential, individually payable part of a multi-year fee.
type Stage struct {
	Number   int     `json:"number"`
	Label    string  `json:"label"`
	BaseCost float64 `json:"base_cost"`
	Paid     bool    `json:"paid"`
}

// DefaultStages returns the four-year admission fee schedule.
func DefaultStages() []Stage {
	return []Stage{
		{Number: 1, Label: "1st Year", BaseCost: 100000},
		{Number: 2, Label: "2nd Year", BaseCost: 120000},
		{Number: 3, Label: "3rd Year", BaseCost: 140000},
		{Number: 4, Label: "4th Year", BaseCost: 16000},
	}
}

// Plan gates which stage may be paid next and mints a receipt on payment.
// A stage unlocks only once every earlier stage is paid; the first stage is
// always eligible. Each session gets its own Plan.
type Plan struct {
	stages []Stage
	store  *receipt.Store
	now    func() time.Time
	mutex  sync.Mutex
}

func NewPlan(store *receipt.Store, stages []Stage) *Plan {
	owned := make([]Stage, len(stages))
	copy(owned, stages)
	return &Plan{
		stages: owned,
		store:  store,
		now:    time.Now,
	}
}

// SetClock overrides the receipt timestamp source for tests.
func (p *Plan) SetClock(now func() time.Time) {
	p.mutex.Lock()
	p.now = now
	p.mutex.Unlock()
}

// Stages returns a copy of the schedule with current paid flags.
func (p *Plan) Stages() []Stage {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// Completed reports whether every stage is paid.
func (p *Plan) Completed() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, s := range p.stages {
		if !s.Paid {
			return false
		}
	}
	return true
}

// RequestPayment checks whether the given stage may be paid right now.
func (p *Plan) RequestPayment(stage int) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.checkEligibleLocked(stage)
}

func (p *Plan) checkEligibleLocked(stage int) error {
	idx := -1
	for i, s := range p.stages {
		if s.Number == stage {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrUnknownStage
	}
	if p.stages[idx].Paid {
		return ErrAlreadyPaid
	}
	for _, s := range p.stages[:idx] {
		if !s.Paid {
			return ErrNotEligible
		}
	}
	return nil
}

// ConfirmPayment pays the given stage. The amount is the stage's base cost
// plus any extra charges the session carries, such as room and mess fees.
// On success it marks the stage paid and returns the minted receipt. The
// paid flag flips only after the receipt is safely in the store.
func (p *Plan) ConfirmPayment(ctx context.Context, stage int, method, studentID string, extras []receipt.Charge) (receipt.Receipt, error) {
	if method == "" {
		return receipt.Receipt{}, ErrMissingMethod
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.checkEligibleLocked(stage); err != nil {
		return receipt.Receipt{}, err
	}

	var idx int
	for i, s := range p.stages {
		if s.Number == stage {
			idx = i
			break
		}
	}

	total := p.stages[idx].BaseCost
	for _, c := range extras {
		total += c.Amount
	}

	r := receipt.Receipt{
		Context:   receipt.ContextAdmission,
		Stage:     stage,
		StudentID: studentID,
		Method:    method,
		Charges:   extras,
		Subtotal:  p.stages[idx].BaseCost,
		Total:     total,
		Details:   map[string]string{"stage_label": p.stages[idx].Label},
		CreatedAt: p.now(),
	}
	if err := appendWithFreshToken(ctx, p.store, &r); err != nil {
		return receipt.Receipt{}, err
	}

	p.stages[idx].Paid = true
	return r, nil
}

// SyncFromStore flips paid flags for stages the given student already holds
// a receipt for. Used after a restart so a reloaded receipt log and the
// stage gating agree; other students' receipts never count.
func (p *Plan) SyncFromStore(studentID string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for i := range p.stages {
		if _, ok := p.store.FindByStage(studentID, p.stages[i].Number); ok {
			p.stages[i].Paid = true
		}
	}
}
