// internal/payment/payment_test.go
package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalbackend/internal/catalog"
	"portalbackend/internal/ledger"
	"portalbackend/internal/receipt"
)

func newTestPlan() (*Plan, *receipt.Store) {
	store := receipt.NewStore(nil)
	plan := NewPlan(store, DefaultStages())
	plan.SetClock(func() time.Time {
		return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	})
	return plan, store
}

func TestStageEligibilityIsSequential(t *testing.T) {
	plan, _ := newTestPlan()
	ctx := context.Background()

	// Nothing paid yet: only stage 1 is reachable.
	assert.NoError(t, plan.RequestPayment(1))
	assert.ErrorIs(t, plan.RequestPayment(2), ErrNotEligible)
	assert.ErrorIs(t, plan.RequestPayment(4), ErrNotEligible)
	assert.ErrorIs(t, plan.RequestPayment(9), ErrUnknownStage)

	_, err := plan.ConfirmPayment(ctx, 1, "UPI", "ERP-1001", nil)
	require.NoError(t, err)
	_, err = plan.ConfirmPayment(ctx, 2, "Card", "ERP-1001", nil)
	require.NoError(t, err)

	assert.NoError(t, plan.RequestPayment(3))
	assert.ErrorIs(t, plan.RequestPayment(4), ErrNotEligible)
	t.Log("✅ Stages unlocked strictly in order")
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	plan, store := newTestPlan()
	ctx := context.Background()

	first, err := plan.ConfirmPayment(ctx, 1, "UPI", "ERP-1001", nil)
	require.NoError(t, err)

	_, err = plan.ConfirmPayment(ctx, 1, "UPI", "ERP-1001", nil)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	// Exactly one stage-1 receipt exists and stays fetchable.
	stage1 := 0
	for _, r := range store.All() {
		if r.Stage == 1 {
			stage1++
		}
	}
	assert.Equal(t, 1, stage1)

	got, ok := store.FindByStage("ERP-1001", 1)
	require.True(t, ok)
	assert.Equal(t, first.Token, got.Token)
	t.Log("✅ Second confirm rejected, original receipt still fetchable")
}

func TestConfirmPaymentIncludesExtraCharges(t *testing.T) {
	plan, _ := newTestPlan()

	extras := []receipt.Charge{
		{Name: "Room (Single)", Amount: 8000},
		{Name: "Mess (Veg)", Amount: 2000},
	}
	r, err := plan.ConfirmPayment(context.Background(), 1, "NetBanking", "ERP-1001", extras)
	require.NoError(t, err)

	assert.Equal(t, 100000.0, r.Subtotal)
	assert.Equal(t, 110000.0, r.Total)
	assert.Equal(t, receipt.ContextAdmission, r.Context)
	assert.Equal(t, "1st Year", r.Details["stage_label"])
	assert.NotEmpty(t, r.Token)
	t.Log("✅ Room and mess charges folded into the stage total")
}

func TestPlanReachesTerminalState(t *testing.T) {
	plan, _ := newTestPlan()
	ctx := context.Background()

	for _, s := range DefaultStages() {
		_, err := plan.ConfirmPayment(ctx, s.Number, "UPI", "ERP-1001", nil)
		require.NoError(t, err)
	}

	assert.True(t, plan.Completed())
	assert.ErrorIs(t, plan.RequestPayment(4), ErrAlreadyPaid)

	// Terminal but still queryable.
	stages := plan.Stages()
	require.Len(t, stages, 4)
	for _, s := range stages {
		assert.True(t, s.Paid)
	}
	t.Log("✅ Fully paid plan stayed queryable")
}

func TestSyncFromStoreRestoresPaidFlags(t *testing.T) {
	store := receipt.NewStore(nil)
	require.NoError(t, store.Append(context.Background(), receipt.Receipt{
		Token: "tok-y1", Context: receipt.ContextAdmission, Stage: 1,
		StudentID: "ERP-1001", Total: 100000,
	}))
	require.NoError(t, store.Append(context.Background(), receipt.Receipt{
		Token: "tok-y2", Context: receipt.ContextAdmission, Stage: 2,
		StudentID: "ERP-1001", Total: 120000,
	}))

	plan := NewPlan(store, DefaultStages())
	plan.SyncFromStore("ERP-1001")

	assert.ErrorIs(t, plan.RequestPayment(1), ErrAlreadyPaid)
	assert.NoError(t, plan.RequestPayment(3))
	t.Log("✅ Reloaded receipts re-armed the stage gating")
}

func TestSyncFromStoreIgnoresOtherStudents(t *testing.T) {
	store := receipt.NewStore(nil)
	require.NoError(t, store.Append(context.Background(), receipt.Receipt{
		Token: "tok-theirs", Context: receipt.ContextAdmission, Stage: 1,
		StudentID: "ERP-2002", Total: 100000,
	}))

	// A different student's paid stage 1 must not mark ours paid.
	plan := NewPlan(store, DefaultStages())
	plan.SyncFromStore("ERP-1001")

	assert.NoError(t, plan.RequestPayment(1))
	assert.ErrorIs(t, plan.RequestPayment(2), ErrNotEligible)
	t.Log("✅ Stage gating ignored receipts belonging to other students")
}

func TestCheckoutConfirm(t *testing.T) {
	cat := catalog.NewService()
	store := receipt.NewStore(nil)
	checkout := NewCheckout(cat, store, ledger.DefaultRules())
	checkout.SetClock(func() time.Time {
		return time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	})

	led := ledger.New(cat)
	base := time.Date(2026, 3, 10, 12, 59, 0, 0, time.UTC)
	led.SetClock(func() time.Time { return base })
	require.True(t, led.Add("idli-sambar", 1))
	next := base.Add(time.Second)
	led.SetClock(func() time.Time { return next })
	require.True(t, led.Add("masala-dosa", 2))

	r, err := checkout.Confirm(context.Background(), led, "UPI", "ERP-1001")
	require.NoError(t, err)

	assert.Equal(t, 160.0, r.Subtotal)
	assert.Equal(t, 176.4, r.Total)
	require.Len(t, r.Lines, 2)
	assert.Equal(t, "Idli Sambar", r.Lines[0].Name)
	assert.Equal(t, 40.0, r.Lines[0].UnitPrice)

	// Cart cleared only after the receipt landed.
	assert.Equal(t, 0, led.Len())
	assert.Equal(t, 1, store.Len())
	t.Log("✅ Checkout froze the cart into a receipt and cleared it")
}

func TestCheckoutRejectsEmptyCartAndMissingMethod(t *testing.T) {
	cat := catalog.NewService()
	checkout := NewCheckout(cat, receipt.NewStore(nil), ledger.DefaultRules())
	led := ledger.New(cat)

	_, err := checkout.Confirm(context.Background(), led, "UPI", "ERP-1001")
	assert.ErrorIs(t, err, ErrEmptyCart)

	require.True(t, led.Add("tea", 1))
	_, err = checkout.Confirm(context.Background(), led, "", "ERP-1001")
	assert.ErrorIs(t, err, ErrMissingMethod)
	assert.Equal(t, 1, led.Len())
	t.Log("✅ Bad checkouts rejected without touching the cart")
}

func TestFreshTokensAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok := freshToken()
		require.False(t, seen[tok], "token %s repeated", tok)
		seen[tok] = true
	}
	t.Log("✅ Minted tokens were unique")
}
