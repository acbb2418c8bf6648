// internal/session/session_test.go
package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalbackend/internal/catalog"
	"portalbackend/internal/hostel"
	"portalbackend/internal/ledger"
	"portalbackend/internal/receipt"
)

// memoryCarts is an in-memory CartStore for tests.
type memoryCarts struct {
	saved map[string][]ledger.CartLine
}

func newMemoryCarts() *memoryCarts {
	return &memoryCarts{saved: make(map[string][]ledger.CartLine)}
}

func (m *memoryCarts) SaveCart(_ context.Context, key string, lines []ledger.CartLine) error {
	m.saved[key] = append([]ledger.CartLine(nil), lines...)
	return nil
}

func (m *memoryCarts) LoadCart(_ context.Context, key string) ([]ledger.CartLine, error) {
	return m.saved[key], nil
}

func newTestManager() (*Manager, *memoryCarts) {
	carts := newMemoryCarts()
	return NewManager(catalog.NewService(), receipt.NewStore(nil), carts), carts
}

func TestCreateAndResolveSession(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	sess, err := m.Create(ctx, "ERP-1001")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.NotNil(t, sess.Ledger)
	assert.NotNil(t, sess.Plan)

	got, err := m.Get(sess.Token)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = m.Get("no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
	t.Log("✅ Sessions issued and resolved by token")
}

func TestSessionRestoresSavedCart(t *testing.T) {
	m, carts := newTestManager()
	ctx := context.Background()

	carts.saved["ERP-1001"] = []ledger.CartLine{
		{ItemID: "tea", Quantity: 2},
		{ItemID: "not-on-menu", Quantity: 1},
	}

	sess, err := m.Create(ctx, "ERP-1001")
	require.NoError(t, err)

	lines := sess.Ledger.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "tea", lines[0].ItemID)
	t.Log("✅ Saved cart restored, stale items dropped")
}

func TestSaveCartWritesThrough(t *testing.T) {
	m, carts := newTestManager()
	ctx := context.Background()

	sess, err := m.Create(ctx, "ERP-1001")
	require.NoError(t, err)
	require.True(t, sess.Ledger.Add("samosa", 3))

	m.SaveCart(ctx, sess)
	require.Len(t, carts.saved["ERP-1001"], 1)
	assert.Equal(t, 3, carts.saved["ERP-1001"][0].Quantity)
	t.Log("✅ Cart snapshot written through on save")
}

func TestEndDropsSession(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	sess, err := m.Create(ctx, "ERP-1001")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())

	m.End(sess.Token)
	assert.Equal(t, 0, m.Count())
	_, err = m.Get(sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
	t.Log("✅ Ended session no longer resolvable")
}

func TestHostelSelectionOnSession(t *testing.T) {
	m, _ := newTestManager()
	sess, err := m.Create(context.Background(), "ERP-1001")
	require.NoError(t, err)

	_, has := sess.HostelSelection()
	assert.False(t, has)

	sess.SetHostel(hostel.Selection{RoomID: "a-101", RoomType: "Single", MessPlan: "Veg"})
	sel, has := sess.HostelSelection()
	require.True(t, has)
	assert.Equal(t, "Single", sel.RoomType)
	t.Log("✅ Hostel selection carried on the session")
}
