// internal/hostel/hostel_test.go
package hostel

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateTakesRoomOutOfPool(t *testing.T) {
	s := NewService()

	sel, err := s.Allocate("a-101", "Veg")
	require.NoError(t, err)
	assert.Equal(t, "Single", sel.RoomType)

	_, err = s.Allocate("a-101", "Veg")
	assert.ErrorIs(t, err, ErrRoomTaken)

	s.Release("a-101")
	_, err = s.Allocate("a-101", "Non-Veg")
	assert.NoError(t, err)
	t.Log("✅ Allocation and release cycled a room correctly")
}

func TestAllocateRejectsUnknownRoomAndPlan(t *testing.T) {
	s := NewService()

	_, err := s.Allocate("z-999", "Veg")
	assert.ErrorIs(t, err, ErrRoomTaken)

	_, err = s.Allocate("a-101", "Jain Special")
	assert.ErrorIs(t, err, ErrUnknownPlan)
	t.Log("✅ Bad room ids and mess plans rejected")
}

func TestChargesMatchRoomAndMessRates(t *testing.T) {
	s := NewService()

	sel, err := s.Allocate("b-201", "Non-Veg")
	require.NoError(t, err)

	charges, err := s.Charges(sel)
	require.NoError(t, err)
	require.Len(t, charges, 2)
	assert.Equal(t, "Room (Double)", charges[0].Name)
	assert.Equal(t, 5000.0, charges[0].Amount)
	assert.Equal(t, "Mess (Non-Veg)", charges[1].Name)
	assert.Equal(t, 3000.0, charges[1].Amount)
	t.Log("✅ Selection priced from the charge tables")
}

func TestLoadFromFileKeepsDefaultsOnBadData(t *testing.T) {
	s := NewService()
	before := len(s.Rooms())

	dir := t.TempDir()
	bad := filepath.Join(dir, "rooms.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json at all"), 0o644))

	require.NoError(t, s.LoadFromFile(bad))
	assert.Len(t, s.Rooms(), before)

	require.NoError(t, s.LoadFromFile(filepath.Join(dir, "missing.json")))
	assert.Len(t, s.Rooms(), before)
	t.Log("✅ Bad rooms file fell back to defaults")
}

func TestLoadFromFileReplacesInventory(t *testing.T) {
	s := NewService()

	rooms := []Room{
		{ID: "d-401", Block: "D", Number: "401", Type: "Single", Available: true},
		{ID: "d-402", Block: "D", Number: "402", Type: "Dormitory", Available: false},
	}
	raw, err := json.Marshal(rooms)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rooms.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	require.NoError(t, s.LoadFromFile(path))
	got := s.Rooms()
	require.Len(t, got, 2)
	assert.Equal(t, "d-401", got[0].ID)

	// The already-taken room from the file cannot be allocated.
	_, err = s.Allocate("d-402", "Veg")
	assert.ErrorIs(t, err, ErrRoomTaken)
	t.Log("✅ Valid rooms file replaced the inventory")
}
