// internal/academics/academics_test.go
package academics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendancePercent(t *testing.T) {
	a := SubjectAttendance{Subject: "Data Structures", Attended: 38, Held: 42}
	assert.Equal(t, 90.48, a.Percent())

	zero := SubjectAttendance{Subject: "Elective", Attended: 0, Held: 0}
	assert.Equal(t, 0.0, zero.Percent())
	t.Log("✅ Per-subject attendance percentages computed")
}

func TestOverallPercentWeightsByClassCount(t *testing.T) {
	subjects := []SubjectAttendance{
		{Attended: 10, Held: 10},
		{Attended: 0, Held: 30},
	}
	// Weighted: 10/40 = 25%, not the 50% a naive average would give.
	assert.Equal(t, 25.0, OverallPercent(subjects))
	assert.Equal(t, 0.0, OverallPercent(nil))
	t.Log("✅ Overall attendance weighted by classes held")
}

func TestBuildMonthGrid(t *testing.T) {
	// February 2026 starts on a Sunday: no leading blanks, 28 days.
	feb := BuildMonthGrid(2026, time.February)
	assert.Equal(t, 0, feb.LeadingBlanks)
	assert.Equal(t, 28, feb.DaysInMonth)
	require.Len(t, feb.Cells, 28)
	assert.Equal(t, 1, feb.Cells[0])
	assert.Equal(t, 28, feb.Cells[27])

	// August 2026 starts on a Saturday: six blanks before day 1.
	aug := BuildMonthGrid(2026, time.August)
	assert.Equal(t, 6, aug.LeadingBlanks)
	assert.Equal(t, 31, aug.DaysInMonth)
	require.Len(t, aug.Cells, 37)
	assert.Equal(t, 0, aug.Cells[5])
	assert.Equal(t, 1, aug.Cells[6])

	// Leap year February.
	leap := BuildMonthGrid(2028, time.February)
	assert.Equal(t, 29, leap.DaysInMonth)
	t.Log("✅ Calendar grids laid out with correct leading blanks")
}

type fakeSyllabusRepo struct {
	saved  []UnitState
	loaded []UnitState
}

func (f *fakeSyllabusRepo) SaveUnitState(_ context.Context, state UnitState) error {
	f.saved = append(f.saved, state)
	return nil
}

func (f *fakeSyllabusRepo) LoadUnitStates(_ context.Context) ([]UnitState, error) {
	return f.loaded, nil
}

func TestToggleFlipsAndPersists(t *testing.T) {
	repo := &fakeSyllabusRepo{}
	tracker := NewTracker(repo)
	ctx := context.Background()

	covered, err := tracker.Toggle(ctx, "ds", "ds-u1")
	require.NoError(t, err)
	assert.True(t, covered)

	covered, err = tracker.Toggle(ctx, "ds", "ds-u1")
	require.NoError(t, err)
	assert.False(t, covered)

	require.Len(t, repo.saved, 2)
	assert.True(t, repo.saved[0].Covered)
	assert.False(t, repo.saved[1].Covered)

	_, err = tracker.Toggle(ctx, "ds", "ds-u99")
	assert.ErrorIs(t, err, ErrUnknownSubject)
	t.Log("✅ Toggle flipped the flag and wrote each change through")
}

func TestSetAllAndCoverage(t *testing.T) {
	tracker := NewTracker(nil)
	ctx := context.Background()

	require.NoError(t, tracker.SetAll(ctx, "os", true))
	covered, total := tracker.Coverage("os")
	assert.Equal(t, total, covered)
	assert.Equal(t, 5, total)

	require.NoError(t, tracker.SetAll(ctx, "os", false))
	covered, _ = tracker.Coverage("os")
	assert.Equal(t, 0, covered)

	assert.ErrorIs(t, tracker.SetAll(ctx, "basket-weaving", true), ErrUnknownSubject)
	t.Log("✅ Mark-all and clear-all swept a whole subject")
}

func TestLoadAppliesSavedFlags(t *testing.T) {
	repo := &fakeSyllabusRepo{loaded: []UnitState{
		{SubjectID: "dbms", UnitID: "dbms-u2", Covered: true},
		{SubjectID: "ghost", UnitID: "ghost-u1", Covered: true},
	}}
	tracker := NewTracker(repo)
	tracker.Load(context.Background())

	covered, _ := tracker.Coverage("dbms")
	assert.Equal(t, 1, covered)
	t.Log("✅ Saved flags restored, unknown ones ignored")
}
