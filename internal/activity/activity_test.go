// internal/activity/activity_test.go
package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCreditsPointsOncePerEvent(t *testing.T) {
	s := NewService(nil)
	ctx := context.Background()

	entry, err := s.Record(ctx, "ERP-1001", "hackathon-24h")
	require.NoError(t, err)
	assert.Equal(t, 15, entry.Points)

	_, err = s.Record(ctx, "ERP-1001", "hackathon-24h")
	assert.ErrorIs(t, err, ErrAlreadyRecorded)

	// A different student can still attend the same event.
	_, err = s.Record(ctx, "ERP-2002", "hackathon-24h")
	assert.NoError(t, err)

	assert.Equal(t, 15, s.TotalPoints("ERP-1001"))
	t.Log("✅ Event credited once per student")
}

func TestRecordRejectsUnknownEvent(t *testing.T) {
	s := NewService(nil)

	_, err := s.Record(context.Background(), "ERP-1001", "llama-grooming")
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.Equal(t, 0, s.TotalPoints("ERP-1001"))
	t.Log("✅ Unknown event rejected")
}

func TestTotalPointsSumsAcrossEvents(t *testing.T) {
	s := NewService(nil)
	ctx := context.Background()

	for _, id := range []string{"tech-symposium", "blood-donation", "yoga-day"} {
		_, err := s.Record(ctx, "ERP-1001", id)
		require.NoError(t, err)
	}

	assert.Equal(t, 23, s.TotalPoints("ERP-1001"))
	assert.Len(t, s.EntriesByStudent("ERP-1001"), 3)
	t.Log("✅ Points summed across attended events")
}

func TestMonthlySeriesBucketsByMonth(t *testing.T) {
	s := NewService(nil)
	ctx := context.Background()

	// June has two events: paper presentation (12) and yoga day (5).
	for _, id := range []string{"paper-presentation", "yoga-day", "tech-symposium"} {
		_, err := s.Record(ctx, "ERP-1001", id)
		require.NoError(t, err)
	}

	series := s.MonthlySeries("ERP-1001", 2026)
	assert.Equal(t, 10, series[int(time.January)-1])
	assert.Equal(t, 17, series[int(time.June)-1])
	assert.Equal(t, 0, series[int(time.December)-1])

	empty := s.MonthlySeries("ERP-1001", 2025)
	assert.Equal(t, [12]int{}, empty)
	t.Log("✅ Monthly series bucketed points by event month")
}
