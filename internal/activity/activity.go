// internal/activity/activity.go
package activity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"portalbackend/internal/logger"
)

var (
	// ErrUnknownEvent means no event with that id exists.
	ErrUnknownEvent = errors.New("unknown activity event")
	// ErrAlreadyRecorded means the student already has points for the event.
	ErrAlreadyRecorded = errors.New("event already recorded for student")
)

// Event is one points-bearing activity a student can attend.
type Event struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Points   int       `json:"points"`
	HeldOn   time.Time `json:"held_on"`
}

// Entry is one student's credited attendance of an event.
type Entry struct {
	EntryID   string    `json:"entry_id"`
	StudentID string    `json:"student_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Points    int       `json:"points"`
	HeldOn    time.Time `json:"held_on"`
}

// Repository persists activity entries. Implemented by the sqlite layer.
type Repository interface {
	SaveEntry(ctx context.Context, e *Entry) error
	LoadEntries(ctx context.Context) ([]Entry, error)
}

// Service tracks activity-point credits per student against the event
// calendar.
type Service struct {
	events  []Event
	byID    map[string]int
	entries []Entry
	repo    Repository
	mutex   sync.RWMutex
}

func NewService(repo Repository) *Service {
	s := &Service{repo: repo}
	s.events = defaultEvents()
	s.byID = make(map[string]int, len(s.events))
	for i, e := range s.events {
		s.byID[e.ID] = i
	}
	return s
}

// Load pulls persisted entries. A failure starts with none.
func (s *Service) Load(ctx context.Context) {
	if s.repo == nil {
		return
	}

	saved, err := s.repo.LoadEntries(ctx)
	if err != nil {
		logger.LogWarn("Could not load saved activity entries, starting empty: %v", err)
		return
	}

	s.mutex.Lock()
	s.entries = saved
	s.mutex.Unlock()
	logger.LogInfo("Loaded %d activity entries", len(saved))
}

// Events returns the event calendar.
func (s *Service) Events() []Event {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Record credits a student for attending an event. Points per event are
// awarded at most once per student.
func (s *Service) Record(ctx context.Context, studentID, eventID string) (Entry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	i, ok := s.byID[eventID]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownEvent, eventID)
	}

	event := s.events[i]
	for _, e := range s.entries {
		if e.StudentID == studentID && e.Title == event.Title {
			return Entry{}, fmt.Errorf("%w: %s", ErrAlreadyRecorded, eventID)
		}
	}

	entry := Entry{
		EntryID:   uuid.NewString(),
		StudentID: studentID,
		Title:     event.Title,
		Category:  event.Category,
		Points:    event.Points,
		HeldOn:    event.HeldOn,
	}
	s.entries = append(s.entries, entry)

	if s.repo != nil {
		if err := s.repo.SaveEntry(ctx, &entry); err != nil {
			logger.LogError("Failed to persist activity entry %s: %v", entry.EntryID, err)
		}
	}
	return entry, nil
}

// EntriesByStudent returns a student's credits in recorded order.
func (s *Service) EntriesByStudent(studentID string) []Entry {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var out []Entry
	for _, e := range s.entries {
		if e.StudentID == studentID {
			out = append(out, e)
		}
	}
	return out
}

// TotalPoints sums a student's credited points.
func (s *Service) TotalPoints(studentID string) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := 0
	for _, e := range s.entries {
		if e.StudentID == studentID {
			total += e.Points
		}
	}
	return total
}

// MonthlySeries returns points per calendar month for one year, indexed
// January through December. Feeds the dashboard chart.
func (s *Service) MonthlySeries(studentID string, year int) [12]int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var series [12]int
	for _, e := range s.entries {
		if e.StudentID != studentID || e.HeldOn.Year() != year {
			continue
		}
		series[int(e.HeldOn.Month())-1] += e.Points
	}
	return series
}

func defaultEvents() []Event {
	day := func(m time.Month, d int) time.Time {
		return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
	}
	return []Event{
		{ID: "tech-symposium", Title: "National Tech Symposium", Category: "Technical", Points: 10, HeldOn: day(time.January, 22)},
		{ID: "blood-donation", Title: "Blood Donation Camp", Category: "Social", Points: 8, HeldOn: day(time.February, 14)},
		{ID: "hackathon-24h", Title: "24-Hour Hackathon", Category: "Technical", Points: 15, HeldOn: day(time.March, 7)},
		{ID: "nss-cleanup", Title: "NSS Campus Cleanup Drive", Category: "Social", Points: 10, HeldOn: day(time.April, 11)},
		{ID: "paper-presentation", Title: "Research Paper Presentation", Category: "Technical", Points: 12, HeldOn: day(time.June, 19)},
		{ID: "yoga-day", Title: "International Yoga Day Session", Category: "Sports", Points: 5, HeldOn: day(time.June, 21)},
		{ID: "cultural-fest", Title: "Annual Cultural Fest Volunteering", Category: "Cultural", Points: 10, HeldOn: day(time.September, 4)},
		{ID: "industry-visit", Title: "Industry Visit", Category: "Technical", Points: 8, HeldOn: day(time.November, 13)},
	}
}
