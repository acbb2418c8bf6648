// internal/academics/syllabus.go
package academics

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"portalbackend/internal/logger"
)

// ErrUnknownSubject means no subject or unit with that id exists.
var ErrUnknownSubject = errors.New("unknown subject or unit")

// Unit is one syllabus unit with its covered flag.
type Unit struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Covered bool   `json:"covered"`
}

// Subject is one subject's syllabus.
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Units []Unit `json:"units"`
}

// UnitState is one persisted covered flag.
type UnitState struct {
	SubjectID string `json:"subject_id"`
	UnitID    string `json:"unit_id"`
	Covered   bool   `json:"covered"`
}

// SyllabusRepository persists covered flags. Implemented by the sqlite
// layer.
type SyllabusRepository interface {
	SaveUnitState(ctx context.Context, state UnitState) error
	LoadUnitStates(ctx context.Context) ([]UnitState, error)
}

// Tracker holds per-unit coverage for every subject and writes flag
// changes through to the repository.
type Tracker struct {
	subjects []Subject
	repo     SyllabusRepository
	mutex    sync.RWMutex
}

func NewTracker(repo SyllabusRepository) *Tracker {
	return &Tracker{
		subjects: defaultSyllabus(),
		repo:     repo,
	}
}

// Load applies persisted covered flags on top of the defaults. Unknown
// saved units are ignored; a load failure keeps everything uncovered.
func (t *Tracker) Load(ctx context.Context) {
	if t.repo == nil {
		return
	}

	states, err := t.repo.LoadUnitStates(ctx)
	if err != nil {
		logger.LogWarn("Could not load syllabus progress, starting fresh: %v", err)
		return
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()
	for _, st := range states {
		if unit := t.findLocked(st.SubjectID, st.UnitID); unit != nil {
			unit.Covered = st.Covered
		}
	}
	logger.LogInfo("Applied %d saved syllabus flags", len(states))
}

func (t *Tracker) findLocked(subjectID, unitID string) *Unit {
	for i := range t.subjects {
		if t.subjects[i].ID != subjectID {
			continue
		}
		for j := range t.subjects[i].Units {
			if t.subjects[i].Units[j].ID == unitID {
				return &t.subjects[i].Units[j]
			}
		}
	}
	return nil
}

// Subjects returns a deep copy of every subject with current flags.
func (t *Tracker) Subjects() []Subject {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	out := make([]Subject, len(t.subjects))
	for i, s := range t.subjects {
		units := make([]Unit, len(s.Units))
		copy(units, s.Units)
		out[i] = Subject{ID: s.ID, Name: s.Name, Units: units}
	}
	return out
}

// Toggle flips one unit's covered flag and returns the new value.
func (t *Tracker) Toggle(ctx context.Context, subjectID, unitID string) (bool, error) {
	t.mutex.Lock()
	unit := t.findLocked(subjectID, unitID)
	if unit == nil {
		t.mutex.Unlock()
		return false, fmt.Errorf("%w: %s/%s", ErrUnknownSubject, subjectID, unitID)
	}
	unit.Covered = !unit.Covered
	covered := unit.Covered
	t.mutex.Unlock()

	t.persist(ctx, UnitState{SubjectID: subjectID, UnitID: unitID, Covered: covered})
	return covered, nil
}

// SetAll marks every unit of a subject covered or uncovered at once.
func (t *Tracker) SetAll(ctx context.Context, subjectID string, covered bool) error {
	t.mutex.Lock()
	var states []UnitState
	found := false
	for i := range t.subjects {
		if t.subjects[i].ID != subjectID {
			continue
		}
		found = true
		for j := range t.subjects[i].Units {
			t.subjects[i].Units[j].Covered = covered
			states = append(states, UnitState{
				SubjectID: subjectID,
				UnitID:    t.subjects[i].Units[j].ID,
				Covered:   covered,
			})
		}
	}
	t.mutex.Unlock()

	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownSubject, subjectID)
	}
	for _, st := range states {
		t.persist(ctx, st)
	}
	return nil
}

func (t *Tracker) persist(ctx context.Context, state UnitState) {
	if t.repo == nil {
		return
	}
	if err := t.repo.SaveUnitState(ctx, state); err != nil {
		logger.LogError("Failed to persist syllabus flag %s/%s: %v", state.SubjectID, state.UnitID, err)
	}
}

// Coverage returns covered and total unit counts for one subject.
func (t *Tracker) Coverage(subjectID string) (covered, total int) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	for _, s := range t.subjects {
		if s.ID != subjectID {
			continue
		}
		for _, u := range s.Units {
			total++
			if u.Covered {
				covered++
			}
		}
	}
	return covered, total
}

func defaultSyllabus() []Subject {
	units := func(subjectID string, titles ...string) []Unit {
		out := make([]Unit, len(titles))
		for i, title := range titles {
			out[i] = Unit{ID: fmt.Sprintf("%s-u%d", subjectID, i+1), Title: title}
		}
		return out
	}
	return []Subject{
		{ID: "ds", Name: "Data Structures", Units: units("ds",
			"Arrays and Linked Lists", "Stacks and Queues", "Trees", "Graphs", "Hashing")},
		{ID: "os", Name: "Operating Systems", Units: units("os",
			"Processes and Threads", "CPU Scheduling", "Memory Management", "File Systems", "Deadlocks")},
		{ID: "dbms", Name: "Database Systems", Units: units("dbms",
			"Relational Model", "SQL", "Normalization", "Transactions", "Indexing")},
		{ID: "cn", Name: "Computer Networks", Units: units("cn",
			"Physical and Data Link Layers", "Network Layer", "Transport Layer", "Application Layer")},
	}
}
