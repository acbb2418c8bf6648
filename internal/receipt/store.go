// internal/receipt/store.go
package receipt

import (
	"context"
	"errors"
	"sync"

	"portalbackend/internal/logger"
)

// ErrTokenExists signals a receipt token collision. Callers regenerate the
// token and retry; the existing receipt is never overwritten.
var ErrTokenExists = errors.New("receipt token already exists")

// Repository persists receipts behind the in-memory store. Implemented by
// the sqlite layer; a nil repository makes the store memory-only.
type Repository interface {
	SaveReceipt(ctx context.Context, r *Receipt) error
	LoadReceipts(ctx context.Context) ([]Receipt, error)
}

// Store is the append-only receipt log. All reads are served from memory;
// writes go through to the repository so receipts survive restarts.
type Store struct {
	receipts []Receipt
	byToken  map[string]int
	repo     Repository
	mutex    sync.RWMutex
}

func NewStore(repo Repository) *Store {
	return &Store{
		byToken: make(map[string]int),
		repo:    repo,
	}
}

// Load replaces the in-memory log with the persisted receipts. A load
// failure leaves the store empty rather than failing startup.
func (s *Store) Load(ctx context.Context) {
	if s.repo == nil {
		return
	}

	saved, err := s.repo.LoadReceipts(ctx)
	if err != nil {
		logger.LogWarn("Could not load saved receipts, starting empty: %v", err)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.receipts = saved
	s.byToken = make(map[string]int, len(saved))
	for i, r := range saved {
		s.byToken[r.Token] = i
	}
	logger.LogInfo("Loaded %d saved receipts", len(saved))
}

// Append adds a receipt to the log. Returns ErrTokenExists when the token
// is already taken. The in-memory append happens even when the repository
// write fails: the payment already succeeded and must stay visible.
func (s *Store) Append(ctx context.Context, r Receipt) error {
	s.mutex.Lock()
	if _, exists := s.byToken[r.Token]; exists {
		s.mutex.Unlock()
		return ErrTokenExists
	}
	s.byToken[r.Token] = len(s.receipts)
	s.receipts = append(s.receipts, r)
	s.mutex.Unlock()

	if s.repo != nil {
		if err := s.repo.SaveReceipt(ctx, &r); err != nil {
			logger.LogError("Failed to persist receipt %s: %v", r.Token, err)
		}
	}
	return nil
}

// FindByToken returns the receipt with the given token.
func (s *Store) FindByToken(token string) (Receipt, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	i, ok := s.byToken[token]
	if !ok {
		return Receipt{}, false
	}
	return s.receipts[i], true
}

// FindByStage returns the given student's admission receipt for the given
// year, if any. Receipts are re-downloadable, so this keeps working after
// payment. The student scope matters: the log holds every student's
// receipts, and one student's paid stage must not unlock anyone else's.
func (s *Store) FindByStage(studentID string, stage int) (Receipt, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, r := range s.receipts {
		if r.Context == ContextAdmission && r.Stage == stage && r.StudentID == studentID {
			return r, true
		}
	}
	return Receipt{}, false
}

// ByStudent returns every receipt for one student in append order.
func (s *Store) ByStudent(studentID string) []Receipt {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var out []Receipt
	for _, r := range s.receipts {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out
}

// All returns a copy of every receipt in append order.
func (s *Store) All() []Receipt {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}

// ByContext returns every receipt for one context in append order.
func (s *Store) ByContext(context string) []Receipt {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var out []Receipt
	for _, r := range s.receipts {
		if r.Context == context {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of stored receipts.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.receipts)
}
