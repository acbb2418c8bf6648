// internal/session/session.go
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"portalbackend/internal/catalog"
	"portalbackend/internal/hostel"
	"portalbackend/internal/ledger"
	"portalbackend/internal/logger"
	"portalbackend/internal/payment"
	"portalbackend/internal/receipt"
	"portalbackend/internal/security"
)

// ErrNotFound means no session exists for the presented token.
var ErrNotFound = errors.New("session not found")

// CartStore persists a session's cart between visits. Implemented by the
// sqlite layer.
type CartStore interface {
	SaveCart(ctx context.Context, key string, lines []ledger.CartLine) error
	LoadCart(ctx context.Context, key string) ([]ledger.CartLine, error)
}

// Session is one student's working state: their cart, their admission fee
// plan and their hostel selection. All mutable flow state lives here, not
// in package globals.
type Session struct {
	Token     string
	StudentID string
	Ledger    *ledger.Ledger
	Plan      *payment.Plan
	Hostel    *hostel.Selection
	CreatedAt time.Time

	mu sync.Mutex
}

// SetHostel records the session's room and mess choice.
func (s *Session) SetHostel(sel hostel.Selection) {
	s.mu.Lock()
	s.Hostel = &sel
	s.mu.Unlock()
}

// HostelSelection returns the current choice, if any.
func (s *Session) HostelSelection() (hostel.Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Hostel == nil {
		return hostel.Selection{}, false
	}
	return *s.Hostel, true
}

// Manager issues and resolves sessions by access token.
type Manager struct {
	catalog  *catalog.Service
	receipts *receipt.Store
	carts    CartStore
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager(cat *catalog.Service, receipts *receipt.Store, carts CartStore) *Manager {
	return &Manager{
		catalog:  cat,
		receipts: receipts,
		carts:    carts,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session for a student: mints an access token, builds a
// fresh ledger and fee plan, restores any saved cart and syncs the plan
// against receipts already in the store.
func (m *Manager) Create(ctx context.Context, studentID string) (*Session, error) {
	token, err := security.GenerateAccessToken()
	if err != nil {
		return nil, err
	}
	security.StoreAccessToken(token, studentID)

	led := ledger.New(m.catalog)
	if m.carts != nil && studentID != "" {
		saved, err := m.carts.LoadCart(ctx, studentID)
		if err != nil {
			logger.LogWarn("Could not load saved cart for %s: %v", studentID, err)
		} else if len(saved) > 0 {
			led.Restore(saved)
			logger.LogInfo("Restored %d saved cart lines for %s", len(saved), studentID)
		}
	}

	plan := payment.NewPlan(m.receipts, payment.DefaultStages())
	plan.SyncFromStore(studentID)

	sess := &Session{
		Token:     token,
		StudentID: studentID,
		Ledger:    led,
		Plan:      plan,
		CreatedAt: time.Now(),
	}

	m.mutex.Lock()
	m.sessions[token] = sess
	m.mutex.Unlock()

	return sess, nil
}

// Get resolves a token to its session.
func (m *Manager) Get(token string) (*Session, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	sess, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// SaveCart snapshots the session's cart for its student.
func (m *Manager) SaveCart(ctx context.Context, sess *Session) {
	if m.carts == nil || sess.StudentID == "" {
		return
	}
	if err := m.carts.SaveCart(ctx, sess.StudentID, sess.Ledger.Lines()); err != nil {
		logger.LogWarn("Could not save cart for %s: %v", sess.StudentID, err)
	}
}

// End drops a session and revokes its token.
func (m *Manager) End(token string) {
	m.mutex.Lock()
	delete(m.sessions, token)
	m.mutex.Unlock()
	security.RevokeAccessToken(token)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
