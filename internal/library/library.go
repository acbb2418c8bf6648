// internal/library/library.go
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"portalbackend/internal/logger"
)

const (
	maxBooksPerReservation = 2
	loanPeriod             = 7 * 24 * time.Hour
)

var (
	// ErrBookUnavailable means a requested book is unknown or already
	// reserved by someone else.
	ErrBookUnavailable = errors.New("book is not available")
)

// Book is one title in the library catalog.
type Book struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Available bool   `json:"available"`
}

// Request is a reservation form as it arrives from the portal. Validation
// happens here at the boundary; everything past this point trusts the data.
type Request struct {
	ERPID        string   `json:"erp_id" validate:"required"`
	StudentName  string   `json:"student_name" validate:"required"`
	CourseYear   string   `json:"course_year" validate:"required"`
	BookIDs      []string `json:"book_ids" validate:"required,min=1,max=2,unique"`
	Acknowledged bool     `json:"acknowledged" validate:"required"`
}

// Reservation is a confirmed book hold with its return deadline.
type Reservation struct {
	ID          string    `json:"id"`
	ERPID       string    `json:"erp_id"`
	StudentName string    `json:"student_name"`
	CourseYear  string    `json:"course_year"`
	BookIDs     []string  `json:"book_ids"`
	ReservedAt  time.Time `json:"reserved_at"`
	DueAt       time.Time `json:"due_at"`
}

// Repository persists reservations. Implemented by the sqlite layer.
type Repository interface {
	SaveReservation(ctx context.Context, res *Reservation) error
	LoadReservations(ctx context.Context) ([]Reservation, error)
}

// Service holds the book catalog and takes reservations against it.
type Service struct {
	books        []Book
	byID         map[string]int
	reservations []Reservation
	repo         Repository
	validate     *validator.Validate
	now          func() time.Time
	mutex        sync.RWMutex
}

func NewService(repo Repository) *Service {
	s := &Service{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
	}
	s.setBooks(defaultBooks())
	return s
}

// SetClock overrides the reservation timestamp source for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.mutex.Lock()
	s.now = now
	s.mutex.Unlock()
}

func (s *Service) setBooks(books []Book) {
	s.books = books
	s.byID = make(map[string]int, len(books))
	for i, b := range books {
		s.byID[b.ID] = i
	}
}

// Load pulls saved reservations and marks their books as taken. A load
// failure starts with an empty reservation list.
func (s *Service) Load(ctx context.Context) {
	if s.repo == nil {
		return
	}

	saved, err := s.repo.LoadReservations(ctx)
	if err != nil {
		logger.LogWarn("Could not load saved reservations, starting empty: %v", err)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.reservations = saved
	for _, res := range saved {
		for _, id := range res.BookIDs {
			if i, ok := s.byID[id]; ok {
				s.books[i].Available = false
			}
		}
	}
	logger.LogInfo("Loaded %d saved reservations", len(saved))
}

// Books returns the full catalog.
func (s *Service) Books() []Book {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out
}

// Search matches the query against title and author, case-insensitive,
// optionally narrowed to one category. An empty query matches everything.
func (s *Service) Search(query, category string) []Book {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var out []Book
	for _, b := range s.books {
		if category != "" && !strings.EqualFold(b.Category, category) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(b.Title), q) &&
			!strings.Contains(strings.ToLower(b.Author), q) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Reserve validates the request and places a hold on the requested books.
// The return deadline is one week out. Books become unavailable until the
// reservation is cleared externally.
func (s *Service) Reserve(ctx context.Context, req Request) (Reservation, error) {
	if err := s.validate.Struct(req); err != nil {
		return Reservation{}, fmt.Errorf("invalid reservation request: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, id := range req.BookIDs {
		i, ok := s.byID[id]
		if !ok || !s.books[i].Available {
			return Reservation{}, fmt.Errorf("%w: %s", ErrBookUnavailable, id)
		}
	}

	now := s.now()
	res := Reservation{
		ID:          uuid.NewString(),
		ERPID:       req.ERPID,
		StudentName: req.StudentName,
		CourseYear:  req.CourseYear,
		BookIDs:     append([]string(nil), req.BookIDs...),
		ReservedAt:  now,
		DueAt:       now.Add(loanPeriod),
	}

	for _, id := range req.BookIDs {
		s.books[s.byID[id]].Available = false
	}
	s.reservations = append(s.reservations, res)

	if s.repo != nil {
		if err := s.repo.SaveReservation(ctx, &res); err != nil {
			logger.LogError("Failed to persist reservation %s: %v", res.ID, err)
		}
	}
	return res, nil
}

// Reservations returns every reservation in creation order.
func (s *Service) Reservations() []Reservation {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Reservation, len(s.reservations))
	copy(out, s.reservations)
	return out
}

// ReservationsByERP returns the reservations held by one student.
func (s *Service) ReservationsByERP(erpID string) []Reservation {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var out []Reservation
	for _, res := range s.reservations {
		if res.ERPID == erpID {
			out = append(out, res)
		}
	}
	return out
}

func defaultBooks() []Book {
	return []Book{
		{ID: "clrs-algorithms", Title: "Introduction to Algorithms", Author: "Cormen, Leiserson, Rivest, Stein", Category: "Computer Science", Available: true},
		{ID: "os-concepts", Title: "Operating System Concepts", Author: "Silberschatz, Galvin, Gagne", Category: "Computer Science", Available: true},
		{ID: "dbms-korth", Title: "Database System Concepts", Author: "Silberschatz, Korth, Sudarshan", Category: "Computer Science", Available: true},
		{ID: "networks-tanenbaum", Title: "Computer Networks", Author: "Andrew S. Tanenbaum", Category: "Computer Science", Available: true},
		{ID: "clean-code", Title: "Clean Code", Author: "Robert C. Martin", Category: "Software Engineering", Available: true},
		{ID: "pragmatic-programmer", Title: "The Pragmatic Programmer", Author: "Hunt, Thomas", Category: "Software Engineering", Available: true},
		{ID: "discrete-math", Title: "Discrete Mathematics and Its Applications", Author: "Kenneth H. Rosen", Category: "Mathematics", Available: true},
		{ID: "linear-algebra", Title: "Linear Algebra and Its Applications", Author: "Gilbert Strang", Category: "Mathematics", Available: true},
		{ID: "digital-design", Title: "Digital Design", Author: "M. Morris Mano", Category: "Electronics", Available: true},
		{ID: "signals-systems", Title: "Signals and Systems", Author: "Alan V. Oppenheim", Category: "Electronics", Available: true},
	}
}
