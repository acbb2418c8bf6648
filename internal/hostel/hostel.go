// internal/hostel/hostel.go
package hostel

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"portalbackend/internal/logger"
	"portalbackend/internal/receipt"
)

var (
	// ErrRoomTaken means the room is unknown or already allocated.
	ErrRoomTaken = errors.New("room is not available")
	// ErrUnknownPlan means an unrecognized room type or mess plan.
	ErrUnknownPlan = errors.New("unknown room type or mess plan")
)

// Room types and their yearly charge.
var roomCharges = map[string]float64{
	"Single":    8000,
	"Double":    5000,
	"Dormitory": 3000,
}

// Mess plans and their yearly charge.
var messCharges = map[string]float64{
	"Veg":     2000,
	"Non-Veg": 3000,
}

// Room is one allocatable hostel room.
type Room struct {
	ID        string `json:"id"`
	Block     string `json:"block"`
	Number    string `json:"number"`
	Type      string `json:"type"`
	Available bool   `json:"available"`
}

// Selection is a student's chosen room and mess plan, carried on the
// session and folded into the first admission payment as extra charges.
type Selection struct {
	RoomID   string `json:"room_id"`
	RoomType string `json:"room_type"`
	MessPlan string `json:"mess_plan"`
}

// Service holds the hostel room inventory. Shared across sessions, so all
// access goes through the mutex.
type Service struct {
	rooms []Room
	byID  map[string]int
	mutex sync.RWMutex
}

func NewService() *Service {
	s := &Service{}
	s.setRooms(defaultRooms())
	return s
}

// LoadFromFile replaces the inventory from a JSON document. Any failure
// keeps the built-in defaults; room data is never a reason to crash.
func (s *Service) LoadFromFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.LogWarn("Could not read rooms file %s, keeping defaults: %v", path, err)
		return nil
	}

	var rooms []Room
	if err := json.Unmarshal(raw, &rooms); err != nil {
		logger.LogWarn("Could not parse rooms file %s, keeping defaults: %v", path, err)
		return nil
	}

	for _, r := range rooms {
		if r.ID == "" {
			logger.LogWarn("Rooms file %s has a room without an id, keeping defaults", path)
			return nil
		}
		if _, ok := roomCharges[r.Type]; !ok {
			logger.LogWarn("Rooms file %s has unknown room type %q, keeping defaults", path, r.Type)
			return nil
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.setRooms(rooms)
	logger.LogInfo("Loaded %d hostel rooms from %s", len(rooms), path)
	return nil
}

func (s *Service) setRooms(rooms []Room) {
	s.rooms = rooms
	s.byID = make(map[string]int, len(rooms))
	for i, r := range rooms {
		s.byID[r.ID] = i
	}
}

// Rooms returns the current inventory.
func (s *Service) Rooms() []Room {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Room, len(s.rooms))
	copy(out, s.rooms)
	return out
}

// Allocate takes a room out of the pool and returns a selection for the
// session carrying the given mess plan.
func (s *Service) Allocate(roomID, messPlan string) (Selection, error) {
	if _, ok := messCharges[messPlan]; !ok {
		return Selection{}, fmt.Errorf("%w: mess plan %q", ErrUnknownPlan, messPlan)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	i, ok := s.byID[roomID]
	if !ok || !s.rooms[i].Available {
		return Selection{}, fmt.Errorf("%w: %s", ErrRoomTaken, roomID)
	}

	s.rooms[i].Available = false
	return Selection{
		RoomID:   roomID,
		RoomType: s.rooms[i].Type,
		MessPlan: messPlan,
	}, nil
}

// Release puts a room back in the pool, for a session that abandons its
// selection before paying.
func (s *Service) Release(roomID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if i, ok := s.byID[roomID]; ok {
		s.rooms[i].Available = true
	}
}

// Charges converts a selection into the extra charge lines added onto an
// admission stage payment.
func (s *Service) Charges(sel Selection) ([]receipt.Charge, error) {
	room, ok := roomCharges[sel.RoomType]
	if !ok {
		return nil, fmt.Errorf("%w: room type %q", ErrUnknownPlan, sel.RoomType)
	}
	mess, ok := messCharges[sel.MessPlan]
	if !ok {
		return nil, fmt.Errorf("%w: mess plan %q", ErrUnknownPlan, sel.MessPlan)
	}

	return []receipt.Charge{
		{Name: fmt.Sprintf("Room (%s)", sel.RoomType), Amount: room},
		{Name: fmt.Sprintf("Mess (%s)", sel.MessPlan), Amount: mess},
	}, nil
}

// RoomTypes returns the supported room types with charges.
func RoomTypes() map[string]float64 {
	out := make(map[string]float64, len(roomCharges))
	for k, v := range roomCharges {
		out[k] = v
	}
	return out
}

// MessPlans returns the supported mess plans with charges.
func MessPlans() map[string]float64 {
	out := make(map[string]float64, len(messCharges))
	for k, v := range messCharges {
		out[k] = v
	}
	return out
}

func defaultRooms() []Room {
	var rooms []Room
	add := func(block, roomType string, numbers ...string) {
		for _, n := range numbers {
			rooms = append(rooms, Room{
				ID:        strings.ToLower(block) + "-" + n,
				Block:     block,
				Number:    n,
				Type:      roomType,
				Available: true,
			})
		}
	}
	add("A", "Single", "101", "102", "103", "104")
	add("B", "Double", "201", "202", "203", "204")
	add("C", "Dormitory", "301", "302")
	return rooms
}
