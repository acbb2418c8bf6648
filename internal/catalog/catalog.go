package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"portalbackend/internal/logger"
)

// Service holds the cafeteria catalog. Items come from catalog.json when
// present; otherwise the built-in default menu is used. Item ids are unique
// across the whole catalog.
type Service struct {
	sections []Section
	items    map[string]CatalogItem

	// Quick lookup map (for price checks on the hot path)
	prices map[string]float64

	// Cache management
	lastLoaded time.Time
	mutex      sync.RWMutex
}

func NewService() *Service {
	s := &Service{
		items:  make(map[string]CatalogItem),
		prices: make(map[string]float64),
	}
	s.populate(defaultSections())
	return s
}

// LoadFromFile replaces the catalog with the contents of path. A missing or
// malformed file leaves the current catalog in place and returns nil; the
// catalog boundary never fails the caller.
func (s *Service) LoadFromFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.LogWarn("Catalog file %s not readable, keeping built-in defaults: %v", path, err)
		return nil
	}

	var data CatalogData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.LogWarn("Catalog file %s not parseable, keeping built-in defaults: %v", path, err)
		return nil
	}

	if err := validateSections(data.Sections); err != nil {
		logger.LogWarn("Catalog file %s rejected, keeping built-in defaults: %v", path, err)
		return nil
	}

	s.mutex.Lock()
	s.populate(data.Sections)
	s.mutex.Unlock()

	logger.LogInfo("Loaded catalog from %s: %d sections, %d items", path, len(data.Sections), len(s.items))
	return nil
}

func validateSections(sections []Section) error {
	seen := make(map[string]string)
	for _, sec := range sections {
		for _, item := range sec.Items {
			if item.ID == "" {
				return fmt.Errorf("item %q has no id", item.Name)
			}
			if item.UnitPrice < 0 {
				return fmt.Errorf("item %s has negative price", item.ID)
			}
			if prev, ok := seen[item.ID]; ok {
				return fmt.Errorf("duplicate item id %s (%q and %q)", item.ID, prev, item.Name)
			}
			seen[item.ID] = item.Name
		}
	}
	return nil
}

// populate rebuilds the lookup maps. Caller holds the write lock (or owns
// the Service exclusively during construction).
func (s *Service) populate(sections []Section) {
	s.sections = sections
	s.items = make(map[string]CatalogItem)
	s.prices = make(map[string]float64)

	for si := range sections {
		for _, item := range sections[si].Items {
			if item.Category == "" {
				item.Category = sections[si].Category
			}
			if !item.Available {
				continue
			}
			s.items[item.ID] = item
			s.prices[item.ID] = item.UnitPrice
		}
	}
	s.lastLoaded = time.Now()
}

// Item returns the catalog item for id, if it exists and is available.
func (s *Service) Item(id string) (CatalogItem, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, ok := s.items[id]
	return item, ok
}

// Price returns the unit price for id.
func (s *Service) Price(id string) (float64, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	price, ok := s.prices[id]
	return price, ok
}

// Validate reports whether id names an available catalog item.
func (s *Service) Validate(id string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	_, ok := s.items[id]
	return ok
}

// Sections returns the catalog in display order.
func (s *Service) Sections() []Section {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]Section, len(s.sections))
	copy(out, s.sections)
	return out
}

// CacheAge returns how long ago the catalog was (re)loaded.
func (s *Service) CacheAge() time.Duration {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return time.Since(s.lastLoaded)
}

// GetStats returns catalog statistics for debugging/monitoring
func (s *Service) GetStats() map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return map[string]interface{}{
		"sections_count": len(s.sections),
		"items_count":    len(s.items),
		"last_loaded":    s.lastLoaded,
		"cache_age":      time.Since(s.lastLoaded).String(),
	}
}

// defaultSections is the built-in cafeteria menu, used when no catalog file
// is configured or the configured one cannot be read.
func defaultSections() []Section {
	return []Section{
		{
			Category: "South Indian",
			Items: []CatalogItem{
				{ID: "idli-sambar", Name: "Idli Sambar", UnitPrice: 40, Image: "idli_sambar.jpg", Available: true},
				{ID: "masala-dosa", Name: "Masala Dosa", UnitPrice: 60, Image: "masala_dosa.jpg", Available: true},
				{ID: "plain-dosa", Name: "Plain Dosa", UnitPrice: 50, Image: "plain_dosa.jpeg", Available: true},
			},
		},
		{
			Category: "Snacks",
			Items: []CatalogItem{
				{ID: "samosa", Name: "Samosa", UnitPrice: 15, Image: "samosa.jpeg", Available: true},
				{ID: "veg-puff", Name: "Veg Puff", UnitPrice: 20, Image: "veg_puff.jpg", Available: true},
				{ID: "paneer-roll", Name: "Paneer Roll", UnitPrice: 45, Image: "paneer_role.jpg", Available: true},
			},
		},
		{
			Category: "Rice & Biryani",
			Items: []CatalogItem{
				{ID: "veg-fried-rice", Name: "Veg Fried Rice", UnitPrice: 80, Image: "veg_fried_rice.jpeg", Available: true},
				{ID: "veg-biryani", Name: "Veg Biryani", UnitPrice: 90, Image: "veg_biryani.jpg", Available: true},
			},
		},
		{
			Category: "Beverages",
			Items: []CatalogItem{
				{ID: "tea", Name: "Tea", UnitPrice: 15, Image: "tea.webp", Available: true},
				{ID: "coffee", Name: "Coffee", UnitPrice: 20, Image: "coffee.jpg", Available: true},
			},
		},
	}
}
