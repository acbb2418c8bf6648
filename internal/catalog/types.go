package catalog

// CatalogItem is one purchasable menu item as stored in catalog.json.
type CatalogItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Category  string  `json:"category"`
	Image     string  `json:"img,omitempty"`
	Available bool    `json:"available"`
}

// Section groups items for display, preserving file order.
type Section struct {
	Category string        `json:"category"`
	Items    []CatalogItem `json:"items"`
}

// CatalogData is the on-disk shape of catalog.json.
type CatalogData struct {
	Sections []Section `json:"sections"`
}
