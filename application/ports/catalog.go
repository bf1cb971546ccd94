package ports

import (
	"brainbrowser/domain/core/entities"
	"brainbrowser/domain/core/valueobjects"
)

// ContentCatalog is the read-only page catalog. Unknown ids report false.
type ContentCatalog interface {
	Lookup(id valueobjects.PageID) (entities.Page, bool)
	URLFor(id valueobjects.PageID) (string, bool)
	// Pages returns every page in catalog order; URL classification
	// takes the first match in this order.
	Pages() []entities.Page
}
