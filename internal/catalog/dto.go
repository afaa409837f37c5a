package catalog

import "github.com/mirs/station-backend/pkg/db/models"

// EntryDTO is the public shape of a catalog entry.
type EntryDTO struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Unit          string `json:"unit"`
	Specification string `json:"specification"`
}

func toEntryDTO(entry models.CatalogEntry) EntryDTO {
	return EntryDTO{
		Code:          entry.Code,
		Name:          entry.Name,
		Category:      entry.Category,
		Unit:          entry.Unit,
		Specification: entry.Specification,
	}
}

// SearchResult wraps a bounded search page.
type SearchResult struct {
	Items     []EntryDTO `json:"items"`
	Truncated bool       `json:"truncated"`
}
