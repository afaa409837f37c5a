package profiles

import (
	"time"

	"github.com/mirs/station-backend/pkg/db/models"
)

// SummaryDTO describes a profile without its item list.
type SummaryDTO struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	DisplayName   string `json:"display_name"`
	StationPrefix string `json:"station_prefix"`
	ItemCount     int    `json:"item_count"`
}

// ItemDTO is one profile line in object form.
type ItemDTO struct {
	Code            string `json:"code"`
	MinStock        int    `json:"min_stock"`
	MaxStock        int    `json:"max_stock"`
	ReorderPoint    int    `json:"reorder_point"`
	InitialQuantity int    `json:"initial_quantity"`
}

// DetailDTO is a profile with its items.
type DetailDTO struct {
	SummaryDTO
	Items []ItemDTO `json:"items"`
}

// Item outcomes reported by Apply.
const (
	OutcomeCreated = "created"
	OutcomeSkipped = "skipped"
)

// ItemOutcome reports what Apply did with one code.
type ItemOutcome struct {
	Code    string `json:"code"`
	Outcome string `json:"outcome"`
}

// ApplyResult summarizes a committed profile application.
type ApplyResult struct {
	ApplicationID string        `json:"application_id"`
	Profile       string        `json:"profile"`
	Version       string        `json:"version"`
	StationID     string        `json:"station_id"`
	Created       int           `json:"created"`
	Skipped       int           `json:"skipped"`
	Items         []ItemOutcome `json:"items"`
	AppliedAt     time.Time     `json:"applied_at"`
}

// ApplicationDTO is one row of setup history.
type ApplicationDTO struct {
	ID             string    `json:"id"`
	StationID      string    `json:"station_id"`
	ProfileName    string    `json:"profile_name"`
	ProfileVersion string    `json:"profile_version"`
	ItemsCreated   int       `json:"items_created"`
	ItemsSkipped   int       `json:"items_skipped"`
	AppliedAt      time.Time `json:"applied_at"`
}

func toSummaryDTO(p Profile) SummaryDTO {
	return SummaryDTO{
		Name:          p.Name,
		Version:       p.Version,
		DisplayName:   p.DisplayName,
		StationPrefix: p.StationPrefix,
		ItemCount:     len(p.Items),
	}
}

// ToDetailDTO renders a profile for API consumers.
func ToDetailDTO(p Profile) DetailDTO {
	items := make([]ItemDTO, len(p.Items))
	for i, item := range p.Items {
		items[i] = ItemDTO{
			Code:            item.Code,
			MinStock:        item.MinStock,
			MaxStock:        item.MaxStock,
			ReorderPoint:    item.ReorderPoint,
			InitialQuantity: item.InitialQuantity,
		}
	}
	return DetailDTO{SummaryDTO: toSummaryDTO(p), Items: items}
}

// ToSummaries renders the registry listing.
func ToSummaries(profiles []Profile) []SummaryDTO {
	out := make([]SummaryDTO, len(profiles))
	for i, p := range profiles {
		out[i] = toSummaryDTO(p)
	}
	return out
}

func toApplicationDTO(app models.ProfileApplication) ApplicationDTO {
	return ApplicationDTO{
		ID:             app.ID.String(),
		StationID:      app.StationID,
		ProfileName:    app.ProfileName,
		ProfileVersion: app.ProfileVersion,
		ItemsCreated:   app.ItemsCreated,
		ItemsSkipped:   app.ItemsSkipped,
		AppliedAt:      app.AppliedAt,
	}
}
