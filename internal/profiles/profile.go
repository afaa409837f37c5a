package profiles

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mirs/station-backend/internal/catalog"
	"github.com/mirs/station-backend/internal/inventory"
	"go.uber.org/multierr"
)

// Thresholds are the fixed per-item settings a profile carries.
type Thresholds struct {
	MinStock        int
	MaxStock        int
	ReorderPoint    int
	InitialQuantity int
}

// Stock drops the initial quantity.
func (t Thresholds) Stock() inventory.Thresholds {
	return inventory.Thresholds{
		MinStock:     t.MinStock,
		MaxStock:     t.MaxStock,
		ReorderPoint: t.ReorderPoint,
	}
}

// Item is one profile line. On disk it is the tuple
// [code, min_stock, max_stock, reorder_point, initial_quantity].
type Item struct {
	Code string
	Thresholds
}

func (i *Item) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("profile item must be a 5-element array: %w", err)
	}
	if len(fields) != 5 {
		return fmt.Errorf("profile item must have 5 elements, got %d", len(fields))
	}
	if err := json.Unmarshal(fields[0], &i.Code); err != nil {
		return fmt.Errorf("profile item code: %w", err)
	}
	targets := []*int{&i.MinStock, &i.MaxStock, &i.ReorderPoint, &i.InitialQuantity}
	for idx, target := range targets {
		if err := json.Unmarshal(fields[idx+1], target); err != nil {
			return fmt.Errorf("profile item %q field %d: %w", i.Code, idx+1, err)
		}
	}
	return nil
}

func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{i.Code, i.MinStock, i.MaxStock, i.ReorderPoint, i.InitialQuantity})
}

// Profile is a named station template.
type Profile struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	DisplayName   string `json:"display_name"`
	StationPrefix string `json:"station_prefix"`
	Items         []Item `json:"items"`
}

// Codes lists the profile codes in order.
func (p Profile) Codes() []string {
	codes := make([]string, len(p.Items))
	for i, item := range p.Items {
		codes[i] = item.Code
	}
	return codes
}

func (p *Profile) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Version = strings.TrimSpace(p.Version)
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	p.StationPrefix = strings.ToUpper(strings.TrimSpace(p.StationPrefix))
	for i := range p.Items {
		p.Items[i].Code = strings.TrimSpace(p.Items[i].Code)
	}
}

// validate reports every structural problem of the profile at once.
func (p Profile) validate() error {
	var errs error
	if p.Name == "" {
		errs = multierr.Append(errs, fmt.Errorf("name is required"))
	}
	if p.StationPrefix == "" {
		errs = multierr.Append(errs, fmt.Errorf("station_prefix is required"))
	}

	seen := make(map[string]int, len(p.Items))
	for idx, item := range p.Items {
		if _, err := catalog.NormalizeCode(item.Code); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("item %d: code %q is malformed", idx, item.Code))
			continue
		}
		if prev, ok := seen[item.Code]; ok {
			errs = multierr.Append(errs, fmt.Errorf("item %d: code %q repeats item %d", idx, item.Code, prev))
			continue
		}
		seen[item.Code] = idx
		if err := item.Stock().Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("item %d (%s): %w", idx, item.Code, err))
		}
		if item.InitialQuantity < 0 {
			errs = multierr.Append(errs, fmt.Errorf("item %d (%s): initial quantity must be non-negative", idx, item.Code))
		}
	}
	return errs
}
