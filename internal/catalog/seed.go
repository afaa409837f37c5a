package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mirs/station-backend/pkg/db/models"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"go.uber.org/multierr"
)

// DefaultUnit is applied to seed entries without a unit.
const DefaultUnit = "EA"

//go:embed seed/catalog.json
var defaultSeed []byte

type seedFile struct {
	Version string      `json:"version"`
	Entries []seedEntry `json:"entries"`
}

type seedEntry struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Unit          string `json:"unit"`
	Specification string `json:"specification"`
}

// Seed is a parsed and validated master catalog list.
type Seed struct {
	Version string
	Entries []models.CatalogEntry
}

// DefaultSeed returns the master catalog compiled into the binary.
func DefaultSeed() (*Seed, error) {
	return LoadSeed(bytes.NewReader(defaultSeed))
}

// LoadSeedFile reads a seed from disk, falling back to the embedded seed when
// path is empty.
func LoadSeedFile(path string) (*Seed, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSeed()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog seed %q: %w", path, err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed parses a JSON seed. Every malformed or duplicated entry is reported
// in a single aggregated validation error.
func LoadSeed(r io.Reader) (*Seed, error) {
	var file seedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode catalog seed")
	}

	var errs error
	seen := make(map[string]int, len(file.Entries))
	entries := make([]models.CatalogEntry, 0, len(file.Entries))
	for i, raw := range file.Entries {
		entry, err := raw.toModel()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if prev, ok := seen[entry.Code]; ok {
			errs = multierr.Append(errs, fmt.Errorf("entry %d: code %q duplicates entry %d", i, entry.Code, prev))
			continue
		}
		seen[entry.Code] = i
		entries = append(entries, entry)
	}
	if errs != nil {
		messages := []string{}
		for _, err := range multierr.Errors(errs) {
			messages = append(messages, err.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid catalog seed").
			WithDetails(map[string]any{"errors": messages})
	}
	if len(entries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog seed has no entries")
	}

	return &Seed{Version: file.Version, Entries: entries}, nil
}

func (e seedEntry) toModel() (models.CatalogEntry, error) {
	code, err := NormalizeCode(e.Code)
	if err != nil {
		return models.CatalogEntry{}, fmt.Errorf("code %q: %w", e.Code, err)
	}
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return models.CatalogEntry{}, fmt.Errorf("code %q: name is required", code)
	}
	category := strings.TrimSpace(e.Category)
	if category == "" {
		return models.CatalogEntry{}, fmt.Errorf("code %q: category is required", code)
	}
	unit := strings.TrimSpace(e.Unit)
	if unit == "" {
		unit = DefaultUnit
	}
	return models.CatalogEntry{
		Code:          code,
		Name:          name,
		Category:      category,
		Unit:          unit,
		Specification: strings.TrimSpace(e.Specification),
	}, nil
}
