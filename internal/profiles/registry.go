package profiles

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"go.uber.org/multierr"
)

//go:embed data/*.json
var builtin embed.FS

// Registry holds the validated profiles by name.
type Registry struct {
	byName map[string]Profile
	names  []string
}

// NewRegistry validates profiles and indexes them by name. Every problem in
// every profile is reported in one validation error.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	reg := &Registry{byName: make(map[string]Profile, len(profiles))}

	var errs error
	for _, p := range profiles {
		p.normalize()
		if err := p.validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("profile %q: %w", p.Name, err))
			continue
		}
		if _, dup := reg.byName[p.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("profile %q is defined twice", p.Name))
			continue
		}
		reg.byName[p.Name] = p
		reg.names = append(reg.names, p.Name)
	}
	if errs != nil {
		messages := []string{}
		for _, err := range multierr.Errors(errs) {
			messages = append(messages, err.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid station profiles").
			WithDetails(map[string]any{"errors": messages})
	}

	sort.Strings(reg.names)
	return reg, nil
}

// LoadBuiltin returns the registry of the profiles compiled into the binary.
func LoadBuiltin() (*Registry, error) {
	return LoadFS(builtin, "data/*.json")
}

// LoadFS parses every file in fsys matching pattern as one profile.
func LoadFS(fsys fs.FS, pattern string) (*Registry, error) {
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob profiles: %w", err)
	}

	profiles := make([]Profile, 0, len(files))
	for _, name := range files {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read profile %s: %w", name, err)
		}
		var p Profile
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("decode profile %s", path.Base(name)))
		}
		profiles = append(profiles, p)
	}
	return NewRegistry(profiles...)
}

// Get returns the named profile or NOT_FOUND.
func (r *Registry) Get(name string) (*Profile, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "station profile not found").
			WithDetails(map[string]any{"profile": name, "available": r.Names()})
	}
	return &p, nil
}

// Names returns the registered profile names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// List returns the profiles sorted by name.
func (r *Registry) List() []Profile {
	out := make([]Profile, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.byName[name])
	}
	return out
}

// StationPrefix returns the id prefix stations built from name carry.
func (r *Registry) StationPrefix(name string) (string, error) {
	p, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return p.StationPrefix, nil
}

// StationType returns the name and display name of the profile whose stations
// carry prefix.
func (r *Registry) StationType(prefix string) (string, string, bool) {
	for _, name := range r.names {
		if p := r.byName[name]; p.StationPrefix != "" && strings.EqualFold(p.StationPrefix, prefix) {
			return p.Name, p.DisplayName, true
		}
	}
	return "", "", false
}
