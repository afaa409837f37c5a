package stations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mirs/station-backend/pkg/db/models"
	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/logger"
)

// Directory knows the station types and their id prefixes.
type Directory interface {
	StationPrefix(profile string) (string, error)
	StationType(prefix string) (profile, displayName string, ok bool)
}

// ResolveInput carries the configured identity of this deployment.
type ResolveInput struct {
	ConfiguredID string
	ProfileName  string
	OrgCode      string
	DisplayName  string
}

// StationDTO is the public station identity.
type StationDTO struct {
	StationID   string    `json:"station_id"`
	ProfileName string    `json:"profile_name,omitempty"`
	OrgCode     string    `json:"org_code,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Service struct {
	repo *Repository
	dir  Directory
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, dir Directory, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("station repository required")
	}
	if dir == nil {
		return nil, fmt.Errorf("station directory required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{repo: repo, dir: dir, logg: logg, now: time.Now}, nil
}

// Resolve settles the station id for this process. A configured id always
// wins once it passes Validate; otherwise the stored identity is reused, and
// on first boot a new id is generated from the profile prefix and stored.
func (s *Service) Resolve(ctx context.Context, input ResolveInput) (*StationDTO, error) {
	if id := strings.TrimSpace(input.ConfiguredID); id != "" {
		if err := s.Validate(id); err != nil {
			return nil, err
		}
		row, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if row != nil {
			return toStationDTO(*row), nil
		}
		return s.create(ctx, id, input)
	}

	row, err := s.repo.First(ctx)
	if err != nil {
		return nil, err
	}
	if row != nil {
		return toStationDTO(*row), nil
	}

	var prefix string
	if profile := strings.TrimSpace(input.ProfileName); profile != "" {
		if prefix, err = s.dir.StationPrefix(profile); err != nil {
			return nil, err
		}
	}
	return s.create(ctx, GenerateID(prefix, input.OrgCode, s.now(), ""), input)
}

// Validate checks the id format and that its prefix names a known station
// type or the generic prefix.
func (s *Service) Validate(id string) error {
	parsed, err := ParseID(id)
	if err != nil {
		return err
	}
	if strings.EqualFold(parsed.Prefix, GenericPrefix) {
		return nil
	}
	if _, _, ok := s.dir.StationType(parsed.Prefix); !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid station id: unknown station type prefix").
			WithDetails(map[string]any{"station_id": id, "prefix": parsed.Prefix})
	}
	return nil
}

// Get returns the stored identity for id.
func (s *Service) Get(ctx context.Context, id string) (*StationDTO, error) {
	row, err := s.repo.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "station not found").
			WithDetails(map[string]any{"station_id": id})
	}
	return toStationDTO(*row), nil
}

// RecordProfile stores the profile last applied to id.
func (s *Service) RecordProfile(ctx context.Context, id, profile string) error {
	return s.repo.UpdateProfile(ctx, id, profile)
}

func (s *Service) create(ctx context.Context, id string, input ResolveInput) (*StationDTO, error) {
	now := s.now().UTC()
	row := &models.StationMetadata{
		StationID:   id,
		ProfileName: strings.TrimSpace(input.ProfileName),
		OrgCode:     strings.ToUpper(strings.TrimSpace(input.OrgCode)),
		DisplayName: s.displayName(id, input.DisplayName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithStationID(ctx, id), "station identity registered")
	return toStationDTO(*row), nil
}

func (s *Service) displayName(id, custom string) string {
	var typeName string
	if parsed, err := ParseID(id); err == nil {
		_, typeName, _ = s.dir.StationType(parsed.Prefix)
	}
	return DisplayName(id, custom, typeName)
}

func toStationDTO(row models.StationMetadata) *StationDTO {
	return &StationDTO{
		StationID:   row.StationID,
		ProfileName: row.ProfileName,
		OrgCode:     row.OrgCode,
		DisplayName: row.DisplayName,
		CreatedAt:   row.CreatedAt,
	}
}
