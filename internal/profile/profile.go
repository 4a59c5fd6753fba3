// Package profile reads and writes child profiles through the API and
// validates the profile form.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/naveenspark/kinmatch/pkg/client"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

// ErrNotFound means the profile does not exist. For GetMine it means the
// caller has not created one yet.
var ErrNotFound = errors.New("profile not found")

// API is the subset of the API client the repository needs.
type API interface {
	GetMyProfile(ctx context.Context) (*domain.Profile, error)
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	ListProfiles(ctx context.Context, filters domain.ProfileFilters) ([]domain.Profile, error)
	CreateProfile(ctx context.Context, fields domain.ProfileFields) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id string, fields domain.ProfileFields) (*domain.Profile, error)
}

// Repository is the profile read/write surface used by the views.
type Repository struct {
	api API
}

// NewRepository returns a Repository over api.
func NewRepository(api API) *Repository {
	return &Repository{api: api}
}

// GetMine returns the caller's profile or ErrNotFound.
func (r *Repository) GetMine(ctx context.Context) (*domain.Profile, error) {
	p, err := r.api.GetMyProfile(ctx)
	if client.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile.GetMine: %w", err)
	}
	return p, nil
}

// GetByID returns profile id or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := r.api.GetProfile(ctx, id)
	if client.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile.GetByID: %w", err)
	}
	return p, nil
}

// List returns the browse listing for filters.
func (r *Repository) List(ctx context.Context, filters domain.ProfileFilters) ([]domain.Profile, error) {
	ps, err := r.api.ListProfiles(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("profile.List: %w", err)
	}
	return ps, nil
}

// Create creates the caller's profile.
func (r *Repository) Create(ctx context.Context, fields domain.ProfileFields) (*domain.Profile, error) {
	p, err := r.api.CreateProfile(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("profile.Create: %w", err)
	}
	log.Info().Str("profile_id", p.ID).Msg("profile created")
	return p, nil
}

// Update replaces the writable fields of profile id.
func (r *Repository) Update(ctx context.Context, id string, fields domain.ProfileFields) (*domain.Profile, error) {
	p, err := r.api.UpdateProfile(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("profile.Update: %w", err)
	}
	log.Info().Str("profile_id", id).Msg("profile updated")
	return p, nil
}

// Save updates the caller's profile if one exists and creates it otherwise.
func (r *Repository) Save(ctx context.Context, fields domain.ProfileFields) (*domain.Profile, error) {
	mine, err := r.GetMine(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		return r.Create(ctx, fields)
	case err != nil:
		return nil, err
	}
	return r.Update(ctx, mine.ID, fields)
}

// IsOwn reports whether id is the caller's profile. A caller with no
// profile owns nothing.
func (r *Repository) IsOwn(ctx context.Context, id string) (bool, error) {
	mine, err := r.GetMine(ctx)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return mine.ID == id, nil
}

// ParseInterests splits a comma-separated list, dropping blanks.
func ParseInterests(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
