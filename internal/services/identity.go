package services

import (
	"context"
	"errors"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"gorm.io/gorm"
)

// IdentityResolver maps an external identity id to the caller's profile.
type IdentityResolver struct {
	profiles repositories.ProfileRepository
}

func NewIdentityResolver(profiles repositories.ProfileRepository) *IdentityResolver {
	return &IdentityResolver{profiles: profiles}
}

// ResolveViewer returns the caller's profile, or nil for anonymous callers
// and identities that have not created a profile yet.
func (r *IdentityResolver) ResolveViewer(ctx context.Context, externalID string) (*models.Profile, error) {
	if externalID == "" {
		return nil, nil
	}
	profile, err := r.profiles.GetProfileByExternalID(ctx, externalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// RequireProfile returns the caller's profile, ErrUnauthorized for anonymous
// callers and ErrNotFound when the identity has no profile.
func (r *IdentityResolver) RequireProfile(ctx context.Context, externalID string) (*models.Profile, error) {
	if externalID == "" {
		return nil, ErrUnauthorized
	}
	profile, err := r.profiles.GetProfileByExternalID(ctx, externalID)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	return profile, nil
}
