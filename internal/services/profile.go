package services

import (
	"context"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/cache"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/validators"
	"github.com/go-playground/validator/v10"
)

const searchLimit = 20

type ProfileService struct {
	identity *IdentityResolver
	profiles repositories.ProfileRepository
	tags     repositories.TagRepository
	follows  repositories.FollowRepository
	posts    repositories.PostRepository
	cache    cache.ViewCache
	validate *validator.Validate
}

func NewProfileService(
	identity *IdentityResolver,
	profiles repositories.ProfileRepository,
	tags repositories.TagRepository,
	follows repositories.FollowRepository,
	posts repositories.PostRepository,
	viewCache cache.ViewCache,
) *ProfileService {
	if viewCache == nil {
		viewCache = cache.Noop{}
	}
	return &ProfileService{
		identity: identity,
		profiles: profiles,
		tags:     tags,
		follows:  follows,
		posts:    posts,
		cache:    viewCache,
		validate: validators.New(),
	}
}

// Create registers the caller's profile. An identity owns at most one
// profile and usernames are unique.
func (s *ProfileService) Create(ctx context.Context, externalID string, req models.CreateProfileRequest) (*models.Profile, error) {
	if externalID == "" {
		return nil, ErrUnauthorized
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, invalid(validators.Message(err))
	}

	exists, err := s.profiles.ExistsByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, invalid("profile already exists")
	}
	taken, err := s.profiles.UsernameTaken(ctx, req.Username, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, invalid("username is already taken")
	}

	profile := &models.Profile{
		ExternalID: externalID,
		Username:   req.Username,
		Name:       req.Name,
		Bio:        req.Bio,
	}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, invalid("profile already exists or username is taken")
		}
		return nil, err
	}
	return profile, nil
}

// Update patches the caller's profile. An empty tag_id clears the tag.
func (s *ProfileService) Update(ctx context.Context, externalID string, req models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.identity.RequireProfile(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		req.Username = &trimmed
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, invalid(validators.Message(err))
	}

	if req.Username != nil && *req.Username != profile.Username {
		if *req.Username == "" {
			return nil, invalid("username is required")
		}
		taken, err := s.profiles.UsernameTaken(ctx, *req.Username, profile.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, invalid("username is already taken")
		}
		profile.Username = *req.Username
	}
	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Avatar != nil {
		profile.Avatar = *req.Avatar
	}
	if req.Header != nil {
		profile.Header = *req.Header
	}
	if req.TagID != nil {
		if *req.TagID == "" {
			profile.TagID = nil
		} else {
			ok, err := s.tags.ExistsTag(ctx, *req.TagID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errNotFound("tag")
			}
			tagID := *req.TagID
			profile.TagID = &tagID
		}
		profile.Tag = nil
	}

	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, invalid("username is already taken")
		}
		return nil, err
	}
	invalidateViews(ctx, s.cache, cache.GlobalFeedKey(), cache.ProfileFeedKey(profile.ID))
	return s.profiles.GetProfileByID(ctx, profile.ID)
}

// Search finds profiles whose username or name contains query, ignoring
// case. Non-empty tagIDs narrow the match to profiles carrying one of them.
func (s *ProfileService) Search(ctx context.Context, query string, tagIDs []string) ([]models.Profile, error) {
	query = strings.TrimSpace(query)
	var tags []string
	for _, id := range tagIDs {
		if id = strings.TrimSpace(id); id != "" {
			tags = append(tags, id)
		}
	}
	if query == "" && len(tags) == 0 {
		return []models.Profile{}, nil
	}
	return s.profiles.SearchProfiles(ctx, query, tags, searchLimit)
}

// Exists reports whether the caller already created a profile.
func (s *ProfileService) Exists(ctx context.Context, externalID string) (bool, error) {
	if externalID == "" {
		return false, ErrUnauthorized
	}
	return s.profiles.ExistsByExternalID(ctx, externalID)
}

// Current returns the caller's own profile page.
func (s *ProfileService) Current(ctx context.Context, externalID string) (*models.ProfileWithCounts, error) {
	profile, err := s.identity.RequireProfile(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, profile, profile)
}

// GetByUsername returns a profile page as seen by the viewer.
func (s *ProfileService) GetByUsername(ctx context.Context, viewerExternalID, username string) (*models.ProfileWithCounts, error) {
	profile, err := s.profiles.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	viewer, err := s.identity.ResolveViewer(ctx, viewerExternalID)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, profile, viewer)
}

func (s *ProfileService) withCounts(ctx context.Context, profile, viewer *models.Profile) (*models.ProfileWithCounts, error) {
	out := &models.ProfileWithCounts{Profile: *profile}
	var err error
	if out.FollowersCount, err = s.follows.GetFollowersCount(ctx, profile.ID); err != nil {
		return nil, err
	}
	if out.FollowingCount, err = s.follows.GetFollowingCount(ctx, profile.ID); err != nil {
		return nil, err
	}
	if out.PostsCount, err = s.posts.CountByAuthor(ctx, profile.ID); err != nil {
		return nil, err
	}
	if viewer != nil {
		out.IsOwnProfile = viewer.ID == profile.ID
		if !out.IsOwnProfile {
			if out.IsFollowing, err = s.follows.IsFollowing(ctx, viewer.ID, profile.ID); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
