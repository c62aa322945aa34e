package services

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/cache"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
)

// ToggleResult is the authoritative state after a toggle. Count is the
// post's like or repost count, or the target's follower count.
type ToggleResult struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

type InteractionService struct {
	identity *IdentityResolver
	posts    repositories.PostRepository
	profiles repositories.ProfileRepository
	likes    repositories.LikeRepository
	reposts  repositories.RepostRepository
	follows  repositories.FollowRepository
	notifier *NotificationService
	cache    cache.ViewCache
	metrics  *observability.Metrics
}

func NewInteractionService(
	identity *IdentityResolver,
	posts repositories.PostRepository,
	profiles repositories.ProfileRepository,
	likes repositories.LikeRepository,
	reposts repositories.RepostRepository,
	follows repositories.FollowRepository,
	notifier *NotificationService,
	viewCache cache.ViewCache,
	metrics *observability.Metrics,
) *InteractionService {
	if viewCache == nil {
		viewCache = cache.Noop{}
	}
	return &InteractionService{
		identity: identity,
		posts:    posts,
		profiles: profiles,
		likes:    likes,
		reposts:  reposts,
		follows:  follows,
		notifier: notifier,
		cache:    viewCache,
		metrics:  metrics,
	}
}

// ToggleLike likes or unlikes a post for the caller.
func (s *InteractionService) ToggleLike(ctx context.Context, actorExternalID, postID string) (*ToggleResult, error) {
	actor, post, err := s.actorAndPost(ctx, actorExternalID, postID)
	if err != nil {
		return nil, err
	}
	edge, err := s.likes.Toggle(ctx, actor.ID, post.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.Toggle("like", toggleOutcome(edge))
	if edge.Created {
		s.notifier.emitLogged(ctx, Event{
			Type:        models.NotificationLike,
			RecipientID: post.AuthorID,
			ActorID:     actor.ID,
			PostID:      post.ID,
			LikeID:      edge.EdgeID,
		})
	}
	s.invalidatePost(ctx, actor, post)

	count, err := s.likes.CountByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Active: edge.Active, Count: count}, nil
}

// ToggleRepost reposts or un-reposts a post for the caller.
func (s *InteractionService) ToggleRepost(ctx context.Context, actorExternalID, postID string) (*ToggleResult, error) {
	actor, post, err := s.actorAndPost(ctx, actorExternalID, postID)
	if err != nil {
		return nil, err
	}
	edge, err := s.reposts.Toggle(ctx, actor.ID, post.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.Toggle("repost", toggleOutcome(edge))
	if edge.Created {
		s.notifier.emitLogged(ctx, Event{
			Type:        models.NotificationRepost,
			RecipientID: post.AuthorID,
			ActorID:     actor.ID,
			PostID:      post.ID,
			RepostID:    edge.EdgeID,
		})
	}
	s.invalidatePost(ctx, actor, post)

	count, err := s.reposts.CountByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Active: edge.Active, Count: count}, nil
}

// ToggleFollow follows or unfollows targetProfileID. Following yourself is rejected.
func (s *InteractionService) ToggleFollow(ctx context.Context, actorExternalID, targetProfileID string) (*ToggleResult, error) {
	actor, err := s.identity.RequireProfile(ctx, actorExternalID)
	if err != nil {
		return nil, err
	}
	if actor.ID == targetProfileID {
		return nil, invalid("you cannot follow yourself")
	}
	target, err := s.profiles.GetProfileByID(ctx, targetProfileID)
	if err != nil {
		return nil, notFound(err, "profile")
	}

	edge, err := s.follows.Toggle(ctx, actor.ID, target.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.Toggle("follow", toggleOutcome(edge))
	if edge.Created {
		s.notifier.emitLogged(ctx, Event{
			Type:        models.NotificationFollow,
			RecipientID: target.ID,
			ActorID:     actor.ID,
			FollowID:    edge.EdgeID,
		})
	}
	invalidateViews(ctx, s.cache, cache.ProfileFeedKey(actor.ID), cache.ProfileFeedKey(target.ID))

	count, err := s.follows.GetFollowersCount(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Active: edge.Active, Count: count}, nil
}

// IsFollowing reports whether the caller follows targetProfileID. Anonymous
// callers and identities without a profile follow nobody.
func (s *InteractionService) IsFollowing(ctx context.Context, viewerExternalID, targetProfileID string) (bool, error) {
	viewer, err := s.identity.ResolveViewer(ctx, viewerExternalID)
	if err != nil || viewer == nil {
		return false, err
	}
	return s.follows.IsFollowing(ctx, viewer.ID, targetProfileID)
}

func (s *InteractionService) actorAndPost(ctx context.Context, actorExternalID, postID string) (*models.Profile, *models.Post, error) {
	actor, err := s.identity.RequireProfile(ctx, actorExternalID)
	if err != nil {
		return nil, nil, err
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, nil, notFound(err, "post")
	}
	return actor, post, nil
}

func (s *InteractionService) invalidatePost(ctx context.Context, actor *models.Profile, post *models.Post) {
	keys := []string{
		cache.GlobalFeedKey(),
		cache.ThreadKey(post.ID),
		cache.ProfileFeedKey(actor.ID),
		cache.ProfileFeedKey(post.AuthorID),
	}
	if post.IsReply() {
		keys = append(keys, cache.ThreadKey(*post.ParentID))
	}
	invalidateViews(ctx, s.cache, keys...)
}

func toggleOutcome(edge repositories.EdgeToggle) string {
	switch {
	case !edge.Active:
		return "off"
	case edge.Created:
		return "on"
	default:
		return "raced"
	}
}
