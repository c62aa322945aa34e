package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/nano-social/backend/internal/cache"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"gorm.io/gorm"
)

const (
	MaxPostLength = 200
	MaxPostImages = 4
)

type PostService struct {
	identity *IdentityResolver
	posts    repositories.PostRepository
	notifier *NotificationService
	media    *MediaService
	cache    cache.ViewCache
}

func NewPostService(
	identity *IdentityResolver,
	posts repositories.PostRepository,
	notifier *NotificationService,
	media *MediaService,
	viewCache cache.ViewCache,
) *PostService {
	if viewCache == nil {
		viewCache = cache.Noop{}
	}
	return &PostService{
		identity: identity,
		posts:    posts,
		notifier: notifier,
		media:    media,
		cache:    viewCache,
	}
}

// Create publishes a post, or a reply when ParentID is set.
func (s *PostService) Create(ctx context.Context, externalID string, req models.CreatePostRequest) (*models.Post, error) {
	author, err := s.identity.RequireProfile(ctx, externalID)
	if err != nil {
		return nil, err
	}

	images := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	if utf8.RuneCountInString(req.Content) > MaxPostLength {
		return nil, invalid("content must be 200 characters or less")
	}
	if len(images) > MaxPostImages {
		return nil, invalid("a post can have at most 4 images")
	}
	if strings.TrimSpace(req.Content) == "" && len(images) == 0 {
		return nil, invalid("a post needs content or at least one image")
	}

	var parent *models.Post
	if req.ParentID != "" {
		parent, err = s.posts.GetPostByID(ctx, req.ParentID)
		if err != nil {
			return nil, notFound(err, "parent post")
		}
	}

	post := &models.Post{
		AuthorID: author.ID,
		Content:  req.Content,
		Images:   images,
	}
	if parent != nil {
		post.ParentID = &parent.ID
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	post.Author = author

	keys := []string{cache.GlobalFeedKey(), cache.ProfileFeedKey(author.ID)}
	if parent != nil {
		s.notifier.emitLogged(ctx, Event{
			Type:        models.NotificationReply,
			RecipientID: parent.AuthorID,
			ActorID:     author.ID,
			PostID:      post.ID,
		})
		keys = append(keys, parentViewKeys(parent)...)
	}
	invalidateViews(ctx, s.cache, keys...)
	return post, nil
}

// Delete removes the caller's post with its images, replies, likes, reposts
// and notifications. Nothing is touched when the caller is not the author.
func (s *PostService) Delete(ctx context.Context, externalID, postID string) error {
	me, err := s.identity.RequireProfile(ctx, externalID)
	if err != nil {
		return err
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return notFound(err, "post")
	}
	if post.AuthorID != me.ID {
		return ErrForbidden
	}

	var parent *models.Post
	if post.IsReply() {
		if parent, err = s.posts.GetPostByID(ctx, *post.ParentID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	s.media.DeleteURLs(ctx, post.Images)

	removed, err := s.posts.DeletePostTree(ctx, post.ID)
	if err != nil {
		return notFound(err, "post")
	}

	keys := []string{cache.GlobalFeedKey(), cache.ProfileFeedKey(me.ID)}
	for _, id := range removed {
		keys = append(keys, cache.ThreadKey(id))
	}
	if parent != nil {
		keys = append(keys, parentViewKeys(parent)...)
	} else if post.IsReply() {
		keys = append(keys, cache.ThreadKey(*post.ParentID))
	}
	invalidateViews(ctx, s.cache, keys...)
	return nil
}

// parentViewKeys lists the cached views that show parent's reply count.
func parentViewKeys(parent *models.Post) []string {
	keys := []string{cache.ThreadKey(parent.ID), cache.ProfileFeedKey(parent.AuthorID)}
	if parent.IsReply() {
		keys = append(keys, cache.ThreadKey(*parent.ParentID))
	}
	return keys
}
