package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anonto42/nano-social/backend/internal/cache"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	DefaultFeedLimit    = 20
	DefaultProfileLimit = 50
	MaxFeedLimit        = 100
)

// FeedPost is a post as rendered in a timeline, with counts and the
// viewer's own like/repost flags.
type FeedPost struct {
	ID           string                `json:"id"`
	Content      string                `json:"content"`
	Images       []string              `json:"images"`
	ParentID     *string               `json:"parent_id"`
	CreatedAt    time.Time             `json:"created_at"`
	Author       models.ProfileCompact `json:"author"`
	LikesCount   int64                 `json:"likes_count"`
	RepostsCount int64                 `json:"reposts_count"`
	RepliesCount int64                 `json:"replies_count"`
	IsLiked      bool                  `json:"is_liked"`
	IsReposted   bool                  `json:"is_reposted"`
}

type FeedPage struct {
	Posts      []FeedPost `json:"posts"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// PostThread is a post with its parent (for replies) and direct replies.
type PostThread struct {
	Post    FeedPost   `json:"post"`
	Parent  *FeedPost  `json:"parent,omitempty"`
	Replies []FeedPost `json:"replies"`
}

type FeedService struct {
	identity *IdentityResolver
	posts    repositories.PostRepository
	profiles repositories.ProfileRepository
	likes    repositories.LikeRepository
	reposts  repositories.RepostRepository
	follows  repositories.FollowRepository
	cache    cache.ViewCache
	metrics  *observability.Metrics
}

func NewFeedService(
	identity *IdentityResolver,
	posts repositories.PostRepository,
	profiles repositories.ProfileRepository,
	likes repositories.LikeRepository,
	reposts repositories.RepostRepository,
	follows repositories.FollowRepository,
	viewCache cache.ViewCache,
	metrics *observability.Metrics,
) *FeedService {
	if viewCache == nil {
		viewCache = cache.Noop{}
	}
	return &FeedService{
		identity: identity,
		posts:    posts,
		profiles: profiles,
		likes:    likes,
		reposts:  reposts,
		follows:  follows,
		cache:    viewCache,
		metrics:  metrics,
	}
}

// GlobalTimeline returns top-level posts from every author, newest first.
func (s *FeedService) GlobalTimeline(ctx context.Context, viewerExternalID, cursor string, limit int) (*FeedPage, error) {
	defer s.metrics.ObserveFeed("global", time.Now())

	viewer, err := s.identity.ResolveViewer(ctx, viewerExternalID)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, DefaultFeedLimit)
	q := repositories.PostPageQuery{TopLevelOnly: true, CursorID: cursor, Limit: limit}

	key := ""
	if cursor == "" && limit == DefaultFeedLimit {
		key = cache.GlobalFeedKey()
	}
	page, err := s.cachedPage(ctx, key, q)
	if err != nil {
		return nil, err
	}
	if err := s.applyViewerFlags(ctx, viewer, page.Posts); err != nil {
		return nil, err
	}
	return page, nil
}

// FollowingTimeline returns top-level posts by the profiles the viewer
// follows and by the viewer.
func (s *FeedService) FollowingTimeline(ctx context.Context, viewerExternalID, cursor string, limit int) (*FeedPage, error) {
	defer s.metrics.ObserveFeed("following", time.Now())

	viewer, err := s.identity.RequireProfile(ctx, viewerExternalID)
	if err != nil {
		return nil, err
	}
	followingIDs, err := s.follows.GetFollowingIDs(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	authorIDs := append(followingIDs, viewer.ID)

	q := repositories.PostPageQuery{
		AuthorIDs:    authorIDs,
		TopLevelOnly: true,
		CursorID:     cursor,
		Limit:        clampLimit(limit, DefaultFeedLimit),
	}
	page, err := s.cachedPage(ctx, "", q)
	if err != nil {
		return nil, err
	}
	if err := s.applyViewerFlags(ctx, viewer, page.Posts); err != nil {
		return nil, err
	}
	return page, nil
}

// ProfileTimeline returns every post, replies included, written by username.
func (s *FeedService) ProfileTimeline(ctx context.Context, viewerExternalID, username, cursor string, limit int) (*FeedPage, error) {
	defer s.metrics.ObserveFeed("profile", time.Now())

	author, err := s.profiles.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	viewer, err := s.identity.ResolveViewer(ctx, viewerExternalID)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, DefaultProfileLimit)
	q := repositories.PostPageQuery{AuthorIDs: []string{author.ID}, CursorID: cursor, Limit: limit}

	key := ""
	if cursor == "" && limit == DefaultProfileLimit {
		key = cache.ProfileFeedKey(author.ID)
	}
	page, err := s.cachedPage(ctx, key, q)
	if err != nil {
		return nil, err
	}
	if err := s.applyViewerFlags(ctx, viewer, page.Posts); err != nil {
		return nil, err
	}
	return page, nil
}

// PostThread returns a post, its parent when it is a reply, and its direct
// replies oldest first.
func (s *FeedService) PostThread(ctx context.Context, viewerExternalID, postID string) (*PostThread, error) {
	defer s.metrics.ObserveFeed("thread", time.Now())

	viewer, err := s.identity.ResolveViewer(ctx, viewerExternalID)
	if err != nil {
		return nil, err
	}

	var thread PostThread
	key := cache.ThreadKey(postID)
	if !s.cacheGet(ctx, key, &thread) {
		built, err := s.buildThread(ctx, postID)
		if err != nil {
			return nil, err
		}
		thread = *built
		s.cacheSet(ctx, key, thread)
	}

	all := make([]*FeedPost, 0, len(thread.Replies)+2)
	all = append(all, &thread.Post)
	if thread.Parent != nil {
		all = append(all, thread.Parent)
	}
	for i := range thread.Replies {
		all = append(all, &thread.Replies[i])
	}
	if err := s.decorate(ctx, viewer, all, false); err != nil {
		return nil, err
	}
	return &thread, nil
}

func (s *FeedService) buildThread(ctx context.Context, postID string) (*PostThread, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post")
	}
	thread := &PostThread{Post: toFeedPost(post)}

	if post.IsReply() {
		parent, err := s.posts.GetPostByID(ctx, *post.ParentID)
		switch {
		case err == nil:
			fp := toFeedPost(parent)
			thread.Parent = &fp
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	replies, err := s.posts.GetReplies(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	thread.Replies = make([]FeedPost, 0, len(replies))
	for i := range replies {
		thread.Replies = append(thread.Replies, toFeedPost(&replies[i]))
	}

	all := []*FeedPost{&thread.Post}
	if thread.Parent != nil {
		all = append(all, thread.Parent)
	}
	for i := range thread.Replies {
		all = append(all, &thread.Replies[i])
	}
	if err := s.decorate(ctx, nil, all, true); err != nil {
		return nil, err
	}
	return thread, nil
}

// cachedPage loads a page with counts attached. When key is set the
// viewer-independent page is read from and written to the view cache.
func (s *FeedService) cachedPage(ctx context.Context, key string, q repositories.PostPageQuery) (*FeedPage, error) {
	var page FeedPage
	if key != "" && s.cacheGet(ctx, key, &page) {
		return &page, nil
	}

	if q.CursorID != "" {
		ok, err := s.posts.ExistsPost(ctx, q.CursorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errNotFound("cursor")
		}
	}

	posts, err := s.posts.ListPosts(ctx, q)
	if err != nil {
		return nil, err
	}
	page.Posts = make([]FeedPost, 0, len(posts))
	for i := range posts {
		page.Posts = append(page.Posts, toFeedPost(&posts[i]))
	}
	if len(posts) == q.Limit && len(posts) > 0 {
		page.NextCursor = posts[len(posts)-1].ID
	}

	ptrs := make([]*FeedPost, len(page.Posts))
	for i := range page.Posts {
		ptrs[i] = &page.Posts[i]
	}
	if err := s.decorate(ctx, nil, ptrs, true); err != nil {
		return nil, err
	}

	if key != "" {
		s.cacheSet(ctx, key, page)
	}
	return &page, nil
}

func (s *FeedService) applyViewerFlags(ctx context.Context, viewer *models.Profile, posts []FeedPost) error {
	ptrs := make([]*FeedPost, len(posts))
	for i := range posts {
		ptrs[i] = &posts[i]
	}
	return s.decorate(ctx, viewer, ptrs, false)
}

// decorate fills counts (when withCounts) and viewer flags (when viewer is
// set) with one batched query per attribute, run concurrently.
func (s *FeedService) decorate(ctx context.Context, viewer *models.Profile, posts []*FeedPost, withCounts bool) error {
	if len(posts) == 0 || (!withCounts && viewer == nil) {
		return nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var (
		likeCounts, repostCounts, replyCounts map[string]int64
		liked, reposted                       map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	if withCounts {
		g.Go(func() (err error) {
			likeCounts, err = s.likes.CountsByPosts(gctx, ids)
			return err
		})
		g.Go(func() (err error) {
			repostCounts, err = s.reposts.CountsByPosts(gctx, ids)
			return err
		})
		g.Go(func() (err error) {
			replyCounts, err = s.posts.ReplyCounts(gctx, ids)
			return err
		})
	}
	if viewer != nil {
		g.Go(func() (err error) {
			liked, err = s.likes.LikedPostIDs(gctx, viewer.ID, ids)
			return err
		})
		g.Go(func() (err error) {
			reposted, err = s.reposts.RepostedPostIDs(gctx, viewer.ID, ids)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range posts {
		if withCounts {
			p.LikesCount = likeCounts[p.ID]
			p.RepostsCount = repostCounts[p.ID]
			p.RepliesCount = replyCounts[p.ID]
		}
		if viewer != nil {
			p.IsLiked = liked[p.ID]
			p.IsReposted = reposted[p.ID]
		}
	}
	return nil
}

func (s *FeedService) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	ok, err := s.cache.Get(ctx, key, dst)
	switch {
	case err != nil:
		s.metrics.CacheLookup("error")
		slog.WarnContext(ctx, "View cache read failed", "key", key, "error", err)
		return false
	case ok:
		s.metrics.CacheLookup("hit")
	default:
		s.metrics.CacheLookup("miss")
	}
	return ok
}

func (s *FeedService) cacheSet(ctx context.Context, key string, v interface{}) {
	if err := s.cache.Set(ctx, key, v); err != nil {
		slog.WarnContext(ctx, "View cache write failed", "key", key, "error", err)
	}
}

func toFeedPost(p *models.Post) FeedPost {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	return FeedPost{
		ID:        p.ID,
		Content:   p.Content,
		Images:    images,
		ParentID:  p.ParentID,
		CreatedAt: p.CreatedAt,
		Author:    p.Author.ToCompact(),
	}
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxFeedLimit {
		return MaxFeedLimit
	}
	return limit
}

// invalidateViews drops cached views, logging rather than failing.
func invalidateViews(ctx context.Context, c cache.ViewCache, keys ...string) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx, keys...); err != nil {
		slog.WarnContext(ctx, "View cache invalidation failed", "keys", keys, "error", err)
	}
}
