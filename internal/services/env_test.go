package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/blobstore"
	"github.com/anonto42/nano-social/backend/internal/cache"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type testEnv struct {
	ctx           context.Context
	db            *gorm.DB
	store         *blobstore.Memory
	identity      *IdentityResolver
	feed          *FeedService
	interactions  *InteractionService
	notifications *NotificationService
	media         *MediaService
	posts         *PostService
	profiles      *ProfileService
	tags          *TagService
}

func newTestEnv(t *testing.T, viewCache cache.ViewCache) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	store := blobstore.NewMemory("https://blob.test/media")

	profileRepo := repositories.NewPostgresProfileRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	repostRepo := repositories.NewPostgresRepostRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)
	settingsRepo := repositories.NewPostgresNotificationSettingsRepository(db)
	tagRepo := repositories.NewPostgresTagRepository(db)

	identity := NewIdentityResolver(profileRepo)
	notifications := NewNotificationService(identity, profileRepo, notificationRepo, settingsRepo, metrics)
	media := NewMediaService(store, metrics)
	return &testEnv{
		ctx:           context.Background(),
		db:            db,
		store:         store,
		identity:      identity,
		feed:          NewFeedService(identity, postRepo, profileRepo, likeRepo, repostRepo, followRepo, viewCache, metrics),
		interactions:  NewInteractionService(identity, postRepo, profileRepo, likeRepo, repostRepo, followRepo, notifications, viewCache, metrics),
		notifications: notifications,
		media:         media,
		posts:         NewPostService(identity, postRepo, notifications, media, viewCache),
		profiles:      NewProfileService(identity, profileRepo, tagRepo, followRepo, postRepo, viewCache),
		tags:          NewTagService(tagRepo),
	}
}

// profile creates a profile whose external id is "ext-"+username.
func (e *testEnv) profile(t *testing.T, username string) *models.Profile {
	t.Helper()
	return testutil.CreateProfile(t, e.db, username)
}

func (e *testEnv) post(t *testing.T, author *models.Profile, content string, at time.Time) *models.Post {
	t.Helper()
	return testutil.CreatePost(t, e.db, author, content, at, "")
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	return testutil.Count(t, e.db, model, query, args...)
}

func ext(p *models.Profile) string {
	return p.ExternalID
}
