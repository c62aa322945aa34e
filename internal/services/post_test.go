package services

import (
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreateValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.profile(t, "alice")

	tests := []struct {
		name string
		req  models.CreatePostRequest
	}{
		{"empty", models.CreatePostRequest{Content: "   "}},
		{"too long", models.CreatePostRequest{Content: strings.Repeat("あ", MaxPostLength+1)}},
		{"too many images", models.CreatePostRequest{Images: []string{
			"https://i.test/1", "https://i.test/2", "https://i.test/3", "https://i.test/4", "https://i.test/5",
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.posts.Create(env.ctx, ext(alice), tt.req)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
	assert.Zero(t, env.count(t, &models.Post{}, ""))

	post, err := env.posts.Create(env.ctx, ext(alice), models.CreatePostRequest{Content: strings.Repeat("あ", MaxPostLength)})
	require.NoError(t, err)
	assert.Equal(t, "alice", post.Author.Username)

	imageOnly, err := env.posts.Create(env.ctx, ext(alice), models.CreatePostRequest{Images: []string{"https://i.test/1"}})
	require.NoError(t, err)
	assert.Empty(t, imageOnly.Content)

	_, err = env.posts.Create(env.ctx, ext(alice), models.CreatePostRequest{Content: "hi", ParentID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.posts.Create(env.ctx, "", models.CreatePostRequest{Content: "hi"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPostService_ReplyNotifiesParentAuthor(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.profile(t, "alice")
	bob := env.profile(t, "bob")
	root := env.post(t, alice, "root", time.Now())

	reply, err := env.posts.Create(env.ctx, ext(bob), models.CreatePostRequest{Content: "re", ParentID: root.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, root.ID, *reply.ParentID)

	var n models.Notification
	require.NoError(t, env.db.Where("type = ?", models.NotificationReply).First(&n).Error)
	assert.Equal(t, alice.ID, n.RecipientID)
	require.NotNil(t, n.PostID)
	assert.Equal(t, reply.ID, *n.PostID)

	// Replying to yourself is silent.
	_, err = env.posts.Create(env.ctx, ext(alice), models.CreatePostRequest{Content: "me too", ParentID: root.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.count(t, &models.Notification{}, ""))
}

func TestPostService_DeleteRemovesImagesAndReplies(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.profile(t, "alice")
	bob := env.profile(t, "bob")

	images := []string{"https://blob.test/media/a.png", "https://blob.test/media/b.png"}
	post, err := env.posts.Create(env.ctx, ext(alice), models.CreatePostRequest{Content: "pics", Images: images})
	require.NoError(t, err)
	reply, err := env.posts.Create(env.ctx, ext(bob), models.CreatePostRequest{Content: "nice", ParentID: post.ID})
	require.NoError(t, err)
	_, err = env.interactions.ToggleLike(env.ctx, ext(bob), post.ID)
	require.NoError(t, err)
	_, err = env.interactions.ToggleRepost(env.ctx, ext(alice), reply.ID)
	require.NoError(t, err)

	require.NoError(t, env.posts.Delete(env.ctx, ext(alice), post.ID))

	assert.Equal(t, images, env.store.Deleted())
	assert.Zero(t, env.count(t, &models.Post{}, ""))
	assert.Zero(t, env.count(t, &models.Like{}, ""))
	assert.Zero(t, env.count(t, &models.Repost{}, ""))
	assert.Zero(t, env.count(t, &models.Notification{}, "post_id IN ?", []string{post.ID, reply.ID}))

	err = env.posts.Delete(env.ctx, ext(alice), post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostService_DeleteByOtherUserIsForbidden(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.profile(t, "alice")
	mallory := env.profile(t, "mallory")

	post, err := env.posts.Create(env.ctx, ext(alice), models.CreatePostRequest{
		Content: "mine",
		Images:  []string{"https://blob.test/media/keep.png"},
	})
	require.NoError(t, err)

	err = env.posts.Delete(env.ctx, ext(mallory), post.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, env.store.Deleted())
	assert.Equal(t, int64(1), env.count(t, &models.Post{}, "id = ?", post.ID))

	err = env.posts.Delete(env.ctx, "", post.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
