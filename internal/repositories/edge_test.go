package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeToggle_FlipsEdge(t *testing.T) {
	db := testutil.NewDB(t)
	likes := NewPostgresLikeRepository(db)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "hello", time.Now(), "")

	on, err := likes.Toggle(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, on.Active)
	assert.True(t, on.Created)
	assert.NotEmpty(t, on.EdgeID)

	n, err := likes.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	off, err := likes.Toggle(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, off.Active)
	assert.False(t, off.Created)

	n, err = likes.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestToggle_KeepsNotificationAndClearsReference(t *testing.T) {
	db := testutil.NewDB(t)
	follows := NewPostgresFollowRepository(db)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")

	on, err := follows.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, on.Created)
	require.NoError(t, db.Create(&models.Notification{
		Type: models.NotificationFollow, RecipientID: bob.ID, ActorID: alice.ID, FollowID: &on.EdgeID,
	}).Error)

	_, err = follows.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	var n models.Notification
	require.NoError(t, db.First(&n).Error)
	assert.Nil(t, n.FollowID)

	following, err := follows.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestToggle_ConcurrentInsertIsAbsorbed(t *testing.T) {
	db := testutil.NewDB(t)
	reposts := NewPostgresRepostRepository(db)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, "x", time.Now(), "")

	// The guard matches nothing while the inserted row collides with an
	// existing edge, which is what a concurrent toggler leaves behind.
	require.NoError(t, db.Create(&models.Repost{UserID: alice.ID, PostID: post.ID}).Error)

	out, err := toggleEdge(ctx, db, "repost_id",
		map[string]interface{}{"user_id": "nobody", "post_id": post.ID},
		&models.Repost{UserID: alice.ID, PostID: post.ID},
		func(r *models.Repost) string { return r.ID })
	require.NoError(t, err)
	assert.True(t, out.Active)
	assert.False(t, out.Created)

	n, err := reposts.CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBatchedLookups(t *testing.T) {
	db := testutil.NewDB(t)
	likes := NewPostgresLikeRepository(db)
	reposts := NewPostgresRepostRepository(db)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")
	p1 := testutil.CreatePost(t, db, alice, "1", time.Now(), "")
	p2 := testutil.CreatePost(t, db, alice, "2", time.Now(), "")

	for _, uid := range []string{alice.ID, bob.ID} {
		_, err := likes.Toggle(ctx, uid, p1.ID)
		require.NoError(t, err)
	}
	_, err := reposts.Toggle(ctx, bob.ID, p2.ID)
	require.NoError(t, err)

	counts, err := likes.CountsByPosts(ctx, []string{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[p1.ID])
	assert.Equal(t, int64(0), counts[p2.ID])

	liked, err := likes.LikedPostIDs(ctx, bob.ID, []string{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{p1.ID: true}, liked)

	reposted, err := reposts.RepostedPostIDs(ctx, bob.ID, []string{p1.ID, p2.ID})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{p2.ID: true}, reposted)

	empty, err := likes.LikedPostIDs(ctx, "", []string{p1.ID})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
