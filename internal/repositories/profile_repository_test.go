package repositories

import (
	"context"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchProfiles(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresProfileRepository(db)
	tags := NewPostgresTagRepository(db)
	ctx := context.Background()

	liver := &models.Tag{Name: "LIVER", DisplayName: "ライバー"}
	require.NoError(t, tags.UpsertTag(ctx, liver))

	alice := testutil.CreateProfile(t, db, "AliceSings")
	alice.TagID = &liver.ID
	require.NoError(t, repo.UpdateProfile(ctx, alice))
	testutil.CreateProfile(t, db, "alicia")
	testutil.CreateProfile(t, db, "bob")

	found, err := repo.SearchProfiles(ctx, "ALI", nil, 20)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.SearchProfiles(ctx, "ali", []string{liver.ID}, 20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "AliceSings", found[0].Username)
	require.NotNil(t, found[0].Tag)
	assert.Equal(t, "LIVER", found[0].Tag.Name)
}

func TestSearchProfiles_WildcardsAreLiteral(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresProfileRepository(db)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "a_b", "axb"} {
		testutil.CreateProfile(t, db, name)
	}

	usernames := func(query string) []string {
		t.Helper()
		found, err := repo.SearchProfiles(ctx, query, nil, 20)
		require.NoError(t, err)
		out := make([]string, 0, len(found))
		for _, p := range found {
			out = append(out, p.Username)
		}
		return out
	}

	assert.Equal(t, []string{"a_b"}, usernames("_"))
	assert.Equal(t, []string{"a_b"}, usernames("A_B"))
	assert.Empty(t, usernames("%"))
	assert.Empty(t, usernames("!"))
	assert.ElementsMatch(t, []string{"bob", "a_b", "axb"}, usernames("b"))
}

func TestUsernameTaken(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresProfileRepository(db)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, db, "alice")

	taken, err := repo.UsernameTaken(ctx, "alice", "")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.UsernameTaken(ctx, "alice", alice.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestNotificationSettings_GetOrCreateAndPartialUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresNotificationSettingsRepository(db)
	ctx := context.Background()

	d, err := repo.Find(ctx, "uid-1")
	require.NoError(t, err)
	assert.True(t, d.OnLike)
	assert.Equal(t, int64(0), testutil.Count(t, db, &models.NotificationSettings{}, ""))

	s, err := repo.GetOrCreate(ctx, "uid-1")
	require.NoError(t, err)
	assert.True(t, s.OnFollow && s.OnLike && s.OnRepost && s.OnReply)

	s, err = repo.Update(ctx, "uid-1", map[string]interface{}{"on_like": false})
	require.NoError(t, err)
	assert.False(t, s.OnLike)
	assert.True(t, s.OnFollow)

	again, err := repo.GetOrCreate(ctx, "uid-1")
	require.NoError(t, err)
	assert.False(t, again.OnLike)
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.NotificationSettings{}, ""))
}

func TestUpsertTag_RefreshesDisplayName(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresTagRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertTag(ctx, &models.Tag{Name: "LISTENER", DisplayName: "old"}))
	require.NoError(t, repo.UpsertTag(ctx, &models.Tag{Name: "LISTENER", DisplayName: "リスナー"}))

	tags, err := repo.GetTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "リスナー", tags[0].DisplayName)
}
