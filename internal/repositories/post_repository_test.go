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

func TestListPosts_CursorPagesDoNotOverlap(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresPostRepository(db)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, db, "alice")

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		testutil.CreatePost(t, db, alice, "post", base.Add(time.Duration(i)*time.Minute), "")
	}
	// Two posts sharing a timestamp are ordered by id.
	testutil.CreatePost(t, db, alice, "tie", base.Add(3*time.Minute), "")

	seen := map[string]bool{}
	var all []models.Post
	cursor := ""
	for {
		page, err := repo.ListPosts(ctx, PostPageQuery{TopLevelOnly: true, CursorID: cursor, Limit: 3})
		require.NoError(t, err)
		for _, p := range page {
			assert.False(t, seen[p.ID], "post %s returned twice", p.ID)
			seen[p.ID] = true
			require.NotNil(t, p.Author)
			assert.Equal(t, "alice", p.Author.Username)
		}
		all = append(all, page...)
		if len(page) < 3 {
			break
		}
		cursor = page[len(page)-1].ID
	}

	require.Len(t, all, 8)
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		ordered := prev.CreatedAt.After(cur.CreatedAt) ||
			(prev.CreatedAt.Equal(cur.CreatedAt) && prev.ID > cur.ID)
		assert.True(t, ordered, "posts %d and %d out of order", i-1, i)
	}
}

func TestListPosts_FiltersAuthorsAndReplies(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresPostRepository(db)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")

	now := time.Now()
	root := testutil.CreatePost(t, db, alice, "root", now.Add(-time.Hour), "")
	testutil.CreatePost(t, db, bob, "reply", now.Add(-30*time.Minute), root.ID)
	testutil.CreatePost(t, db, bob, "own", now, "")

	top, err := repo.ListPosts(ctx, PostPageQuery{TopLevelOnly: true, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, top, 2)

	bobs, err := repo.ListPosts(ctx, PostPageQuery{AuthorIDs: []string{bob.ID}, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, bobs, 2)

	counts, err := repo.ReplyCounts(ctx, []string{root.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[root.ID])
}

func TestDeletePostTree_RemovesDescendantsAndEdges(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostgresPostRepository(db)
	likes := NewPostgresLikeRepository(db)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, db, "alice")
	bob := testutil.CreateProfile(t, db, "bob")

	now := time.Now()
	root := testutil.CreatePost(t, db, alice, "root", now, "")
	reply := testutil.CreatePost(t, db, bob, "reply", now.Add(time.Second), root.ID)
	nested := testutil.CreatePost(t, db, alice, "nested", now.Add(2*time.Second), reply.ID)
	other := testutil.CreatePost(t, db, bob, "other", now, "")

	_, err := likes.Toggle(ctx, bob.ID, nested.ID)
	require.NoError(t, err)
	_, err = likes.Toggle(ctx, alice.ID, other.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Notification{
		Type: models.NotificationReply, RecipientID: alice.ID, ActorID: bob.ID, PostID: &reply.ID,
	}).Error)

	removed, err := repo.DeletePostTree(ctx, root.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root.ID, reply.ID, nested.ID}, removed)

	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Post{}, ""))
	assert.Equal(t, int64(1), testutil.Count(t, db, &models.Like{}, ""))
	assert.Equal(t, int64(0), testutil.Count(t, db, &models.Notification{}, ""))

	_, err = repo.DeletePostTree(ctx, root.ID)
	assert.Error(t, err)
}
