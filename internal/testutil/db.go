// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB opens a migrated, private in-memory SQLite database that is closed
// when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateProfile inserts a profile whose external id is "ext-"+username.
func CreateProfile(t *testing.T, db *gorm.DB, username string) *models.Profile {
	t.Helper()
	p := &models.Profile{
		ExternalID: "ext-" + username,
		Username:   username,
		Name:       username,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreatePost inserts a post by author at the given time. parentID may be empty.
func CreatePost(t *testing.T, db *gorm.DB, author *models.Profile, content string, at time.Time, parentID string) *models.Post {
	t.Helper()
	p := &models.Post{
		AuthorID: author.ID,
		Content:  content,
		Images:   []string{},
	}
	p.CreatedAt = at
	if parentID != "" {
		p.ParentID = &parentID
	}
	require.NoError(t, db.Omit("Author").Create(p).Error)
	return p
}

// Count returns the number of rows of model matching the optional condition.
func Count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.WithContext(context.Background()).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
