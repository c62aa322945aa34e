package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EdgeToggle is the outcome of flipping a like, repost or follow edge.
type EdgeToggle struct {
	// Active reports whether the edge exists after the call.
	Active bool
	// Created is true only when this call inserted the edge. A concurrent
	// toggler that won the insert leaves Active true and Created false.
	Created bool
	// EdgeID is the id of the inserted row when Created is set.
	EdgeID string
}

// toggleEdge removes the edge matching match, or inserts row when nothing was
// removed. Notifications pointing at a removed edge are kept with ref cleared.
func toggleEdge[T any](ctx context.Context, db *gorm.DB, ref string, match map[string]interface{}, row *T, idOf func(*T) string) (EdgeToggle, error) {
	var out EdgeToggle
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := tx.Model(new(T)).Select("id").Where(match)
		if err := tx.Model(&models.Notification{}).
			Where(ref+" IN (?)", existing).
			Update(ref, nil).Error; err != nil {
			return err
		}

		res := tx.Where(match).Delete(new(T))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if res.Error != nil {
			return res.Error
		}
		out.Active = true
		if res.RowsAffected > 0 {
			out.Created = true
			out.EdgeID = idOf(row)
		}
		return nil
	})
	if err != nil {
		if IsDuplicateKey(err) {
			return EdgeToggle{Active: true}, nil
		}
		return EdgeToggle{}, err
	}
	return out, nil
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type postCount struct {
	PostID string
	N      int64
}

// countByPost runs one grouped COUNT over model keyed by column for every id.
func countByPost(ctx context.Context, db *gorm.DB, model interface{}, column string, ids []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []postCount
	err := db.WithContext(ctx).Model(model).
		Select(column+" AS post_id, COUNT(*) AS n").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PostID] = row.N
	}
	return counts, nil
}

// markedPostIDs returns which of postIDs userID has an edge to in model.
func markedPostIDs(ctx context.Context, db *gorm.DB, model interface{}, userID string, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 || userID == "" {
		return result, nil
	}
	var ids []string
	err := db.WithContext(ctx).Model(model).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
