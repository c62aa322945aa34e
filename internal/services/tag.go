package services

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
)

// SystemTags is the built-in tag vocabulary.
var SystemTags = []models.Tag{
	{Name: "LIVER", DisplayName: "ライバー"},
	{Name: "LISTENER", DisplayName: "リスナー"},
}

type TagService struct {
	tags repositories.TagRepository
}

func NewTagService(tags repositories.TagRepository) *TagService {
	return &TagService{tags: tags}
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	return s.tags.GetTags(ctx)
}

func (s *TagService) Get(ctx context.Context, id string) (*models.Tag, error) {
	tag, err := s.tags.GetTagByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "tag")
	}
	return tag, nil
}

// SeedSystemTags inserts the built-in tags, refreshing display names of existing ones.
func (s *TagService) SeedSystemTags(ctx context.Context) error {
	for _, t := range SystemTags {
		tag := t
		if err := s.tags.UpsertTag(ctx, &tag); err != nil {
			return err
		}
	}
	return nil
}
