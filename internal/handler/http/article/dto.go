// Package article serves the article feed, the read and favorite flags and
// the caller's favorites.
package article

import (
	"time"

	"my-ankode/internal/domain/entity"

	"github.com/samber/lo"
)

// DTO is the JSON form of an article as seen by one viewer.
type DTO struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Source      string     `json:"source"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	Public      bool       `json:"public"`
	Read        bool       `json:"read"`
	Favorite    bool       `json:"favorite"`
}

func toDTO(v *entity.ArticleView) DTO {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	return DTO{
		ID:          v.ID,
		Title:       v.Title,
		URL:         v.URL,
		Description: v.Description,
		Source:      v.Source,
		Tags:        tags,
		PublishedAt: v.PublishedAt,
		CreatedAt:   v.CreatedAt,
		Public:      v.IsPublic(),
		Read:        v.Read,
		Favorite:    v.Favorite,
	}
}

func toDTOs(views []*entity.ArticleView) []DTO {
	return lo.Map(views, func(v *entity.ArticleView, _ int) DTO { return toDTO(v) })
}
