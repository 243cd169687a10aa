package redis

import (
	"time"

	"github.com/hoed/wisata-ai/badge"
)

// A cacheBadge is the cached representation of a badge catalog entry.
type cacheBadge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func newCacheBadge(b badge.Badge) cacheBadge {
	return cacheBadge{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		ImageURL:    b.ImageURL,
		CreatedAt:   b.CreatedAt,
	}
}

func (c cacheBadge) Badge() badge.Badge {
	return badge.Badge{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		CreatedAt:   c.CreatedAt,
	}
}
