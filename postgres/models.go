package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/hoed/wisata-ai/badge"
)

// A travelBadge represents a badge catalog entry in the database.
type travelBadge struct {
	bun.BaseModel `bun:"table:travel_badges"`

	ID          string    `bun:",pk,type:uuid"`
	Name        string    `bun:",notnull"`
	Description string    `bun:",notnull"`
	ImageURL    string    `bun:"image_url,notnull"`
	CreatedAt   time.Time `bun:",nullzero,default:now()"`
}

// A userBadge records a single badge award. The composite unique constraint
// on (user_id, badge_id) makes awards idempotent at the storage layer.
type userBadge struct {
	bun.BaseModel `bun:"table:user_badges"`

	ID       string    `bun:",pk,type:uuid"`
	UserID   string    `bun:"user_id,notnull,unique:user_badges_user_id_badge_id_key"`
	BadgeID  string    `bun:"badge_id,notnull,unique:user_badges_user_id_badge_id_key"`
	EarnedAt time.Time `bun:",nullzero,default:now()"`
}

func (b travelBadge) Badge() badge.Badge {
	return badge.Badge{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		ImageURL:    b.ImageURL,
		CreatedAt:   b.CreatedAt,
	}
}

func (ub userBadge) UserBadge() badge.UserBadge {
	return badge.UserBadge{
		ID:       ub.ID,
		UserID:   ub.UserID,
		BadgeID:  ub.BadgeID,
		EarnedAt: ub.EarnedAt,
	}
}
