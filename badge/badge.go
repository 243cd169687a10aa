// Package badge implements the travel badge achievement rules: awarding a
// named badge to a user at most once, and seeding the default badge catalog.
package badge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrAlreadyAwarded is returned by a Store when inserting a user badge that
// violates the (user_id, badge_id) uniqueness constraint. The evaluator
// treats it as the canonical "already awarded" signal rather than an error.
var ErrAlreadyAwarded = errors.New("badge already awarded")

// A Badge is a catalog entry describing an achievement users can earn.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// A UserBadge records that a user earned a badge. At most one row exists per
// (UserID, BadgeID) pair; the storage layer enforces this with a unique
// constraint.
type UserBadge struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// A Store provides the persistence operations the evaluator and seeder
// consume.
type Store interface {
	ListBadges(ctx context.Context) ([]Badge, error)
	CountBadges(ctx context.Context) (int, error)
	BulkInsertBadges(ctx context.Context, badges []Badge) error
	// FindUserBadge returns nil, nil when the pair has no row.
	FindUserBadge(ctx context.Context, userID, badgeID string) (*UserBadge, error)
	// InsertUserBadge returns ErrAlreadyAwarded on a duplicate pair.
	InsertUserBadge(ctx context.Context, userID, badgeID string) (UserBadge, error)
	ListUserBadges(ctx context.Context, userID string) ([]UserBadge, error)
}

// Evaluator applies the badge award rules on top of a Store.
type Evaluator struct {
	Logger *slog.Logger
	Store  Store
}

// CheckAndAward grants the named badge to the user when the condition holds
// and the user does not already have it. It reports whether a new badge was
// awarded. An empty userID or a false condition is a no-op. The existence
// pre-check is only a fast path; the storage layer's uniqueness constraint is
// the final arbiter, and a duplicate-key rejection on insert is treated as
// "already awarded", not as an error.
func (e *Evaluator) CheckAndAward(ctx context.Context, userID, badgeName string, condition bool) (bool, error) {
	if userID == "" || !condition {
		return false, nil
	}

	badges, err := e.Store.ListBadges(ctx)
	if err != nil {
		e.Logger.Error("Could not list badges", "error", err.Error())
		return false, fmt.Errorf("list badges: %w", err)
	}

	var toAward *Badge
	for i := range badges {
		if badges[i].Name == badgeName {
			toAward = &badges[i]
			break
		}
	}
	if toAward == nil {
		e.Logger.Error("Badge not found", "badge", badgeName)
		return false, nil
	}

	existing, err := e.Store.FindUserBadge(ctx, userID, toAward.ID)
	if err != nil {
		e.Logger.Error("Could not check existing badge", "error", err.Error())
		return false, fmt.Errorf("find user badge: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	if _, err := e.Store.InsertUserBadge(ctx, userID, toAward.ID); err != nil {
		if errors.Is(err, ErrAlreadyAwarded) {
			// Lost the race to a concurrent award. Not an error.
			return false, nil
		}
		e.Logger.Error("Could not award badge", "badge", badgeName, "error", err.Error())
		return false, fmt.Errorf("insert user badge: %w", err)
	}

	e.Logger.Info("Awarded badge", "user_id", userID, "badge", badgeName)
	return true, nil
}

// EnsureDefaultBadges seeds the badge catalog with the default definitions if
// the catalog is empty. Seeding is best-effort: failures are logged, never
// returned. Two concurrent first-run invocations can both observe an empty
// catalog and both insert; this known race is not remediated.
func (e *Evaluator) EnsureDefaultBadges(ctx context.Context) {
	count, err := e.Store.CountBadges(ctx)
	if err != nil {
		e.Logger.Error("Could not check for existing badges", "error", err.Error())
		return
	}
	if count > 0 {
		return
	}

	if err := e.Store.BulkInsertBadges(ctx, DefaultBadges()); err != nil {
		e.Logger.Error("Could not create default badges", "error", err.Error())
		return
	}
	e.Logger.Info("Seeded default badges", "count", len(DefaultBadges()))
}

// DefaultBadges returns the fixed catalog seeded on first run.
func DefaultBadges() []Badge {
	return []Badge{
		{
			Name:        "Borobudur Explorer",
			Description: "Visited the magnificent Borobudur Temple in Central Java",
			ImageURL:    "https://i.imgur.com/FaaFHjK.png",
		},
		{
			Name:        "Bali Beach Connoisseur",
			Description: "Explored at least 5 different beaches in Bali",
			ImageURL:    "https://i.imgur.com/UBjdQpb.png",
		},
		{
			Name:        "Culinary Adventurer",
			Description: "Tried 10 different traditional Indonesian dishes",
			ImageURL:    "https://i.imgur.com/7nkXJMZ.png",
		},
		{
			Name:        "Komodo Dragon Spotter",
			Description: "Spotted the legendary Komodo dragons in their natural habitat",
			ImageURL:    "https://i.imgur.com/mXeyR3w.png",
		},
		{
			Name:        "Temple Pilgrim",
			Description: "Visited at least 5 ancient temples across Indonesia",
			ImageURL:    "https://i.imgur.com/tY8ygd3.png",
		},
	}
}
