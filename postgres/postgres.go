// Package postgres persists the badge catalog and user badge awards in
// PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/hoed/wisata-ai/badge"
)

// pgUniqueViolation is the SQLSTATE code for unique_violation.
const pgUniqueViolation = "23505"

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and pings it to ensure the connection is
// working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// Migrate creates the badge tables if they do not exist. The composite unique
// index on user_badges is what ultimately guarantees at-most-once awards.
func (pg *Postgres) Migrate(ctx context.Context) error {
	models := []any{
		(*travelBadge)(nil),
		(*userBadge)(nil),
	}
	for _, m := range models {
		if _, err := pg.bun.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// ListBadges returns the full badge catalog.
func (pg *Postgres) ListBadges(ctx context.Context) ([]badge.Badge, error) {
	var rows []travelBadge
	if err := pg.bun.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]badge.Badge, len(rows))
	for i, r := range rows {
		out[i] = r.Badge()
	}
	return out, nil
}

// CountBadges returns the number of catalog entries.
func (pg *Postgres) CountBadges(ctx context.Context) (int, error) {
	count, err := pg.bun.NewSelect().Model((*travelBadge)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return count, nil
}

// BulkInsertBadges inserts catalog entries in a single statement.
func (pg *Postgres) BulkInsertBadges(ctx context.Context, badges []badge.Badge) error {
	if len(badges) == 0 {
		return nil
	}
	rows := make([]travelBadge, len(badges))
	for i, b := range badges {
		rows[i] = travelBadge{
			ID:          uuid.NewString(),
			Name:        b.Name,
			Description: b.Description,
			ImageURL:    b.ImageURL,
		}
	}
	if _, err := pg.bun.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

// FindUserBadge returns the award row for the pair, or nil when the user has
// not earned the badge.
func (pg *Postgres) FindUserBadge(ctx context.Context, userID, badgeID string) (*badge.UserBadge, error) {
	var row userBadge
	err := pg.bun.NewSelect().
		Model(&row).
		Where("user_id = ?", userID).
		Where("badge_id = ?", badgeID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	ub := row.UserBadge()
	return &ub, nil
}

// InsertUserBadge records an award. A unique-constraint rejection on the
// (user_id, badge_id) pair is reported as badge.ErrAlreadyAwarded so callers
// can treat losing the check-then-insert race as a benign no-op.
func (pg *Postgres) InsertUserBadge(ctx context.Context, userID, badgeID string) (badge.UserBadge, error) {
	row := &userBadge{
		ID:      uuid.NewString(),
		UserID:  userID,
		BadgeID: badgeID,
	}
	if _, err := pg.bun.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return badge.UserBadge{}, badge.ErrAlreadyAwarded
		}
		return badge.UserBadge{}, fmt.Errorf("insert: %w", err)
	}
	return row.UserBadge(), nil
}

// ListUserBadges returns all badges earned by the user.
func (pg *Postgres) ListUserBadges(ctx context.Context, userID string) ([]badge.UserBadge, error) {
	var rows []userBadge
	err := pg.bun.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([]badge.UserBadge, len(rows))
	for i, r := range rows {
		out[i] = r.UserBadge()
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation
}
