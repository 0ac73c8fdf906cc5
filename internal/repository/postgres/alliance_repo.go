package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farzamh/warlords/internal/model"
)

// AllianceRepo handles alliances and their append-only membership.
type AllianceRepo struct {
	db *sql.DB
}

// NewAllianceRepo creates an AllianceRepo.
func NewAllianceRepo(db *sql.DB) *AllianceRepo {
	return &AllianceRepo{db: db}
}

// Create founds a new alliance containing only the founder.
func (r *AllianceRepo) Create(ctx context.Context, worldID int64, name string, founderID int64) (*model.Alliance, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var a model.Alliance
	err = tx.QueryRowContext(ctx,
		`INSERT INTO alliances (world_id, name) VALUES ($1, $2)
		 RETURNING alliance_id, world_id, name, created_at`,
		worldID, name,
	).Scan(&a.ID, &a.WorldID, &a.Name, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create alliance: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO alliance_members (alliance_id, country_id) VALUES ($1, $2)`,
		a.ID, founderID)
	if err != nil {
		return nil, fmt.Errorf("add founder: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	a.Members = []int64{founderID}
	return &a, nil
}

// ListByWorld returns a world's alliances with their members.
func (r *AllianceRepo) ListByWorld(ctx context.Context, worldID int64) ([]model.Alliance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT alliance_id, world_id, name, created_at
		 FROM alliances WHERE world_id = $1 ORDER BY created_at`, worldID)
	if err != nil {
		return nil, fmt.Errorf("list alliances: %w", err)
	}
	defer rows.Close()

	var alliances []model.Alliance
	for rows.Next() {
		var a model.Alliance
		if err := rows.Scan(&a.ID, &a.WorldID, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alliance: %w", err)
		}
		alliances = append(alliances, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range alliances {
		members, err := r.members(ctx, alliances[i].ID)
		if err != nil {
			return nil, err
		}
		alliances[i].Members = members
	}
	return alliances, nil
}

// AddMember adds a country to an alliance. Adding an existing member is
// a no-op.
func (r *AllianceRepo) AddMember(ctx context.Context, allianceID, countryID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO alliance_members (alliance_id, country_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		allianceID, countryID)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// IsMember reports whether a country belongs to any alliance in its world.
func (r *AllianceRepo) IsMember(ctx context.Context, worldID, countryID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM alliance_members m
		   JOIN alliances a ON a.alliance_id = m.alliance_id
		   WHERE a.world_id = $1 AND m.country_id = $2)`,
		worldID, countryID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return exists, nil
}

func (r *AllianceRepo) members(ctx context.Context, allianceID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT country_id FROM alliance_members WHERE alliance_id = $1 ORDER BY joined_at`,
		allianceID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}
