package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farzamh/warlords/internal/model"
)

// WorldRepo handles world (game instance) rows.
type WorldRepo struct {
	db *sql.DB
}

// NewWorldRepo creates a WorldRepo.
func NewWorldRepo(db *sql.DB) *WorldRepo {
	return &WorldRepo{db: db}
}

// Create inserts a new active world.
func (r *WorldRepo) Create(ctx context.Context, name string, ownerID int64) (*model.World, error) {
	var w model.World
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO worlds (name, owner_id) VALUES ($1, $2)
		 RETURNING world_id, name, owner_id, status, created_at`,
		name, ownerID,
	).Scan(&w.ID, &w.Name, &w.OwnerID, &w.Status, &w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create world: %w", err)
	}
	return &w, nil
}

// FindByID returns a world by ID, or (nil, nil) when absent.
func (r *WorldRepo) FindByID(ctx context.Context, worldID int64) (*model.World, error) {
	var w model.World
	err := r.db.QueryRowContext(ctx,
		`SELECT world_id, name, owner_id, status, created_at FROM worlds WHERE world_id = $1`,
		worldID,
	).Scan(&w.ID, &w.Name, &w.OwnerID, &w.Status, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find world: %w", err)
	}
	return &w, nil
}

// ListActive returns all active worlds, oldest first.
func (r *WorldRepo) ListActive(ctx context.Context) ([]model.World, error) {
	return r.list(ctx,
		`SELECT world_id, name, owner_id, status, created_at
		 FROM worlds WHERE status = 'active' ORDER BY created_at`)
}

// ListByOwner returns the worlds belonging to one owner.
func (r *WorldRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.World, error) {
	return r.list(ctx,
		`SELECT world_id, name, owner_id, status, created_at
		 FROM worlds WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

// SetStatus updates a world's status.
func (r *WorldRepo) SetStatus(ctx context.Context, worldID int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE worlds SET status = $1 WHERE world_id = $2`, status, worldID)
	if err != nil {
		return fmt.Errorf("set world status: %w", err)
	}
	return nil
}

func (r *WorldRepo) list(ctx context.Context, query string, args ...any) ([]model.World, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list worlds: %w", err)
	}
	defer rows.Close()

	var worlds []model.World
	for rows.Next() {
		var w model.World
		if err := rows.Scan(&w.ID, &w.Name, &w.OwnerID, &w.Status, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan world: %w", err)
		}
		worlds = append(worlds, w)
	}
	return worlds, rows.Err()
}
