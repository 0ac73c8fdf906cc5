package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/farzamh/warlords/internal/model"
)

// BattleRepo handles the append-only battle audit table.
type BattleRepo struct {
	db *sql.DB
}

// NewBattleRepo creates a BattleRepo.
func NewBattleRepo(db *sql.DB) *BattleRepo {
	return &BattleRepo{db: db}
}

// AppendResolved commits one battle outcome in a single transaction:
// both countries' post-battle state plus the battle record. A failure
// anywhere rolls back everything, so a battle is never half-applied.
func (r *BattleRepo) AppendResolved(ctx context.Context, rec *model.BattleRecord, attacker, defender *model.Country) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range []*model.Country{attacker, defender} {
		resources, units, strategy, err := encodeCountry(c)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE countries SET resources = $3, units = $4, tech_level = $5,
			        morale = $6, strategy_state = $7
			 WHERE world_id = $1 AND country_id = $2`,
			c.WorldID, c.ID, resources, units, c.TechLevel, c.Morale, strategy)
		if err != nil {
			return fmt.Errorf("save combatant %d: %w", c.ID, err)
		}
	}

	unitsUsed, err := json.Marshal(rec.UnitsUsed)
	if err != nil {
		return fmt.Errorf("encode units used: %w", err)
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO battles (world_id, attacker_id, attacker_type, defender_id, defender_type,
		        units_used, attacker_power, defender_power, luck_factor, result, loot_fraction, loot_money)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING battle_id, created_at`,
		rec.WorldID, rec.AttackerID, rec.AttackerType, rec.DefenderID, rec.DefenderType,
		unitsUsed, rec.AttackerPower, rec.DefenderPower, rec.LuckFactor,
		rec.Result, rec.LootFraction, rec.LootMoney,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("append battle: %w", err)
	}

	return tx.Commit()
}

// ListByWorld returns a world's battle history, newest first.
func (r *BattleRepo) ListByWorld(ctx context.Context, worldID int64, limit int) ([]model.BattleRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT battle_id, world_id, attacker_id, attacker_type, defender_id, defender_type,
		        units_used, attacker_power, defender_power, luck_factor, result, loot_fraction,
		        loot_money, created_at
		 FROM battles WHERE world_id = $1 ORDER BY created_at DESC LIMIT $2`,
		worldID, limit)
	if err != nil {
		return nil, fmt.Errorf("list battles: %w", err)
	}
	defer rows.Close()

	var battles []model.BattleRecord
	for rows.Next() {
		var b model.BattleRecord
		var unitsUsed []byte
		if err := rows.Scan(&b.ID, &b.WorldID, &b.AttackerID, &b.AttackerType,
			&b.DefenderID, &b.DefenderType, &unitsUsed, &b.AttackerPower, &b.DefenderPower,
			&b.LuckFactor, &b.Result, &b.LootFraction, &b.LootMoney, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}
		if err := json.Unmarshal(unitsUsed, &b.UnitsUsed); err != nil {
			return nil, fmt.Errorf("decode units used: %w", err)
		}
		battles = append(battles, b)
	}
	return battles, rows.Err()
}
