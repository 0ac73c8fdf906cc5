package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/farzamh/warlords/internal/model"
)

// CountryRepo handles country rows. Resources and units are stored as
// JSONB keyed by the field names the engine defines.
type CountryRepo struct {
	db *sql.DB
}

// NewCountryRepo creates a CountryRepo.
func NewCountryRepo(db *sql.DB) *CountryRepo {
	return &CountryRepo{db: db}
}

const countryColumns = `world_id, country_id, name, controller, resources, units,
	tech_level, morale, personality, strategy_state, created_at`

// Find returns a country by world and ID, or (nil, nil) when absent.
func (r *CountryRepo) Find(ctx context.Context, worldID, countryID int64) (*model.Country, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+countryColumns+` FROM countries WHERE world_id = $1 AND country_id = $2`,
		worldID, countryID)
	c, err := scanCountry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find country: %w", err)
	}
	return c, nil
}

// Create inserts a new country.
func (r *CountryRepo) Create(ctx context.Context, c *model.Country) error {
	resources, units, strategy, err := encodeCountry(c)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO countries (world_id, country_id, name, controller, resources, units,
		        tech_level, morale, personality, strategy_state)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at`,
		c.WorldID, c.ID, c.Name, c.Controller, resources, units,
		c.TechLevel, c.Morale, c.Personality, strategy,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create country: %w", err)
	}
	return nil
}

// Save writes the full mutable state of a country.
func (r *CountryRepo) Save(ctx context.Context, c *model.Country) error {
	resources, units, strategy, err := encodeCountry(c)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE countries SET name = $3, resources = $4, units = $5, tech_level = $6,
		        morale = $7, personality = $8, strategy_state = $9
		 WHERE world_id = $1 AND country_id = $2`,
		c.WorldID, c.ID, c.Name, resources, units, c.TechLevel, c.Morale, c.Personality, strategy)
	if err != nil {
		return fmt.Errorf("save country: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("save country: %w", sql.ErrNoRows)
	}
	return nil
}

// Delete removes a country. Battle and loan audit rows stay.
func (r *CountryRepo) Delete(ctx context.Context, worldID, countryID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM countries WHERE world_id = $1 AND country_id = $2`, worldID, countryID)
	if err != nil {
		return fmt.Errorf("delete country: %w", err)
	}
	return nil
}

// ListByWorld returns every country registered in a world.
func (r *CountryRepo) ListByWorld(ctx context.Context, worldID int64) ([]model.Country, error) {
	return r.list(ctx,
		`SELECT `+countryColumns+` FROM countries WHERE world_id = $1 ORDER BY country_id`,
		worldID)
}

// ListAIByWorld returns the AI-controlled countries in a world.
func (r *CountryRepo) ListAIByWorld(ctx context.Context, worldID int64) ([]model.Country, error) {
	return r.list(ctx,
		`SELECT `+countryColumns+` FROM countries
		 WHERE world_id = $1 AND controller = 'ai' ORDER BY country_id`,
		worldID)
}

// NextAIID reserves the next AI country ID for a world. AI IDs descend
// from -1 so they never collide with gateway user IDs.
func (r *CountryRepo) NextAIID(ctx context.Context, worldID int64) (int64, error) {
	var next int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MIN(country_id), 0) FROM countries
		 WHERE world_id = $1 AND country_id < 0`, worldID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next ai id: %w", err)
	}
	return next - 1, nil
}

func (r *CountryRepo) list(ctx context.Context, query string, args ...any) ([]model.Country, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	var countries []model.Country
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, *c)
	}
	return countries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCountry(row rowScanner) (*model.Country, error) {
	var c model.Country
	var resources, units []byte
	var strategy sql.NullString
	err := row.Scan(&c.WorldID, &c.ID, &c.Name, &c.Controller, &resources, &units,
		&c.TechLevel, &c.Morale, &c.Personality, &strategy, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(resources, &c.Resources); err != nil {
		return nil, fmt.Errorf("decode resources: %w", err)
	}
	if err := json.Unmarshal(units, &c.Units); err != nil {
		return nil, fmt.Errorf("decode units: %w", err)
	}
	if strategy.Valid {
		c.StrategyState = json.RawMessage(strategy.String)
	}
	return &c, nil
}

func encodeCountry(c *model.Country) (resources, units []byte, strategy any, err error) {
	resources, err = json.Marshal(c.Resources)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode resources: %w", err)
	}
	units, err = json.Marshal(c.Units)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("encode units: %w", err)
	}
	if len(c.StrategyState) > 0 {
		strategy = string(c.StrategyState)
	}
	return resources, units, strategy, nil
}
