package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farzamh/warlords/internal/model"
)

// Key patterns for cached country state.
func profileKey(worldID, countryID int64) string {
	return "world:" + strconv.FormatInt(worldID, 10) + ":country:" + strconv.FormatInt(countryID, 10)
}

func loanCooldownKey(worldID, countryID int64) string {
	return profileKey(worldID, countryID) + ":loan_cooldown"
}

func worldPattern(worldID int64) string {
	return "world:" + strconv.FormatInt(worldID, 10) + ":*"
}

// profileTTL bounds staleness if an invalidation is ever missed.
const profileTTL = 10 * time.Minute

// SetProfile caches a country snapshot.
func (c *Client) SetProfile(ctx context.Context, country *model.Country) error {
	data, err := json.Marshal(country)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return c.rdb.Set(ctx, profileKey(country.WorldID, country.ID), data, profileTTL).Err()
}

// GetProfile returns a cached snapshot, or (nil, nil) on a miss.
func (c *Client) GetProfile(ctx context.Context, worldID, countryID int64) (*model.Country, error) {
	data, err := c.rdb.Get(ctx, profileKey(worldID, countryID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	var country model.Country
	if err := json.Unmarshal(data, &country); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &country, nil
}

// InvalidateProfile drops a cached snapshot after a mutation.
func (c *Client) InvalidateProfile(ctx context.Context, worldID, countryID int64) error {
	return c.rdb.Del(ctx, profileKey(worldID, countryID)).Err()
}

// SetLoanCooldown marks a country ineligible for a new loan until the
// TTL lapses. The key's expiry mirrors the ledger's 24-hour window.
func (c *Client) SetLoanCooldown(ctx context.Context, worldID, countryID int64, ttl time.Duration) error {
	return c.rdb.Set(ctx, loanCooldownKey(worldID, countryID), time.Now().Unix(), ttl).Err()
}

// LoanCooldownActive reports whether the cooldown marker still exists.
func (c *Client) LoanCooldownActive(ctx context.Context, worldID, countryID int64) (bool, error) {
	n, err := c.rdb.Exists(ctx, loanCooldownKey(worldID, countryID)).Result()
	if err != nil {
		return false, fmt.Errorf("loan cooldown: %w", err)
	}
	return n > 0, nil
}

// DeleteWorldData removes all cached keys for a world (on world disable).
func (c *Client) DeleteWorldData(ctx context.Context, worldID int64) error {
	iter := c.rdb.Scan(ctx, 0, worldPattern(worldID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan world keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
