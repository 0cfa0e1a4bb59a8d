package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ulule/limiter/v3"
)

const defaultRatelimitConfigKey = "default"

// RatelimitConfig holds the API rate limit in ulule/limiter notation (e.g. "5-S", "100-M")
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseRate validates a formatted rate such as "10-S"
func ParseRate(rate string) (limiter.Rate, error) {
	rate = strings.TrimSpace(rate)
	if rate == "" {
		return limiter.Rate{}, errors.New("rate cannot be empty")
	}
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return limiter.Rate{}, fmt.Errorf("invalid rate %q: %w", rate, err)
	}
	return r, nil
}

// RatelimitConfigRepository handles rate limit configuration in the database
type RatelimitConfigRepository struct {
	db *DB
}

// NewRatelimitConfigRepository creates a new ratelimit config repository
func NewRatelimitConfigRepository(db *DB) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{db: db}
}

// Get retrieves the default rate limit config; nil when none is stored
func (r *RatelimitConfigRepository) Get(ctx context.Context) (*RatelimitConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT config_key, rate, created_at, updated_at
		FROM ratelimit_config WHERE config_key = $1
	`, defaultRatelimitConfigKey)
	c := &RatelimitConfig{}
	err := row.Scan(&c.ConfigKey, &c.Rate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ratelimit config: %w", err)
	}
	return c, nil
}

// Set upserts the default rate limit config after validating the rate
func (r *RatelimitConfigRepository) Set(ctx context.Context, c *RatelimitConfig) error {
	if _, err := ParseRate(c.Rate); err != nil {
		return err
	}
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratelimit_config (config_key, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (config_key) DO UPDATE SET
			rate = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at
	`, defaultRatelimitConfigKey, strings.TrimSpace(c.Rate), now, now)
	if err != nil {
		return fmt.Errorf("set ratelimit config: %w", err)
	}
	return nil
}
