// internal/catalog/repository.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lender-match-engine/internal/common/logger"
	"lender-match-engine/internal/common/metrics"
	"lender-match-engine/internal/match"
)

const snapshotCacheKey = "lender:catalog:snapshot"

// Config controls snapshot loading behavior.
type Config struct {
	CacheTTL       time.Duration
	ValidateOnLoad bool
}

func DefaultRepositoryConfig() *Config {
	return &Config{
		CacheTTL:       5 * time.Minute,
		ValidateOnLoad: true,
	}
}

// Repository loads lender catalog snapshots from Postgres with a Redis
// cache in front. A snapshot is the full set of lender documents as of one
// point in time; the engine evaluates against a snapshot and never sees
// partial catalog updates mid-run.
type Repository struct {
	db     *sql.DB
	redis  *redis.Client
	config *Config
	logger logger.Logger
}

func NewRepository(db *sql.DB, redisClient *redis.Client, config *Config, log logger.Logger) *Repository {
	if config == nil {
		config = DefaultRepositoryConfig()
	}
	return &Repository{
		db:     db,
		redis:  redisClient,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// snapshotEntry is the cache representation of one profile. The incomplete
// flag is not part of the profile's JSON contract, so it is carried
// alongside the document rather than inside it.
type snapshotEntry struct {
	Profile    match.LenderProfile `json:"profile"`
	Incomplete bool                `json:"incomplete"`
}

// Snapshot returns the current lender catalog, serving from Redis when a
// cached snapshot exists and falling back to Postgres on a miss.
func (r *Repository) Snapshot(ctx context.Context) ([]match.LenderProfile, error) {
	if r.redis != nil {
		if raw, err := r.redis.Get(ctx, snapshotCacheKey).Result(); err == nil {
			var entries []snapshotEntry
			if err := json.Unmarshal([]byte(raw), &entries); err == nil {
				metrics.CatalogCacheHits.WithLabelValues("hit").Inc()
				return entriesToProfiles(entries), nil
			}
			// Unreadable cache payload: drop it and reload.
			r.redis.Del(ctx, snapshotCacheKey)
		}
		metrics.CatalogCacheHits.WithLabelValues("miss").Inc()
	}

	catalog, err := r.loadFromDB(ctx)
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		entries := make([]snapshotEntry, len(catalog))
		for i, p := range catalog {
			entries[i] = snapshotEntry{Profile: p, Incomplete: p.Incomplete}
		}
		if buf, err := json.Marshal(entries); err == nil {
			if err := r.redis.Set(ctx, snapshotCacheKey, buf, r.config.CacheTTL).Err(); err != nil {
				r.logger.Warn("failed to cache catalog snapshot", map[string]interface{}{
					"error": err,
				})
			}
		}
	}

	return catalog, nil
}

// FilterByType returns the snapshot narrowed to one lender pool.
// Incomplete profiles are excluded: a document that failed validation has
// no trustworthy type field.
func (r *Repository) FilterByType(ctx context.Context, t match.LenderType) ([]match.LenderProfile, error) {
	catalog, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var pool []match.LenderProfile
	for _, p := range catalog {
		if !p.Incomplete && p.Type == t {
			pool = append(pool, p)
		}
	}
	return pool, nil
}

// Invalidate drops the cached snapshot so the next read reloads from
// Postgres. Called after catalog writes.
func (r *Repository) Invalidate(ctx context.Context) error {
	if r.redis == nil {
		return nil
	}
	return r.redis.Del(ctx, snapshotCacheKey).Err()
}

func (r *Repository) loadFromDB(ctx context.Context) ([]match.LenderProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document
		FROM lender_profiles
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	defer rows.Close()

	var catalog []match.LenderProfile
	byType := map[match.LenderType]float64{}

	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("catalog row scan failed: %w", err)
		}

		profile, incomplete := r.decodeProfile(id, doc)
		catalog = append(catalog, profile)
		if !incomplete {
			byType[profile.Type]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}

	for _, t := range []match.LenderType{match.LenderConventional, match.LenderNonQM, match.LenderHardMoney} {
		metrics.CatalogSnapshotSize.WithLabelValues(string(t)).Set(byType[t])
	}

	r.logger.Info("catalog snapshot loaded", map[string]interface{}{
		"lenders": len(catalog),
	})
	return catalog, nil
}

// decodeProfile unmarshals and validates one catalog document. A document
// that cannot be decoded or fails schema validation still yields a profile
// entry, flagged incomplete, so downstream results can show the lender was
// seen but not evaluated.
func (r *Repository) decodeProfile(id string, doc []byte) (match.LenderProfile, bool) {
	var profile match.LenderProfile
	if err := json.Unmarshal(doc, &profile); err != nil {
		r.logger.Warn("unreadable catalog document", map[string]interface{}{
			"lenderId": id,
			"error":    err,
		})
		return match.LenderProfile{ID: id, Name: id, Incomplete: true}, true
	}
	if profile.ID == "" {
		profile.ID = id
	}

	if r.config.ValidateOnLoad {
		violations, err := ValidateProfile(doc)
		if err != nil || len(violations) > 0 {
			r.logger.Warn("catalog document failed validation", map[string]interface{}{
				"lenderId":   id,
				"violations": violations,
				"error":      err,
			})
			profile.Incomplete = true
		}
	}

	return profile, profile.Incomplete
}

func entriesToProfiles(entries []snapshotEntry) []match.LenderProfile {
	catalog := make([]match.LenderProfile, len(entries))
	for i, e := range entries {
		catalog[i] = e.Profile
		catalog[i].Incomplete = e.Incomplete
	}
	return catalog
}
