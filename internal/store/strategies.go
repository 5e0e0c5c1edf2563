package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"localpress/internal/core"
)

// Weight bounds for strategy versions. A floor above zero keeps losing
// versions in occasional rotation so the learner can keep comparing them.
const (
	MinStrategyWeight = 10
	MaxStrategyWeight = 200
)

// InsertStrategyVersion stores a new prompt version. (strategy_key, version)
// is unique.
func (s *Store) InsertStrategyVersion(sv core.StrategyVersion) error {
	query := `
	INSERT INTO strategy_versions
	(id, strategy_key, version, content, weight, is_active,
	 total_uses, success_rate, avg_quality_score, avg_edit_distance, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		sv.ID,
		sv.StrategyKey,
		sv.Version,
		sv.Content,
		sv.Weight,
		sv.IsActive,
		sv.TotalUses,
		sv.SuccessRate,
		sv.AvgQualityScore,
		sv.AvgEditDistance,
		sv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("strategy %s v%d already exists: %w", sv.StrategyKey, sv.Version, ErrDuplicateSlug)
		}
		return fmt.Errorf("failed to insert strategy version: %w", err)
	}
	return nil
}

// ActiveStrategyVersions returns value copies of the active versions for a
// key, lowest version first. Callers never hold live references to weight
// state; the single mutation path is UpdateStrategyWeight.
func (s *Store) ActiveStrategyVersions(key string) ([]core.StrategyVersion, error) {
	return s.queryStrategies(sq.And{sq.Eq{"strategy_key": key}, sq.Eq{"is_active": true}})
}

// AllStrategyVersions returns every stored version grouped by key.
func (s *Store) AllStrategyVersions() ([]core.StrategyVersion, error) {
	return s.queryStrategies(nil)
}

func (s *Store) queryStrategies(pred interface{}) ([]core.StrategyVersion, error) {
	builder := sq.Select(
		"id", "strategy_key", "version", "content", "weight", "is_active",
		"total_uses", "success_rate", "avg_quality_score", "avg_edit_distance", "created_at",
	).From("strategy_versions").OrderBy("strategy_key ASC, version ASC")

	if pred != nil {
		builder = builder.Where(pred)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build strategy query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategy versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var versions []core.StrategyVersion
	for rows.Next() {
		var sv core.StrategyVersion
		if err := rows.Scan(
			&sv.ID,
			&sv.StrategyKey,
			&sv.Version,
			&sv.Content,
			&sv.Weight,
			&sv.IsActive,
			&sv.TotalUses,
			&sv.SuccessRate,
			&sv.AvgQualityScore,
			&sv.AvgEditDistance,
			&sv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan strategy version: %w", err)
		}
		versions = append(versions, sv)
	}
	return versions, rows.Err()
}

// UpdateStrategyStats writes recomputed aggregates for one version as a
// single-row update.
func (s *Store) UpdateStrategyStats(id string, totalUses int, successRate, avgQuality, avgEditDistance float64) error {
	_, err := s.db.Exec(`
	UPDATE strategy_versions
	SET total_uses = ?, success_rate = ?, avg_quality_score = ?, avg_edit_distance = ?
	WHERE id = ?`,
		totalUses, successRate, avgQuality, avgEditDistance, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update strategy stats: %w", err)
	}
	return nil
}

// UpdateStrategyWeight applies a weight delta atomically, clamping to
// [MinStrategyWeight, MaxStrategyWeight] inside the UPDATE so racing
// adjustments cannot push a weight out of bounds. Returns the new weight.
func (s *Store) UpdateStrategyWeight(id string, delta int) (int, error) {
	_, err := s.db.Exec(`
	UPDATE strategy_versions
	SET weight = MAX(?, MIN(?, weight + ?))
	WHERE id = ?`,
		MinStrategyWeight, MaxStrategyWeight, delta, id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update strategy weight: %w", err)
	}

	var weight int
	err = s.db.QueryRow("SELECT weight FROM strategy_versions WHERE id = ?", id).Scan(&weight)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read strategy weight: %w", err)
	}
	return weight, nil
}

// StrategyUsage is one row of the per-version article aggregation used by
// the feedback learner.
type StrategyUsage struct {
	StrategyKey     string
	Version         int
	TotalUses       int
	AvgQuality      float64
	AvgEditDistance float64
	SuccessCount    int
}

// AggregateStrategyUsage recomputes usage statistics from the articles
// table, grouped by (strategy_key, version). A success is a published
// article whose editors changed less than the given edit-distance cutoff.
func (s *Store) AggregateStrategyUsage(editDistanceCutoff float64) ([]StrategyUsage, error) {
	rows, err := s.db.Query(`
	SELECT strategy_key, strategy_version, COUNT(*),
	       COALESCE(AVG(seo_score), 0), COALESCE(AVG(edit_distance), 0),
	       SUM(CASE WHEN status = ? AND edit_distance < ? THEN 1 ELSE 0 END)
	FROM articles
	WHERE strategy_key != ''
	GROUP BY strategy_key, strategy_version`,
		string(core.ArticlePublished), editDistanceCutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate strategy usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var usage []StrategyUsage
	for rows.Next() {
		var u StrategyUsage
		if err := rows.Scan(&u.StrategyKey, &u.Version, &u.TotalUses, &u.AvgQuality, &u.AvgEditDistance, &u.SuccessCount); err != nil {
			return nil, fmt.Errorf("failed to scan strategy usage: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}
