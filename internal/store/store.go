// Package store persists topics, articles, feedback events and strategy
// versions in a local SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	sqlite3 "github.com/mattn/go-sqlite3"

	"localpress/internal/core"
)

// ErrDuplicateSlug is returned by inserts when the slug already exists.
// Callers decide whether that is an idempotent no-op (topic discovery) or a
// hard error (article publication).
var ErrDuplicateSlug = errors.New("slug already exists")

// ErrNotFound is returned when a keyed lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "localpress.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

// initialize creates the necessary tables.
func (s *Store) initialize() error {
	topicsTable := `
	CREATE TABLE IF NOT EXISTS topics (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		keywords TEXT,
		related_locations TEXT,
		relevance_score REAL,
		recency_score REAL,
		authority_score REAL,
		uniqueness_score REAL,
		total_score REAL,
		source TEXT,
		status TEXT NOT NULL,
		market_stats TEXT,
		researched_at DATETIME,
		expires_at DATETIME
	);`

	articlesTable := `
	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		topic_id TEXT,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		content TEXT,
		meta_description TEXT,
		seo_score REAL,
		geo_score REAL,
		word_count INTEGER,
		cta_type TEXT,
		cta_position TEXT,
		strategy_key TEXT,
		strategy_version INTEGER,
		status TEXT NOT NULL,
		featured_image TEXT,
		generated_at DATETIME,
		published_at DATETIME,
		user_rating REAL DEFAULT 0,
		edit_distance REAL DEFAULT 0
	);`

	feedbackTable := `
	CREATE TABLE IF NOT EXISTS feedback_events (
		id TEXT PRIMARY KEY,
		article_id TEXT NOT NULL,
		type TEXT NOT NULL,
		metric_name TEXT,
		metric_value REAL,
		metadata TEXT,
		recorded_at DATETIME
	);`

	strategiesTable := `
	CREATE TABLE IF NOT EXISTS strategy_versions (
		id TEXT PRIMARY KEY,
		strategy_key TEXT NOT NULL,
		version INTEGER NOT NULL,
		content TEXT,
		weight INTEGER NOT NULL DEFAULT 100,
		is_active INTEGER NOT NULL DEFAULT 1,
		total_uses INTEGER NOT NULL DEFAULT 0,
		success_rate REAL NOT NULL DEFAULT 0,
		avg_quality_score REAL NOT NULL DEFAULT 0,
		avg_edit_distance REAL NOT NULL DEFAULT 0,
		created_at DATETIME,
		UNIQUE (strategy_key, version)
	);`

	tables := []string{topicsTable, articlesTable, feedbackTable, strategiesTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// ---- Topics ----

// InsertTopic stores a new topic. Returns ErrDuplicateSlug when a topic with
// the same slug already exists.
func (s *Store) InsertTopic(topic core.Topic) error {
	keywords, _ := json.Marshal(topic.Keywords)
	locations, _ := json.Marshal(topic.RelatedLocations)

	query := `
	INSERT INTO topics
	(id, title, slug, description, keywords, related_locations,
	 relevance_score, recency_score, authority_score, uniqueness_score, total_score,
	 source, status, market_stats, researched_at, expires_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		topic.ID,
		topic.Title,
		topic.Slug,
		topic.Description,
		string(keywords),
		string(locations),
		topic.RelevanceScore,
		topic.RecencyScore,
		topic.AuthorityScore,
		topic.UniquenessScore,
		topic.TotalScore,
		topic.Source,
		string(topic.Status),
		topic.MarketStats,
		topic.ResearchedAt,
		topic.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to insert topic: %w", err)
	}

	return nil
}

// GetTopic retrieves a topic by ID. Returns ErrNotFound on a miss.
func (s *Store) GetTopic(id string) (*core.Topic, error) {
	return s.queryTopic(sq.Eq{"id": id})
}

// GetTopicBySlug retrieves a topic by its unique slug.
func (s *Store) GetTopicBySlug(slug string) (*core.Topic, error) {
	return s.queryTopic(sq.Eq{"slug": slug})
}

func (s *Store) queryTopic(pred interface{}) (*core.Topic, error) {
	query, args, err := sq.Select(topicColumns...).From("topics").Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build topic query: %w", err)
	}

	topic, err := scanTopic(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan topic: %w", err)
	}
	return topic, nil
}

// TopicFilter narrows FindTopics results. Zero values mean "no constraint".
type TopicFilter struct {
	Statuses        []core.TopicStatus
	MinScore        float64
	ResearchedSince time.Time
	Limit           int
}

// FindTopics returns topics matching the filter, best score first.
func (s *Store) FindTopics(filter TopicFilter) ([]core.Topic, error) {
	builder := sq.Select(topicColumns...).From("topics").OrderBy("total_score DESC, researched_at ASC")

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		builder = builder.Where(sq.Eq{"status": statuses})
	}
	if filter.MinScore > 0 {
		builder = builder.Where(sq.GtOrEq{"total_score": filter.MinScore})
	}
	if !filter.ResearchedSince.IsZero() {
		builder = builder.Where(sq.GtOrEq{"researched_at": filter.ResearchedSince})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build topics query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var topics []core.Topic
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, *topic)
	}
	return topics, rows.Err()
}

// RecentTopicSlugs returns slugs of topics in the given statuses researched
// within the window. Used by discovery's exclude-recent filter.
func (s *Store) RecentTopicSlugs(statuses []core.TopicStatus, since time.Time) (map[string]bool, error) {
	strs := make([]string, len(statuses))
	for i, st := range statuses {
		strs[i] = string(st)
	}

	query, args, err := sq.Select("slug").From("topics").
		Where(sq.Eq{"status": strs}).
		Where(sq.GtOrEq{"researched_at": since}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build slug query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent slugs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	slugs := make(map[string]bool)
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs[slug] = true
	}
	return slugs, rows.Err()
}

// RecentTopicTitles returns titles of topics researched within the window,
// regardless of status. Used for uniqueness scoring.
func (s *Store) RecentTopicTitles(since time.Time) ([]string, error) {
	rows, err := s.db.Query("SELECT title FROM topics WHERE researched_at >= ?", since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent titles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// validTopicTransitions enumerates the forward-only status graph. Archived
// is reachable from every non-terminal state.
var validTopicTransitions = map[core.TopicStatus][]core.TopicStatus{
	core.TopicPending:   {core.TopicSelected, core.TopicArchived},
	core.TopicSelected:  {core.TopicGenerated, core.TopicArchived},
	core.TopicGenerated: {core.TopicPublished, core.TopicArchived},
	core.TopicPublished: {core.TopicArchived},
}

// UpdateTopicStatus moves a topic to a new status, enforcing forward-only
// transitions. The UPDATE is conditional on the current status so that two
// racing runs cannot both claim the same transition.
func (s *Store) UpdateTopicStatus(id string, from, to core.TopicStatus) error {
	allowed := false
	for _, next := range validTopicTransitions[from] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("invalid topic status transition %s -> %s", from, to)
	}

	res, err := s.db.Exec("UPDATE topics SET status = ? WHERE id = ? AND status = ?", string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update topic status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("topic %s not in status %s: %w", id, from, ErrNotFound)
	}
	return nil
}

// SweepExpiredTopics archives topics past their expiry and deletes archived
// topics older than the retention window. Idempotent; safe to run alongside
// an in-flight generation since it never touches selected/generated topics
// before their expiry.
func (s *Store) SweepExpiredTopics(now time.Time, retention time.Duration) (archived, deleted int64, err error) {
	res, err := s.db.Exec(
		"UPDATE topics SET status = ? WHERE status != ? AND expires_at < ?",
		string(core.TopicArchived), string(core.TopicArchived), now,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to archive expired topics: %w", err)
	}
	archived, _ = res.RowsAffected()

	res, err = s.db.Exec(
		"DELETE FROM topics WHERE status = ? AND expires_at < ?",
		string(core.TopicArchived), now.Add(-retention),
	)
	if err != nil {
		return archived, 0, fmt.Errorf("failed to delete archived topics: %w", err)
	}
	deleted, _ = res.RowsAffected()

	return archived, deleted, nil
}

var topicColumns = []string{
	"id", "title", "slug", "description", "keywords", "related_locations",
	"relevance_score", "recency_score", "authority_score", "uniqueness_score", "total_score",
	"source", "status", "market_stats", "researched_at", "expires_at",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTopic(row rowScanner) (*core.Topic, error) {
	var topic core.Topic
	var keywords, locations, status string

	err := row.Scan(
		&topic.ID,
		&topic.Title,
		&topic.Slug,
		&topic.Description,
		&keywords,
		&locations,
		&topic.RelevanceScore,
		&topic.RecencyScore,
		&topic.AuthorityScore,
		&topic.UniquenessScore,
		&topic.TotalScore,
		&topic.Source,
		&status,
		&topic.MarketStats,
		&topic.ResearchedAt,
		&topic.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	_ = json.Unmarshal([]byte(keywords), &topic.Keywords)
	_ = json.Unmarshal([]byte(locations), &topic.RelatedLocations)
	topic.Status = core.TopicStatus(status)
	return &topic, nil
}
