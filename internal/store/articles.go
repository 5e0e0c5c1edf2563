package store

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"localpress/internal/core"
)

// InsertArticle stores a finished article. A duplicate slug is a hard error
// for publication, surfaced as ErrDuplicateSlug.
func (s *Store) InsertArticle(article core.Article) error {
	query := `
	INSERT INTO articles
	(id, topic_id, title, slug, content, meta_description, seo_score, geo_score,
	 word_count, cta_type, cta_position, strategy_key, strategy_version, status,
	 featured_image, generated_at, published_at, user_rating, edit_distance)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		article.ID,
		article.TopicID,
		article.Title,
		article.Slug,
		article.Content,
		article.MetaDescription,
		article.SEOScore,
		article.GEOScore,
		article.WordCount,
		article.CTAType,
		article.CTAPosition,
		article.StrategyKey,
		article.StrategyVersion,
		string(article.Status),
		article.FeaturedImage,
		article.GeneratedAt,
		article.PublishedAt,
		article.UserRating,
		article.EditDistance,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

// GetArticle retrieves an article by ID. Returns ErrNotFound on a miss.
func (s *Store) GetArticle(id string) (*core.Article, error) {
	query, args, err := sq.Select(articleColumns...).From("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article query: %w", err)
	}

	article, err := scanArticle(s.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}
	return article, nil
}

// ArticleFilter narrows FindArticles results.
type ArticleFilter struct {
	Statuses       []core.ArticleStatus
	GeneratedSince time.Time
	StrategyKey    string
	Slug           string
	Limit          int
}

// FindArticles returns articles matching the filter, newest first.
func (s *Store) FindArticles(filter ArticleFilter) ([]core.Article, error) {
	builder := sq.Select(articleColumns...).From("articles").OrderBy("generated_at DESC")

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		builder = builder.Where(sq.Eq{"status": statuses})
	}
	if !filter.GeneratedSince.IsZero() {
		builder = builder.Where(sq.GtOrEq{"generated_at": filter.GeneratedSince})
	}
	if filter.StrategyKey != "" {
		builder = builder.Where(sq.Eq{"strategy_key": filter.StrategyKey})
	}
	if filter.Slug != "" {
		builder = builder.Where(sq.Eq{"slug": filter.Slug})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build articles query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var articles []core.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *article)
	}
	return articles, rows.Err()
}

// PublishedTitles returns the most recent published article titles, newest
// first. Used for uniqueness scoring against already-published content.
func (s *Store) PublishedTitles(limit int) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT title FROM articles WHERE status = ? ORDER BY published_at DESC LIMIT ?",
		string(core.ArticlePublished), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query published titles: %w", err)
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

// UpdateArticleStatus moves an article to a new status, stamping
// published_at when it reaches published.
func (s *Store) UpdateArticleStatus(id string, status core.ArticleStatus) error {
	var err error
	if status == core.ArticlePublished {
		_, err = s.db.Exec("UPDATE articles SET status = ?, published_at = ? WHERE id = ?",
			string(status), time.Now().UTC(), id)
	} else {
		_, err = s.db.Exec("UPDATE articles SET status = ? WHERE id = ?", string(status), id)
	}
	if err != nil {
		return fmt.Errorf("failed to update article status: %w", err)
	}
	return nil
}

// UpdateArticleOutcome writes the editor-facing outcome fields. Single-row
// update so concurrent maintenance cannot tear it.
func (s *Store) UpdateArticleOutcome(id string, userRating, editDistance float64) error {
	_, err := s.db.Exec(
		"UPDATE articles SET user_rating = ?, edit_distance = ? WHERE id = ?",
		userRating, editDistance, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update article outcome: %w", err)
	}
	return nil
}

var articleColumns = []string{
	"id", "topic_id", "title", "slug", "content", "meta_description",
	"seo_score", "geo_score", "word_count", "cta_type", "cta_position",
	"strategy_key", "strategy_version", "status", "featured_image",
	"generated_at", "published_at", "user_rating", "edit_distance",
}

func scanArticle(row rowScanner) (*core.Article, error) {
	var article core.Article
	var status string
	var publishedAt sql.NullTime

	err := row.Scan(
		&article.ID,
		&article.TopicID,
		&article.Title,
		&article.Slug,
		&article.Content,
		&article.MetaDescription,
		&article.SEOScore,
		&article.GEOScore,
		&article.WordCount,
		&article.CTAType,
		&article.CTAPosition,
		&article.StrategyKey,
		&article.StrategyVersion,
		&status,
		&article.FeaturedImage,
		&article.GeneratedAt,
		&publishedAt,
		&article.UserRating,
		&article.EditDistance,
	)
	if err != nil {
		return nil, err
	}

	article.Status = core.ArticleStatus(status)
	if publishedAt.Valid {
		article.PublishedAt = publishedAt.Time
	}
	return &article, nil
}
