package store

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"localpress/internal/core"
)

// InsertFeedbackEvent appends a feedback event. Events are append-only;
// there is no update path.
func (s *Store) InsertFeedbackEvent(event core.FeedbackEvent) error {
	query := `
	INSERT INTO feedback_events
	(id, article_id, type, metric_name, metric_value, metadata, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		event.ID,
		event.ArticleID,
		string(event.Type),
		event.MetricName,
		event.MetricValue,
		event.Metadata,
		event.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback event: %w", err)
	}
	return nil
}

// FeedbackFilter narrows FindFeedbackEvents results.
type FeedbackFilter struct {
	ArticleID     string
	Type          core.FeedbackType
	RecordedSince time.Time
}

// FindFeedbackEvents returns feedback events matching the filter, oldest
// first so trend bucketing sees them in chronological order.
func (s *Store) FindFeedbackEvents(filter FeedbackFilter) ([]core.FeedbackEvent, error) {
	builder := sq.Select(
		"id", "article_id", "type", "metric_name", "metric_value", "metadata", "recorded_at",
	).From("feedback_events").OrderBy("recorded_at ASC")

	if filter.ArticleID != "" {
		builder = builder.Where(sq.Eq{"article_id": filter.ArticleID})
	}
	if filter.Type != "" {
		builder = builder.Where(sq.Eq{"type": string(filter.Type)})
	}
	if !filter.RecordedSince.IsZero() {
		builder = builder.Where(sq.GtOrEq{"recorded_at": filter.RecordedSince})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build feedback query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []core.FeedbackEvent
	for rows.Next() {
		var event core.FeedbackEvent
		var eventType string
		if err := rows.Scan(
			&event.ID,
			&event.ArticleID,
			&eventType,
			&event.MetricName,
			&event.MetricValue,
			&event.Metadata,
			&event.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback event: %w", err)
		}
		event.Type = core.FeedbackType(eventType)
		events = append(events, event)
	}
	return events, rows.Err()
}
