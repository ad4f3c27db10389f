// README: Outbox persistence backed by PostgreSQL.
package outbox

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert queues a message for publication.
func (s *Store) Insert(ctx context.Context, msg Message) error {
	if msg.MaxRetries == 0 {
		msg.MaxRetries = defaultMaxRetries
	}
	now := time.Now()
	query, args, err := s.sb.
		Insert("order_events").
		Columns("exchange", "routing_key", "payload", "content_type",
			"retry_count", "max_retries", "last_error", "created_at", "updated_at", "next_retry_at").
		Values(msg.Exchange, msg.RoutingKey, msg.Payload, msg.ContentType,
			0, msg.MaxRetries, "", now, now, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// Pending returns messages due for a publish attempt, oldest due first.
func (s *Store) Pending(ctx context.Context, limit int) ([]Message, error) {
	query, args, err := s.sb.
		Select("id", "exchange", "routing_key", "payload", "content_type",
			"retry_count", "max_retries", "last_error", "created_at", "updated_at", "next_retry_at").
		From("order_events").
		Where(sq.LtOrEq{"next_retry_at": time.Now()}).
		Where(sq.Expr("retry_count < max_retries")).
		OrderBy("next_retry_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Exchange, &m.RoutingKey, &m.Payload, &m.ContentType,
			&m.RetryCount, &m.MaxRetries, &m.LastError, &m.CreatedAt, &m.UpdatedAt, &m.NextRetryAt); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return msgs, nil
}

// UpdateRetry reschedules a failed message.
func (s *Store) UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error {
	query, args, err := s.sb.
		Update("order_events").
		Set("retry_count", retryCount).
		Set("last_error", lastError).
		Set("next_retry_at", nextRetryAt).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update outbox message: %w", err)
	}
	return nil
}

// Delete removes a message after a successful publish.
func (s *Store) Delete(ctx context.Context, id int64) error {
	query, args, err := s.sb.
		Delete("order_events").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete outbox message: %w", err)
	}
	return nil
}
