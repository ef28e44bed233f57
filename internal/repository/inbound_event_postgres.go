package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/Notifuse/notifuse/internal/domain"
)

type inboundEventRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewInboundEventRepository creates a new PostgreSQL-backed domain.InboundEventRepository.
func NewInboundEventRepository(db *sql.DB) domain.InboundEventRepository {
	return &inboundEventRepository{db: db, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// InsertRaw inserts the raw payload as an unprocessed row. It does not
// classify or act on the payload. The webhook handler writes inbound events
// through WebhookCommitter.CommitInbound instead, in a single transaction.
func (r *inboundEventRepository) InsertRaw(ctx context.Context, e *domain.InboundEvent) error {
	e.CreatedAt = time.Now().UTC()

	query, args, err := r.psql.Insert("inbound_events").
		Columns("id", "phone", "body", "raw_payload", "processed", "created_at").
		Values(e.ID, e.Phone, e.Body, e.RawPayload, false, e.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert inbound event: %w", err)
	}
	return nil
}

func (r *inboundEventRepository) MarkProcessed(ctx context.Context, id string) error {
	query, args, err := r.psql.Update("inbound_events").
		Set("processed", true).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark inbound event processed: %w", err)
	}
	return nil
}
