package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/Notifuse/notifuse/internal/domain"
)

type messageRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewMessageRepository creates a new PostgreSQL-backed domain.MessageRepository.
func NewMessageRepository(db *sql.DB) domain.MessageRepository {
	return &messageRepository{db: db, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// Materialize inserts a QUEUED message row. A unique index on
// (campaign_id, phone) is the dedup boundary: a second materialize
// attempt for the same recipient in the same campaign run surfaces as a
// *domain.ConflictError (spec §4.7).
func (r *messageRepository) Materialize(ctx context.Context, m *domain.Message) error {
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Status == "" {
		m.Status = domain.MessageStatusQueued
	}

	query, args, err := r.psql.Insert("messages").
		Columns("id", "campaign_id", "phone", "channel", "rendered_body", "status", "created_at", "updated_at").
		Values(m.ID, m.CampaignID, m.Phone, string(m.Channel), m.RenderedBody, string(m.Status), m.CreatedAt, m.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "Message", Key: m.CampaignID + ":" + m.Phone}
		}
		return fmt.Errorf("materialize message: %w", err)
	}
	return nil
}

func (r *messageRepository) GetByProviderSID(ctx context.Context, providerSID string) (*domain.Message, error) {
	query, args, err := r.selectColumns().Where(sq.Eq{"provider_sid": providerSID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	m, err := domain.ScanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "Message", ID: providerSID}
		}
		return nil, fmt.Errorf("get message by provider sid: %w", err)
	}
	return m, nil
}

func (r *messageRepository) UpdateStatus(ctx context.Context, id string, status domain.MessageStatus, providerSID, errorCode *string, occurredAt time.Time) error {
	builder := r.psql.Update("messages").
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id})

	if providerSID != nil {
		builder = builder.Set("provider_sid", *providerSID)
	}
	if errorCode != nil {
		builder = builder.Set("error_code", *errorCode)
	}

	// sent_at/delivered_at are set on the first SENT/DELIVERED transition
	// and never overwritten: COALESCE keeps whatever is already there, so
	// an out-of-order or duplicate receipt can't clobber an earlier time.
	switch status {
	case domain.MessageStatusSent:
		builder = builder.Set("sent_at", sq.Expr("COALESCE(sent_at, ?)", occurredAt.UTC()))
	case domain.MessageStatusDelivered:
		builder = builder.Set("delivered_at", sq.Expr("COALESCE(delivered_at, ?)", occurredAt.UTC()))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update message status: %w", err)
	}
	return nil
}

func (r *messageRepository) selectColumns() sq.SelectBuilder {
	return r.psql.Select(
		"id", "campaign_id", "phone", "channel", "rendered_body", "status",
		"provider_sid", "error_code", "sent_at", "delivered_at", "created_at", "updated_at",
	).From("messages")
}
