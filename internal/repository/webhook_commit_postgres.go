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

type webhookCommitter struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewWebhookCommitter creates a new PostgreSQL-backed domain.WebhookCommitter.
func NewWebhookCommitter(db *sql.DB) domain.WebhookCommitter {
	return &webhookCommitter{db: db, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (c *webhookCommitter) CommitInbound(ctx context.Context, event *domain.InboundEvent, newConsent *domain.ConsentState, attrs domain.MapOfAny) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	event.CreatedAt = now
	hasUserUpdate := newConsent != nil || len(attrs) > 0

	insertQuery, insertArgs, err := c.psql.Insert("inbound_events").
		Columns("id", "phone", "body", "raw_payload", "processed", "created_at").
		Values(event.ID, event.Phone, event.Body, event.RawPayload, !hasUserUpdate, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("insert inbound event: %w", err)
	}

	if hasUserUpdate {
		if err := c.applyUserUpdate(ctx, tx, event.Phone, newConsent, attrs, now); err != nil {
			return err
		}

		markQuery, markArgs, err := c.psql.Update("inbound_events").
			Set("processed", true).
			Where(sq.Eq{"id": event.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build mark processed: %w", err)
		}
		if _, err := tx.ExecContext(ctx, markQuery, markArgs...); err != nil {
			return fmt.Errorf("mark inbound event processed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isTransient(err) {
			return &domain.TransientError{Op: "CommitInbound", Err: err}
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// applyUserUpdate mirrors userRepository.UpsertUser's merge/sticky-STOP
// contract but runs inside the caller's transaction, asConsentEngine=true
// (the Consent Engine's classification always wins). newConsent may be nil
// when the webhook only carried enrichment attributes (e.g. a detected
// language preference) and no recognized consent keyword; attrs is merged
// into the user's existing attributes rather than replacing the map.
func (c *webhookCommitter) applyUserUpdate(ctx context.Context, tx *sql.Tx, phone string, newConsent *domain.ConsentState, attrs domain.MapOfAny, now time.Time) error {
	lockQuery, lockArgs, err := c.psql.Select("phone", "attributes", "consent_state", "created_at", "updated_at").
		From("users").
		Where(sq.Eq{"phone": phone}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lock query: %w", err)
	}

	existing, err := domain.ScanUser(tx.QueryRowContext(ctx, lockQuery, lockArgs...))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock user: %w", err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		consentState := domain.ConsentStateOptIn
		if newConsent != nil {
			consentState = *newConsent
		}
		mergedAttrs := domain.MapOfAny{}
		for k, v := range attrs {
			mergedAttrs[k] = v
		}
		query, args, buildErr := c.psql.Insert("users").
			Columns("phone", "attributes", "consent_state", "created_at", "updated_at").
			Values(phone, mergedAttrs, string(consentState), now, now).
			ToSql()
		if buildErr != nil {
			return fmt.Errorf("build insert: %w", buildErr)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	}

	mergedAttrs := existing.Attributes
	if mergedAttrs == nil {
		mergedAttrs = domain.MapOfAny{}
	}
	for k, v := range attrs {
		mergedAttrs[k] = v
	}

	builder := c.psql.Update("users").
		Set("attributes", mergedAttrs).
		Set("updated_at", now).
		Where(sq.Eq{"phone": phone})
	if newConsent != nil {
		builder = builder.Set("consent_state", string(*newConsent))
	}

	query, args, buildErr := builder.ToSql()
	if buildErr != nil {
		return fmt.Errorf("build update: %w", buildErr)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}
