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

type userRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewUserRepository creates a new PostgreSQL-backed domain.UserRepository.
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{db: db, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *userRepository) GetUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query, args, err := r.psql.Select("phone", "attributes", "consent_state", "created_at", "updated_at").
		From("users").
		Where(sq.Eq{"phone": phone}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	user, err := domain.ScanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "User", ID: phone}
		}
		return nil, fmt.Errorf("get user by phone: %w", err)
	}
	return user, nil
}

// UpsertUser implements the merge-attributes/sticky-STOP contract of
// domain.UserRepository. It runs in a transaction with a row lock so two
// concurrent upserts for the same phone (e.g. a bulk import racing an
// inbound webhook) never lose an attribute update.
func (r *userRepository) UpsertUser(ctx context.Context, phone string, attrs domain.MapOfAny, consent domain.ConsentState, asConsentEngine bool) (*domain.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	existing, err := r.lockUser(ctx, tx, phone)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lock user: %w", err)
	}

	var finalAttrs domain.MapOfAny
	var finalConsent domain.ConsentState

	if errors.Is(err, sql.ErrNoRows) {
		finalAttrs = attrs
		if finalAttrs == nil {
			finalAttrs = domain.MapOfAny{}
		}
		finalConsent = consent

		query, args, buildErr := r.psql.Insert("users").
			Columns("phone", "attributes", "consent_state", "created_at", "updated_at").
			Values(phone, finalAttrs, string(finalConsent), now, now).
			ToSql()
		if buildErr != nil {
			return nil, fmt.Errorf("build insert: %w", buildErr)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return nil, &domain.ConflictError{Entity: "User", Key: phone}
			}
			return nil, fmt.Errorf("insert user: %w", err)
		}
	} else {
		finalAttrs = mergeAttributes(existing.Attributes, attrs)
		finalConsent = nextConsentState(existing.ConsentState, consent, asConsentEngine)

		query, args, buildErr := r.psql.Update("users").
			Set("attributes", finalAttrs).
			Set("consent_state", string(finalConsent)).
			Set("updated_at", now).
			Where(sq.Eq{"phone": phone}).
			ToSql()
		if buildErr != nil {
			return nil, fmt.Errorf("build update: %w", buildErr)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isTransient(err) {
			return nil, &domain.TransientError{Op: "UpsertUser", Err: err}
		}
		return nil, fmt.Errorf("commit: %w", err)
	}

	return r.GetUserByPhone(ctx, phone)
}

func (r *userRepository) lockUser(ctx context.Context, tx *sql.Tx, phone string) (*domain.User, error) {
	query, args, err := r.psql.Select("phone", "attributes", "consent_state", "created_at", "updated_at").
		From("users").
		Where(sq.Eq{"phone": phone}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock query: %w", err)
	}
	row := tx.QueryRowContext(ctx, query, args...)
	return domain.ScanUser(row)
}

// mergeAttributes overlays new onto existing: keys present in new always
// win, keys absent from new are kept from existing.
func mergeAttributes(existing, new domain.MapOfAny) domain.MapOfAny {
	merged := domain.MapOfAny{}
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range new {
		merged[k] = v
	}
	return merged
}

// nextConsentState applies the sticky-STOP rule (spec §4.1): a non-Consent-
// Engine caller (e.g. a bulk import) can never override an existing STOP,
// but the Consent Engine itself always applies the state it computed.
func nextConsentState(existing, requested domain.ConsentState, asConsentEngine bool) domain.ConsentState {
	if asConsentEngine {
		return requested
	}
	if existing == domain.ConsentStateStop {
		return domain.ConsentStateStop
	}
	return requested
}
