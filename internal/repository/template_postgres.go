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

type templateRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewTemplateRepository creates a new PostgreSQL-backed domain.TemplateRepository.
func NewTemplateRepository(db *sql.DB) domain.TemplateRepository {
	return &templateRepository{db: db, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *templateRepository) GetTemplateByID(ctx context.Context, id string) (*domain.Template, error) {
	query, args, err := r.psql.Select("id", "name", "channel", "locale", "content", "created_at", "updated_at").
		From("templates").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	t, err := domain.ScanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "Template", ID: id}
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (r *templateRepository) CreateTemplate(ctx context.Context, t *domain.Template) error {
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	query, args, err := r.psql.Insert("templates").
		Columns("id", "name", "channel", "locale", "content", "created_at", "updated_at").
		Values(t.ID, t.Name, string(t.Channel), t.Locale, t.Content, t.CreatedAt, t.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{Entity: "Template", Key: t.ID}
		}
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}
