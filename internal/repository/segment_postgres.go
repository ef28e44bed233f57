package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	sq "github.com/Masterminds/squirrel"
	"github.com/Notifuse/notifuse/internal/domain"
)

func unmarshalPredicate(raw []byte) (*domain.Predicate, error) {
	var p domain.Predicate
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type segmentRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewSegmentRepository creates a new PostgreSQL-backed domain.SegmentRepository.
func NewSegmentRepository(db *sql.DB) domain.SegmentRepository {
	return &segmentRepository{db: db, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *segmentRepository) GetSegmentByID(ctx context.Context, id string) (*domain.Segment, error) {
	query, args, err := r.psql.Select("id", "name", "predicate", "created_at", "updated_at").
		From("segments").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s domain.Segment
	var predicateJSON []byte
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&s.ID, &s.Name, &predicateJSON, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "Segment", ID: id}
		}
		return nil, fmt.Errorf("get segment: %w", err)
	}

	predicate, err := unmarshalPredicate(predicateJSON)
	if err != nil {
		return nil, fmt.Errorf("unmarshal segment predicate: %w", err)
	}
	s.Predicate = predicate
	return &s, nil
}

const consentAttributeColumn = "consent_state"

// compilePredicate translates a predicate tree into a squirrel Sqlizer
// over the users table, so segment evaluation never pulls rows into Go
// memory to filter them (spec §5.5). consent_state is a first-class
// column; every other attribute is read out of the attributes jsonb
// column via the ->> text-extraction operator.
func compilePredicate(p *domain.Predicate) (sq.Sqlizer, error) {
	if p == nil {
		return sq.Eq{consentAttributeColumn: string(domain.ConsentStateOptIn)}, nil
	}
	switch {
	case p.Leaf != nil:
		return compileLeaf(p.Leaf)
	case p.Composite != nil:
		return compileComposite(p.Composite)
	default:
		return nil, fmt.Errorf("predicate has neither leaf nor composite")
	}
}

// attributeNamePattern mirrors domain.LeafPredicate.Validate's whitelist.
// compileLeaf re-checks it here too, since a Sqlizer must never trust that
// every caller ran Validate first.
var attributeNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// compileLeaf builds the Sqlizer for a single leaf comparison. The
// attribute name is never interpolated into the query string: for
// consent_state it selects a fixed, hardcoded column, and for everything
// else it is passed as a bind parameter to the jsonb ->> operator, the
// same way the rest of this package binds user-controlled values.
func compileLeaf(l *domain.LeafPredicate) (sq.Sqlizer, error) {
	if l.Attribute == consentAttributeColumn {
		switch l.Operator {
		case domain.OperatorContains:
			return sq.ILike{consentAttributeColumn: "%" + l.Value + "%"}, nil
		default: // OperatorEquals
			return sq.Eq{consentAttributeColumn: l.Value}, nil
		}
	}

	if !attributeNamePattern.MatchString(l.Attribute) {
		return nil, fmt.Errorf("invalid predicate attribute: %q", l.Attribute)
	}

	switch l.Operator {
	case domain.OperatorContains:
		return sq.Expr("attributes ->> ? ILIKE ?", l.Attribute, "%"+l.Value+"%"), nil
	default: // OperatorEquals
		return sq.Expr("attributes ->> ? = ?", l.Attribute, l.Value), nil
	}
}

func compileComposite(c *domain.CompositePredicate) (sq.Sqlizer, error) {
	parts := make([]sq.Sqlizer, 0, len(c.Conditions))
	for _, cond := range c.Conditions {
		compiled, err := compilePredicate(cond)
		if err != nil {
			return nil, err
		}
		parts = append(parts, compiled)
	}
	if c.Logic == domain.LogicOr {
		return sq.Or(parts), nil
	}
	return sq.And(parts), nil
}

// postgresSegmentEvaluator implements domain.SegmentEvaluator by compiling
// a predicate to SQL and streaming matching rows through *sql.Rows,
// which the database/sql + lib/pq stack delivers incrementally rather
// than buffering the full result set.
type postgresSegmentEvaluator struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewSegmentEvaluator creates a new PostgreSQL-backed domain.SegmentEvaluator.
func NewSegmentEvaluator(db *sql.DB) domain.SegmentEvaluator {
	return &postgresSegmentEvaluator{db: db, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (e *postgresSegmentEvaluator) Stream(ctx context.Context, predicate *domain.Predicate) (domain.UserCursor, error) {
	where, err := compilePredicate(predicate)
	if err != nil {
		return nil, fmt.Errorf("compile predicate: %w", err)
	}

	query, args, err := e.psql.Select("phone", "attributes", "consent_state", "created_at", "updated_at").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stream users: %w", err)
	}
	return &postgresUserCursor{rows: rows}, nil
}

func (e *postgresSegmentEvaluator) Count(ctx context.Context, predicate *domain.Predicate) (int, error) {
	where, err := compilePredicate(predicate)
	if err != nil {
		return 0, fmt.Errorf("compile predicate: %w", err)
	}

	query, args, err := e.psql.Select("count(*)").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int
	if err := e.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

type postgresUserCursor struct {
	rows *sql.Rows
	cur  *domain.User
	err  error
}

func (c *postgresUserCursor) Next(ctx context.Context) bool {
	if !c.rows.Next() {
		c.err = c.rows.Err()
		return false
	}
	u, err := domain.ScanUser(c.rows)
	if err != nil {
		c.err = err
		return false
	}
	c.cur = u
	return true
}

func (c *postgresUserCursor) User() *domain.User { return c.cur }
func (c *postgresUserCursor) Err() error          { return c.err }
func (c *postgresUserCursor) Close() error        { return c.rows.Close() }

var _ domain.UserCursor = (*postgresUserCursor)(nil)
var _ domain.SegmentEvaluator = (*postgresSegmentEvaluator)(nil)
