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

type campaignRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewCampaignRepository creates a new PostgreSQL-backed domain.CampaignRepository.
func NewCampaignRepository(db *sql.DB) domain.CampaignRepository {
	return &campaignRepository{db: db, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *campaignRepository) GetCampaignByID(ctx context.Context, id string) (*domain.Campaign, error) {
	query, args, err := r.selectColumns().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	c, err := domain.ScanCampaign(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "Campaign", ID: id}
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

// TransitionStatus applies a conditional UPDATE ... WHERE status = from so
// that when multiple scheduler instances race to pick up the same READY
// campaign, only one of them observes rowsAffected == 1 (spec §5.9).
func (r *campaignRepository) TransitionStatus(ctx context.Context, id string, from, to domain.CampaignStatus) (bool, error) {
	query, args, err := r.psql.Update("campaigns").
		Set("status", string(to)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isTransient(err) {
			return false, &domain.TransientError{Op: "TransitionStatus", Err: err}
		}
		return false, fmt.Errorf("transition campaign status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *campaignRepository) DueForScheduling(ctx context.Context, now time.Time) ([]*domain.Campaign, error) {
	query, args, err := r.selectColumns().
		Where(sq.Eq{"status": string(domain.CampaignStatusReady)}).
		Where(sq.Or{
			sq.Eq{"schedule_time": nil},
			sq.LtOrEq{"schedule_time": now},
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query due campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*domain.Campaign
	for rows.Next() {
		c, err := domain.ScanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *campaignRepository) selectColumns() sq.SelectBuilder {
	return r.psql.Select(
		"id", "topic", "template_id", "segment_id", "status", "rate_limit_per_second",
		"quiet_hours_start", "quiet_hours_end", "schedule_time", "created_at", "updated_at",
	).From("campaigns")
}
