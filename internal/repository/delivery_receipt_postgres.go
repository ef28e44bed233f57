package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/Notifuse/notifuse/internal/domain"
)

type deliveryReceiptRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewDeliveryReceiptRepository creates a new PostgreSQL-backed domain.DeliveryReceiptRepository.
func NewDeliveryReceiptRepository(db *sql.DB) domain.DeliveryReceiptRepository {
	return &deliveryReceiptRepository{db: db, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (r *deliveryReceiptRepository) InsertRaw(ctx context.Context, dr *domain.DeliveryReceipt) error {
	dr.CreatedAt = time.Now().UTC()

	query, args, err := r.psql.Insert("delivery_receipts").
		Columns("id", "provider_sid", "status", "raw_payload", "reconciled", "created_at").
		Values(dr.ID, dr.ProviderSID, dr.Status, dr.RawPayload, false, dr.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert delivery receipt: %w", err)
	}
	return nil
}

func (r *deliveryReceiptRepository) MarkReconciled(ctx context.Context, id string) error {
	query, args, err := r.psql.Update("delivery_receipts").
		Set("reconciled", true).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark delivery receipt reconciled: %w", err)
	}
	return nil
}

func (r *deliveryReceiptRepository) Unreconciled(ctx context.Context, limit int) ([]*domain.DeliveryReceipt, error) {
	query, args, err := r.psql.Select("id", "provider_sid", "status", "raw_payload", "reconciled", "created_at").
		From("delivery_receipts").
		Where(sq.Eq{"reconciled": false}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query unreconciled receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*domain.DeliveryReceipt
	for rows.Next() {
		dr, err := domain.ScanDeliveryReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery receipt: %w", err)
		}
		receipts = append(receipts, dr)
	}
	return receipts, rows.Err()
}
