package campaign

import (
	"context"
	"time"

	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/pkg/logger"
)

//go:generate mockgen -destination=./mocks/mock_recipient_fetcher.go -package=mocks github.com/Notifuse/notifuse/internal/service/campaign RecipientFetcher

// RecipientFetcher resolves a campaign's segment into a streaming source
// of Users, so the Orchestrator never has to materialize a full recipient
// list for a large segment.
type RecipientFetcher interface {
	// CountRecipients returns the number of Users the campaign's segment
	// (or the default "all OPT_IN users" selection) currently matches.
	CountRecipients(ctx context.Context, segmentID *string) (int, error)

	// OpenStream opens a UserCursor over the campaign's recipients.
	OpenStream(ctx context.Context, segmentID *string) (domain.UserCursor, error)
}

type recipientFetcher struct {
	segmentRepo domain.SegmentRepository
	evaluator   domain.SegmentEvaluator
	logger      logger.Logger
}

// NewRecipientFetcher creates a new recipient fetcher.
func NewRecipientFetcher(segmentRepo domain.SegmentRepository, evaluator domain.SegmentEvaluator, log logger.Logger) RecipientFetcher {
	return &recipientFetcher{segmentRepo: segmentRepo, evaluator: evaluator, logger: log}
}

// resolvePredicate loads the segment's predicate tree, or returns nil for
// the default "all OPT_IN users" selection when segmentID is nil.
func (f *recipientFetcher) resolvePredicate(ctx context.Context, segmentID *string) (*domain.Predicate, error) {
	if segmentID == nil {
		return nil, nil
	}
	segment, err := f.segmentRepo.GetSegmentByID(ctx, *segmentID)
	if err != nil {
		return nil, NewCampaignError(ErrCodeSegmentNotFound, "segment not found", false, err)
	}
	return segment.Predicate, nil
}

// CountRecipients returns the number of Users matching the campaign's segment.
func (f *recipientFetcher) CountRecipients(ctx context.Context, segmentID *string) (int, error) {
	startTime := time.Now()
	defer func() {
		f.logger.WithField("duration_ms", time.Since(startTime).Milliseconds()).Debug("recipient count completed")
	}()

	predicate, err := f.resolvePredicate(ctx, segmentID)
	if err != nil {
		return 0, err
	}
	count, err := f.evaluator.Count(ctx, predicate)
	if err != nil {
		return 0, NewCampaignError(ErrCodeRecipientStream, "failed to count recipients", true, err)
	}
	return count, nil
}

// OpenStream opens a UserCursor over the campaign's recipients.
func (f *recipientFetcher) OpenStream(ctx context.Context, segmentID *string) (domain.UserCursor, error) {
	predicate, err := f.resolvePredicate(ctx, segmentID)
	if err != nil {
		return nil, err
	}
	cursor, err := f.evaluator.Stream(ctx, predicate)
	if err != nil {
		return nil, NewCampaignError(ErrCodeRecipientStream, "failed to open recipient stream", true, err)
	}
	return cursor, nil
}
