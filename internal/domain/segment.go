package domain

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_segment_repository.go -package mocks github.com/Notifuse/notifuse/internal/domain SegmentRepository,SegmentEvaluator,UserCursor

// Segment is a named, reusable predicate tree over Users. It is a pure
// value with no lifecycle coupling to the Users it selects.
type Segment struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Predicate *Predicate `json:"predicate"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate ensures the segment has a name and a well-formed predicate tree.
func (s *Segment) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("segment name is required")
	}
	if s.Predicate == nil {
		return fmt.Errorf("segment predicate is required")
	}
	if err := s.Predicate.Validate(); err != nil {
		return fmt.Errorf("invalid segment predicate: %w", err)
	}
	return nil
}

// SegmentRepository retrieves Segment definitions.
type SegmentRepository interface {
	GetSegmentByID(ctx context.Context, id string) (*Segment, error)
}

// UserCursor streams User rows one at a time so a caller (the Orchestrator)
// never materializes a full recipient list in memory for large campaigns.
type UserCursor interface {
	// Next advances the cursor and reports whether a user is available.
	Next(ctx context.Context) bool
	// User returns the current row. Valid only after Next returned true.
	User() *User
	// Err returns the first error encountered by Next, if any.
	Err() error
	// Close releases cursor resources (e.g. the underlying DB cursor/tx).
	Close() error
}

// SegmentEvaluator compiles a segment predicate (or the default "all
// OPT_IN users" selection when segment is nil) into a streaming selection
// over Users.
type SegmentEvaluator interface {
	// Stream opens a cursor over Users matching predicate. A nil predicate
	// means "all Users with consent_state = OPT_IN" (spec §4.5).
	Stream(ctx context.Context, predicate *Predicate) (UserCursor, error)

	// Count returns the number of Users matching predicate, for reporting.
	Count(ctx context.Context, predicate *Predicate) (int, error)
}
