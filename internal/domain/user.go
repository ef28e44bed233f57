package domain

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

//go:generate mockgen -destination mocks/mock_user_repository.go -package mocks github.com/Notifuse/notifuse/internal/domain UserRepository

// ConsentState represents a user's current subscription state.
type ConsentState string

const (
	// ConsentStateOptIn means the user is eligible to receive campaign messages.
	ConsentStateOptIn ConsentState = "OPT_IN"
	// ConsentStateOptOut means the operator (or a bulk import) removed the
	// user from eligibility; it is not sticky against re-opt-in by import.
	ConsentStateOptOut ConsentState = "OPT_OUT"
	// ConsentStateStop means the user sent an inbound STOP-class command.
	// It is sticky: only an explicit inbound START re-opts the user in.
	ConsentStateStop ConsentState = "STOP"
)

// Validate checks that the consent state is one of the known values.
func (c ConsentState) Validate() error {
	switch c {
	case ConsentStateOptIn, ConsentStateOptOut, ConsentStateStop:
		return nil
	}
	return fmt.Errorf("invalid consent state: %s", c)
}

// e164Pattern matches a '+' followed by 1-15 digits, leading digit non-zero.
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// IsValidE164 reports whether phone is a normalized E.164 phone string.
func IsValidE164(phone string) bool {
	return e164Pattern.MatchString(phone)
}

// User is identified by its normalized E.164 phone number. Attributes is an
// arbitrary, flat string-keyed map; richer typing only happens at the
// predicate-evaluator edge where the operator grammar knows what it expects.
type User struct {
	Phone        string       `json:"phone"`
	Attributes   MapOfAny     `json:"attributes"`
	ConsentState ConsentState `json:"consent_state"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Validate ensures the user satisfies its invariants.
func (u *User) Validate() error {
	if u.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if !IsValidE164(u.Phone) {
		return fmt.Errorf("invalid phone: must match E.164 (+ followed by 1-15 digits)")
	}
	if err := u.ConsentState.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}
	return nil
}

// Attribute looks up a string-valued attribute, returning "" if absent or
// not representable as a string.
func (u *User) Attribute(name string) (string, bool) {
	if u.Attributes == nil {
		return "", false
	}
	v, ok := u.Attributes[name]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	default:
		return fmt.Sprintf("%v", t), true
	}
}

// dbUser is the database scanning shape for User.
type dbUser struct {
	Phone        string
	Attributes   MapOfAny
	ConsentState string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ScanUser scans a user row from a database/sql Scanner.
func ScanUser(scanner interface {
	Scan(dest ...interface{}) error
}) (*User, error) {
	var dbu dbUser
	if err := scanner.Scan(
		&dbu.Phone,
		&dbu.Attributes,
		&dbu.ConsentState,
		&dbu.CreatedAt,
		&dbu.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &User{
		Phone:        dbu.Phone,
		Attributes:   dbu.Attributes,
		ConsentState: ConsentState(dbu.ConsentState),
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}, nil
}

// UserRepository persists and retrieves Users. UpsertUser is the merge
// primitive described in spec §4.1: it merges attribute keys (new values
// override) and only changes consent when the caller is the Consent Engine
// or the current consent is not STOP (STOP is sticky against bulk import).
type UserRepository interface {
	// UpsertUser merges attrs into the existing user's attribute map (or
	// creates the user) and sets consent per the sticky-STOP rule unless
	// asConsentEngine is true, in which case consent is always applied.
	UpsertUser(ctx context.Context, phone string, attrs MapOfAny, consent ConsentState, asConsentEngine bool) (*User, error)

	// GetUserByPhone retrieves a single user by its normalized phone.
	GetUserByPhone(ctx context.Context, phone string) (*User, error)
}
