package domain

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_template_repository.go -package mocks github.com/Notifuse/notifuse/internal/domain TemplateRepository

// Channel identifies the messaging medium a Template/Message is sent over.
type Channel string

const (
	ChannelSMS       Channel = "sms"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelMessenger Channel = "messenger"
	ChannelVoice     Channel = "voice"
)

// Validate checks that the channel is one of the known values.
func (c Channel) Validate() error {
	switch c {
	case ChannelSMS, ChannelWhatsApp, ChannelMessenger, ChannelVoice:
		return nil
	}
	return fmt.Errorf("invalid channel: %s", c)
}

// Template holds parameterized message content. Once a campaign that
// references a Template is RUNNING, the content must stay referentially
// stable for the duration of that run (spec §3); the store never mutates an
// in-flight Template in place, writers introduce a new named version instead.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Channel   Channel   `json:"channel"`
	Locale    string    `json:"locale"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate ensures the template satisfies its invariants.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if err := t.Channel.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}
	if t.Locale == "" {
		return fmt.Errorf("template locale is required")
	}
	if t.Content == "" {
		return fmt.Errorf("template content is required")
	}
	return nil
}

// dbTemplate is the database scanning shape for Template.
type dbTemplate struct {
	ID        string
	Name      string
	Channel   string
	Locale    string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScanTemplate scans a template row from a database/sql Scanner.
func ScanTemplate(scanner interface {
	Scan(dest ...interface{}) error
}) (*Template, error) {
	var dbt dbTemplate
	if err := scanner.Scan(
		&dbt.ID,
		&dbt.Name,
		&dbt.Channel,
		&dbt.Locale,
		&dbt.Content,
		&dbt.CreatedAt,
		&dbt.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &Template{
		ID:        dbt.ID,
		Name:      dbt.Name,
		Channel:   Channel(dbt.Channel),
		Locale:    dbt.Locale,
		Content:   dbt.Content,
		CreatedAt: dbt.CreatedAt,
		UpdatedAt: dbt.UpdatedAt,
	}, nil
}

// TemplateRepository persists and retrieves Templates.
type TemplateRepository interface {
	GetTemplateByID(ctx context.Context, id string) (*Template, error)
	CreateTemplate(ctx context.Context, t *Template) error
}
