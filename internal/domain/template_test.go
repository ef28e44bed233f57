package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannel_Validate(t *testing.T) {
	tests := []struct {
		name    string
		channel Channel
		wantErr bool
	}{
		{"sms", ChannelSMS, false},
		{"whatsapp", ChannelWhatsApp, false},
		{"messenger", ChannelMessenger, false},
		{"voice", ChannelVoice, false},
		{"unknown", Channel("carrier_pigeon"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.channel.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTemplate_Validate(t *testing.T) {
	tests := []struct {
		name     string
		template Template
		wantErr  bool
	}{
		{
			name: "valid template",
			template: Template{
				Name:    "order_confirmation",
				Channel: ChannelSMS,
				Locale:  "en-US",
				Content: "Hi {{first_name}}, your order shipped.",
			},
		},
		{
			name:     "missing name",
			template: Template{Channel: ChannelSMS, Locale: "en-US", Content: "hi"},
			wantErr:  true,
		},
		{
			name:     "invalid channel",
			template: Template{Name: "x", Channel: "fax", Locale: "en-US", Content: "hi"},
			wantErr:  true,
		},
		{
			name:     "missing locale",
			template: Template{Name: "x", Channel: ChannelSMS, Content: "hi"},
			wantErr:  true,
		},
		{
			name:     "missing content",
			template: Template{Name: "x", Channel: ChannelSMS, Locale: "en-US"},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.template.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
