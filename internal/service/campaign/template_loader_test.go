package campaign

import (
	"context"
	"testing"

	"github.com/Notifuse/notifuse/internal/domain"
	domainmocks "github.com/Notifuse/notifuse/internal/domain/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateLoader_LoadTemplate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domainmocks.NewMockTemplateRepository(ctrl)
	want := &domain.Template{ID: "t1", Name: "welcome", Channel: domain.ChannelSMS, Locale: "en", Content: "hi"}
	repo.EXPECT().GetTemplateByID(gomock.Any(), "t1").Return(want, nil)

	l := NewTemplateLoader(repo, testLogger())
	got, err := l.LoadTemplate(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTemplateLoader_LoadTemplate_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := domainmocks.NewMockTemplateRepository(ctrl)
	repo.EXPECT().GetTemplateByID(gomock.Any(), "missing").Return(nil, &domain.NotFoundError{Entity: "Template", ID: "missing"})

	l := NewTemplateLoader(repo, testLogger())
	_, err := l.LoadTemplate(context.Background(), "missing")
	require.Error(t, err)

	var campaignErr *CampaignError
	require.ErrorAs(t, err, &campaignErr)
	assert.Equal(t, ErrCodeTemplateMissing, campaignErr.Code)
}

func TestTemplateLoader_ValidateTemplate(t *testing.T) {
	l := NewTemplateLoader(nil, testLogger())

	err := l.ValidateTemplate(&domain.Template{Name: "welcome", Channel: domain.ChannelSMS, Locale: "en", Content: "hi"})
	assert.NoError(t, err)

	err = l.ValidateTemplate(&domain.Template{Name: "", Channel: domain.ChannelSMS, Locale: "en", Content: "hi"})
	assert.Error(t, err)

	err = l.ValidateTemplate(nil)
	assert.Error(t, err)
}
