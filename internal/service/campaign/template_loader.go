package campaign

import (
	"context"
	"time"

	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/pkg/logger"
)

//go:generate mockgen -destination=./mocks/mock_template_loader.go -package=mocks github.com/Notifuse/notifuse/internal/service/campaign TemplateLoader

// TemplateLoader loads and validates the single Template a campaign
// references. Unlike the teacher's A/B variation loader, a Campaign has
// exactly one template_id (spec §3), so there is nothing to select between.
type TemplateLoader interface {
	LoadTemplate(ctx context.Context, templateID string) (*domain.Template, error)
	ValidateTemplate(t *domain.Template) error
}

type templateLoader struct {
	templateRepo domain.TemplateRepository
	logger       logger.Logger
}

// NewTemplateLoader creates a new template loader.
func NewTemplateLoader(templateRepo domain.TemplateRepository, log logger.Logger) TemplateLoader {
	return &templateLoader{templateRepo: templateRepo, logger: log}
}

// LoadTemplate loads the campaign's template by ID.
func (l *templateLoader) LoadTemplate(ctx context.Context, templateID string) (*domain.Template, error) {
	startTime := time.Now()
	defer func() {
		l.logger.WithFields(map[string]interface{}{
			"duration_ms": time.Since(startTime).Milliseconds(),
			"template_id": templateID,
		}).Debug("template load completed")
	}()

	t, err := l.templateRepo.GetTemplateByID(ctx, templateID)
	if err != nil {
		l.logger.WithField("template_id", templateID).Error("failed to load template")
		return nil, NewCampaignError(ErrCodeTemplateMissing, "template not found", false, err)
	}
	return t, nil
}

// ValidateTemplate ensures the template carries the fields the renderer needs.
func (l *templateLoader) ValidateTemplate(t *domain.Template) error {
	if t == nil {
		return NewCampaignError(ErrCodeTemplateInvalid, "template is nil", false, nil)
	}
	if err := t.Validate(); err != nil {
		return NewCampaignError(ErrCodeTemplateInvalid, "template failed validation", false, err)
	}
	return nil
}
