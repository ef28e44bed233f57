package campaign

import (
	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/internal/provider"
	"github.com/Notifuse/notifuse/internal/service/queue"
	"github.com/Notifuse/notifuse/pkg/logger"
	"github.com/Notifuse/notifuse/pkg/ratelimiter"
)

// Factory creates and wires together all of a campaign's dispatch components.
type Factory struct {
	campaignRepo domain.CampaignRepository
	segmentRepo  domain.SegmentRepository
	evaluator    domain.SegmentEvaluator
	templateRepo domain.TemplateRepository
	messageRepo  domain.MessageRepository
	adapter      provider.Adapter
	rateLimiter  ratelimiter.Limiter
	logger       logger.Logger
	config       *Config
}

// NewFactory creates a new Factory for campaign dispatch components.
func NewFactory(
	campaignRepo domain.CampaignRepository,
	segmentRepo domain.SegmentRepository,
	evaluator domain.SegmentEvaluator,
	templateRepo domain.TemplateRepository,
	messageRepo domain.MessageRepository,
	adapter provider.Adapter,
	rateLimiter ratelimiter.Limiter,
	log logger.Logger,
	config *Config,
) *Factory {
	if config == nil {
		config = DefaultConfig()
	}
	return &Factory{
		campaignRepo: campaignRepo,
		segmentRepo:  segmentRepo,
		evaluator:    evaluator,
		templateRepo: templateRepo,
		messageRepo:  messageRepo,
		adapter:      adapter,
		rateLimiter:  rateLimiter,
		logger:       log,
		config:       config,
	}
}

// CreateOrchestrator wires a fresh Orchestrator over the factory's components.
func (f *Factory) CreateOrchestrator() Orchestrator {
	recipientFetcher := NewRecipientFetcher(f.segmentRepo, f.evaluator, f.logger)
	templateLoader := NewTemplateLoader(f.templateRepo, f.logger)
	progressTracker := NewProgressTracker(f.logger, f.config)
	timeProvider := NewRealTimeProvider()
	sleeper := NewRealSleeper()

	var breaker *queue.IntegrationCircuitBreaker
	if f.config.EnableCircuitBreaker {
		breaker = queue.NewIntegrationCircuitBreaker(queue.CircuitBreakerConfig{
			Threshold:      f.config.CircuitBreakerThreshold,
			CooldownPeriod: f.config.CircuitBreakerCooldown,
		})
	}
	messageSender := NewMessageSender(f.messageRepo, f.adapter, breaker, f.logger)

	return NewOrchestrator(
		f.campaignRepo,
		recipientFetcher,
		templateLoader,
		messageSender,
		progressTracker,
		f.rateLimiter,
		timeProvider,
		sleeper,
		f.config,
		f.logger,
	)
}
