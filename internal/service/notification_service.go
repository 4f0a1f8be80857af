package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nairobi-county/county-tickets/internal/config"
	"github.com/nairobi-county/county-tickets/internal/domain"
	"github.com/nairobi-county/county-tickets/internal/events"
)

// NotificationService turns ticket events into citizen and staff notifications.
// Delivery is stubbed: email and webhook sends are logged, not performed.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.SubscribeAll(n.logTransition)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketRemarkAdded, n.handleTicketRemarkAdded)
	n.dispatcher.Subscribe(events.EventTicketRated, n.handleTicketRated)
	n.dispatcher.Subscribe(events.EventTicketSLARecomputed, n.handleTicketSLARecomputed)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	if payload, ok := event.Payload.(events.TicketStatusChangedPayload); ok {
		// Citizens are emailed only for outcomes they need to act on.
		switch payload.NewStatus {
		case domain.TicketStatusResolved, domain.TicketStatusEscalated, domain.TicketStatusRejected:
			n.sendEmailNotificationStub(ctx, event)
		}
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketRemarkAdded(ctx context.Context, event events.Event) error {
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketRated(ctx context.Context, event events.Event) error {
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketSLARecomputed(ctx context.Context, event events.Event) error {
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) logTransition(_ context.Context, event events.Event) error {
	n.logger.Debug("ticket event",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor", event.Actor.ID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
