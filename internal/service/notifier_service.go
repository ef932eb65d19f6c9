package service

import (
	"context"
	"encoding/json"

	"marketplace-billing-be/internal/pkg/logger"
	"marketplace-billing-be/internal/pkg/mailer"
	"marketplace-billing-be/internal/repository/unitofwork"
	"marketplace-billing-be/pkg/events"
	pktNats "marketplace-billing-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// INotifierService drains the in-process event bus and fans events out to the
// NATS bus and, for owner-facing events, to email. It runs as a background
// worker so webhook handling never waits on SMTP.
type INotifierService interface {
	Consume(ctx context.Context) error
}

type notifierService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	uowFactory   unitofwork.RepositoryFactory
	natsPub      *pktNats.Publisher
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewNotifierService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	natsPub *pktNats.Publisher,
	emailService mailer.IEmailService,
	log logger.ILogger,
) INotifierService {
	return &notifierService{
		pubSub:       pubSub,
		topicName:    topicName,
		uowFactory:   uowFactory,
		natsPub:      natsPub,
		emailService: emailService,
		logger:       log,
	}
}

func (s *notifierService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *notifierService) processMessage(ctx context.Context, msg *message.Message) {
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		s.logger.Error("notifier", "Failed to unmarshal event, dropping", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	evt := events.BaseEvent{
		Type:       envelope.Type,
		Data:       envelope.Data,
		OccurredAt: envelope.OccurredAt,
	}

	if s.natsPub != nil {
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("notifier", "NATS publish failed", map[string]interface{}{
				"type":  envelope.Type,
				"error": err.Error(),
			})
			// Mail still goes out; NATS consumers catch up from the stream.
		}
	}

	s.sendMail(ctx, &envelope)
	msg.Ack()
}

func (s *notifierService) sendMail(ctx context.Context, envelope *eventEnvelope) {
	if s.emailService == nil {
		return
	}

	switch envelope.Type {
	case events.TypePaymentCompleted, events.TypeSubscriptionExpired, events.TypeTrialStarted:
	default:
		return
	}

	ownerIdStr, _ := envelope.Data["owner_id"].(string)
	ownerId, err := uuid.Parse(ownerIdStr)
	if err != nil {
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	owner, err := uow.OwnerRepository().FindById(ctx, ownerId)
	if err != nil || owner == nil || owner.Email == "" {
		return
	}

	switch envelope.Type {
	case events.TypePaymentCompleted:
		amount := int64(0)
		if v, ok := envelope.Data["amount"].(float64); ok {
			amount = int64(v)
		}
		if err := s.emailService.SendPaymentReceipt(owner.Email, owner.FullName, "subscription", amount, "XOF"); err != nil {
			s.logger.Warn("notifier", "Receipt mail failed", map[string]interface{}{"error": err.Error()})
		}
	case events.TypeSubscriptionExpired:
		if err := s.emailService.SendSubscriptionExpired(owner.Email, owner.FullName); err != nil {
			s.logger.Warn("notifier", "Expiry mail failed", map[string]interface{}{"error": err.Error()})
		}
	case events.TypeTrialStarted:
		if err := s.emailService.SendTrialStarted(owner.Email, owner.FullName, 30); err != nil {
			s.logger.Warn("notifier", "Trial mail failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
