package usecase

import (
	"context"
	"fmt"
	"strings"

	"postfeed/pkg/logger"
	"postfeed/pkg/mailer"
	"postfeed/pkg/queue"

	"golang.org/x/time/rate"
)

type DeliveryUseCase interface {
	// Handle sends one queued email. A returned error asks the consumer to requeue.
	Handle(ctx context.Context, task queue.EmailTask) error
}

type deliveryUseCase struct {
	sender  mailer.Sender
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewDeliveryUseCase throttles outgoing mail with limiter; a nil limiter sends unthrottled.
func NewDeliveryUseCase(sender mailer.Sender, limiter *rate.Limiter, logger *logger.Logger) DeliveryUseCase {
	return &deliveryUseCase{
		sender:  sender,
		limiter: limiter,
		logger:  logger,
	}
}

func (uc *deliveryUseCase) Handle(ctx context.Context, task queue.EmailTask) error {
	if strings.TrimSpace(task.To) == "" {
		// Nothing to retry
		uc.logger.Warn("[EMAIL HANDLER] Dropping task type=%s without recipient", task.Type)
		return nil
	}

	subject := task.Subject
	if subject == "" && task.Type == queue.EmailRoutingKey {
		subject, _ = mailer.ResetEmail("")
	}

	if uc.limiter != nil {
		if err := uc.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for send slot: %w", err)
		}
	}

	uc.logger.Info("[EMAIL HANDLER] Sending type=%s to=%s", task.Type, task.To)
	if err := uc.sender.Send(ctx, task.To, subject, task.Body); err != nil {
		uc.logger.Error("[EMAIL HANDLER] Failed to send type=%s to=%s: %v", task.Type, task.To, err)
		return err
	}

	uc.logger.Info("[EMAIL HANDLER] Sent type=%s to=%s", task.Type, task.To)
	return nil
}
