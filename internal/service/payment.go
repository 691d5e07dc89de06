package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salepoint/cashier/internal/events"
	"github.com/salepoint/cashier/internal/models"
	"github.com/salepoint/cashier/internal/repo"
	"github.com/salepoint/cashier/internal/transport"
	"github.com/salepoint/cashier/pkg/logging"
)

var ErrPaymentNotFound = errors.New("payment not found") // 404

type PaymentService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// RecordPayment writes the payment and closes every open cart row of the
// user atomically. Amounts are trusted from the caller.
func (s *PaymentService) RecordPayment(ctx context.Context, userID uuid.UUID, req transport.RecordPaymentRequest) (*models.Payment, int64, error) {
	payment := &models.Payment{
		TotalPrice:    req.TotalPrice,
		PaymentMethod: req.PaymentMethod,
		CashAmount:    req.CashAmount,
	}

	closed, err := s.Repo.CreatePayment(ctx, payment, userID)
	if err != nil {
		return nil, 0, err
	}

	s.publish(ctx, map[string]any{
		"type":           "payment_recorded",
		"user_id":        userID,
		"payment_id":     payment.ID,
		"total_price":    payment.TotalPrice,
		"payment_method": payment.PaymentMethod,
		"items_closed":   closed,
	})
	return payment, closed, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.Repo.GetPayment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment %s: %w", id, ErrPaymentNotFound)
		}
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) publish(ctx context.Context, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Events.Publish(pubCtx, events.TopicPayment, fmt.Sprint(event["user_id"]), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", events.TopicPayment, "error", err)
	}
}
