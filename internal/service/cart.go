package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salepoint/cashier/internal/events"
	"github.com/salepoint/cashier/internal/models"
	"github.com/salepoint/cashier/internal/repo"
	"github.com/salepoint/cashier/internal/transport"
	"github.com/salepoint/cashier/pkg/logging"
)

var (
	ErrValidation      = errors.New("validation")        // 400
	ErrProductNotFound = errors.New("product not found") // 404
	ErrCartNotFound    = errors.New("cart not found")    // 404
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// ListCart returns the user's open cart rows with per-row totals and the
// grand total.
func (s *CartService) ListCart(ctx context.Context, userID uuid.UUID) (*transport.CartView, error) {
	lines, err := s.Repo.ListOpenItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for i := range lines {
		lines[i].Total = lines[i].ProductPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
		total = total.Add(lines[i].Total)
	}

	return &transport.CartView{Items: lines, TotalPrice: total}, nil
}

// PaymentSummary returns only the open cart's grand total, for the
// payment-entry screen.
func (s *CartService) PaymentSummary(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return s.Repo.OpenCartTotal(ctx, userID)
}

// AddToCart verifies the product exists before touching the cart. A repeat
// add of a product already in the open cart increments its quantity by one
// and ignores the requested quantity; otherwise a new row is created with
// the requested quantity, defaulting to 1.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity *uint) (*models.CartItem, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product_id required: %w", ErrValidation)
	}

	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
		}
		return nil, err
	}

	qty := uint(1)
	if quantity != nil && *quantity > 0 {
		qty = *quantity
	}

	item, err := s.Repo.AddItem(ctx, userID, productID, qty)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":       "cart_item_added",
		"user_id":    userID,
		"product_id": productID,
		"quantity":   item.Quantity,
	})
	return item, nil
}

func (s *CartService) IncrementQuantity(ctx context.Context, id, userID uuid.UUID) (*models.CartItem, error) {
	item, err := s.Repo.IncrementItem(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item %s: %w", id, ErrCartNotFound)
		}
		return nil, err
	}

	s.publish(ctx, map[string]any{
		"type":     "cart_item_incremented",
		"user_id":  userID,
		"item_id":  id,
		"quantity": item.Quantity,
	})
	return item, nil
}

// DecrementQuantity lowers the row's quantity by one; a quantity-1 row is
// removed from the cart entirely.
func (s *CartService) DecrementQuantity(ctx context.Context, id, userID uuid.UUID) (bool, *models.CartItem, error) {
	deleted, item, err := s.Repo.DecrementItem(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, fmt.Errorf("cart item %s: %w", id, ErrCartNotFound)
		}
		return false, nil, err
	}

	event := map[string]any{
		"type":    "cart_item_decremented",
		"user_id": userID,
		"item_id": id,
	}
	if deleted {
		event["type"] = "cart_item_removed"
	} else {
		event["quantity"] = item.Quantity
	}
	s.publish(ctx, event)
	return deleted, item, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.Repo.DeleteItem(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart item %s: %w", id, ErrCartNotFound)
		}
		return err
	}

	s.publish(ctx, map[string]any{
		"type":    "cart_item_removed",
		"user_id": userID,
		"item_id": id,
	})
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	removed, err := s.Repo.ClearOpen(ctx, userID)
	if err != nil {
		return err
	}

	s.publish(ctx, map[string]any{
		"type":    "cart_cleared",
		"user_id": userID,
		"removed": removed,
	})
	return nil
}

// publish is best effort: event delivery never fails the request.
func (s *CartService) publish(ctx context.Context, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Events.Publish(pubCtx, events.TopicCart, fmt.Sprint(event["user_id"]), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", events.TopicCart, "error", err)
	}
}
