package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salepoint/cashier/internal/models"
	"github.com/salepoint/cashier/internal/transport"
)

// ListOpenItems returns the user's open cart rows joined with their
// products, newest first. Per-row totals are computed by the service.
func (r *GormRepo) ListOpenItems(ctx context.Context, userID uuid.UUID) ([]transport.CartLine, error) {
	var lines []transport.CartLine
	err := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Select("cart_items.id, cart_items.product_id, products.name AS product_name, products.price AS product_price, cart_items.quantity, cart_items.created_at").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ? AND cart_items.payment_id IS NULL", userID).
		Order("cart_items.created_at DESC").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// OpenCartTotal sums price*quantity over the user's open rows in SQL.
func (r *GormRepo) OpenCartTotal(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	row := r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Select("COALESCE(SUM(products.price * cart_items.quantity), 0)").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ? AND cart_items.payment_id IS NULL", userID).
		Row()

	var total decimal.Decimal
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// AddItem adds a product to the user's open cart. An existing open row is
// incremented by exactly one, regardless of the requested quantity; a new
// row is created with the requested quantity.
func (r *GormRepo) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("user_id = ? AND product_id = ? AND payment_id IS NULL", userID, productID).
			First(&item).Error
		switch {
		case err == nil:
			if err := tx.Model(&item).Update("quantity", gorm.Expr("quantity + 1")).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", item.ID).First(&item).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
			return tx.Create(&item).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) IncrementItem(ctx context.Context, id, userID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
			return err
		}
		if err := tx.Model(&item).Update("quantity", gorm.Expr("quantity + 1")).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DecrementItem lowers the row's quantity by one; a quantity-1 row is
// deleted instead of being persisted at zero.
func (r *GormRepo) DecrementItem(ctx context.Context, id, userID uuid.UUID) (bool, *models.CartItem, error) {
	var item models.CartItem
	deleted := false

	if err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
			return err
		}
		if item.Quantity > 1 {
			if err := tx.Model(&item).Update("quantity", gorm.Expr("quantity - 1")).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", id).First(&item).Error
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	}); err != nil {
		return false, nil, err
	}
	return deleted, &item, nil
}

func (r *GormRepo) DeleteItem(ctx context.Context, id, userID uuid.UUID) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearOpen removes every open row of the user in one statement.
func (r *GormRepo) ClearOpen(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND payment_id IS NULL", userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
