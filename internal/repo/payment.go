package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salepoint/cashier/internal/models"
)

// CreatePayment writes the payment and stamps every open cart row of the
// user with its id in a single transaction, so a failure can never leave
// some rows closed and others open. Returns how many rows were closed.
func (r *GormRepo) CreatePayment(ctx context.Context, payment *models.Payment, userID uuid.UUID) (int64, error) {
	var closed int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND payment_id IS NULL", userID).
			Update("payment_id", payment.ID)
		if res.Error != nil {
			return res.Error
		}
		closed = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return closed, nil
}

func (r *GormRepo) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment := models.Payment{}
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}
