package payment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/quangvu-dev/cakeshop/internal/models"
)

var ErrPaymentNotFound = errors.New("payment not found")

func MarkAsPaid(ctx context.Context, db *gorm.DB, paymentID uint) error {
	return setFlag(ctx, db, paymentID, "is_paid")
}

func MarkAsRefund(ctx context.Context, db *gorm.DB, paymentID uint) error {
	return setFlag(ctx, db, paymentID, "is_refunded")
}

func setFlag(ctx context.Context, db *gorm.DB, paymentID uint, column string) error {
	res := db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Update(column, true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
