package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/quangvu-dev/cakeshop/internal/models"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrWarehouseNotFound = errors.New("warehouse not found")
)

// Decrease takes qty units off the warehouse row for one product option.
// The guard is part of the UPDATE itself, so two concurrent orders for the
// same scarce option cannot both drive the quantity below zero.
func Decrease(ctx context.Context, db *gorm.DB, optionID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be > 0, got %d", qty)
	}
	res := db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("product_option_id = ? AND quantity >= ?", optionID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Increase puts qty units back, e.g. on cancellation or completed return.
func Increase(ctx context.Context, db *gorm.DB, optionID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be > 0, got %d", qty)
	}
	res := db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("product_option_id = ?", optionID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrWarehouseNotFound
	}
	return nil
}
