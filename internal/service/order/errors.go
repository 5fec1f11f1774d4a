package order

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation")  // 400
	ErrNotFound    = errors.New("not found")   // 404
	ErrConflict    = errors.New("conflict")    // 409
	ErrPersistence = errors.New("persistence") // 500
)

// Line item error kinds, keyed the way clients already match on them.
const (
	LineItemNotFound     = "item_not_found"
	LineQuantityExceed   = "quantity_exceed"
	LineQuantityNotValid = "quantity_not_valid"
)

// LineItemError reports which requested product option failed validation
// during order creation, so the client can highlight the offending line.
type LineItemError struct {
	Kind            string `json:"type"`
	ProductOptionID uint   `json:"product_option_id"`
}

func (e *LineItemError) Error() string {
	return fmt.Sprintf("%s: product option %d", e.Kind, e.ProductOptionID)
}
