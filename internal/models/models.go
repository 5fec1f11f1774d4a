package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus ordinals are persisted; do not reorder.
type OrderStatus int

const (
	StatusPending OrderStatus = iota
	StatusProcessing
	StatusShipped
	StatusCompleted
	StatusCancelled
	StatusReturned
	StatusReturnedCompleted
)

func (s OrderStatus) Valid() bool {
	return s >= StatusPending && s <= StatusReturnedCompleted
}

func (s OrderStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusProcessing:
		return "PROCESSING"
	case StatusShipped:
		return "SHIPPED"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusReturned:
		return "RETURNED"
	case StatusReturnedCompleted:
		return "RETURNED_COMPLETED"
	}
	return "UNKNOWN"
}

type PaymentMethod int

const (
	MethodNotSet PaymentMethod = iota
	MethodCashOnDelivery
	MethodBankTransfer
)

func (m PaymentMethod) String() string {
	switch m {
	case MethodCashOnDelivery:
		return "CASH_ON_DELIVERY"
	case MethodBankTransfer:
		return "BANK_TRANSFER"
	}
	return "NOT_SET"
}

type NotifyType int

const (
	NotifyEmpty NotifyType = iota
	NotifyNewOrder
	NotifyUserFeedback
	NotifyShipped
	NotifyCompleted
	NotifyCancelled
	NotifyReturned
	NotifyReturnedCompleted
)

type CouponType int

const (
	CouponPercent CouponType = iota
	CouponFixed
)

type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username       string    `gorm:"unique;not null"          json:"username"`
	DefaultAddress uint      `json:"default_address"`
	Addresses      []Address `gorm:"foreignKey:UserID"        json:"addresses,omitempty"`
}

type Address struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  uint   `gorm:"index;not null"           json:"user_id"`
	Address string `gorm:"not null"                 json:"address"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"unique;not null"          json:"name"`
	Description string          `json:"description"`
	Options     []ProductOption `gorm:"foreignKey:ProductID"     json:"options,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ProductOption struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	ProductID uint            `gorm:"index;not null"              json:"product_id"`
	Product   Product         `json:"-"`
	Flavor    string          `gorm:"not null"                    json:"flavor"`
	Weight    string          `gorm:"not null"                    json:"weight"`
	Price     decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"price"`
	ImageURL  string          `json:"image_url"`
	Warehouse Warehouse       `gorm:"foreignKey:ProductOptionID"  json:"warehouse"`
}

// Warehouse is the stock ledger row for one product option. Quantity is
// adjusted only through conditional updates, never read-then-write.
type Warehouse struct {
	ID              uint `gorm:"primaryKey;autoIncrement"             json:"id"`
	ProductOptionID uint `gorm:"uniqueIndex;not null"                 json:"product_option_id"`
	Quantity        int  `gorm:"not null;default:0;check:quantity>=0" json:"quantity"`
}

type Coupon struct {
	ID    uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Code  string          `gorm:"unique;not null"             json:"code"`
	Type  CouponType      `gorm:"not null"                    json:"type"`
	Value decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"value"`
}

type Order struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint            `gorm:"index;not null"           json:"user_id"`
	User      User            `json:"user,omitempty"`
	Address   string          `gorm:"not null"                 json:"address"`
	Status    OrderStatus     `gorm:"not null;default:0"       json:"status"`
	CouponID  *uint           `json:"coupon_id,omitempty"`
	Coupon    *Coupon         `json:"coupon,omitempty"`
	PaymentID uint            `gorm:"uniqueIndex;not null"     json:"payment_id"`
	Payment   Payment         `json:"payment,omitempty"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID"       json:"items,omitempty"`
	Timeline  []TimelineEntry `gorm:"foreignKey:OrderID"       json:"timeline,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderItem captures the unit price at order time; the live option price
// may change afterwards without affecting it.
type OrderItem struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID         uint            `gorm:"index;not null"              json:"order_id"`
	ProductOptionID uint            `gorm:"not null"                    json:"product_option_id"`
	ProductOption   ProductOption   `json:"product_option,omitempty"`
	Quantity        int             `gorm:"not null;check:quantity>0"   json:"quantity"`
	Price           decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"price"`
}

type Payment struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Amount     decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"amount"`
	Method     PaymentMethod   `gorm:"not null;default:0"          json:"method"`
	IsPaid     bool            `gorm:"default:false"               json:"is_paid"`
	IsRefunded bool            `gorm:"default:false"               json:"is_refunded"`
}

// TimelineEntry rows are append-only.
type TimelineEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint      `gorm:"index;not null"           json:"order_id"`
	Content   string    `gorm:"not null"                 json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Type      NotifyType `gorm:"not null"                 json:"type"`
	Content   string     `gorm:"not null"                 json:"content"`
	IsRead    bool       `gorm:"default:false"            json:"is_read"`
	UserID    uint       `gorm:"index;not null"           json:"user_id"`
	OrderID   uint       `gorm:"index;not null"           json:"order_id"`
	CreatedAt time.Time  `json:"created_at"`
}

type FeedbackReminder struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint      `gorm:"index;not null"           json:"product_id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	RemindAt  time.Time `gorm:"not null"                 json:"remind_at"`
	Sent      bool      `gorm:"default:false"            json:"sent"`
	CreatedAt time.Time `json:"created_at"`
}
