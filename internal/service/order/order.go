package order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/quangvu-dev/cakeshop/internal/models"
	"github.com/quangvu-dev/cakeshop/internal/service/inventory"
	"github.com/quangvu-dev/cakeshop/internal/service/payment"
	"github.com/quangvu-dev/cakeshop/internal/util"
)

// Notifier is the user-visible event side channel. Implementations must be
// best-effort: the engine never inspects a result.
type Notifier interface {
	Emit(ctx context.Context, typ models.NotifyType, orderID, userID uint)
}

// FeedbackScheduler registers deferred rate-this-product obligations once
// an order completes.
type FeedbackScheduler interface {
	Schedule(ctx context.Context, productID, userID uint)
}

// Service is the order lifecycle engine. All storage mutations for one
// operation run inside a single transaction; the notifier and feedback
// scheduler run after commit.
type Service struct {
	DB       *gorm.DB
	Notifier Notifier
	Feedback FeedbackScheduler
}

func New(db *gorm.DB, n Notifier, f FeedbackScheduler) *Service {
	return &Service{DB: db, Notifier: n, Feedback: f}
}

type LineItemInput struct {
	ProductOptionID uint `json:"product_option_id"`
	Quantity        int  `json:"quantity"`
}

func (s *Service) CreateOrder(ctx context.Context, userID uint, items []LineItemInput, address string) (*models.Order, error) {
	if userID == 0 || len(items) == 0 {
		return nil, fmt.Errorf("%w: missing information", ErrValidation)
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Preload("Addresses").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}

	if address == "" {
		address = defaultAddress(&user)
		if address == "" {
			return nil, fmt.Errorf("%w: please fill address", ErrValidation)
		}
	}

	// Resolve every requested option concurrently; results land in request
	// order so the first failing line is deterministic.
	type resolved struct {
		option  models.ProductOption
		lineErr *LineItemError
		dbErr   error
	}
	results := make([]resolved, len(items))
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := items[i]
			var opt models.ProductOption
			err := s.DB.WithContext(ctx).Preload("Warehouse").First(&opt, req.ProductOptionID).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				results[i].lineErr = &LineItemError{Kind: LineItemNotFound, ProductOptionID: req.ProductOptionID}
			case err != nil:
				results[i].dbErr = err
			case opt.Warehouse.Quantity < req.Quantity:
				results[i].lineErr = &LineItemError{Kind: LineQuantityExceed, ProductOptionID: req.ProductOptionID}
			case req.Quantity <= 0:
				results[i].lineErr = &LineItemError{Kind: LineQuantityNotValid, ProductOptionID: req.ProductOptionID}
			default:
				results[i].option = opt
			}
		}(i)
	}
	wg.Wait()

	// All-or-nothing: any failed line aborts before anything persists.
	for i := range results {
		if results[i].dbErr != nil {
			return nil, results[i].dbErr
		}
		if results[i].lineErr != nil {
			return nil, results[i].lineErr
		}
	}

	var created models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		for i := range results {
			line := results[i].option.Price.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
			total = total.Add(line)
		}

		pay := models.Payment{Amount: total}
		if err := tx.Create(&pay).Error; err != nil {
			return err
		}

		created = models.Order{
			UserID:    user.ID,
			Address:   address,
			Status:    models.StatusPending,
			PaymentID: pay.ID,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		for i := range results {
			item := models.OrderItem{
				OrderID:         created.ID,
				ProductOptionID: results[i].option.ID,
				Quantity:        items[i].Quantity,
				Price:           results[i].option.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			// The decrement re-validates availability atomically; the
			// earlier read can be stale under concurrent orders.
			if err := inventory.Decrease(ctx, tx, results[i].option.ID, items[i].Quantity); err != nil {
				if errors.Is(err, inventory.ErrInsufficientStock) {
					return &LineItemError{Kind: LineQuantityExceed, ProductOptionID: results[i].option.ID}
				}
				return err
			}
			item.ProductOption = results[i].option
			created.Items = append(created.Items, item)
		}

		entry := models.TimelineEntry{OrderID: created.ID, Content: narrationPlaced}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		created.Timeline = append(created.Timeline, entry)
		created.Payment = pay
		created.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func defaultAddress(user *models.User) string {
	for i := range user.Addresses {
		if user.Addresses[i].ID == user.DefaultAddress {
			return user.Addresses[i].Address
		}
	}
	return ""
}

func (s *Service) loadOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var o models.Order
	err := s.DB.WithContext(ctx).
		Preload("User.Addresses").
		Preload("Items.ProductOption.Product").
		Preload("Coupon").
		Preload("Payment").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID uint) (*OrderDetail, error) {
	o, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return projectDetail(o), nil
}

func (s *Service) GetStatus(ctx context.Context, orderID uint) (*StatusView, error) {
	var o models.Order
	err := s.DB.WithContext(ctx).Preload("Payment").First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &StatusView{
		Status:  o.Status.String(),
		Payment: o.Payment.Method.String(),
		IsPaid:  o.Payment.IsPaid,
	}, nil
}

type ListParams struct {
	Limit  int
	Page   int
	Order  string // "newest" (default) or "oldest"
	Status int    // -1 disables the filter
	Method int    // -1 disables the filter
	Paid   int    // -1 any, 0 unpaid, 1 paid
	Search string // numeric order id
}

func (s *Service) ListOrders(ctx context.Context, p ListParams) (*Page, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		q := db.Model(&models.Order{}).
			Joins("JOIN payments ON payments.id = orders.payment_id")
		if p.Status != -1 {
			// The filter range starts at PROCESSING; stored values are
			// shifted by one and PENDING is not filterable.
			q = q.Where("orders.status = ?", p.Status+1)
		}
		if p.Method != -1 {
			q = q.Where("payments.method = ?", p.Method)
		}
		if p.Paid != -1 {
			q = q.Where("payments.is_paid = ?", p.Paid != 0)
		}
		if p.Search != "" {
			if id, err := strconv.Atoi(p.Search); err == nil && id != 0 {
				q = q.Where("orders.id = ?", id)
			}
		}
		return q
	}

	sortBy := "orders.id DESC"
	if p.Order == "oldest" {
		sortBy = "orders.id ASC"
	}

	return s.listPage(ctx, filter, sortBy, p.Limit, p.Page)
}

func (s *Service) ListOrdersByUser(ctx context.Context, userID uint, limit, page int) (*Page, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id empty", ErrValidation)
	}
	filter := func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Order{}).Where("orders.user_id = ?", userID)
	}
	return s.listPage(ctx, filter, "orders.id DESC", limit, page)
}

func (s *Service) listPage(ctx context.Context, filter func(*gorm.DB) *gorm.DB, sortBy string, limit, page int) (*Page, error) {
	offset, limit := util.Calculate(page, limit)
	if page < 1 {
		page = 1
	}

	var total int64
	if err := filter(s.DB.WithContext(ctx)).Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: order empty", ErrNotFound)
	}

	var orders []models.Order
	err := filter(s.DB.WithContext(ctx)).
		Preload("User").
		Preload("Items.ProductOption.Product").
		Preload("Coupon").
		Preload("Payment").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order(sortBy).
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	data := make([]OrderDetail, 0, len(orders))
	for i := range orders {
		data = append(data, *projectDetail(&orders[i]))
	}
	return newPage(page, limit, total, data), nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderID uint, target models.OrderStatus) error {
	// Ordinal zero is PENDING, so an absent status field and a PENDING
	// target are rejected by the same check.
	if target == models.StatusPending {
		return fmt.Errorf("%w: status field cannot be empty", ErrValidation)
	}
	if !target.Valid() {
		return fmt.Errorf("%w: status not valid", ErrValidation)
	}

	var o models.Order
	err := s.DB.WithContext(ctx).
		Preload("User").
		Preload("Items.ProductOption").
		Preload("Payment").
		First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: order not found", ErrNotFound)
	}
	if err != nil {
		return err
	}

	tr := transitions[target]
	if o.Status != tr.from {
		return fmt.Errorf("%w: error when update status", ErrConflict)
	}

	if target == models.StatusProcessing {
		if o.Payment.Method == models.MethodNotSet {
			return fmt.Errorf("%w: please select method payment for order", ErrConflict)
		}
		if !o.Payment.IsPaid && o.Payment.Method != models.MethodCashOnDelivery {
			return fmt.Errorf("%w: this order has not been paid yet", ErrConflict)
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch target {
		case models.StatusCompleted:
			if o.Payment.Method == models.MethodCashOnDelivery {
				if err := payment.MarkAsPaid(ctx, tx, o.PaymentID); err != nil {
					return err
				}
			}
		case models.StatusCancelled:
			if err := s.restock(ctx, tx, &o); err != nil {
				return err
			}
		case models.StatusReturnedCompleted:
			if err := s.restock(ctx, tx, &o); err != nil {
				return err
			}
			if err := payment.MarkAsRefund(ctx, tx, o.PaymentID); err != nil {
				return err
			}
		}

		entry := models.TimelineEntry{OrderID: o.ID, Content: tr.narration}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		// Guarded write: the current status is part of the predicate, so a
		// concurrent transition rolls this whole transaction back.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", o.ID, tr.from).
			Update("status", target)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: status write affected no rows", ErrPersistence)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Notifier.Emit(ctx, tr.notify, o.ID, o.UserID)
	if target == models.StatusCompleted {
		for i := range o.Items {
			s.Feedback.Schedule(ctx, o.Items[i].ProductOption.ProductID, o.UserID)
		}
	}
	return nil
}

func (s *Service) restock(ctx context.Context, tx *gorm.DB, o *models.Order) error {
	for i := range o.Items {
		if err := inventory.Increase(ctx, tx, o.Items[i].ProductOptionID, o.Items[i].Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) UpdateAddress(ctx context.Context, orderID uint, address string) error {
	if address == "" {
		return fmt.Errorf("%w: address empty", ErrValidation)
	}

	// Guarded write: the status gate is part of the predicate, so a
	// concurrent transition cannot slip an address change past it.
	res := s.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", orderID,
			[]models.OrderStatus{models.StatusPending, models.StatusProcessing}).
		Update("address", address)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var o models.Order
		err := s.DB.WithContext(ctx).First(&o, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order not found", ErrNotFound)
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: address can only change while the order is PENDING or PROCESSING", ErrConflict)
	}
	return nil
}

// DeleteOrder is the administrative escape hatch: it bypasses the state
// machine entirely.
func (s *Service) DeleteOrder(ctx context.Context, orderID uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Order{}, orderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order not found", ErrNotFound)
	}
	return nil
}
