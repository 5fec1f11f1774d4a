package order

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quangvu-dev/cakeshop/internal/models"
)

type ItemView struct {
	ProductName     string          `json:"product_name"`
	ProductOptionID uint            `json:"product_option_id"`
	Flavor          string          `json:"flavor"`
	Weight          string          `json:"weight"`
	Price           decimal.Decimal `json:"price"`
	CapturedPrice   decimal.Decimal `json:"captured_price"`
	Quantity        int             `json:"quantity"`
	Image           string          `json:"image,omitempty"`
}

type PaymentView struct {
	Method         string           `json:"method"`
	Amount         decimal.Decimal  `json:"amount"`
	PreviousAmount *decimal.Decimal `json:"previous_amount,omitempty"`
	Discount       *decimal.Decimal `json:"discount,omitempty"`
	IsPaid         bool             `json:"is_paid"`
	IsRefunded     bool             `json:"is_refunded"`
}

type OrderDetail struct {
	OrderID   uint                   `json:"order_id"`
	Status    string                 `json:"status"`
	CreatedAt time.Time              `json:"create_at"`
	UpdatedAt time.Time              `json:"update_at"`
	Address   string                 `json:"address"`
	User      models.User            `json:"user"`
	Coupon    string                 `json:"coupon,omitempty"`
	Items     []ItemView             `json:"order_items"`
	Payment   PaymentView            `json:"payment"`
	Timeline  []models.TimelineEntry `json:"timeline"`
}

type StatusView struct {
	Status  string `json:"status"`
	Payment string `json:"payment"`
	IsPaid  bool   `json:"is_paid"`
}

type Page struct {
	CurrentPage int           `json:"current_page"`
	PrevPage    *int          `json:"prev_page"`
	NextPage    *int          `json:"next_page"`
	LastPage    int           `json:"last_page"`
	DataPerPage int           `json:"data_per_page"`
	Total       int64         `json:"total"`
	Data        []OrderDetail `json:"data"`
}

func newPage(page, limit int, total int64, data []OrderDetail) *Page {
	last := int((total + int64(limit) - 1) / int64(limit))
	p := &Page{
		CurrentPage: page,
		LastPage:    last,
		DataPerPage: limit,
		Total:       total,
		Data:        data,
	}
	if prev := page - 1; prev >= 1 {
		p.PrevPage = &prev
	}
	if next := page + 1; next <= last {
		p.NextPage = &next
	}
	return p
}

func projectDetail(o *models.Order) *OrderDetail {
	d := &OrderDetail{
		OrderID:   o.ID,
		Status:    o.Status.String(),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Address:   o.Address,
		User:      o.User,
		Items:     make([]ItemView, 0, len(o.Items)),
		Timeline:  sortedTimeline(o.Timeline),
	}
	if o.Coupon != nil {
		d.Coupon = o.Coupon.Code
	}

	for i := range o.Items {
		it := &o.Items[i]
		d.Items = append(d.Items, ItemView{
			ProductName:     it.ProductOption.Product.Name,
			ProductOptionID: it.ProductOptionID,
			Flavor:          it.ProductOption.Flavor,
			Weight:          it.ProductOption.Weight,
			Price:           it.ProductOption.Price,
			CapturedPrice:   it.Price,
			Quantity:        it.Quantity,
			Image:           it.ProductOption.ImageURL,
		})
	}

	prev, discount := couponAdjustment(&o.Payment, o.Coupon)
	d.Payment = PaymentView{
		Method:         o.Payment.Method.String(),
		Amount:         o.Payment.Amount,
		PreviousAmount: prev,
		Discount:       discount,
		IsPaid:         o.Payment.IsPaid,
		IsRefunded:     o.Payment.IsRefunded,
	}
	return d
}

// couponAdjustment reconstructs the pre-discount amount. Percent coupons:
// previous = amount / (100 - value) * 100; fixed coupons: previous =
// amount + value.
func couponAdjustment(p *models.Payment, c *models.Coupon) (previous, discount *decimal.Decimal) {
	if c == nil {
		return nil, nil
	}
	hundred := decimal.NewFromInt(100)
	var prev decimal.Decimal
	if c.Type == models.CouponPercent {
		rest := hundred.Sub(c.Value)
		// A coupon of 100% or more leaves no divisor; the pre-discount
		// amount is not reconstructible, so both fields are omitted.
		if rest.Sign() <= 0 {
			return nil, nil
		}
		prev = p.Amount.Div(rest).Mul(hundred)
	} else {
		prev = p.Amount.Add(c.Value)
	}
	disc := prev.Sub(p.Amount)
	return &prev, &disc
}

// sortedTimeline keeps display order by ascending id even when the rows
// arrive interleaved.
func sortedTimeline(entries []models.TimelineEntry) []models.TimelineEntry {
	out := make([]models.TimelineEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
