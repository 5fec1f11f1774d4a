package order

import "github.com/quangvu-dev/cakeshop/internal/models"

// Timeline narrations, one per status change. Appended exactly once per
// successful transition, never edited.
const (
	narrationPlaced          = "order placed"
	narrationProcessing      = "processing"
	narrationShipped         = "shipped"
	narrationDelivered       = "delivered"
	narrationCancelled       = "cancelled"
	narrationReturned        = "returned"
	narrationReturnCompleted = "return completed"
)

type transition struct {
	from      models.OrderStatus
	narration string
	notify    models.NotifyType
}

// transitions is keyed by target status. PENDING is absent: it is the
// initial state and never a legal target. The linear path is
// PENDING → PROCESSING → SHIPPED → COMPLETED → RETURNED →
// RETURNED_COMPLETED; CANCELLED branches only from PENDING.
var transitions = map[models.OrderStatus]transition{
	models.StatusProcessing: {
		from:      models.StatusPending,
		narration: narrationProcessing,
		notify:    models.NotifyNewOrder,
	},
	models.StatusShipped: {
		from:      models.StatusProcessing,
		narration: narrationShipped,
		notify:    models.NotifyShipped,
	},
	models.StatusCompleted: {
		from:      models.StatusShipped,
		narration: narrationDelivered,
		notify:    models.NotifyCompleted,
	},
	models.StatusCancelled: {
		from:      models.StatusPending,
		narration: narrationCancelled,
		notify:    models.NotifyCancelled,
	},
	models.StatusReturned: {
		from:      models.StatusCompleted,
		narration: narrationReturned,
		notify:    models.NotifyReturned,
	},
	models.StatusReturnedCompleted: {
		from:      models.StatusReturned,
		narration: narrationReturnCompleted,
		notify:    models.NotifyReturnedCompleted,
	},
}
