package feedback

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/quangvu-dev/cakeshop/internal/logging"
	"github.com/quangvu-dev/cakeshop/internal/models"
)

// remindAfter is how long after delivery the customer is asked to rate the
// product.
const remindAfter = 72 * time.Hour

// Scheduler registers deferred "rate this product" reminders. Like the
// notifier it is best-effort: errors are logged and swallowed.
type Scheduler struct {
	DB *gorm.DB
}

func (s *Scheduler) Schedule(ctx context.Context, productID, userID uint) {
	rem := models.FeedbackReminder{
		ProductID: productID,
		UserID:    userID,
		RemindAt:  time.Now().Add(remindAfter),
	}
	if err := s.DB.WithContext(ctx).Create(&rem).Error; err != nil {
		logging.FromContext(ctx).Error("feedback_schedule_failed",
			"product_id", productID, "user_id", userID, "error", err)
	}
}
