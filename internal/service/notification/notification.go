package notification

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/quangvu-dev/cakeshop/internal/logging"
	"github.com/quangvu-dev/cakeshop/internal/models"
	"github.com/quangvu-dev/cakeshop/internal/mykafka"
)

const eventsTopic = "notification_events"

var contentByType = map[models.NotifyType]string{
	models.NotifyNewOrder:          "your order #%d has been received and is being processed",
	models.NotifyUserFeedback:      "how was your order #%d? leave a review",
	models.NotifyShipped:           "your order #%d has been handed to the carrier",
	models.NotifyCompleted:         "your order #%d was delivered",
	models.NotifyCancelled:         "your order #%d was cancelled",
	models.NotifyReturned:          "your return request for order #%d is being processed",
	models.NotifyReturnedCompleted: "your return for order #%d is complete",
}

// Notifier records a user-visible notification and publishes the matching
// event. It is best-effort: failures are logged and never propagated, so a
// broken side channel cannot block an order transition.
type Notifier struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (n *Notifier) Emit(ctx context.Context, typ models.NotifyType, orderID, userID uint) {
	l := logging.FromContext(ctx)

	noti := models.Notification{
		Type:    typ,
		Content: fmt.Sprintf(contentByType[typ], orderID),
		UserID:  userID,
		OrderID: orderID,
	}
	if err := n.DB.WithContext(ctx).Create(&noti).Error; err != nil {
		l.Error("notification_create_failed", "type", int(typ), "order_id", orderID, "error", err)
		return
	}

	if n.Producer == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	event := map[string]interface{}{
		"type":     int(typ),
		"order_id": orderID,
		"user_id":  userID,
		"content":  noti.Content,
	}
	if err := n.Producer.PublishEvent(pubCtx, eventsTopic, fmt.Sprint(orderID), event); err != nil {
		l.Error("notification_publish_failed", "type", int(typ), "order_id", orderID, "error", err)
	}
}
