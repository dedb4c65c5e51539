package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abgdnv/storefront/internal/platform/messaging"
)

// NotificationEvent is the message published for each notification.
type NotificationEvent struct {
	Notification
	RaisedAt time.Time `json:"raised_at"`
}

func (e NotificationEvent) Subject() string {
	return messaging.NotificationsSubjectPrefix + "." + string(e.Severity)
}

func (e NotificationEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// PublishingNotifier publishes notifications as messaging events.
type PublishingNotifier struct {
	publisher messaging.Publisher
	now       func() time.Time
}

func NewPublishingNotifier(publisher messaging.Publisher) *PublishingNotifier {
	return &PublishingNotifier{publisher: publisher, now: time.Now}
}

func (p *PublishingNotifier) Notify(ctx context.Context, n Notification) error {
	return p.publisher.Publish(ctx, NotificationEvent{Notification: n, RaisedAt: p.now().UTC()})
}
