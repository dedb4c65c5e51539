// Package messaging defines the outbound event contract used by notifications and receipts.
package messaging

import (
	"context"
)

const (
	// StreamName is the JetStream stream holding every storefront subject.
	StreamName = "STOREFRONT"
	// StreamSubjects matches all subjects below.
	StreamSubjects = "storefront.>"
	// NotificationsSubjectPrefix is followed by the severity, e.g. storefront.notifications.warning.
	NotificationsSubjectPrefix = "storefront.notifications"
	// ReceiptsFinalizedSubject carries one event per finalized purchase.
	ReceiptsFinalizedSubject = "storefront.receipts.finalized"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
