// Package bus holds what the message transports share: header names, the
// redelivery policy and dead letter naming.
package bus

import (
	"fmt"
	"strconv"
)

// Message header names carried by every transport.
const (
	HeaderMessageID     = "message-id"
	HeaderType          = "type"
	HeaderContentType   = "content-type"
	HeaderDeliveryCount = "delivery-count"
	HeaderReasonCode    = "dead-letter-reason"
	HeaderDescription   = "dead-letter-description"
)

// DefaultMaxDeliveries is how many times a message is delivered before an
// Abandon moves it to the dead letter destination.
const DefaultMaxDeliveries = 10

// DeadLetterName returns the dead letter destination for a topic, subject or
// stream name.
func DeadLetterName(name string) string {
	return name + ".dlq"
}

// Exhausted reports whether a message delivered deliveryCount times may not be
// redelivered any more.
func Exhausted(deliveryCount, maxDeliveries int) bool {
	if maxDeliveries <= 0 {
		maxDeliveries = DefaultMaxDeliveries
	}
	return deliveryCount >= maxDeliveries
}

// ExhaustedDescription describes a message dead lettered by the redelivery
// policy.
func ExhaustedDescription(deliveryCount int) string {
	return fmt.Sprintf("message was abandoned after %d deliveries", deliveryCount)
}

// ParseDeliveryCount reads a delivery count header value. A missing or
// malformed value counts as the first delivery.
func ParseDeliveryCount(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
