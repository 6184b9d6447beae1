// Package processor normalizes the webhook payloads and hosted APIs of the
// two payment gateways (the regional Paystack-style processor and the
// card-network Stripe-style processor) into one internal event shape, so
// reconciliation never sees gateway-specific JSON.
package processor

type EventKind int

const (
	// KindIgnored covers event types we acknowledge but do not act on.
	KindIgnored EventKind = iota
	KindSuccess
	KindFailure
)

// PaymentEvent is the normalized form of a processor webhook. RequestID and
// BookingID come from the metadata attached at payment initiation; an event
// without them cannot be applied to the ledger.
type PaymentEvent struct {
	Kind          EventKind
	Processor     string
	RequestID     string
	BookingID     string
	ExternalRef   string
	AmountMinor   int64
	Currency      string
	FailureReason string
}

// HasMetadata reports whether the event carries enough metadata to resolve a
// ledger row.
func (e PaymentEvent) HasMetadata() bool {
	return e.RequestID != "" && e.BookingID != ""
}
