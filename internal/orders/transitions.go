package orders

import (
	"github.com/mokolo-market/mokolo-backend/pkg/enums"
)

var fulfillmentRank = map[enums.FulfillmentStatus]int{
	enums.FulfillmentStatusPending:    0,
	enums.FulfillmentStatusProcessing: 1,
	enums.FulfillmentStatusShipped:    2,
	enums.FulfillmentStatusDelivered:  3,
}

// CanTransitionFulfillment reports whether the delivery lifecycle permits the
// move. CANCELLED is terminal, DELIVERED can only be cancelled, and the chain
// PENDING -> PROCESSING -> SHIPPED -> DELIVERED only moves forward. CANCELLED
// is reachable from any non-terminal state.
func CanTransitionFulfillment(from, to enums.FulfillmentStatus) bool {
	if from == to {
		return false
	}
	if from == enums.FulfillmentStatusCancelled {
		return false
	}
	if to == enums.FulfillmentStatusCancelled {
		return true
	}
	if from == enums.FulfillmentStatusDelivered {
		return false
	}
	return fulfillmentRank[to] > fulfillmentRank[from]
}

// CanTransitionPayment reports whether the money lifecycle permits the move.
// PENDING can resolve to PAID or FAILED, FAILED can be retried back to PENDING
// or straight to PAID, PAID can only be refunded, REFUNDED is terminal.
func CanTransitionPayment(from, to enums.PaymentStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case enums.PaymentStatusPending:
		return to == enums.PaymentStatusPaid || to == enums.PaymentStatusFailed
	case enums.PaymentStatusFailed:
		return to == enums.PaymentStatusPending || to == enums.PaymentStatusPaid
	case enums.PaymentStatusPaid:
		return to == enums.PaymentStatusRefunded
	default:
		return false
	}
}
