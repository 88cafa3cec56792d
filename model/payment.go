package model

import "time"

type PaymentMethod string

const (
	PayGCash PaymentMethod = "gcash"
	PayMaya  PaymentMethod = "maya"
	PayCard  PaymentMethod = "card"
	PayCash  PaymentMethod = "cash"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PayGCash, PayMaya, PayCard, PayCash:
		return true
	}
	return false
}

type PaymentStatus string

const (
	// processing = escrow hold: funds claimed received, not yet released to the owner
	PaymentProcessing PaymentStatus = "processing"
	PaymentReleased   PaymentStatus = "released"
	PaymentRefunded   PaymentStatus = "refunded"
	PaymentFailed     PaymentStatus = "failed"
)

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentProcessing, PaymentReleased, PaymentRefunded, PaymentFailed:
		return true
	}
	return false
}

type Payment struct {
	ID        int64         `json:"id"`
	RentalID  int64         `json:"rental_id"`
	OwnerID   int64         `json:"owner_id"`
	Method    PaymentMethod `json:"method"`
	Status    PaymentStatus `json:"status"`
	Amount    float64       `json:"amount"`     // owner's take = rental subtotal
	TotalPaid float64       `json:"total_paid"` // renter's full charge
	Reference string        `json:"reference"`
	CreatedAt time.Time     `json:"created_at"`
}
