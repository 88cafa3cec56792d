// model/rental.go
package model

import "time"

type RentalStatus string

const (
	RentalPending           RentalStatus = "pending"
	RentalApproved          RentalStatus = "approved"
	RentalRejected          RentalStatus = "rejected"
	RentalCancelled         RentalStatus = "cancelled"
	RentalPaid              RentalStatus = "paid"
	RentalShipped           RentalStatus = "shipped"
	RentalReceived          RentalStatus = "received"
	RentalShippingForReturn RentalStatus = "shipping_for_return"
	RentalReturnedToOwner   RentalStatus = "returned_to_owner"
)

// Terminal reports whether no further transition may leave the status.
func (s RentalStatus) Terminal() bool {
	switch s {
	case RentalRejected, RentalCancelled, RentalReturnedToOwner:
		return true
	}
	return false
}

type DeliveryOption string

const (
	DeliveryPickup  DeliveryOption = "pickup"
	DeliveryCourier DeliveryOption = "delivery"
)

// Cost is frozen at creation time; it is never recomputed from the live item.
type Cost struct {
	Subtotal          float64 `json:"subtotal"`
	DeliveryFee       float64 `json:"delivery_fee"`
	RefundableDeposit float64 `json:"refundable_deposit"`
	Total             float64 `json:"total"`
}

type Rental struct {
	ID             int64          `json:"id"`
	ItemID         int64          `json:"item_id"`
	RenterID       int64          `json:"renter_id"`
	OwnerID        int64          `json:"owner_id"` // denormalized from item
	DurationDays   int            `json:"duration_days"`
	StartDate      time.Time      `json:"start_date"`
	DeliveryOption DeliveryOption `json:"delivery_option"`
	Cost           Cost           `json:"cost"`
	Status         RentalStatus   `json:"status"`
	RejectReason   *string        `json:"reject_reason,omitempty"`
	PaymentRef     *string        `json:"payment_ref,omitempty"`
	PaymentLink    *string        `json:"payment_link,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
