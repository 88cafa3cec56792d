package rental

import (
	"math"

	"quickrent/model"
)

const (
	courierFee  = 150.0
	depositRate = 0.10
)

// CalculateCost freezes the money breakdown for a rental request.
// Callers pre-validate that price and duration are positive.
func CalculateCost(price float64, durationDays int, opt model.DeliveryOption) model.Cost {
	if durationDays < 1 {
		durationDays = 1
	}
	subtotal := price * float64(durationDays)

	var fee float64
	if opt == model.DeliveryCourier {
		fee = courierFee
	}

	deposit := math.Ceil(subtotal * depositRate)

	return model.Cost{
		Subtotal:          subtotal,
		DeliveryFee:       fee,
		RefundableDeposit: deposit,
		Total:             subtotal + fee + deposit,
	}
}
