package rental

import (
	"math"
	"testing"

	"quickrent/model"
)

func TestCalculateCost_Example(t *testing.T) {
	c := CalculateCost(1000, 3, model.DeliveryCourier)
	if c.Subtotal != 3000 || c.DeliveryFee != 150 || c.RefundableDeposit != 300 || c.Total != 3450 {
		t.Fatalf("got %+v; want subtotal=3000 fee=150 deposit=300 total=3450", c)
	}
}

func TestCalculateCost_PickupHasNoFee(t *testing.T) {
	c := CalculateCost(500, 2, model.DeliveryPickup)
	if c.DeliveryFee != 0 {
		t.Fatalf("pickup fee = %v; want 0", c.DeliveryFee)
	}
	if c.Total != 1000+100 {
		t.Fatalf("total = %v; want 1100", c.Total)
	}
}

func TestCalculateCost_DepositRoundsUp(t *testing.T) {
	// 10% of 99.5 is 9.95, deposit must round up to the next whole amount
	c := CalculateCost(99.5, 1, model.DeliveryPickup)
	if c.RefundableDeposit != 10 {
		t.Fatalf("deposit = %v; want 10", c.RefundableDeposit)
	}
}

func TestCalculateCost_TotalInvariant(t *testing.T) {
	cases := []struct {
		price    float64
		duration int
		opt      model.DeliveryOption
	}{
		{0, 1, model.DeliveryPickup},
		{1, 1, model.DeliveryCourier},
		{250, 7, model.DeliveryPickup},
		{999.99, 30, model.DeliveryCourier},
		{12345, 365, model.DeliveryPickup},
	}
	for _, tc := range cases {
		c := CalculateCost(tc.price, tc.duration, tc.opt)
		if c.Total != c.Subtotal+c.DeliveryFee+c.RefundableDeposit {
			t.Errorf("price=%v dur=%d: total %v != %v+%v+%v",
				tc.price, tc.duration, c.Total, c.Subtotal, c.DeliveryFee, c.RefundableDeposit)
		}
		want := math.Ceil(0.10 * tc.price * float64(tc.duration))
		if c.RefundableDeposit != want {
			t.Errorf("price=%v dur=%d: deposit %v; want %v", tc.price, tc.duration, c.RefundableDeposit, want)
		}
	}
}

func TestCalculateCost_ZeroDurationClampsToOne(t *testing.T) {
	c := CalculateCost(100, 0, model.DeliveryPickup)
	if c.Subtotal != 100 {
		t.Fatalf("subtotal = %v; want 100", c.Subtotal)
	}
}
