package rental

type CreateRentalReq struct {
	ItemID         int64  `json:"item_id" validate:"required,gt=0"`
	DurationDays   int    `json:"duration_days" validate:"required,gte=1"`
	StartDate      string `json:"start_date" validate:"required"`
	DeliveryOption string `json:"delivery_option" validate:"required,oneof=pickup delivery"`
}

type UpdateStatusReq struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason,omitempty"`
}
