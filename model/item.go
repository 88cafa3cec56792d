package model

import "time"

type Item struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"` // per day
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}
