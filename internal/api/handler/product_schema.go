package handler

import "time"

// productRequest is the body accepted by create and update. ID is only
// meaningful on update, where it must match the path; Version enables the
// optimistic check when non-zero.
type productRequest struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"    validate:"required,max=200"`
	Price   float64 `json:"price"   validate:"gte=0"`
	Stock   int     `json:"stock"   validate:"gte=0,max=2147483647"`
	Image   string  `json:"image"   validate:"max=500"`
	Version int64   `json:"version" validate:"gte=0"`
}

// Response-only type owned by the transport layer so the JSON contract is
// not coupled to domain changes.
type productResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Image     string    `json:"image,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
