package domain

import (
	"math"
	"time"
)

// MaxStock is the largest stock count the stores can hold.
const MaxStock = math.MaxInt32

// Product is a catalog entry.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Image     string    `json:"image,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
