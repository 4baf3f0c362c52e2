package model

import "time"

// Category groups products. Names are unique and matched case-sensitively
// when resolving filter parameters.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
