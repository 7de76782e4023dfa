package orders

import (
	"time"
)

// Event is a single order lifecycle event.
type Event struct {
	OrderID   string
	Status    string
	Lat       float64
	Lon       float64
	CreatedAt time.Time
}
