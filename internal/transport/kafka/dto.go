package kafka

import (
	"strings"
	"time"

	"courier-dispatch/internal/service/orders"
)

// EventDTO is the wire form of an order lifecycle event.
type EventDTO struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDomain converts EventDTO to orders.Event
func ToDomain(dto EventDTO) orders.Event {
	return orders.Event{
		OrderID:   strings.TrimSpace(dto.OrderID),
		Status:    strings.TrimSpace(dto.Status),
		Lat:       dto.Lat,
		Lon:       dto.Lon,
		CreatedAt: dto.CreatedAt,
	}
}
