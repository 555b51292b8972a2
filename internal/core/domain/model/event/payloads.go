package event

import (
	"time"
)

// Customer-facing DeliveryUpdate statuses and messages.
const (
	StatusInTransit    = "InTransit"
	StatusInRoute      = "InRoute"
	StatusDelivered    = "Delivered"
	StatusNotDelivered = "NotDelivered"

	MessageInTransit    = "¡El repartidor va en camino hacia ti!"
	MessageBackInQueue  = "Tu pedido volvió a la fila de entregas."
	MessageDelivered    = "¡Tu pedido fue entregado!"
	MessageNotDelivered = "No pudimos entregar tu pedido."
)

type DeliveryUpdatePayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type LocationUpdatePayload struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

type DriverLocationPayload struct {
	RouteID   string    `json:"routeId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

type RoutePayload struct {
	RouteID string `json:"routeId"`
}

type DeliveryInTransitPayload struct {
	ID      string `json:"id"`
	OrderID string `json:"orderId"`
	RouteID string `json:"routeId"`
}

type DeliveryCompletedPayload struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"orderId"`
	Status      string     `json:"status"`
	DeliveredAt *time.Time `json:"deliveredAt"`
}

type DeliveryFailedPayload struct {
	ID            string `json:"id"`
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	FailureReason string `json:"failureReason"`
}

type ChatPayload struct {
	ID         string    `json:"id"`
	RouteID    string    `json:"routeId"`
	DeliveryID *string   `json:"deliveryId,omitempty"`
	Sender     string    `json:"sender"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}

type OrderConfirmedPayload struct {
	OrderID string `json:"orderId"`
	Total   string `json:"total"`
}
