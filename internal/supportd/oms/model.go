package oms

import "time"

// Order statuses
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusShipped   = "SHIPPED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

// Order is a customer order as the order-management system reports it.
type Order struct {
	ID                string      `json:"order_id"`
	Status            string      `json:"status"`
	Total             float64     `json:"total"`
	DeliveryAddress   string      `json:"delivery_address"`
	Phone             string      `json:"phone"`
	Customer          Customer    `json:"customer"`
	CreatedAt         time.Time   `json:"created_at"`
	DeliveredAt       time.Time   `json:"delivered_at,omitempty"`
	EstimatedDelivery time.Time   `json:"estimated_delivery,omitempty"`
	CanCancel         bool        `json:"can_cancel"`
	CanChangeAddress  bool        `json:"can_change_address"`
	Items             []OrderItem `json:"items"`
}

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	CanReturn bool    `json:"can_return"`
}

// CancelResult reports a cancellation and the refund it triggers.
type CancelResult struct {
	OrderID      string  `json:"order_id"`
	Status       string  `json:"status"`
	RefundAmount float64 `json:"refund_amount"`
	RefundDays   string  `json:"refund_days"`
}

// AddressChange reports an address update.
type AddressChange struct {
	OrderID    string `json:"order_id"`
	OldAddress string `json:"old_address"`
	NewAddress string `json:"new_address"`
}

// ReturnRequest reports a created return.
type ReturnRequest struct {
	ReturnID     string      `json:"return_id"`
	OrderID      string      `json:"order_id"`
	Items        []OrderItem `json:"items"`
	RefundAmount float64     `json:"refund_amount"`
	Status       string      `json:"status"`
	Instructions string      `json:"instructions"`
}

// Tracking is the status timeline of an order.
type Tracking struct {
	OrderID           string       `json:"order_id"`
	CurrentStatus     string       `json:"current_status"`
	EstimatedDelivery time.Time    `json:"estimated_delivery,omitempty"`
	DeliveryAddress   string       `json:"delivery_address"`
	History           []TrackEvent `json:"status_history"`
}

type TrackEvent struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}
