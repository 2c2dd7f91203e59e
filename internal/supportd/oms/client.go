// Package oms talks to the order-management system. Only the mock client
// exists for now; the assistant and the dashboard depend on the Client
// interface so a real backend can slot in without touching them.
package oms

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/birmarket/supportd/internal/errors"
)

const returnWindow = 14 * 24 * time.Hour

type Client interface {
	Order(id string) (*Order, error)
	CancelOrder(id, reason string) (*CancelResult, error)
	ChangeAddress(id, newAddress, newPhone string) (*AddressChange, error)
	CreateReturn(id string, productIDs []string, reason string) (*ReturnRequest, error)
	TrackOrder(id string) (*Tracking, error)
}

// Mock is an in-memory OMS with seeded orders, safe for concurrent use.
type Mock struct {
	mu            sync.Mutex
	orders        map[string]*Order
	returnCounter int
}

var _ Client = (*Mock)(nil)

// NewMock seeds the three canonical test orders: one cancellable, one
// delivered with a returnable item, one pending.
func NewMock() *Mock {
	now := time.Now()
	return &Mock{
		returnCounter: 1000,
		orders: map[string]*Order{
			"12345": {
				ID:              "12345",
				Status:          StatusConfirmed,
				Total:           150.50,
				DeliveryAddress: "Nizami st. 10, Baku",
				Phone:           "+994501234567",
				Customer: Customer{
					Name:  "Test Customer",
					Phone: "+994501234567",
					Email: "test@example.com",
				},
				CreatedAt:         now.Add(-24 * time.Hour),
				EstimatedDelivery: now.Add(48 * time.Hour),
				CanCancel:         true,
				CanChangeAddress:  true,
				Items: []OrderItem{
					{ProductID: "P001", Name: "ASUS Laptop", Quantity: 1, Price: 150.50, CanReturn: false},
				},
			},
			"67890": {
				ID:              "67890",
				Status:          StatusDelivered,
				Total:           299.99,
				DeliveryAddress: "Heydar Aliyev ave. 25, Baku",
				Phone:           "+994551234567",
				Customer: Customer{
					Name:  "Second Customer",
					Phone: "+994551234567",
					Email: "user@example.com",
				},
				CreatedAt:        now.Add(-10 * 24 * time.Hour),
				DeliveredAt:      now.Add(-3 * 24 * time.Hour),
				CanCancel:        false,
				CanChangeAddress: false,
				Items: []OrderItem{
					{ProductID: "P003", Name: "iPhone 15", Quantity: 1, Price: 299.99, CanReturn: true},
				},
			},
			"11111": {
				ID:              "11111",
				Status:          StatusPending,
				Total:           75.00,
				DeliveryAddress: "28 May st. 5, Baku",
				Phone:           "+994701234567",
				Customer: Customer{
					Name:  "New Customer",
					Phone: "+994701234567",
					Email: "new@example.com",
				},
				CreatedAt:         now.Add(-2 * time.Hour),
				EstimatedDelivery: now.Add(3 * 24 * time.Hour),
				CanCancel:         true,
				CanChangeAddress:  true,
				Items: []OrderItem{
					{ProductID: "P005", Name: "Wireless Mouse", Quantity: 2, Price: 25.00, CanReturn: true},
					{ProductID: "P006", Name: "USB Cable", Quantity: 1, Price: 25.00, CanReturn: true},
				},
			},
		},
	}
}

// Order returns a copy of the order so callers cannot mutate the store.
func (m *Mock) Order(id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, errors.OrderNotFound(id)
	}
	copied := *order
	copied.Items = append([]OrderItem(nil), order.Items...)
	return &copied, nil
}

func (m *Mock) CancelOrder(id, reason string) (*CancelResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, errors.OrderNotFound(id)
	}
	if !order.CanCancel {
		return nil, errors.OrderActionRejected("cancel", fmt.Sprintf("order status is %s", order.Status))
	}

	order.Status = StatusCancelled
	order.CanCancel = false
	order.CanChangeAddress = false

	log.Info().Str("order", id).Str("reason", reason).Msg("order cancelled")

	return &CancelResult{
		OrderID:      id,
		Status:       StatusCancelled,
		RefundAmount: order.Total,
		RefundDays:   "3-5",
	}, nil
}

func (m *Mock) ChangeAddress(id, newAddress, newPhone string) (*AddressChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, errors.OrderNotFound(id)
	}
	if !order.CanChangeAddress {
		return nil, errors.OrderActionRejected("address change", fmt.Sprintf("order status is %s", order.Status))
	}

	oldAddress := order.DeliveryAddress
	order.DeliveryAddress = newAddress
	if newPhone != "" {
		order.Phone = newPhone
	}

	return &AddressChange{
		OrderID:    id,
		OldAddress: oldAddress,
		NewAddress: newAddress,
	}, nil
}

func (m *Mock) CreateReturn(id string, productIDs []string, reason string) (*ReturnRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, errors.OrderNotFound(id)
	}
	if order.Status != StatusDelivered {
		return nil, errors.OrderActionRejected("return", "only delivered orders can be returned")
	}
	if !order.DeliveredAt.IsZero() && time.Since(order.DeliveredAt) > returnWindow {
		return nil, errors.OrderActionRejected("return", "the 14-day return window has passed")
	}

	wanted := make(map[string]bool, len(productIDs))
	for _, pid := range productIDs {
		wanted[pid] = true
	}

	var items []OrderItem
	var refund float64
	for _, item := range order.Items {
		if wanted[item.ProductID] && item.CanReturn {
			items = append(items, item)
			refund += item.Price * float64(item.Quantity)
		}
	}
	if len(items) == 0 {
		return nil, errors.OrderActionRejected("return", "selected items are not returnable")
	}

	m.returnCounter++
	returnID := fmt.Sprintf("RET-%d", m.returnCounter)

	log.Info().Str("order", id).Str("return", returnID).Msg("return created")

	return &ReturnRequest{
		ReturnID:     returnID,
		OrderID:      id,
		Items:        items,
		RefundAmount: refund,
		Status:       "PENDING_APPROVAL",
		Instructions: "A courier will collect the items within 2-3 business days",
	}, nil
}

func (m *Mock) TrackOrder(id string) (*Tracking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, errors.OrderNotFound(id)
	}

	history := []TrackEvent{{
		Status:      "CREATED",
		Timestamp:   order.CreatedAt,
		Description: "Order created",
	}}

	switch order.Status {
	case StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		history = append(history, TrackEvent{
			Status:      StatusConfirmed,
			Timestamp:   order.CreatedAt.Add(time.Hour),
			Description: "Order confirmed",
		})
	}
	switch order.Status {
	case StatusShipped, StatusDelivered:
		history = append(history, TrackEvent{
			Status:      StatusShipped,
			Timestamp:   order.CreatedAt.Add(24 * time.Hour),
			Description: "Order shipped",
		})
	}
	if order.Status == StatusDelivered {
		delivered := order.DeliveredAt
		if delivered.IsZero() {
			delivered = order.CreatedAt.Add(3 * 24 * time.Hour)
		}
		history = append(history, TrackEvent{
			Status:      StatusDelivered,
			Timestamp:   delivered,
			Description: "Order delivered",
		})
	}
	if order.Status == StatusCancelled {
		history = append(history, TrackEvent{
			Status:      StatusCancelled,
			Timestamp:   time.Now(),
			Description: "Order cancelled",
		})
	}

	return &Tracking{
		OrderID:           id,
		CurrentStatus:     order.Status,
		EstimatedDelivery: order.EstimatedDelivery,
		DeliveryAddress:   order.DeliveryAddress,
		History:           history,
	}, nil
}
