package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of an order.
type OrderSide string

// OrderStatus is the lifecycle state of an order. An order is created
// PENDING and transitions exactly once, to MATCHED or CANCELED.
type OrderStatus string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"

	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusMatched  OrderStatus = "MATCHED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// Valid reports whether s is a known order side.
func (s OrderSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	return s == OrderStatusPending || s == OrderStatusMatched || s == OrderStatusCanceled
}

// Order is a customer's buy or sell order for a non-TRY asset, priced in TRY.
// Size is the asset quantity, Price the unit price. CreateDate is set once at
// creation and never changes.
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CustomerID uint            `gorm:"index" json:"customer_id"`
	AssetName  string          `json:"asset_name"`
	Side       OrderSide       `json:"side"`
	Size       decimal.Decimal `gorm:"type:text" json:"size"`
	Price      decimal.Decimal `gorm:"type:text" json:"price"`
	Status     OrderStatus     `gorm:"index" json:"status"`
	CreateDate time.Time       `json:"create_date"`
}

// IsPending reports whether the order can still transition.
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// TotalAmount returns Size * Price, the TRY value of the order.
func (o *Order) TotalAmount() decimal.Decimal {
	return o.Size.Mul(o.Price)
}

// OrderFilter selects orders within a date range, optionally narrowed to a
// single status. CustomerID 0 means all customers; Status "" means all
// statuses.
type OrderFilter struct {
	CustomerID uint
	Start      time.Time
	End        time.Time
	Status     OrderStatus
}
