package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	ordersCreated  atomic.Uint64
	ordersMatched  atomic.Uint64
	ordersCanceled atomic.Uint64
	balanceTopUps  atomic.Uint64
	errorsTotal    atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordOrderCreated records a successfully created order.
func (m *Metrics) RecordOrderCreated() {
	m.ordersCreated.Add(1)
}

// RecordOrderMatched records a matched order.
func (m *Metrics) RecordOrderMatched() {
	m.ordersMatched.Add(1)
}

// RecordOrderCanceled records a canceled order.
func (m *Metrics) RecordOrderCanceled() {
	m.ordersCanceled.Add(1)
}

// RecordBalanceTopUp records an administrative balance credit.
func (m *Metrics) RecordBalanceTopUp() {
	m.balanceTopUps.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersCreated  uint64    `json:"orders_created"`
	OrdersMatched  uint64    `json:"orders_matched"`
	OrdersCanceled uint64    `json:"orders_canceled"`
	BalanceTopUps  uint64    `json:"balance_top_ups"`
	ErrorsTotal    uint64    `json:"errors_total"`
	Timestamp      time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		OrdersCreated:  m.ordersCreated.Load(),
		OrdersMatched:  m.ordersMatched.Load(),
		OrdersCanceled: m.ordersCanceled.Load(),
		BalanceTopUps:  m.balanceTopUps.Load(),
		ErrorsTotal:    m.errorsTotal.Load(),
		Timestamp:      time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ordersCreated.Store(0)
	m.ordersMatched.Store(0)
	m.ordersCanceled.Store(0)
	m.balanceTopUps.Store(0)
	m.errorsTotal.Store(0)
}
