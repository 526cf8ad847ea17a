package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/canhigher/ing-hubs-case/internal/domain"
	"github.com/canhigher/ing-hubs-case/internal/infra"

	"github.com/shopspring/decimal"
)

// defaultFilterWindow is the trailing date range applied when a list filter
// does not specify one.
const defaultFilterWindow = 30 * 24 * time.Hour

// OrderService owns the order state machine (PENDING -> MATCHED | CANCELED)
// and drives the ledger at each transition. Every transition runs in one
// store transaction: a ledger failure rolls back everything, so a partially
// settled order is never persisted.
type OrderService struct {
	store  domain.Store
	ledger *AssetService
	events domain.OrderEventPublisher
	log    *slog.Logger
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(store domain.Store, ledger *AssetService, events domain.OrderEventPublisher, log *slog.Logger) *OrderService {
	return &OrderService{store: store, ledger: ledger, events: events, log: log}
}

// CreateOrder reserves the funding balance and persists a new PENDING order.
// A missing or insufficient funding balance fails with
// ErrInsufficientBalance and leaves the ledger untouched.
func (s *OrderService) CreateOrder(customerID uint, assetName string, side domain.OrderSide, size, price decimal.Decimal) (*domain.Order, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("invalid order side: %q", side)
	}
	if !size.IsPositive() || !price.IsPositive() {
		return nil, fmt.Errorf("%w: order size and price must be positive", domain.ErrInvalidAmount)
	}

	order := &domain.Order{
		CustomerID: customerID,
		AssetName:  assetName,
		Side:       side,
		Size:       size,
		Price:      price,
		Status:     domain.OrderStatusPending,
		CreateDate: time.Now(),
	}

	err := s.store.Transaction(func(tx domain.Store) error {
		if err := s.ledger.ReserveForOrderCreation(tx.Assets(), customerID, assetName, side, size, price); err != nil {
			// A customer without a funding row simply cannot afford the
			// order; report it the same way as a short balance.
			if errors.Is(err, domain.ErrAssetNotFound) {
				return fmt.Errorf("%w: customer %d", domain.ErrInsufficientBalance, customerID)
			}
			return err
		}
		return tx.Orders().Save(order)
	})
	if err != nil {
		infra.GlobalMetrics.RecordError()
		return nil, err
	}

	infra.GlobalMetrics.RecordOrderCreated()
	s.publish("order.created", order)
	s.log.Info("order created",
		slog.Uint64("order_id", uint64(order.ID)),
		slog.Uint64("customer_id", uint64(customerID)),
		slog.String("asset", assetName),
		slog.String("side", string(side)))
	return order, nil
}

// CancelOrder transitions a PENDING order to CANCELED and returns the
// reserved amount to the funding balance's usable size.
func (s *OrderService) CancelOrder(orderID uint) (*domain.Order, error) {
	order, err := s.transition(orderID, domain.OrderStatusCanceled, s.ledger.ReleaseForOrderCancellation)
	if err != nil {
		infra.GlobalMetrics.RecordError()
		return nil, err
	}

	infra.GlobalMetrics.RecordOrderCanceled()
	s.publish("order.canceled", order)
	s.log.Info("order canceled", slog.Uint64("order_id", uint64(orderID)))
	return order, nil
}

// MatchOrder transitions a PENDING order to MATCHED and settles both
// balances: the funding side loses total size, the receiving side is
// credited with immediately usable funds.
func (s *OrderService) MatchOrder(orderID uint) (*domain.Order, error) {
	order, err := s.transition(orderID, domain.OrderStatusMatched, s.ledger.SettleForOrderMatch)
	if err != nil {
		infra.GlobalMetrics.RecordError()
		return nil, err
	}

	infra.GlobalMetrics.RecordOrderMatched()
	s.publish("order.matched", order)
	s.log.Info("order matched", slog.Uint64("order_id", uint64(orderID)))
	return order, nil
}

// transition loads the order, validates it is still PENDING, applies the
// ledger mutation and persists the terminal status, all in one transaction.
func (s *OrderService) transition(
	orderID uint,
	target domain.OrderStatus,
	mutate func(assets domain.AssetRepository, customerID uint, assetName string, side domain.OrderSide, size, price decimal.Decimal) error,
) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.Transaction(func(tx domain.Store) error {
		var err error
		order, err = tx.Orders().Find(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: id %d", domain.ErrOrderNotFound, orderID)
		}
		if !order.IsPending() {
			return &domain.InvalidStateTransitionError{OrderID: orderID, Status: order.Status}
		}

		if err := mutate(tx.Assets(), order.CustomerID, order.AssetName, order.Side, order.Size, order.Price); err != nil {
			return err
		}

		order.Status = target
		return tx.Orders().Save(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderByID returns a single order or ErrOrderNotFound.
func (s *OrderService) GetOrderByID(orderID uint) (*domain.Order, error) {
	order, err := s.store.Orders().Find(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: id %d", domain.ErrOrderNotFound, orderID)
	}
	return order, nil
}

// ListOrders returns the customer's orders in the filter's date range. An
// unspecified range defaults to the trailing 30 days through now.
func (s *OrderService) ListOrders(f domain.OrderFilter) ([]domain.Order, error) {
	if f.End.IsZero() {
		f.End = time.Now()
	}
	if f.Start.IsZero() {
		f.Start = f.End.Add(-defaultFilterWindow)
	}
	return s.store.Orders().FindByFilter(f)
}

// ListAllOrders returns every order in the system. Admin use only; the API
// layer enforces that.
func (s *OrderService) ListAllOrders() ([]domain.Order, error) {
	return s.store.Orders().FindAll()
}

func (s *OrderService) publish(event string, o *domain.Order) {
	if s.events != nil {
		s.events.PublishOrderEvent(event, o)
	}
}
