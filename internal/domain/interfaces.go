package domain

import "github.com/shopspring/decimal"

// AssetRepository provides access to balance rows keyed by
// (customer id, asset name).
type AssetRepository interface {
	// Find returns the balance row, or (nil, nil) when it does not exist.
	Find(customerID uint, assetName string) (*Asset, error)
	FindByCustomer(customerID uint) ([]Asset, error)
	Save(a *Asset) error

	// ReserveUsable decrements the row's usable size by amount in one
	// atomic operation: it succeeds only if usable size >= amount when the
	// write lands, so two concurrent reservations can never jointly
	// over-commit a balance. Returns false when the balance cannot cover
	// the amount or the row is missing. Arithmetic is exact decimal.
	ReserveUsable(customerID uint, assetName string, amount decimal.Decimal) (bool, error)
}

// OrderRepository provides access to order rows.
type OrderRepository interface {
	// Find returns the order, or (nil, nil) when it does not exist.
	Find(id uint) (*Order, error)
	FindByFilter(f OrderFilter) ([]Order, error)
	FindAll() ([]Order, error)
	Save(o *Order) error
}

// UserRepository provides access to user rows.
type UserRepository interface {
	FindByID(id uint) (*User, error)
	FindByUsername(username string) (*User, error)
	FindByEmail(email string) (*User, error)
	Save(u *User) error
}

// Store bundles the repositories behind one transaction boundary. The Store
// passed to a Transaction callback is scoped to that transaction; returning a
// non-nil error rolls back everything written through it.
type Store interface {
	Assets() AssetRepository
	Orders() OrderRepository
	Users() UserRepository
	Transaction(fn func(tx Store) error) error
}

// OrderEventPublisher receives order lifecycle notifications. Implementations
// must not block the caller.
type OrderEventPublisher interface {
	PublishOrderEvent(event string, o *Order)
}
