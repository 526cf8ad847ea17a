package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetTRY is the reserved settlement-currency asset name. BUY orders
// consume it, SELL orders produce it.
const AssetTRY = "TRY"

// Asset represents one customer's balance in a single asset.
// Size is the total balance; UsableSize is the portion not reserved by
// pending orders. The invariant 0 <= UsableSize <= Size must hold after
// every mutation.
type Asset struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CustomerID uint            `gorm:"uniqueIndex:idx_customer_asset" json:"customer_id"`
	AssetName  string          `gorm:"uniqueIndex:idx_customer_asset" json:"asset_name"`
	// Amounts are stored as text so SQLite keeps every decimal digit; all
	// arithmetic and comparison happens in Go.
	Size       decimal.Decimal `gorm:"type:text" json:"size"`
	UsableSize decimal.Decimal `gorm:"type:text" json:"usable_size"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CheckInvariant verifies 0 <= UsableSize <= Size.
func (a *Asset) CheckInvariant() error {
	if a.UsableSize.IsNegative() {
		return &InvariantError{Asset: a, Reason: "usable size is negative"}
	}
	if a.UsableSize.GreaterThan(a.Size) {
		return &InvariantError{Asset: a, Reason: "usable size exceeds total size"}
	}
	return nil
}
