package service

import (
	"fmt"
	"log/slog"

	"github.com/canhigher/ing-hubs-case/internal/domain"
	"github.com/canhigher/ing-hubs-case/internal/infra"

	"github.com/shopspring/decimal"
)

// AssetService is the ledger: it owns every customer's per-asset balance and
// applies the balance mutations for order creation, cancellation, match and
// manual top-up. BUY orders reserve and spend TRY; SELL orders reserve and
// spend the traded asset.
type AssetService struct {
	store domain.Store
	log   *slog.Logger
}

// NewAssetService creates a new AssetService.
func NewAssetService(store domain.Store, log *slog.Logger) *AssetService {
	return &AssetService{store: store, log: log}
}

// reservationTarget returns which balance an order reserves against and the
// reserved amount: TRY for size*price on BUY, the traded asset for size on
// SELL.
func reservationTarget(assetName string, side domain.OrderSide, size, price decimal.Decimal) (string, decimal.Decimal) {
	if side == domain.SideBuy {
		return domain.AssetTRY, size.Mul(price)
	}
	return assetName, size
}

// GetAssetsByCustomer returns all balance rows of one customer.
func (s *AssetService) GetAssetsByCustomer(customerID uint) ([]domain.Asset, error) {
	return s.store.Assets().FindByCustomer(customerID)
}

// HasSufficientBalance reports whether the customer's usable balance covers
// an order of the given side, size and price. A missing balance row counts
// as insufficient, not as an error. Read-only.
func (s *AssetService) HasSufficientBalance(customerID uint, assetName string, side domain.OrderSide, size, price decimal.Decimal) (bool, error) {
	if !side.Valid() {
		return false, nil
	}

	name, required := reservationTarget(assetName, side, size, price)
	asset, err := s.store.Assets().Find(customerID, name)
	if err != nil {
		return false, err
	}
	if asset == nil {
		return false, nil
	}
	return asset.UsableSize.GreaterThanOrEqual(required), nil
}

// ReserveForOrderCreation debits the reserved amount from the usable size of
// the funding balance. The check and the decrement happen in one repository
// operation, so concurrent reservations cannot jointly over-commit a row.
// Returns ErrAssetNotFound when the funding row does not exist and
// ErrInsufficientBalance when it cannot cover the reservation.
func (s *AssetService) ReserveForOrderCreation(assets domain.AssetRepository, customerID uint, assetName string, side domain.OrderSide, size, price decimal.Decimal) error {
	name, amount := reservationTarget(assetName, side, size, price)

	asset, err := assets.Find(customerID, name)
	if err != nil {
		return err
	}
	if asset == nil {
		return fmt.Errorf("%w: customer %d holds no %s", domain.ErrAssetNotFound, customerID, name)
	}

	ok, err := assets.ReserveUsable(customerID, name, amount)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: customer %d needs %s %s", domain.ErrInsufficientBalance, customerID, amount, name)
	}

	s.log.Info("reserved balance for order creation",
		slog.Uint64("customer_id", uint64(customerID)),
		slog.String("asset", name),
		slog.String("amount", amount.String()))
	return nil
}

// ReleaseForOrderCancellation returns the reserved amount to the usable size
// of the funding balance. The row must exist: creation reserved against it,
// so a miss here is a data-integrity violation and surfaces as
// ErrAssetNotFound. Only usable size changes; total size never does.
func (s *AssetService) ReleaseForOrderCancellation(assets domain.AssetRepository, customerID uint, assetName string, side domain.OrderSide, size, price decimal.Decimal) error {
	name, amount := reservationTarget(assetName, side, size, price)

	asset, err := assets.Find(customerID, name)
	if err != nil {
		return err
	}
	if asset == nil {
		return fmt.Errorf("%w: customer %d holds no %s to release", domain.ErrAssetNotFound, customerID, name)
	}

	asset.UsableSize = asset.UsableSize.Add(amount)
	if err := asset.CheckInvariant(); err != nil {
		return err
	}
	if err := assets.Save(asset); err != nil {
		return err
	}

	s.log.Info("released balance for order cancellation",
		slog.Uint64("customer_id", uint64(customerID)),
		slog.String("asset", name),
		slog.String("amount", amount.String()))
	return nil
}

// SettleForOrderMatch finalizes an executed order. The funding side loses
// total size (its usable portion was already removed at creation); the
// receiving side gains both total and usable size, created on first touch.
// BUY: TRY size -= size*price, asset size and usable += size.
// SELL: asset size -= size, TRY size and usable += size*price.
func (s *AssetService) SettleForOrderMatch(assets domain.AssetRepository, customerID uint, assetName string, side domain.OrderSide, size, price decimal.Decimal) error {
	debitName, debitAmount := reservationTarget(assetName, side, size, price)

	creditName, creditAmount := assetName, size
	if side == domain.SideSell {
		creditName, creditAmount = domain.AssetTRY, size.Mul(price)
	}

	debited, err := assets.Find(customerID, debitName)
	if err != nil {
		return err
	}
	if debited == nil {
		return fmt.Errorf("%w: customer %d holds no %s to settle", domain.ErrAssetNotFound, customerID, debitName)
	}

	debited.Size = debited.Size.Sub(debitAmount)
	if err := debited.CheckInvariant(); err != nil {
		return err
	}
	if err := assets.Save(debited); err != nil {
		return err
	}

	credited, err := assets.Find(customerID, creditName)
	if err != nil {
		return err
	}
	if credited == nil {
		credited = &domain.Asset{
			CustomerID: customerID,
			AssetName:  creditName,
			Size:       decimal.Zero,
			UsableSize: decimal.Zero,
		}
	}

	credited.Size = credited.Size.Add(creditAmount)
	credited.UsableSize = credited.UsableSize.Add(creditAmount)
	if err := assets.Save(credited); err != nil {
		return err
	}

	s.log.Info("settled balances for order match",
		slog.Uint64("customer_id", uint64(customerID)),
		slog.String("debit_asset", debitName),
		slog.String("debit_amount", debitAmount.String()),
		slog.String("credit_asset", creditName),
		slog.String("credit_amount", creditAmount.String()))
	return nil
}

// AddBalance credits amount to both total and usable size of a balance,
// creating the row on first reference. This is an administrative top-up, not
// tied to any order. The amount must be strictly positive.
func (s *AssetService) AddBalance(customerID uint, assetName string, amount decimal.Decimal) (*domain.Asset, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", domain.ErrInvalidAmount, amount)
	}

	var result *domain.Asset
	err := s.store.Transaction(func(tx domain.Store) error {
		asset, err := tx.Assets().Find(customerID, assetName)
		if err != nil {
			return err
		}
		if asset == nil {
			asset = &domain.Asset{
				CustomerID: customerID,
				AssetName:  assetName,
				Size:       decimal.Zero,
				UsableSize: decimal.Zero,
			}
		}

		asset.Size = asset.Size.Add(amount)
		asset.UsableSize = asset.UsableSize.Add(amount)
		if err := tx.Assets().Save(asset); err != nil {
			return err
		}

		result = asset
		return nil
	})
	if err != nil {
		return nil, err
	}

	infra.GlobalMetrics.RecordBalanceTopUp()
	s.log.Info("balance added",
		slog.Uint64("customer_id", uint64(customerID)),
		slog.String("asset", assetName),
		slog.String("amount", amount.String()))
	return result, nil
}
