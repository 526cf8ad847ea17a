package service

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/canhigher/ing-hubs-case/internal/domain"
	"github.com/canhigher/ing-hubs-case/internal/infra/storage"

	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) domain.Store {
	t.Helper()
	s, err := storage.NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedBalance(t *testing.T, store domain.Store, customerID uint, name string, size, usable int64) {
	t.Helper()
	err := store.Assets().Save(&domain.Asset{
		CustomerID: customerID,
		AssetName:  name,
		Size:       decimal.NewFromInt(size),
		UsableSize: decimal.NewFromInt(usable),
	})
	if err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}
}

func mustFind(t *testing.T, store domain.Store, customerID uint, name string) *domain.Asset {
	t.Helper()
	a, err := store.Assets().Find(customerID, name)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if a == nil {
		t.Fatalf("expected %s balance for customer %d", name, customerID)
	}
	return a
}

func TestHasSufficientBalance(t *testing.T) {
	store := newTestStore(t)
	svc := NewAssetService(store, testLogger())

	// TRY balance size=10000, usable=8000
	seedBalance(t, store, 1, domain.AssetTRY, 10000, 8000)
	seedBalance(t, store, 1, "BTC", 2, 1)

	t.Run("buy within usable", func(t *testing.T) {
		// required = 0.1 * 50000 = 5000 <= 8000
		ok, err := svc.HasSufficientBalance(1, "BTC", domain.SideBuy,
			decimal.RequireFromString("0.1"), decimal.NewFromInt(50000))
		if err != nil {
			t.Fatalf("HasSufficientBalance failed: %v", err)
		}
		if !ok {
			t.Error("expected sufficient balance for required 5000 of usable 8000")
		}
	})

	t.Run("buy exceeding usable", func(t *testing.T) {
		// required = 0.2 * 50000 = 10000 > 8000
		ok, err := svc.HasSufficientBalance(1, "BTC", domain.SideBuy,
			decimal.RequireFromString("0.2"), decimal.NewFromInt(50000))
		if err != nil {
			t.Fatalf("HasSufficientBalance failed: %v", err)
		}
		if ok {
			t.Error("expected insufficient balance for required 10000 of usable 8000")
		}
	})

	t.Run("sell against asset usable", func(t *testing.T) {
		ok, err := svc.HasSufficientBalance(1, "BTC", domain.SideSell,
			decimal.NewFromInt(1), decimal.NewFromInt(50000))
		if err != nil {
			t.Fatalf("HasSufficientBalance failed: %v", err)
		}
		if !ok {
			t.Error("expected 1 BTC sell to be covered by usable 1")
		}

		ok, err = svc.HasSufficientBalance(1, "BTC", domain.SideSell,
			decimal.NewFromInt(2), decimal.NewFromInt(50000))
		if err != nil {
			t.Fatalf("HasSufficientBalance failed: %v", err)
		}
		if ok {
			t.Error("expected 2 BTC sell to exceed usable 1")
		}
	})

	t.Run("missing balance row is false, not an error", func(t *testing.T) {
		ok, err := svc.HasSufficientBalance(99, "BTC", domain.SideBuy,
			decimal.NewFromInt(1), decimal.NewFromInt(1))
		if err != nil {
			t.Fatalf("HasSufficientBalance failed: %v", err)
		}
		if ok {
			t.Error("expected false for missing TRY row")
		}
	})
}

func TestReserveForOrderCreation(t *testing.T) {
	store := newTestStore(t)
	svc := NewAssetService(store, testLogger())
	seedBalance(t, store, 1, domain.AssetTRY, 10000, 8000)

	t.Run("buy reserves TRY usable", func(t *testing.T) {
		err := svc.ReserveForOrderCreation(store.Assets(), 1, "BTC", domain.SideBuy,
			decimal.RequireFromString("0.1"), decimal.NewFromInt(50000))
		if err != nil {
			t.Fatalf("ReserveForOrderCreation failed: %v", err)
		}

		try := mustFind(t, store, 1, domain.AssetTRY)
		if !try.UsableSize.Equal(decimal.NewFromInt(3000)) {
			t.Errorf("TRY usable = %s, want 3000", try.UsableSize)
		}
		if !try.Size.Equal(decimal.NewFromInt(10000)) {
			t.Errorf("TRY size = %s, want 10000", try.Size)
		}
	})

	t.Run("insufficient", func(t *testing.T) {
		err := svc.ReserveForOrderCreation(store.Assets(), 1, "BTC", domain.SideBuy,
			decimal.NewFromInt(1), decimal.NewFromInt(50000))
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Errorf("error = %v, want ErrInsufficientBalance", err)
		}
	})

	t.Run("missing row", func(t *testing.T) {
		err := svc.ReserveForOrderCreation(store.Assets(), 2, "BTC", domain.SideSell,
			decimal.NewFromInt(1), decimal.NewFromInt(50000))
		if !errors.Is(err, domain.ErrAssetNotFound) {
			t.Errorf("error = %v, want ErrAssetNotFound", err)
		}
	})
}

func TestReserveFractionalRemainderStaysExact(t *testing.T) {
	store := newTestStore(t)
	svc := NewAssetService(store, testLogger())
	price := decimal.NewFromInt(50000)

	err := store.Assets().Save(&domain.Asset{
		CustomerID: 1,
		AssetName:  "BTC",
		Size:       decimal.RequireFromString("0.3"),
		UsableSize: decimal.RequireFromString("0.3"),
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := svc.ReserveForOrderCreation(store.Assets(), 1, "BTC", domain.SideSell,
		decimal.RequireFromString("0.1"), price); err != nil {
		t.Fatalf("reserve 0.1 failed: %v", err)
	}

	btc := mustFind(t, store, 1, "BTC")
	if !btc.UsableSize.Equal(decimal.RequireFromString("0.2")) {
		t.Fatalf("BTC usable after reserve = %s, want exactly 0.2", btc.UsableSize)
	}

	ok, err := svc.HasSufficientBalance(1, "BTC", domain.SideSell,
		decimal.RequireFromString("0.2"), price)
	if err != nil {
		t.Fatalf("HasSufficientBalance failed: %v", err)
	}
	if !ok {
		t.Error("expected the exact remainder 0.2 to be reported sufficient")
	}

	if err := svc.ReserveForOrderCreation(store.Assets(), 1, "BTC", domain.SideSell,
		decimal.RequireFromString("0.2"), price); err != nil {
		t.Fatalf("reserving the exact remainder failed: %v", err)
	}
	btc = mustFind(t, store, 1, "BTC")
	if !btc.UsableSize.IsZero() {
		t.Errorf("BTC usable = %s, want 0", btc.UsableSize)
	}
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	store := newTestStore(t)
	svc := NewAssetService(store, testLogger())
	seedBalance(t, store, 1, "BTC", 1, 1)

	size := decimal.RequireFromString("0.5")
	price := decimal.NewFromInt(50000)

	if err := svc.ReserveForOrderCreation(store.Assets(), 1, "BTC", domain.SideSell, size, price); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	btc := mustFind(t, store, 1, "BTC")
	if !btc.UsableSize.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("BTC usable after reserve = %s, want 0.5", btc.UsableSize)
	}

	if err := svc.ReleaseForOrderCancellation(store.Assets(), 1, "BTC", domain.SideSell, size, price); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	btc = mustFind(t, store, 1, "BTC")
	if !btc.UsableSize.Equal(decimal.NewFromInt(1)) {
		t.Errorf("BTC usable after release = %s, want 1", btc.UsableSize)
	}
	if !btc.Size.Equal(decimal.NewFromInt(1)) {
		t.Errorf("BTC size = %s, want 1 (release must not touch size)", btc.Size)
	}
}

func TestReleaseMissingRowIsIntegrityError(t *testing.T) {
	store := newTestStore(t)
	svc := NewAssetService(store, testLogger())

	err := svc.ReleaseForOrderCancellation(store.Assets(), 1, "BTC", domain.SideBuy,
		decimal.NewFromInt(1), decimal.NewFromInt(1))
	if !errors.Is(err, domain.ErrAssetNotFound) {
		t.Errorf("error = %v, want ErrAssetNotFound", err)
	}
}

func TestSettleForOrderMatch(t *testing.T) {
	t.Run("buy settles TRY and credits the asset", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewAssetService(store, testLogger())
		size := decimal.RequireFromString("0.1")
		price := decimal.NewFromInt(50000)

		seedBalance(t, store, 1, domain.AssetTRY, 10000, 8000)
		if err := svc.ReserveForOrderCreation(store.Assets(), 1, "BTC", domain.SideBuy, size, price); err != nil {
			t.Fatalf("reserve failed: %v", err)
		}

		if err := svc.SettleForOrderMatch(store.Assets(), 1, "BTC", domain.SideBuy, size, price); err != nil {
			t.Fatalf("settle failed: %v", err)
		}

		try := mustFind(t, store, 1, domain.AssetTRY)
		if !try.Size.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("TRY size = %s, want 5000", try.Size)
		}
		if !try.UsableSize.Equal(decimal.NewFromInt(3000)) {
			t.Errorf("TRY usable = %s, want 3000", try.UsableSize)
		}

		// BTC row did not exist; settlement creates it fully usable.
		btc := mustFind(t, store, 1, "BTC")
		if !btc.Size.Equal(size) || !btc.UsableSize.Equal(size) {
			t.Errorf("BTC balance = size %s usable %s, want 0.1/0.1", btc.Size, btc.UsableSize)
		}
	})

	t.Run("sell settles the asset and credits TRY", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewAssetService(store, testLogger())
		size := decimal.RequireFromString("0.5")
		price := decimal.NewFromInt(50000)

		seedBalance(t, store, 1, "BTC", 1, 1)
		if err := svc.ReserveForOrderCreation(store.Assets(), 1, "BTC", domain.SideSell, size, price); err != nil {
			t.Fatalf("reserve failed: %v", err)
		}

		if err := svc.SettleForOrderMatch(store.Assets(), 1, "BTC", domain.SideSell, size, price); err != nil {
			t.Fatalf("settle failed: %v", err)
		}

		btc := mustFind(t, store, 1, "BTC")
		if !btc.Size.Equal(decimal.RequireFromString("0.5")) {
			t.Errorf("BTC size = %s, want 0.5", btc.Size)
		}

		try := mustFind(t, store, 1, domain.AssetTRY)
		if !try.Size.Equal(decimal.NewFromInt(25000)) || !try.UsableSize.Equal(decimal.NewFromInt(25000)) {
			t.Errorf("TRY balance = size %s usable %s, want 25000/25000", try.Size, try.UsableSize)
		}
	})

	t.Run("missing funding row", func(t *testing.T) {
		store := newTestStore(t)
		svc := NewAssetService(store, testLogger())

		err := svc.SettleForOrderMatch(store.Assets(), 1, "BTC", domain.SideBuy,
			decimal.NewFromInt(1), decimal.NewFromInt(1))
		if !errors.Is(err, domain.ErrAssetNotFound) {
			t.Errorf("error = %v, want ErrAssetNotFound", err)
		}
	})
}

func TestAddBalance(t *testing.T) {
	store := newTestStore(t)
	svc := NewAssetService(store, testLogger())

	t.Run("creates missing row", func(t *testing.T) {
		asset, err := svc.AddBalance(1, domain.AssetTRY, decimal.NewFromInt(1000))
		if err != nil {
			t.Fatalf("AddBalance failed: %v", err)
		}
		if !asset.Size.Equal(decimal.NewFromInt(1000)) || !asset.UsableSize.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("balance = size %s usable %s, want 1000/1000", asset.Size, asset.UsableSize)
		}
	})

	t.Run("credits both size and usable", func(t *testing.T) {
		asset, err := svc.AddBalance(1, domain.AssetTRY, decimal.NewFromInt(500))
		if err != nil {
			t.Fatalf("AddBalance failed: %v", err)
		}
		if !asset.Size.Equal(decimal.NewFromInt(1500)) || !asset.UsableSize.Equal(decimal.NewFromInt(1500)) {
			t.Errorf("balance = size %s usable %s, want 1500/1500", asset.Size, asset.UsableSize)
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		if _, err := svc.AddBalance(1, domain.AssetTRY, decimal.Zero); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("error = %v, want ErrInvalidAmount", err)
		}
		if _, err := svc.AddBalance(1, domain.AssetTRY, decimal.NewFromInt(-5)); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("error = %v, want ErrInvalidAmount", err)
		}
	})
}

func TestGetAssetsByCustomer(t *testing.T) {
	store := newTestStore(t)
	svc := NewAssetService(store, testLogger())

	seedBalance(t, store, 1, domain.AssetTRY, 1000, 1000)
	seedBalance(t, store, 1, "BTC", 1, 1)
	seedBalance(t, store, 2, "ETH", 1, 1)

	assets, err := svc.GetAssetsByCustomer(1)
	if err != nil {
		t.Fatalf("GetAssetsByCustomer failed: %v", err)
	}
	if len(assets) != 2 {
		t.Errorf("expected 2 assets, got %d", len(assets))
	}
}
