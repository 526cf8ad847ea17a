package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/canhigher/ing-hubs-case/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage implements domain.Store backed by SQLite (pure Go driver).
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at path and migrates
// the schema.
func NewStorage(path string) (*Storage, error) {
	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Asset{}, &domain.Order{}, &domain.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Assets returns the asset repository.
func (s *Storage) Assets() domain.AssetRepository {
	return &assetRepo{db: s.db}
}

// Orders returns the order repository.
func (s *Storage) Orders() domain.OrderRepository {
	return &orderRepo{db: s.db}
}

// Users returns the user repository.
func (s *Storage) Users() domain.UserRepository {
	return &userRepo{db: s.db}
}

// Transaction runs fn against a transaction-scoped store. SQLite serializes
// writers, so everything fn writes is applied atomically or not at all.
func (s *Storage) Transaction(fn func(tx domain.Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Storage{db: tx})
	})
}

// ======================================================================================
// Asset Repository
// ======================================================================================

type assetRepo struct {
	db *gorm.DB
}

func (r *assetRepo) Find(customerID uint, assetName string) (*domain.Asset, error) {
	var asset domain.Asset
	err := r.db.First(&asset, "customer_id = ? AND asset_name = ?", customerID, assetName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepo) FindByCustomer(customerID uint) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := r.db.Where("customer_id = ?", customerID).Order("asset_name").Find(&assets).Error
	return assets, err
}

func (r *assetRepo) Save(a *domain.Asset) error {
	return r.db.Save(a).Error
}

// ReserveUsable debits amount from the usable size if it covers it. The read,
// the comparison and the write run against the caller's transaction handle and
// SQLite serializes writers, so a stale prior read can never over-commit the
// balance. The arithmetic stays in decimal; the database never computes on
// amounts.
func (r *assetRepo) ReserveUsable(customerID uint, assetName string, amount decimal.Decimal) (bool, error) {
	asset, err := r.Find(customerID, assetName)
	if err != nil || asset == nil {
		return false, err
	}
	if asset.UsableSize.LessThan(amount) {
		return false, nil
	}
	asset.UsableSize = asset.UsableSize.Sub(amount)
	if err := r.db.Save(asset).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ======================================================================================
// Order Repository
// ======================================================================================

type orderRepo struct {
	db *gorm.DB
}

func (r *orderRepo) Find(id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByFilter(f domain.OrderFilter) ([]domain.Order, error) {
	q := r.db.Where("create_date BETWEEN ? AND ?", f.Start, f.End)
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var orders []domain.Order
	err := q.Order("create_date DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindAll() ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.Order("create_date DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) Save(o *domain.Order) error {
	return r.db.Save(o).Error
}

// ======================================================================================
// User Repository
// ======================================================================================

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) FindByID(id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByUsername(username string) (*domain.User, error) {
	var user domain.User
	err := r.db.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := r.db.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Save(u *domain.User) error {
	return r.db.Save(u).Error
}
