package app

import (
	"log/slog"

	"github.com/canhigher/ing-hubs-case/internal/api"
	"github.com/canhigher/ing-hubs-case/internal/domain"
	"github.com/canhigher/ing-hubs-case/internal/infra"
	"github.com/canhigher/ing-hubs-case/internal/infra/storage"
	"github.com/canhigher/ing-hubs-case/internal/service"
	"github.com/canhigher/ing-hubs-case/pkg/auth"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config *infra.Config
	Store  domain.Store
	Tokens *auth.Manager
	Hub    *api.Hub

	Assets *service.AssetService
	Orders *service.OrderService
	Auth   *service.AuthService
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads config, sets up logging, opens storage and wires the
// services and the order event hub.
func (b *Bootstrap) Initialize(configPath string) error {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	store, err := storage.NewStorage(cfg.Database.Path)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("database initialized", slog.String("path", cfg.Database.Path))

	b.Hub = api.NewHub(logger)
	b.Tokens = auth.NewManager(cfg.Auth.JWTSecret, cfg.TokenTTL())
	b.Assets = service.NewAssetService(store, logger)
	b.Orders = service.NewOrderService(store, b.Assets, b.Hub, logger)
	b.Auth = service.NewAuthService(store, b.Tokens, logger)

	if err := b.seedAdmin(); err != nil {
		return err
	}

	return nil
}

// seedAdmin creates the configured admin account on first start so matching
// and top-ups are possible out of the box.
func (b *Bootstrap) seedAdmin() error {
	cfg := b.Config.Auth
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	existing, err := b.Store.Users().FindByUsername(cfg.AdminUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	if _, err := b.Auth.Register(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword, domain.RoleAdmin); err != nil {
		return err
	}
	slog.Info("admin account seeded", slog.String("username", cfg.AdminUsername))
	return nil
}
