package cmd

import (
	"context"
	"fmt"

	"inventree-connect/core/auth"
	"inventree-connect/core/config"
	"inventree-connect/core/database"
	"inventree-connect/core/logger"
	"inventree-connect/core/metrics"
	"inventree-connect/core/reconcile"
	"inventree-connect/core/storage"
	"inventree-connect/feature/cycle"
	"inventree-connect/feature/gateway/inventree"
	"inventree-connect/feature/gateway/shopware"
	"inventree-connect/feature/mirror"
	"inventree-connect/feature/orders"
	"inventree-connect/feature/report"
	"inventree-connect/feature/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// services is everything a command may need, wired from one configuration.
type services struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	store  *store.Store

	providers []*auth.Provider
	source    *shopware.Client
	target    *inventree.Client

	mirror  *reconcile.Engine
	orders  *orders.Service
	metrics *metrics.Registry
}

// loadConfig loads and validates the configuration, then builds the logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// bootstrap connects the store, migrates it and wires the gateways and the
// sync services.
func bootstrap(ctx context.Context) (*services, error) {
	cfg, l, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.Database, database.WithLogger(logger.NewGormLogger(l.Named("gorm"))))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	st := store.New(db)
	if err := st.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	skew := auth.WithSkew(cfg.Auth.Skew())
	sourceTokens := auth.NewProvider(shopware.NewAuthenticator(cfg.Source), l, skew)
	targetTokens := auth.NewProvider(inventree.NewAuthenticator(cfg.Target), l, skew)

	src := shopware.NewClient(cfg.Source, sourceTokens)
	tgt := inventree.NewClient(cfg.Target, targetTokens)

	m := mirror.NewEngine(st, src, tgt, mirror.Config{
		PageSize:        cfg.Source.PageSize,
		ProductPageSize: cfg.Sync.ProductPageSize,
		MinimumStock:    cfg.Sync.MinimumStock,
		Currency:        cfg.Target.Currency,
	}, l)
	o := orders.NewService(st, src, tgt, m, orders.Config{
		Window:   cfg.Sync.OrderWindow,
		Currency: cfg.Target.Currency,
	}, l)

	return &services{
		cfg:       cfg,
		logger:    l,
		db:        db,
		store:     st,
		providers: []*auth.Provider{sourceTokens, targetTokens},
		source:    src,
		target:    tgt,
		mirror:    m,
		orders:    o,
		metrics:   metrics.NewRegistry(),
	}, nil
}

// archiver returns the report archive, or a no-op one when storage is disabled.
func (s *services) archiver(ctx context.Context) (report.Archiver, error) {
	if !s.cfg.Storage.Enabled {
		return report.NopArchiver{}, nil
	}
	client, err := storage.NewClient(s.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, s.cfg.Storage.Bucket, s.cfg.Storage.Region); err != nil {
		return nil, fmt.Errorf("failed to prepare report bucket: %w", err)
	}
	return report.NewStorageArchiver(client, s.cfg.Storage, s.logger), nil
}

// cycles builds the cycle engine over the wired services.
func (s *services) cycles(archiver report.Archiver) *cycle.Engine {
	return cycle.NewEngine(s.mirror, s.orders, s.metrics, archiver, s.logger)
}

func (s *services) close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = s.logger.Sync()
}
