package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/common/messaging"
	natsclient "github.com/axisir/axisir-stack/common/messaging/nats"
	"github.com/axisir/axisir-stack/respond/internal/config"
	natsevents "github.com/axisir/axisir-stack/respond/internal/nats"
	"github.com/axisir/axisir-stack/respond/internal/repository"
	"github.com/axisir/axisir-stack/respond/internal/service"
	"github.com/axisir/axisir-stack/respond/internal/timeframe"
	"github.com/axisir/axisir-stack/respond/internal/tokens"
)

// app is the wired service graph shared by serve and seed.
type app struct {
	repo   *repository.PostgresRepository
	broker messaging.Publisher
	nats   *natsclient.Client // nil when the broker is disabled
	svc    *service.Service
}

func newApp(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*app, error) {
	loc, err := cfg.TimeFrame.LoadLocation()
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "connecting to PostgreSQL",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Database,
	)
	repo, err := repository.NewPostgresRepository(ctx, cfg.Database.Postgres.ConnString(), repository.PoolConfig{
		MaxConns: cfg.Database.Postgres.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	repo.Assets.WithLegacyMembership(cfg.Assets.LegacyGroupMembership)

	var (
		broker messaging.Publisher = messaging.NoopPublisher{}
		nc     *natsclient.Client
	)
	if cfg.NATS.Enabled {
		natsCfg := natsclient.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.Name = "axisir-respond"
		natsCfg.MaxReconnects = cfg.NATS.MaxReconnects
		natsCfg.Token = cfg.NATS.Token
		if cfg.NATS.ReconnectWait > 0 {
			natsCfg.ReconnectWait = cfg.NATS.ReconnectWait
		}
		nc, err = natsclient.NewClient(natsCfg, logger)
		if err != nil {
			repo.Close()
			return nil, err
		}
		broker = nc
		logger.InfoContext(ctx, "publishing domain events to NATS", "url", cfg.NATS.URL)
	}

	svc := service.NewService(service.Deps{
		Tx:         repo.TxManager(),
		Companies:  repo.Companies,
		Users:      repo.Users,
		Tokens:     repo.Tokens,
		Assets:     repo.Assets,
		Incidents:  repo.Incidents,
		Indicators: repo.Indicators,
		Tasks:      repo.Tasks,
		Reports:    repo.Reports,
		Events:     natsevents.NewPublisher(broker),
		Resolver:   timeframe.NewResolver(loc),
		TokenGen:   tokens.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
		Now:        time.Now,
	})

	return &app{repo: repo, broker: broker, nats: nc, svc: svc}, nil
}

func (a *app) Close() {
	_ = a.broker.Close()
	_ = a.repo.Close()
}
