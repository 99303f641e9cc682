// Package service holds the respond business logic: the entity aggregators,
// the mutation fan-outs and the authentication flow.
//
// Every operation returns either a result or an *Error whose Kind tells the
// caller how to report it.
package service

import (
	"context"
	"time"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/respond/internal/metrics"
	"github.com/axisir/axisir-stack/respond/internal/timeframe"
	"github.com/axisir/axisir-stack/respond/internal/tokens"
)

// Deps are the collaborators shared by the services.
type Deps struct {
	Tx         TxRunner
	Companies  CompanyStore
	Users      UserStore
	Tokens     TokenStore
	Assets     AssetStore
	Incidents  IncidentStore
	Indicators IndicatorStore
	Tasks      TaskStore
	Reports    ReportStore

	Events     Events
	Resolver   *timeframe.Resolver
	TokenGen   *tokens.Generator
	BcryptCost int
	Logger     *logging.Logger
	Now        func() time.Time
}

// Service provides business logic for the respond service
type Service struct {
	Companies  *CompanyService
	Users      *UserService
	Assets     *AssetService
	Incidents  *IncidentService
	Indicators *IndicatorService
	Tasks      *TaskService
	Reports    *ReportService
}

// NewService creates a new Service instance
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = logging.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Resolver == nil {
		d.Resolver = timeframe.NewResolverWithClock(time.UTC, d.Now)
	}
	if d.Events == nil {
		d.Events = noopEvents{}
	}
	if d.Tx == nil {
		d.Tx = inlineTx{}
	}

	c := &core{events: d.Events, logger: d.Logger, now: d.Now}
	return &Service{
		Companies:  &CompanyService{core: c, tx: d.Tx, companies: d.Companies, users: d.Users},
		Users:      &UserService{core: c, tx: d.Tx, users: d.Users, tokens: d.Tokens, companies: d.Companies, gen: d.TokenGen, cost: d.BcryptCost},
		Assets:     &AssetService{core: c, tx: d.Tx, assets: d.Assets, companies: d.Companies},
		Incidents:  &IncidentService{core: c, incidents: d.Incidents, companies: d.Companies, users: d.Users, reports: d.Reports, indicators: d.Indicators, resolver: d.Resolver},
		Indicators: &IndicatorService{core: c, tx: d.Tx, indicators: d.Indicators, resolver: d.Resolver},
		Tasks:      &TaskService{core: c, tasks: d.Tasks, incidents: d.Incidents},
		Reports:    &ReportService{core: c, reports: d.Reports},
	}
}

// core is embedded by every service.
type core struct {
	events Events
	logger *logging.Logger
	now    func() time.Time
}

// published logs and counts a failed event publish; it never fails the caller.
func (c *core) published(ctx context.Context, subject string, err error) {
	if err == nil {
		return
	}
	metrics.EventPublishErrors.WithLabelValues(subject).Inc()
	c.logger.WarnContext(ctx, "failed to publish event", "subject", subject, logging.Error(err))
}

// Result carries a mutation's payload together with non-fatal warnings.
type Result[T any] struct {
	Value    T
	Warnings []string
}

type inlineTx struct{}

func (inlineTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
