package repository

import (
	"context"

	"github.com/axisir/axisir-stack/common/database"
)

// Repository is the lifecycle surface of the respond data store.
type Repository interface {
	// Health check
	Ping(ctx context.Context) error
	Close() error
}

var _ Repository = (*PostgresRepository)(nil)

// base carries the shared pool. Each query runs on the transaction in ctx
// when there is one.
type base struct {
	pool database.Querier
}

func (b base) q(ctx context.Context) database.Querier {
	return database.QuerierFromCtx(ctx, b.pool)
}
