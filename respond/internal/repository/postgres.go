package repository

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/axisir/axisir-stack/common/database"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PoolConfig tunes the connection pool.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

// PostgresRepository owns the connection pool and the per-entity repositories built on it.
type PostgresRepository struct {
	pool *pgxpool.Pool
	tx   *database.TxManager

	Companies  *CompanyRepo
	Users      *UserRepo
	Tokens     *TokenRepo
	Assets     *AssetRepo
	Incidents  *IncidentRepo
	Indicators *IndicatorRepo
	Tasks      *TaskRepo
	Reports    *ReportRepo
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, connString string, pc PoolConfig) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}
	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}
	if pc.MinConns > 0 {
		cfg.MinConns = pc.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	r := newFromPool(pool)
	r.pool = pool
	return r, nil
}

// newFromPool wires every entity repository to p. Tests pass a pgxmock pool.
func newFromPool(p database.Pool) *PostgresRepository {
	return &PostgresRepository{
		tx:         database.NewTxManager(p),
		Companies:  NewCompanyRepo(p),
		Users:      NewUserRepo(p),
		Tokens:     NewTokenRepo(p),
		Assets:     NewAssetRepo(p),
		Incidents:  NewIncidentRepo(p),
		Indicators: NewIndicatorRepo(p),
		Tasks:      NewTaskRepo(p),
		Reports:    NewReportRepo(p),
	}
}

// TxManager returns the transaction manager bound to the pool.
func (r *PostgresRepository) TxManager() *database.TxManager {
	return r.tx
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// selectAll runs b and scans every row into a []T. The result is never nil.
func selectAll[T any](ctx context.Context, q database.Querier, b sq.Sqlizer) ([]T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []T
	if err := pgxscan.Select(ctx, q, &out, query, args...); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// selectOne runs b and scans exactly one row. Zero rows yields pgx.ErrNoRows.
func selectOne[T any](ctx context.Context, q database.Querier, b sq.Sqlizer) (*T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out T
	if err := pgxscan.Get(ctx, q, &out, query, args...); err != nil {
		return nil, err
	}
	return &out, nil
}

// execute runs b and returns the number of affected rows.
func execute(ctx context.Context, q database.Querier, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// exists reports whether b returns a row.
func exists(ctx context.Context, q database.Querier, b sq.SelectBuilder) (bool, error) {
	query, args, err := b.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	var ok bool
	if err := q.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// qualify prefixes each column with alias.
func qualify(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}
