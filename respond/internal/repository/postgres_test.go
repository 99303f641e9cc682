package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/axisir/axisir-stack/respond/internal/membership"
	"github.com/axisir/axisir-stack/respond/internal/models"
	"github.com/axisir/axisir-stack/respond/internal/timeframe"
	"github.com/axisir/axisir-stack/respond/migrations"
)

// setupTestDatabase creates a PostgreSQL testcontainer and applies the embedded migrations
func setupTestDatabase(t *testing.T) *PostgresRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("respond_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(connStr, migrations.Up))

	repo, err := NewPostgresRepository(ctx, connStr, PoolConfig{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func strPtr(s string) *string { return &s }

func TestPostgres_AssetGroupFanOut(t *testing.T) {
	repo := setupTestDatabase(t)
	ctx := context.Background()

	company, err := repo.Companies.Create(ctx, &models.Company{CIN: "C-1", Name: "Acme"})
	require.NoError(t, err)

	g1, err := repo.Assets.CreateGroup(ctx, &models.AssetGroup{CompanyID: company.CompanyID, Title: "servers"})
	require.NoError(t, err)
	g2, err := repo.Assets.CreateGroup(ctx, &models.AssetGroup{CompanyID: company.CompanyID, Title: "laptops"})
	require.NoError(t, err)

	var asset *models.Asset
	err = repo.TxManager().RunInTx(ctx, func(ctx context.Context) error {
		var err error
		asset, err = repo.Assets.Create(ctx, &models.Asset{CompanyID: &company.CompanyID, Name: "web-01"})
		if err != nil {
			return err
		}
		_, err = repo.Assets.AddGroups(ctx, asset.AssetID, []int64{g1.AssetGroupID, g2.AssetGroupID})
		return err
	})
	require.NoError(t, err)

	ids, err := repo.Assets.GroupIDs(ctx, asset.AssetID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{g1.AssetGroupID, g2.AssetGroupID}, ids)

	inGroup, err := repo.Assets.ListByGroup(ctx, g1.AssetGroupID)
	require.NoError(t, err)
	require.Len(t, inGroup, 1)
	assert.Equal(t, asset.AssetID, inGroup[0].AssetID)

	// duplicate assignment is accepted; unassign removes both rows
	_, err = repo.Assets.Assign(ctx, g1.AssetGroupID, asset.AssetID)
	require.NoError(t, err)
	n, err := repo.Assets.Unassign(ctx, g1.AssetGroupID, asset.AssetID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPostgres_RemovalRewritesLegacyColumn(t *testing.T) {
	repo := setupTestDatabase(t)
	ctx := context.Background()
	assets := repo.Assets.WithLegacyMembership(true)

	company, err := repo.Companies.Create(ctx, &models.Company{CIN: "C-3", Name: "Removal"})
	require.NoError(t, err)
	g1, err := assets.CreateGroup(ctx, &models.AssetGroup{CompanyID: company.CompanyID, Title: "servers"})
	require.NoError(t, err)
	g2, err := assets.CreateGroup(ctx, &models.AssetGroup{CompanyID: company.CompanyID, Title: "laptops"})
	require.NoError(t, err)

	both := []int64{g1.AssetGroupID, g2.AssetGroupID}
	asset, err := assets.Create(ctx, &models.Asset{CompanyID: &company.CompanyID, Name: "web-01", AssetGroupID: membership.Column(both)})
	require.NoError(t, err)
	_, err = assets.AddGroups(ctx, asset.AssetID, both)
	require.NoError(t, err)

	_, err = assets.Unassign(ctx, g1.AssetGroupID, asset.AssetID)
	require.NoError(t, err)
	ids, err := assets.GroupIDs(ctx, asset.AssetID)
	require.NoError(t, err)
	require.NoError(t, assets.SetLegacyGroups(ctx, asset.AssetID, ids))

	inG1, err := assets.ListByGroup(ctx, g1.AssetGroupID)
	require.NoError(t, err)
	assert.Empty(t, inG1)

	inG2, err := assets.ListByGroup(ctx, g2.AssetGroupID)
	require.NoError(t, err)
	require.Len(t, inG2, 1)
	require.NotNil(t, inG2[0].AssetGroupID)
	assert.Equal(t, membership.Encode([]int64{g2.AssetGroupID}), *inG2[0].AssetGroupID)
}

func TestPostgres_LegacyMembership(t *testing.T) {
	repo := setupTestDatabase(t)
	ctx := context.Background()

	company, err := repo.Companies.Create(ctx, &models.Company{CIN: "C-2", Name: "Legacy"})
	require.NoError(t, err)
	for _, enc := range []string{"[1]", "[1,2]", "[2,1]", "[2,1,3]", "[12]"} {
		_, err := repo.Assets.Create(ctx, &models.Asset{CompanyID: &company.CompanyID, Name: "a" + enc, AssetGroupID: strPtr(enc)})
		require.NoError(t, err)
	}

	plain, err := repo.Assets.ListByGroup(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, plain)

	legacy, err := repo.Assets.WithLegacyMembership(true).ListByGroup(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, legacy, 4)
}

func TestPostgres_IncidentListingAndUniqueUsers(t *testing.T) {
	repo := setupTestDatabase(t)
	ctx := context.Background()

	company, err := repo.Companies.Create(ctx, &models.Company{CIN: "C-3", Name: "Initech"})
	require.NoError(t, err)

	_, err = repo.Incidents.Create(ctx, &models.Incident{
		CompanyID: company.CompanyID,
		Title:     "Phishing",
		Status:    "OPEN",
		OpenedAt:  time.Now(),
	})
	require.NoError(t, err)

	list, err := repo.Incidents.ListByCompany(ctx, company.CompanyID, timeframe.Resolve("today", time.Now()))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].AssigneeName)
	assert.Nil(t, list[0].ClosedAt)

	_, err = repo.Users.Create(ctx, &models.User{Username: "dana", Email: "dana@example.com", Password: "x"})
	require.NoError(t, err)
	_, err = repo.Users.Create(ctx, &models.User{Username: "dana", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUsernameExists)
	_, err = repo.Users.Create(ctx, &models.User{Username: "fox", Email: "dana@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailExists)
}
