package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/axisir/axisir-stack/common/database"
	"github.com/axisir/axisir-stack/respond/internal/membership"
	"github.com/axisir/axisir-stack/respond/internal/models"
)

var assetColumns = []string{
	"asset_id", "company_id", "parent_asset_id", "asset_group_id", "name", "type",
	"operating_system", "status", "priority", "meta_data", "tlp", "last_heartbeat",
	"created_at", "updated_at",
}

var assetGroupColumns = []string{"asset_group_id", "company_id", "title", "description", "created_at"}

// AssetRepo persists assets, asset groups and the asset_group_assign join table.
type AssetRepo struct {
	base
	legacyMembership bool
}

// NewAssetRepo creates an AssetRepo. Group listings consult only the join table
// until WithLegacyMembership is set.
func NewAssetRepo(pool database.Querier) *AssetRepo {
	return &AssetRepo{base: base{pool}}
}

// WithLegacyMembership makes ListByGroup also match the encoded asset_group_id column.
func (r *AssetRepo) WithLegacyMembership(enabled bool) *AssetRepo {
	r.legacyMembership = enabled
	return r
}

// Create inserts a and returns the stored row.
func (r *AssetRepo) Create(ctx context.Context, a *models.Asset) (*models.Asset, error) {
	b := psql.Insert("asset").
		Columns("company_id", "parent_asset_id", "asset_group_id", "name", "type", "operating_system",
			"status", "priority", "meta_data", "tlp", "last_heartbeat").
		Values(a.CompanyID, a.ParentAssetID, a.AssetGroupID, a.Name, a.Type, a.OperatingSystem,
			a.Status, a.Priority, a.MetaData, a.TLP, a.LastHeartbeat).
		Suffix("RETURNING " + joinColumns(assetColumns))

	out, err := selectOne[models.Asset](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "create asset", nil)
	}
	return out, nil
}

// Update writes the non-nil fields of req to asset id. The encoded group
// column is owned by SetLegacyGroups.
func (r *AssetRepo) Update(ctx context.Context, id int64, req *models.SaveAssetRequest) (*models.Asset, error) {
	b := psql.Update("asset").Set("updated_at", sq.Expr("NOW()"))
	if req.CompanyID != nil {
		b = b.Set("company_id", *req.CompanyID)
	}
	if req.ParentAssetID != nil {
		b = b.Set("parent_asset_id", *req.ParentAssetID)
	}
	if req.Name != nil {
		b = b.Set("name", *req.Name)
	}
	if req.Type != nil {
		b = b.Set("type", *req.Type)
	}
	if req.OperatingSystem != nil {
		b = b.Set("operating_system", *req.OperatingSystem)
	}
	if req.Status != nil {
		b = b.Set("status", *req.Status)
	}
	if req.Priority != nil {
		b = b.Set("priority", *req.Priority)
	}
	if len(req.MetaData) > 0 {
		b = b.Set("meta_data", req.MetaData)
	}
	if req.TLP != nil {
		b = b.Set("tlp", *req.TLP)
	}
	if req.LastHeartbeat != nil {
		b = b.Set("last_heartbeat", *req.LastHeartbeat)
	}
	b = b.Where(sq.Eq{"asset_id": id}).Suffix("RETURNING " + joinColumns(assetColumns))

	out, err := selectOne[models.Asset](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "update asset", ErrAssetNotFound)
	}
	return out, nil
}

func (r *AssetRepo) GetByID(ctx context.Context, id int64) (*models.Asset, error) {
	b := psql.Select(assetColumns...).From("asset").Where(sq.Eq{"asset_id": id})
	out, err := selectOne[models.Asset](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "get asset", ErrAssetNotFound)
	}
	return out, nil
}

func (r *AssetRepo) ListByCompany(ctx context.Context, companyID int64) ([]models.Asset, error) {
	b := psql.Select(assetColumns...).From("asset").Where(sq.Eq{"company_id": companyID}).OrderBy("asset_id")
	out, err := selectAll[models.Asset](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list assets by company", nil)
	}
	return out, nil
}

// ListInfected returns the assets of companyID that have at least one indicator link.
func (r *AssetRepo) ListInfected(ctx context.Context, companyID int64) ([]models.Asset, error) {
	b := psql.Select(qualify("a", assetColumns)...).
		From("asset a").
		Where(sq.Eq{"a.company_id": companyID}).
		Where("EXISTS (SELECT 1 FROM indicator_link il WHERE il.asset_id = a.asset_id)").
		OrderBy("a.asset_id")
	out, err := selectAll[models.Asset](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list infected assets", nil)
	}
	return out, nil
}

// ListByGroup returns the assets assigned to groupID through the join table,
// plus, with legacy membership enabled, those whose encoded list names it.
func (r *AssetRepo) ListByGroup(ctx context.Context, groupID int64) ([]models.Asset, error) {
	member := sq.Or{
		sq.Expr("a.asset_id IN (SELECT aga.asset_id FROM asset_group_assign aga WHERE aga.asset_group_id = ?)", groupID),
	}
	if r.legacyMembership {
		member = append(member, membership.Predicate(groupID, "a.asset_group_id"))
	}

	b := psql.Select(qualify("a", assetColumns)...).
		From("asset a").
		Where(member).
		OrderBy("a.asset_id")
	out, err := selectAll[models.Asset](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list assets by group", nil)
	}
	return out, nil
}

// GroupIDs returns the distinct groups asset id is assigned to.
func (r *AssetRepo) GroupIDs(ctx context.Context, assetID int64) ([]int64, error) {
	query, args, err := psql.Select("DISTINCT asset_group_id").
		From("asset_group_assign").
		Where(sq.Eq{"asset_id": assetID}).
		OrderBy("asset_group_id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list asset groups", nil)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err, "scan asset group", nil)
		}
		ids = append(ids, id)
	}
	return ids, mapError(rows.Err(), "list asset groups", nil)
}

// SetLegacyGroups rewrites the encoded asset_group_id column of assetID from
// groupIDs so legacy readers see the join table's membership.
func (r *AssetRepo) SetLegacyGroups(ctx context.Context, assetID int64, groupIDs []int64) error {
	_, err := execute(ctx, r.q(ctx), psql.Update("asset").
		Set("asset_group_id", membership.Column(groupIDs)).
		Where(sq.Eq{"asset_id": assetID}))
	return mapError(err, "set legacy asset groups", nil)
}

// ClearGroups removes every group assignment of assetID.
func (r *AssetRepo) ClearGroups(ctx context.Context, assetID int64) (int64, error) {
	n, err := execute(ctx, r.q(ctx), psql.Delete("asset_group_assign").Where(sq.Eq{"asset_id": assetID}))
	if err != nil {
		return 0, mapError(err, "clear asset groups", nil)
	}
	return n, nil
}

// AddGroups inserts one assignment row per group id. Duplicates are not checked.
func (r *AssetRepo) AddGroups(ctx context.Context, assetID int64, groupIDs []int64) (int64, error) {
	if len(groupIDs) == 0 {
		return 0, nil
	}
	b := psql.Insert("asset_group_assign").Columns("asset_group_id", "asset_id")
	for _, g := range groupIDs {
		b = b.Values(g, assetID)
	}
	n, err := execute(ctx, r.q(ctx), b)
	if err != nil {
		return 0, mapError(err, "add asset groups", nil)
	}
	return n, nil
}

// Assign inserts a single assignment row.
func (r *AssetRepo) Assign(ctx context.Context, groupID, assetID int64) (*models.AssetGroupAssign, error) {
	b := psql.Insert("asset_group_assign").
		Columns("asset_group_id", "asset_id").
		Values(groupID, assetID).
		Suffix("RETURNING id, asset_group_id, asset_id")
	out, err := selectOne[models.AssetGroupAssign](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "assign asset to group", nil)
	}
	return out, nil
}

// Unassign deletes every row pairing groupID and assetID, duplicates included.
func (r *AssetRepo) Unassign(ctx context.Context, groupID, assetID int64) (int64, error) {
	b := psql.Delete("asset_group_assign").Where(sq.Eq{"asset_group_id": groupID, "asset_id": assetID})
	n, err := execute(ctx, r.q(ctx), b)
	if err != nil {
		return 0, mapError(err, "unassign asset from group", nil)
	}
	return n, nil
}

// CreateGroup inserts g and returns the stored row.
func (r *AssetRepo) CreateGroup(ctx context.Context, g *models.AssetGroup) (*models.AssetGroup, error) {
	b := psql.Insert("asset_group").
		Columns("company_id", "title", "description").
		Values(g.CompanyID, g.Title, g.Description).
		Suffix("RETURNING " + joinColumns(assetGroupColumns))
	out, err := selectOne[models.AssetGroup](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "create asset group", nil)
	}
	return out, nil
}

func (r *AssetRepo) GetGroup(ctx context.Context, id int64) (*models.AssetGroup, error) {
	b := psql.Select(assetGroupColumns...).From("asset_group").Where(sq.Eq{"asset_group_id": id})
	out, err := selectOne[models.AssetGroup](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "get asset group", ErrAssetGroupNotFound)
	}
	return out, nil
}

func (r *AssetRepo) ListGroups(ctx context.Context, companyID int64) ([]models.AssetGroup, error) {
	b := psql.Select(assetGroupColumns...).From("asset_group").Where(sq.Eq{"company_id": companyID}).OrderBy("asset_group_id")
	out, err := selectAll[models.AssetGroup](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list asset groups", nil)
	}
	return out, nil
}
