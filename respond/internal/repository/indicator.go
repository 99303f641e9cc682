package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/axisir/axisir-stack/common/database"
	"github.com/axisir/axisir-stack/respond/internal/models"
	"github.com/axisir/axisir-stack/respond/internal/timeframe"
)

var indicatorColumns = []string{
	"ioc_id", "type", "value", "classification", "priority", "classified_by",
	"meta_data", "detected_at", "tlp", "created_at", "updated_at",
}

var linkColumns = []string{
	"link_id", "ioc_id", "case_id", "asset_id", "link_type", "value", "linked_by",
	"meta_data", "tlp", "attack_phase", "confidence", "created_at",
}

// IndicatorRepo persists indicators and their links.
type IndicatorRepo struct{ base }

func NewIndicatorRepo(pool database.Querier) *IndicatorRepo {
	return &IndicatorRepo{base{pool}}
}

// Create inserts ind and returns the stored row.
func (r *IndicatorRepo) Create(ctx context.Context, ind *models.Indicator) (*models.Indicator, error) {
	b := psql.Insert("indicator").
		Columns("type", "value", "classification", "priority", "classified_by", "meta_data", "detected_at", "tlp").
		Values(ind.Type, ind.Value, ind.Classification, ind.Priority, ind.ClassifiedBy, ind.MetaData, ind.DetectedAt, ind.TLP).
		Suffix("RETURNING " + joinColumns(indicatorColumns))

	out, err := selectOne[models.Indicator](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "create indicator", nil)
	}
	return out, nil
}

// Update overwrites every mutable column of ind.IOCID.
func (r *IndicatorRepo) Update(ctx context.Context, ind *models.Indicator) (*models.Indicator, error) {
	b := psql.Update("indicator").SetMap(map[string]any{
		"type":           ind.Type,
		"value":          ind.Value,
		"classification": ind.Classification,
		"priority":       ind.Priority,
		"classified_by":  ind.ClassifiedBy,
		"meta_data":      ind.MetaData,
		"detected_at":    ind.DetectedAt,
		"tlp":            ind.TLP,
		"updated_at":     sq.Expr("NOW()"),
	}).
		Where(sq.Eq{"ioc_id": ind.IOCID}).
		Suffix("RETURNING " + joinColumns(indicatorColumns))

	out, err := selectOne[models.Indicator](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "update indicator", ErrIndicatorNotFound)
	}
	return out, nil
}

func (r *IndicatorRepo) GetByID(ctx context.Context, id int64) (*models.Indicator, error) {
	b := psql.Select(indicatorColumns...).From("indicator").Where(sq.Eq{"ioc_id": id})
	out, err := selectOne[models.Indicator](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "get indicator", ErrIndicatorNotFound)
	}
	return out, nil
}

// List returns indicators created inside w, newest first.
func (r *IndicatorRepo) List(ctx context.Context, w timeframe.Window) ([]models.Indicator, error) {
	b := psql.Select(indicatorColumns...).
		From("indicator").
		Where(w.Predicate("created_at")).
		OrderBy("created_at DESC", "ioc_id DESC")
	out, err := selectAll[models.Indicator](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list indicators", nil)
	}
	return out, nil
}

// ListByIDs returns the indicators whose ids are in ids, in no particular order.
func (r *IndicatorRepo) ListByIDs(ctx context.Context, ids []int64) ([]models.Indicator, error) {
	if len(ids) == 0 {
		return []models.Indicator{}, nil
	}
	b := psql.Select(indicatorColumns...).From("indicator").Where(sq.Eq{"ioc_id": ids})
	out, err := selectAll[models.Indicator](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list indicators by id", nil)
	}
	return out, nil
}

// CreateLink inserts l and returns the stored row.
func (r *IndicatorRepo) CreateLink(ctx context.Context, l *models.IndicatorLink) (*models.IndicatorLink, error) {
	b := psql.Insert("indicator_link").
		Columns("ioc_id", "case_id", "asset_id", "link_type", "value", "linked_by", "meta_data", "tlp", "attack_phase", "confidence").
		Values(l.IOCID, l.CaseID, l.AssetID, l.LinkType, l.Value, l.LinkedBy, l.MetaData, l.TLP, l.AttackPhase, l.Confidence).
		Suffix("RETURNING " + joinColumns(linkColumns))

	out, err := selectOne[models.IndicatorLink](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "create indicator link", nil)
	}
	return out, nil
}

// LinksForCases returns the links of every case in caseIDs created inside w,
// newest first.
func (r *IndicatorRepo) LinksForCases(ctx context.Context, caseIDs []int64, w timeframe.Window) ([]models.IndicatorLink, error) {
	if len(caseIDs) == 0 {
		return []models.IndicatorLink{}, nil
	}
	b := psql.Select(linkColumns...).
		From("indicator_link").
		Where(sq.Eq{"case_id": caseIDs}).
		Where(w.Predicate("created_at")).
		OrderBy("created_at DESC", "link_id DESC")
	out, err := selectAll[models.IndicatorLink](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list indicator links", nil)
	}
	return out, nil
}

// DeleteLinks removes every link of iocID. It returns ErrLinkNotFound when there were none.
func (r *IndicatorRepo) DeleteLinks(ctx context.Context, iocID int64) (int64, error) {
	n, err := execute(ctx, r.q(ctx), psql.Delete("indicator_link").Where(sq.Eq{"ioc_id": iocID}))
	if err != nil {
		return 0, mapError(err, "delete indicator links", nil)
	}
	if n == 0 {
		return 0, ErrLinkNotFound
	}
	return n, nil
}
