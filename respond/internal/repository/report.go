package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/axisir/axisir-stack/common/database"
	"github.com/axisir/axisir-stack/respond/internal/models"
)

var reportColumns = []string{
	"report_id", "company_id", "case_id", "created_by", "title", "description",
	"report_file_s3_path", "generated_at", "was_sent", "tlp", "created_at",
}

// ReportRepo persists report records.
type ReportRepo struct{ base }

func NewReportRepo(pool database.Querier) *ReportRepo {
	return &ReportRepo{base{pool}}
}

// Create inserts rep and returns the stored row.
func (r *ReportRepo) Create(ctx context.Context, rep *models.Report) (*models.Report, error) {
	b := psql.Insert("report").
		Columns("company_id", "case_id", "created_by", "title", "description", "report_file_s3_path", "generated_at", "was_sent", "tlp").
		Values(rep.CompanyID, rep.CaseID, rep.CreatedBy, rep.Title, rep.Description, rep.ReportFileS3Path, rep.GeneratedAt, rep.WasSent, rep.TLP).
		Suffix("RETURNING " + joinColumns(reportColumns))

	out, err := selectOne[models.Report](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "create report", nil)
	}
	return out, nil
}

func (r *ReportRepo) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	b := psql.Select(reportColumns...).From("report").Where(sq.Eq{"report_id": id})
	out, err := selectOne[models.Report](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "get report", ErrReportNotFound)
	}
	return out, nil
}

// List returns every report, or only those of companyID when it is non-nil.
func (r *ReportRepo) List(ctx context.Context, companyID *int64) ([]models.Report, error) {
	b := psql.Select(reportColumns...).From("report").OrderBy("report_id")
	if companyID != nil {
		b = b.Where(sq.Eq{"company_id": *companyID})
	}
	out, err := selectAll[models.Report](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list reports", nil)
	}
	return out, nil
}

// ListByCase returns the reports attached to caseID ordered by id.
func (r *ReportRepo) ListByCase(ctx context.Context, caseID int64) ([]models.Report, error) {
	b := psql.Select(reportColumns...).From("report").Where(sq.Eq{"case_id": caseID}).OrderBy("report_id")
	out, err := selectAll[models.Report](ctx, r.q(ctx), b)
	if err != nil {
		return nil, mapError(err, "list reports by case", nil)
	}
	return out, nil
}
