package service

import (
	"context"
	"strings"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/respond/internal/models"
)

// ReportService stores report records. Generating the files happens elsewhere.
type ReportService struct {
	*core
	reports ReportStore
}

// List returns every report, or only companyID's when it is non-nil.
func (s *ReportService) List(ctx context.Context, companyID *int64) ([]models.Report, error) {
	out, err := s.reports.List(ctx, companyID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching reports.")
	}
	return out, nil
}

func (s *ReportService) GetByID(ctx context.Context, reportID int64) (*models.Report, error) {
	out, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching report.")
	}
	return out, nil
}

func (s *ReportService) Create(ctx context.Context, req *models.CreateReportRequest, actorID int64) (*models.Report, error) {
	if req.CompanyID == 0 {
		return nil, badRequest("companyId", "companyId is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, badRequest("title", "title is required")
	}

	rep := &models.Report{
		CompanyID:        int64(req.CompanyID),
		CaseID:           req.CaseID,
		Title:            req.Title,
		Description:      req.Description,
		ReportFileS3Path: req.ReportFileS3Path,
		GeneratedAt:      req.GeneratedAt,
		WasSent:          req.WasSent,
		TLP:              req.TLP,
	}
	if actorID != 0 {
		rep.CreatedBy = &actorID
	}
	out, err := s.reports.Create(ctx, rep)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while creating report.")
	}
	s.logger.InfoContext(ctx, "report created", "report_id", out.ReportID, logging.CompanyID(out.CompanyID))
	return out, nil
}
