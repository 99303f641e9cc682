package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/common/messaging"
	"github.com/axisir/axisir-stack/respond/internal/metrics"
	"github.com/axisir/axisir-stack/respond/internal/models"
	natsevents "github.com/axisir/axisir-stack/respond/internal/nats"
	"github.com/axisir/axisir-stack/respond/internal/repository"
	"github.com/axisir/axisir-stack/respond/internal/timeframe"
)

const defaultIncidentStatus = "OPEN"

// IncidentService handles incidents and their IOC lookups.
type IncidentService struct {
	*core
	incidents  IncidentStore
	companies  CompanyStore
	users      UserStore
	reports    ReportStore
	indicators IndicatorStore
	resolver   *timeframe.Resolver
}

// deriveClosedAt returns the closedAt to persist for status. A closed incident
// keeps the supplied timestamp, then the stored one, then now. Any other
// status clears it.
func deriveClosedAt(status string, supplied, existing *time.Time, now time.Time) *time.Time {
	if status != models.StatusClosed {
		return nil
	}
	if supplied != nil {
		return supplied
	}
	if existing != nil {
		return existing
	}
	return &now
}

// ListByCompany returns the company's incidents opened within timeFrame.
func (s *IncidentService) ListByCompany(ctx context.Context, companyID int64, timeFrame string) ([]models.IncidentSummary, error) {
	if err := requireCompany(ctx, s.companies, companyID); err != nil {
		return nil, err
	}

	out, err := s.incidents.ListByCompany(ctx, companyID, s.resolver.Resolve(timeFrame))
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching incidents.")
	}
	return out, nil
}

// GetByID returns the incident with its assignee and reports attached.
func (s *IncidentService) GetByID(ctx context.Context, caseID int64) (*models.IncidentDetail, error) {
	inc, err := s.incidents.GetByID(ctx, caseID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching incident.")
	}

	detail := &models.IncidentDetail{Incident: *inc}
	g, gctx := errgroup.WithContext(ctx)
	if inc.Assignee != nil {
		g.Go(func() error {
			u, err := s.users.GetByID(gctx, *inc.Assignee)
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			sum := u.Summary()
			detail.AssigneeUser = &sum
			name := models.DisplayName(u.Username, u.FirstName, u.LastName)
			detail.AssigneeName = &name
			return nil
		})
	}
	g.Go(func() error {
		reps, err := s.reports.ListByCase(gctx, caseID)
		if err != nil {
			return err
		}
		if reps == nil {
			reps = []models.Report{}
		}
		detail.Reports = reps
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, internal("An error occurred while fetching incident.", err)
	}
	return detail, nil
}

// Create persists a new incident. Status defaults to OPEN.
func (s *IncidentService) Create(ctx context.Context, req *models.CreateIncidentRequest, actorID int64) (*models.Incident, error) {
	if req.CompanyID == 0 {
		return nil, badRequest("companyId", "companyId is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, badRequest("title", "title is required")
	}

	now := s.now()
	status := req.Status
	if status == "" {
		status = defaultIncidentStatus
	}
	openedAt := now
	if req.OpenedAt != nil {
		openedAt = *req.OpenedAt
	}

	created, err := s.incidents.Create(ctx, &models.Incident{
		CompanyID:   int64(req.CompanyID),
		Assignee:    req.Assignee,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    req.Priority,
		TLP:         req.TLP,
		OpenedAt:    openedAt,
		ClosedAt:    deriveClosedAt(status, req.ClosedAt, nil, now),
	})
	if err != nil {
		return nil, fromRepo(err, "An error occurred while creating incident.")
	}

	metrics.IncidentsCreated.Inc()
	if created.IsClosed() {
		metrics.IncidentsClosed.Inc()
	}
	s.logger.InfoContext(ctx, "incident created",
		logging.CaseID(created.CaseID), logging.CompanyID(created.CompanyID), logging.UserID(actorID))
	s.published(ctx, messaging.SubjectRespondIncidentsCreated,
		s.events.PublishIncidentCreated(ctx, incidentEvent(created, actorID)))
	return created, nil
}

// Update merges the supplied fields into the stored incident and re-derives closedAt.
func (s *IncidentService) Update(ctx context.Context, req *models.UpdateIncidentRequest, actorID int64) (*models.Incident, error) {
	if req.CaseID == 0 {
		return nil, badRequest("caseId", "caseId is required")
	}

	existing, err := s.incidents.GetByID(ctx, int64(req.CaseID))
	if err != nil {
		return nil, fromRepo(err, "An error occurred while updating incident.")
	}
	wasClosed := existing.IsClosed()

	next := *existing
	if req.Assignee.Set {
		next.Assignee = req.Assignee.Value
	}
	if req.Title != nil {
		next.Title = *req.Title
	}
	if req.Description != nil {
		next.Description = req.Description
	}
	if req.Status != nil {
		next.Status = *req.Status
	}
	if req.Priority != nil {
		next.Priority = req.Priority
	}
	if req.TLP != nil {
		next.TLP = req.TLP
	}
	if req.OpenedAt != nil {
		next.OpenedAt = *req.OpenedAt
	}
	next.ClosedAt = deriveClosedAt(next.Status, req.ClosedAt, existing.ClosedAt, s.now())

	updated, err := s.incidents.Update(ctx, &next)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while updating incident.")
	}

	closed := !wasClosed && updated.IsClosed()
	if closed {
		metrics.IncidentsClosed.Inc()
	}
	s.logger.InfoContext(ctx, "incident updated",
		logging.CaseID(updated.CaseID), logging.UserID(actorID), "status", updated.Status)
	s.published(ctx, messaging.SubjectRespondIncidentsUpdated,
		s.events.PublishIncidentUpdated(ctx, incidentEvent(updated, actorID), closed))
	return updated, nil
}

// GetIOCs returns the indicator links of caseIDs created within timeFrame,
// each merged with its indicator. Link order is preserved.
func (s *IncidentService) GetIOCs(ctx context.Context, caseIDs []int64, timeFrame string) ([]models.IOCRecord, error) {
	if len(caseIDs) == 0 {
		return nil, badRequest("caseIds", "caseIds is required")
	}

	links, err := s.indicators.LinksForCases(ctx, caseIDs, s.resolver.Resolve(timeFrame))
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching IOCs.")
	}

	seen := make(map[int64]struct{}, len(links))
	ids := make([]int64, 0, len(links))
	for _, l := range links {
		if _, ok := seen[l.IOCID]; ok {
			continue
		}
		seen[l.IOCID] = struct{}{}
		ids = append(ids, l.IOCID)
	}

	inds, err := s.indicators.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching IOCs.")
	}
	byID := make(map[int64]*models.Indicator, len(inds))
	for i := range inds {
		byID[inds[i].IOCID] = &inds[i]
	}

	out := make([]models.IOCRecord, 0, len(links))
	for _, l := range links {
		out = append(out, models.MergeIOC(l, byID[l.IOCID]))
	}
	return out, nil
}

func incidentEvent(inc *models.Incident, actorID int64) *natsevents.IncidentEvent {
	ev := &natsevents.IncidentEvent{
		CaseID:    inc.CaseID,
		CompanyID: inc.CompanyID,
		Title:     inc.Title,
		Status:    inc.Status,
		Assignee:  inc.Assignee,
		OpenedAt:  inc.OpenedAt,
		ClosedAt:  inc.ClosedAt,
		ActorID:   actorID,
	}
	if inc.Priority != nil {
		ev.Priority = *inc.Priority
	}
	return ev
}
