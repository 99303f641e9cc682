package service

import (
	"context"
	"strings"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/common/messaging"
	"github.com/axisir/axisir-stack/respond/internal/metrics"
	"github.com/axisir/axisir-stack/respond/internal/models"
	natsevents "github.com/axisir/axisir-stack/respond/internal/nats"
	"github.com/axisir/axisir-stack/respond/internal/timeframe"
)

// IndicatorService handles indicators of compromise and their links.
type IndicatorService struct {
	*core
	tx         TxRunner
	indicators IndicatorStore
	resolver   *timeframe.Resolver
}

// List returns indicators created within timeFrame, newest first.
func (s *IndicatorService) List(ctx context.Context, timeFrame string) ([]models.Indicator, error) {
	out, err := s.indicators.List(ctx, s.resolver.Resolve(timeFrame))
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching indicators.")
	}
	return out, nil
}

func (s *IndicatorService) GetByID(ctx context.Context, iocID int64) (*models.Indicator, error) {
	out, err := s.indicators.GetByID(ctx, iocID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching indicator.")
	}
	return out, nil
}

// Create writes the indicator and its first link in one transaction.
func (s *IndicatorService) Create(ctx context.Context, req *models.CreateIndicatorRequest, actorID int64) (*models.IndicatorCreated, error) {
	if strings.TrimSpace(req.Type) == "" {
		return nil, badRequest("type", "type is required")
	}
	if strings.TrimSpace(req.Value) == "" {
		return nil, badRequest("value", "value is required")
	}

	var out models.IndicatorCreated
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ind, err := s.indicators.Create(ctx, &models.Indicator{
			Type:           req.Type,
			Value:          req.Value,
			Classification: req.Classification,
			Priority:       req.Priority,
			ClassifiedBy:   req.ClassifiedBy,
			MetaData:       req.MetaData,
			DetectedAt:     req.DetectedAt,
			TLP:            req.TLP,
		})
		if err != nil {
			return err
		}

		linkedBy := req.ClassifiedBy
		if linkedBy == nil && actorID != 0 {
			linkedBy = &actorID
		}
		value := ind.Value
		link, err := s.indicators.CreateLink(ctx, &models.IndicatorLink{
			IOCID:       ind.IOCID,
			CaseID:      req.CaseID,
			AssetID:     req.AssetID,
			LinkType:    req.LinkType,
			Value:       &value,
			LinkedBy:    linkedBy,
			MetaData:    req.MetaData,
			TLP:         req.TLP,
			AttackPhase: req.AttackPhase,
			Confidence:  req.Confidence,
		})
		if err != nil {
			return err
		}
		out = models.IndicatorCreated{Indicator: *ind, Link: *link}
		return nil
	})
	if err != nil {
		return nil, fromRepo(err, "An error occurred while creating indicator.")
	}

	metrics.IndicatorsLinked.Inc()
	s.logger.InfoContext(ctx, "indicator created",
		logging.IOCID(out.Indicator.IOCID), "link_id", out.Link.LinkID, logging.UserID(actorID))

	ev := &natsevents.IndicatorLinkedEvent{
		IOCID:    out.Indicator.IOCID,
		LinkID:   out.Link.LinkID,
		CaseID:   out.Link.CaseID,
		AssetID:  out.Link.AssetID,
		Type:     out.Indicator.Type,
		Value:    out.Indicator.Value,
		LinkedAt: out.Link.CreatedAt,
	}
	if out.Link.LinkType != nil {
		ev.LinkType = *out.Link.LinkType
	}
	s.published(ctx, messaging.SubjectRespondIndicatorsLinked, s.events.PublishIndicatorLinked(ctx, ev))
	return &out, nil
}

// Update merges the supplied fields into the stored indicator.
func (s *IndicatorService) Update(ctx context.Context, req *models.UpdateIndicatorRequest) (*models.Indicator, error) {
	if req.IOCID == 0 {
		return nil, badRequest("iocId", "iocId is required")
	}
	ind, err := s.indicators.GetByID(ctx, int64(req.IOCID))
	if err != nil {
		return nil, fromRepo(err, "An error occurred while updating indicator.")
	}

	if req.Type != nil {
		ind.Type = *req.Type
	}
	if req.Value != nil {
		ind.Value = *req.Value
	}
	if req.Classification != nil {
		ind.Classification = req.Classification
	}
	if req.Priority != nil {
		ind.Priority = req.Priority
	}
	if req.ClassifiedBy != nil {
		ind.ClassifiedBy = req.ClassifiedBy
	}
	if len(req.MetaData) > 0 {
		ind.MetaData = req.MetaData
	}
	if req.DetectedAt != nil {
		ind.DetectedAt = req.DetectedAt
	}
	if req.TLP != nil {
		ind.TLP = req.TLP
	}

	out, err := s.indicators.Update(ctx, ind)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while updating indicator.")
	}
	return out, nil
}

// DeleteLinks removes every link of iocID and returns how many were deleted.
func (s *IndicatorService) DeleteLinks(ctx context.Context, iocID int64) (int64, error) {
	n, err := s.indicators.DeleteLinks(ctx, iocID)
	if err != nil {
		return 0, fromRepo(err, "An error occurred while deleting indicator.")
	}
	s.logger.InfoContext(ctx, "indicator links deleted", logging.IOCID(iocID), "rows", n)
	return n, nil
}
