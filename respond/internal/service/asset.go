package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/common/messaging"
	"github.com/axisir/axisir-stack/respond/internal/membership"
	"github.com/axisir/axisir-stack/respond/internal/metrics"
	"github.com/axisir/axisir-stack/respond/internal/models"
	natsevents "github.com/axisir/axisir-stack/respond/internal/nats"
	"github.com/axisir/axisir-stack/respond/internal/repository"
)

// AssetService handles assets, asset groups and group membership.
type AssetService struct {
	*core
	tx        TxRunner
	assets    AssetStore
	companies CompanyStore
}

func (s *AssetService) ListByCompany(ctx context.Context, companyID int64) ([]models.Asset, error) {
	if err := requireCompany(ctx, s.companies, companyID); err != nil {
		return nil, err
	}
	out, err := s.assets.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching assets.")
	}
	return out, nil
}

// ListInfected returns the company's assets that have at least one indicator link.
func (s *AssetService) ListInfected(ctx context.Context, companyID int64) ([]models.Asset, error) {
	if err := requireCompany(ctx, s.companies, companyID); err != nil {
		return nil, err
	}
	out, err := s.assets.ListInfected(ctx, companyID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching infected assets.")
	}
	return out, nil
}

func (s *AssetService) ListGroups(ctx context.Context, companyID int64) ([]models.AssetGroup, error) {
	if err := requireCompany(ctx, s.companies, companyID); err != nil {
		return nil, err
	}
	out, err := s.assets.ListGroups(ctx, companyID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching asset groups.")
	}
	return out, nil
}

// ListByGroup returns the members of groupID.
func (s *AssetService) ListByGroup(ctx context.Context, groupID int64) ([]models.Asset, error) {
	if _, err := s.assets.GetGroup(ctx, groupID); err != nil {
		return nil, fromRepo(err, "An error occurred while fetching assets.")
	}
	out, err := s.assets.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching assets.")
	}
	return out, nil
}

// GetByID returns the asset and the ids of the groups it belongs to.
func (s *AssetService) GetByID(ctx context.Context, assetID int64) (*models.AssetDetail, error) {
	a, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching asset.")
	}
	groups, err := s.assets.GroupIDs(ctx, assetID)
	if err != nil {
		return nil, fromRepo(err, "An error occurred while fetching asset.")
	}
	if groups == nil {
		groups = []int64{}
	}
	return &models.AssetDetail{Asset: *a, Groups: groups}, nil
}

// Create inserts an asset. When an encoded group list is supplied and parses,
// one assignment row is added per id. A malformed list is reported as a
// warning and the asset is created without groups.
func (s *AssetService) Create(ctx context.Context, req *models.SaveAssetRequest) (*models.AssetWriteResult, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, badRequest("name", "name is required")
	}
	ids, grouped, parseErr := parseGroups(req.AssetGroupID)

	res := &models.AssetWriteResult{Groups: []int64{}}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		a := &models.Asset{
			CompanyID:       req.CompanyID,
			ParentAssetID:   req.ParentAssetID,
			Name:            *req.Name,
			Type:            req.Type,
			OperatingSystem: req.OperatingSystem,
			Status:          req.Status,
			Priority:        req.Priority,
			MetaData:        req.MetaData,
			TLP:             req.TLP,
			LastHeartbeat:   req.LastHeartbeat,
		}
		if grouped {
			a.AssetGroupID = membership.Column(ids)
		}
		created, err := s.assets.Create(ctx, a)
		if err != nil {
			return err
		}
		res.AssetID = created.AssetID
		if grouped {
			return s.addGroups(ctx, res, ids)
		}
		return nil
	})
	if err != nil {
		return nil, fromRepo(err, "An error occurred while creating asset.")
	}
	if parseErr != nil {
		s.groupListWarning(ctx, res, req.AssetGroupID, parseErr)
	}
	if grouped {
		s.publishGrouped(ctx, res)
	}
	s.logger.InfoContext(ctx, "asset created", logging.AssetID(res.AssetID), "groups", len(res.Groups))
	return res, nil
}

// Update writes the supplied fields. A parseable group list replaces the
// asset's assignment rows; a malformed one leaves them untouched.
func (s *AssetService) Update(ctx context.Context, req *models.SaveAssetRequest) (*models.AssetWriteResult, error) {
	if req.AssetID == 0 {
		return nil, badRequest("assetId", "assetId is required")
	}
	ids, grouped, parseErr := parseGroups(req.AssetGroupID)

	res := &models.AssetWriteResult{AssetID: int64(req.AssetID), Groups: []int64{}}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.assets.Update(ctx, res.AssetID, req); err != nil {
			return err
		}
		if !grouped {
			return nil
		}
		if _, err := s.assets.ClearGroups(ctx, res.AssetID); err != nil {
			return err
		}
		if err := s.addGroups(ctx, res, ids); err != nil {
			return err
		}
		return s.assets.SetLegacyGroups(ctx, res.AssetID, ids)
	})
	if err != nil {
		return nil, fromRepo(err, "An error occurred while updating asset.")
	}
	if parseErr != nil {
		s.groupListWarning(ctx, res, req.AssetGroupID, parseErr)
	}
	if grouped {
		s.publishGrouped(ctx, res)
	}
	s.logger.InfoContext(ctx, "asset updated", logging.AssetID(res.AssetID), "groups", len(res.Groups))
	return res, nil
}

// parseGroups decodes an optional encoded list. grouped reports whether the
// list was supplied and parsed.
func parseGroups(encoded *models.EncodedGroups) (ids []int64, grouped bool, err error) {
	if encoded == nil {
		return nil, false, nil
	}
	ids, err = membership.Parse(string(*encoded))
	if err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

func (s *AssetService) addGroups(ctx context.Context, res *models.AssetWriteResult, ids []int64) error {
	if _, err := s.assets.AddGroups(ctx, res.AssetID, ids); err != nil {
		return err
	}
	if ids != nil {
		res.Groups = ids
	}
	metrics.GroupAssignments.WithLabelValues("add").Add(float64(len(ids)))
	return nil
}

func (s *AssetService) groupListWarning(ctx context.Context, res *models.AssetWriteResult, encoded *models.EncodedGroups, err error) {
	metrics.GroupListParseFailures.Inc()
	s.logger.WarnContext(ctx, "ignoring malformed asset group list",
		logging.AssetID(res.AssetID), "asset_group_id", string(*encoded), logging.Error(err))
	res.Warnings = append(res.Warnings, fmt.Sprintf("assetGroupId %q could not be parsed; group assignments were not changed", string(*encoded)))
}

func (s *AssetService) publishGrouped(ctx context.Context, res *models.AssetWriteResult) {
	s.published(ctx, messaging.SubjectRespondAssetsGrouped,
		s.events.PublishAssetGrouped(ctx, &natsevents.AssetGroupedEvent{AssetID: res.AssetID, GroupIDs: res.Groups}))
}

func (s *AssetService) CreateGroup(ctx context.Context, req *models.CreateAssetGroupRequest) (*models.AssetGroup, error) {
	if req.CompanyID == 0 {
		return nil, badRequest("companyId", "companyId is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, badRequest("title", "title is required")
	}
	g, err := s.assets.CreateGroup(ctx, &models.AssetGroup{
		CompanyID:   int64(req.CompanyID),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return nil, fromRepo(err, "An error occurred while creating asset group.")
	}
	return g, nil
}

// AssignToGroup inserts an assignment row, or deletes every matching row
// when IsRemove is set. Removing an absent assignment succeeds. Duplicate
// inserts are not checked. Groups named only in the asset's encoded column are
// first copied into the join table, and the column is rewritten afterwards.
func (s *AssetService) AssignToGroup(ctx context.Context, req *models.AssignAssetToGroupRequest) (*models.AssetGroupAssign, error) {
	if req.AssetGroupID == 0 {
		return nil, badRequest("assetGroupId", "assetGroupId is required")
	}
	if req.AssetID == 0 {
		return nil, badRequest("assetId", "assetId is required")
	}
	groupID, assetID := int64(req.AssetGroupID), int64(req.AssetID)

	out := &models.AssetGroupAssign{AssetGroupID: groupID, AssetID: assetID}
	var removed int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.adoptLegacyGroups(ctx, assetID); err != nil {
			return err
		}
		if req.IsRemove {
			n, err := s.assets.Unassign(ctx, groupID, assetID)
			if err != nil {
				return err
			}
			removed = n
		} else {
			row, err := s.assets.Assign(ctx, groupID, assetID)
			if err != nil {
				return err
			}
			out = row
		}
		ids, err := s.assets.GroupIDs(ctx, assetID)
		if err != nil {
			return err
		}
		return s.assets.SetLegacyGroups(ctx, assetID, ids)
	})
	if err != nil {
		return nil, fromRepo(err, "An error occurred while updating asset group.")
	}

	if req.IsRemove {
		metrics.GroupAssignments.WithLabelValues("remove").Add(float64(removed))
		s.logger.InfoContext(ctx, "asset removed from group", logging.AssetID(assetID), "asset_group_id", groupID, "rows", removed)
	} else {
		metrics.GroupAssignments.WithLabelValues("add").Inc()
		s.logger.InfoContext(ctx, "asset added to group", logging.AssetID(assetID), "asset_group_id", groupID)
	}

	s.published(ctx, messaging.SubjectRespondAssetsGrouped,
		s.events.PublishAssetGrouped(ctx, &natsevents.AssetGroupedEvent{
			AssetID: assetID, GroupIDs: []int64{groupID}, Removed: req.IsRemove,
		}))
	return out, nil
}

// adoptLegacyGroups adds join rows for groups listed in the asset's encoded
// column but missing from asset_group_assign. Unknown assets and unparseable
// columns are left alone.
func (s *AssetService) adoptLegacyGroups(ctx context.Context, assetID int64) error {
	a, err := s.assets.GetByID(ctx, assetID)
	if errors.Is(err, repository.ErrAssetNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if a.AssetGroupID == nil {
		return nil
	}
	legacy, err := membership.Parse(*a.AssetGroupID)
	if err != nil || len(legacy) == 0 {
		return nil
	}
	have, err := s.assets.GroupIDs(ctx, assetID)
	if err != nil {
		return err
	}
	var missing []int64
	for _, id := range legacy {
		if !slices.Contains(have, id) && !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	_, err = s.assets.AddGroups(ctx, assetID, missing)
	return err
}

// requireCompany returns NotFound unless companyID exists.
func requireCompany(ctx context.Context, companies CompanyStore, companyID int64) error {
	ok, err := companies.Exists(ctx, companyID)
	if err != nil {
		return fromRepo(err, "An error occurred while fetching company.")
	}
	if !ok {
		return notFound("Company not found", repository.ErrCompanyNotFound)
	}
	return nil
}
