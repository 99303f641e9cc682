package service

import (
	"context"

	"github.com/axisir/axisir-stack/respond/internal/models"
	natsevents "github.com/axisir/axisir-stack/respond/internal/nats"
	"github.com/axisir/axisir-stack/respond/internal/repository"
	"github.com/axisir/axisir-stack/respond/internal/timeframe"
)

// The store interfaces are the subsets of the repository each service uses.
// *repository.XRepo satisfies each of them.

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type CompanyStore interface {
	Create(ctx context.Context, c *models.Company) (*models.Company, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]models.CompanyMembership, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id int64, upd repository.UserUpdate) (*models.User, error)
	ListByCompany(ctx context.Context, companyID int64) ([]models.CompanyUser, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	GetRole(ctx context.Context, roleID int64) (*models.Role, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	RolesForUser(ctx context.Context, userID int64) ([]models.UserRole, error)
	RoleInCompany(ctx context.Context, userID, companyID int64) (*models.UserRole, error)
	GrantRole(ctx context.Context, companyID, roleID, userID int64) (int64, error)
	ChangeRole(ctx context.Context, companyID, userID, roleID int64) error
	CreateInvitation(ctx context.Context, email string, roleID, companyID int64) (*models.InvitedUser, error)
	PendingInvitations(ctx context.Context, email string) ([]models.InvitedUser, error)
	MarkInvitationRegistered(ctx context.Context, id int64) error
}

type TokenStore interface {
	Save(ctx context.Context, token string, userID int64) error
	Find(ctx context.Context, token string) (*models.WhitelistedToken, error)
	Delete(ctx context.Context, token string) (int64, error)
}

type AssetStore interface {
	Create(ctx context.Context, a *models.Asset) (*models.Asset, error)
	Update(ctx context.Context, id int64, req *models.SaveAssetRequest) (*models.Asset, error)
	GetByID(ctx context.Context, id int64) (*models.Asset, error)
	ListByCompany(ctx context.Context, companyID int64) ([]models.Asset, error)
	ListInfected(ctx context.Context, companyID int64) ([]models.Asset, error)
	ListByGroup(ctx context.Context, groupID int64) ([]models.Asset, error)
	GroupIDs(ctx context.Context, assetID int64) ([]int64, error)
	ClearGroups(ctx context.Context, assetID int64) (int64, error)
	AddGroups(ctx context.Context, assetID int64, groupIDs []int64) (int64, error)
	SetLegacyGroups(ctx context.Context, assetID int64, groupIDs []int64) error
	Assign(ctx context.Context, groupID, assetID int64) (*models.AssetGroupAssign, error)
	Unassign(ctx context.Context, groupID, assetID int64) (int64, error)
	CreateGroup(ctx context.Context, g *models.AssetGroup) (*models.AssetGroup, error)
	GetGroup(ctx context.Context, id int64) (*models.AssetGroup, error)
	ListGroups(ctx context.Context, companyID int64) ([]models.AssetGroup, error)
}

type IncidentStore interface {
	Create(ctx context.Context, inc *models.Incident) (*models.Incident, error)
	Update(ctx context.Context, inc *models.Incident) (*models.Incident, error)
	GetByID(ctx context.Context, id int64) (*models.Incident, error)
	ListByCompany(ctx context.Context, companyID int64, w timeframe.Window) ([]models.IncidentSummary, error)
}

type IndicatorStore interface {
	Create(ctx context.Context, ind *models.Indicator) (*models.Indicator, error)
	Update(ctx context.Context, ind *models.Indicator) (*models.Indicator, error)
	GetByID(ctx context.Context, id int64) (*models.Indicator, error)
	List(ctx context.Context, w timeframe.Window) ([]models.Indicator, error)
	ListByIDs(ctx context.Context, ids []int64) ([]models.Indicator, error)
	CreateLink(ctx context.Context, l *models.IndicatorLink) (*models.IndicatorLink, error)
	LinksForCases(ctx context.Context, caseIDs []int64, w timeframe.Window) ([]models.IndicatorLink, error)
	DeleteLinks(ctx context.Context, iocID int64) (int64, error)
}

type TaskStore interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	Update(ctx context.Context, req *models.UpdateTaskRequest) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.TaskDetail, error)
	ListByCases(ctx context.Context, caseIDs []int64) ([]models.TaskDetail, error)
}

type ReportStore interface {
	Create(ctx context.Context, rep *models.Report) (*models.Report, error)
	GetByID(ctx context.Context, id int64) (*models.Report, error)
	List(ctx context.Context, companyID *int64) ([]models.Report, error)
	ListByCase(ctx context.Context, caseID int64) ([]models.Report, error)
}

// Events publishes domain events. Publish failures never fail the operation.
type Events interface {
	PublishIncidentCreated(ctx context.Context, event *natsevents.IncidentEvent) error
	PublishIncidentUpdated(ctx context.Context, event *natsevents.IncidentEvent, closed bool) error
	PublishIndicatorLinked(ctx context.Context, event *natsevents.IndicatorLinkedEvent) error
	PublishAssetGrouped(ctx context.Context, event *natsevents.AssetGroupedEvent) error
}

var (
	_ CompanyStore   = (*repository.CompanyRepo)(nil)
	_ UserStore      = (*repository.UserRepo)(nil)
	_ TokenStore     = (*repository.TokenRepo)(nil)
	_ AssetStore     = (*repository.AssetRepo)(nil)
	_ IncidentStore  = (*repository.IncidentRepo)(nil)
	_ IndicatorStore = (*repository.IndicatorRepo)(nil)
	_ TaskStore      = (*repository.TaskRepo)(nil)
	_ ReportStore    = (*repository.ReportRepo)(nil)
	_ Events         = (*natsevents.Publisher)(nil)
)
