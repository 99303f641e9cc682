package service

import (
	"context"
	"errors"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/respond/internal/membership"
	"github.com/axisir/axisir-stack/respond/internal/models"
	natsevents "github.com/axisir/axisir-stack/respond/internal/nats"
	"github.com/axisir/axisir-stack/respond/internal/repository"
	"github.com/axisir/axisir-stack/respond/internal/timeframe"
	"github.com/axisir/axisir-stack/respond/internal/tokens"
)

var (
	testNow      = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	errInjected  = errors.New("injected failure")
	roleAdminID  = int64(1)
	roleAnalyst  = int64(2)
	testPassword = "s3cret-pass"
)

// memDB is an in-memory stand-in for the respond schema.
type memDB struct {
	mu  sync.Mutex
	seq int64

	companies  map[int64]*models.Company
	users      map[int64]*models.User
	roles      []models.Role
	grants     []models.UserRole
	invites    []models.InvitedUser
	tokens     map[string]int64
	assets     map[int64]*models.Asset
	groups     map[int64]*models.AssetGroup
	assigns    []models.AssetGroupAssign
	incidents  map[int64]*models.Incident
	indicators map[int64]*models.Indicator
	links      []models.IndicatorLink
	tasks      map[int64]*models.Task
	reports    []models.Report

	failGrantFor map[int64]bool
	failLink     bool
}

func newMemDB() *memDB {
	return &memDB{
		companies:  map[int64]*models.Company{},
		users:      map[int64]*models.User{},
		roles:      []models.Role{{RoleID: roleAdminID, Name: "ADMIN"}, {RoleID: roleAnalyst, Name: "ANALYST"}},
		tokens:     map[string]int64{},
		assets:     map[int64]*models.Asset{},
		groups:     map[int64]*models.AssetGroup{},
		incidents:  map[int64]*models.Incident{},
		indicators: map[int64]*models.Indicator{},
		tasks:      map[int64]*models.Task{},

		failGrantFor: map[int64]bool{},
	}
}

func (db *memDB) next() int64 {
	db.seq++
	return db.seq
}

type memCompanies struct{ *memDB }

func (s memCompanies) Create(_ context.Context, c *models.Company) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.companies {
		if existing.CIN == c.CIN {
			return nil, repository.ErrCompanyExists
		}
	}
	out := *c
	out.CompanyID = s.next()
	out.CreatedAt, out.UpdatedAt = testNow, testNow
	s.companies[out.CompanyID] = &out
	return &out, nil
}

func (s memCompanies) GetByID(_ context.Context, id int64) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, repository.ErrCompanyNotFound
	}
	out := *c
	return &out, nil
}

func (s memCompanies) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.companies[id]
	return ok, nil
}

func (s memCompanies) ListForUser(_ context.Context, userID int64) ([]models.CompanyMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CompanyMembership{}
	for _, g := range s.grants {
		if g.UserID == userID {
			out = append(out, models.CompanyMembership{Company: *s.companies[g.CompanyID], RoleID: g.RoleID, RoleName: g.RoleName})
		}
	}
	return out, nil
}

type memUsers struct{ *memDB }

func (s memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return nil, repository.ErrUsernameExists
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, repository.ErrEmailExists
		}
	}
	out := *u
	out.UserID = s.next()
	out.IsActive = true
	out.CreatedAt, out.UpdatedAt = testNow, testNow
	s.users[out.UserID] = &out
	cp := out
	return &cp, nil
}

func (s memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s memUsers) find(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Username == username })
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s memUsers) Update(_ context.Context, id int64, upd repository.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.Password = *upd.PasswordHash
	}
	if upd.FirstName != nil {
		u.FirstName = upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = upd.LastName
	}
	if upd.Position != nil {
		u.Position = upd.Position
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	out := *u
	return &out, nil
}

func (s memUsers) ListByCompany(_ context.Context, companyID int64) ([]models.CompanyUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.CompanyUser{}
	for _, g := range s.grants {
		if g.CompanyID == companyID {
			u := s.users[g.UserID]
			out = append(out, models.CompanyUser{UserSummary: u.Summary(), IsActive: u.IsActive, RoleID: g.RoleID, RoleName: g.RoleName})
		}
	}
	return out, nil
}

func (s memUsers) ListRoles(context.Context) ([]models.Role, error) {
	return slices.Clone(s.roles), nil
}

func (s memUsers) GetRole(_ context.Context, roleID int64) (*models.Role, error) {
	for _, r := range s.roles {
		if r.RoleID == roleID {
			out := r
			return &out, nil
		}
	}
	return nil, repository.ErrRoleNotFound
}

func (s memUsers) GetRoleByName(_ context.Context, name string) (*models.Role, error) {
	for _, r := range s.roles {
		if r.Name == name {
			out := r
			return &out, nil
		}
	}
	return nil, repository.ErrRoleNotFound
}

func (s memUsers) RolesForUser(_ context.Context, userID int64) ([]models.UserRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.UserRole{}
	for _, g := range s.grants {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s memUsers) RoleInCompany(_ context.Context, userID, companyID int64) (*models.UserRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.grants {
		if g.UserID == userID && g.CompanyID == companyID {
			out := g
			return &out, nil
		}
	}
	return nil, repository.ErrRoleNotFound
}

func (s memUsers) GrantRole(ctx context.Context, companyID, roleID, userID int64) (int64, error) {
	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return 0, repository.ErrReferenceNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGrantFor[companyID] {
		return 0, errInjected
	}
	g := models.UserRole{ID: s.next(), CompanyID: companyID, RoleID: roleID, UserID: userID, RoleName: role.Name}
	s.grants = append(s.grants, g)
	return g.ID, nil
}

func (s memUsers) ChangeRole(_ context.Context, companyID, userID, roleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.grants {
		if s.grants[i].CompanyID == companyID && s.grants[i].UserID == userID {
			s.grants[i].RoleID = roleID
			n++
		}
	}
	if n == 0 {
		return repository.ErrRoleNotFound
	}
	return nil
}

func (s memUsers) CreateInvitation(_ context.Context, email string, roleID, companyID int64) (*models.InvitedUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := models.InvitedUser{ID: s.next(), Email: strings.ToLower(email), RoleID: roleID, CompanyID: companyID, CreatedAt: testNow}
	s.invites = append(s.invites, inv)
	return &inv, nil
}

func (s memUsers) PendingInvitations(_ context.Context, email string) ([]models.InvitedUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.InvitedUser{}
	for _, inv := range s.invites {
		if strings.EqualFold(inv.Email, email) && !inv.Registered {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s memUsers) MarkInvitationRegistered(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invites {
		if s.invites[i].ID == id {
			s.invites[i].Registered = true
		}
	}
	return nil
}

type memTokens struct{ *memDB }

func (s memTokens) Save(_ context.Context, token string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return nil
}

func (s memTokens) Find(_ context.Context, token string) (*models.WhitelistedToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.tokens[token]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	return &models.WhitelistedToken{Token: token, UserID: uid}, nil
}

func (s memTokens) Delete(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token]; !ok {
		return 0, nil
	}
	delete(s.tokens, token)
	return 1, nil
}

type memAssets struct{ *memDB }

func (s memAssets) Create(_ context.Context, a *models.Asset) (*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *a
	out.AssetID = s.next()
	out.CreatedAt, out.UpdatedAt = testNow, testNow
	s.assets[out.AssetID] = &out
	cp := out
	return &cp, nil
}

func (s memAssets) Update(_ context.Context, id int64, req *models.SaveAssetRequest) (*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, repository.ErrAssetNotFound
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Status != nil {
		a.Status = req.Status
	}
	out := *a
	return &out, nil
}

func (s memAssets) GetByID(_ context.Context, id int64) (*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, repository.ErrAssetNotFound
	}
	out := *a
	return &out, nil
}

func (s memAssets) filter(match func(*models.Asset) bool) []models.Asset {
	out := []models.Asset{}
	for _, a := range s.assets {
		if match(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out
}

func (s memAssets) ListByCompany(_ context.Context, companyID int64) ([]models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(a *models.Asset) bool { return a.CompanyID != nil && *a.CompanyID == companyID }), nil
}

func (s memAssets) ListInfected(_ context.Context, companyID int64) ([]models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(a *models.Asset) bool {
		if a.CompanyID == nil || *a.CompanyID != companyID {
			return false
		}
		for _, l := range s.links {
			if l.AssetID != nil && *l.AssetID == a.AssetID {
				return true
			}
		}
		return false
	}), nil
}

func (s memAssets) ListByGroup(_ context.Context, groupID int64) ([]models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(a *models.Asset) bool {
		for _, row := range s.assigns {
			if row.AssetGroupID == groupID && row.AssetID == a.AssetID {
				return true
			}
		}
		return a.AssetGroupID != nil && membership.Matches(groupID, *a.AssetGroupID)
	}), nil
}

func (s memAssets) GroupIDs(_ context.Context, assetID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int64
	for _, row := range s.assigns {
		if row.AssetID == assetID && !slices.Contains(out, row.AssetGroupID) {
			out = append(out, row.AssetGroupID)
		}
	}
	return out, nil
}

func (s memAssets) ClearGroups(_ context.Context, assetID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.assigns)
	s.assigns = slices.DeleteFunc(s.assigns, func(row models.AssetGroupAssign) bool { return row.AssetID == assetID })
	return int64(before - len(s.assigns)), nil
}

func (s memAssets) AddGroups(_ context.Context, assetID int64, groupIDs []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range groupIDs {
		s.assigns = append(s.assigns, models.AssetGroupAssign{ID: s.next(), AssetGroupID: g, AssetID: assetID})
	}
	return int64(len(groupIDs)), nil
}

func (s memAssets) SetLegacyGroups(_ context.Context, assetID int64, groupIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.assets[assetID]; ok {
		a.AssetGroupID = membership.Column(groupIDs)
	}
	return nil
}

func (s memAssets) Assign(_ context.Context, groupID, assetID int64) (*models.AssetGroupAssign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := models.AssetGroupAssign{ID: s.next(), AssetGroupID: groupID, AssetID: assetID}
	s.assigns = append(s.assigns, row)
	return &row, nil
}

func (s memAssets) Unassign(_ context.Context, groupID, assetID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.assigns)
	s.assigns = slices.DeleteFunc(s.assigns, func(row models.AssetGroupAssign) bool {
		return row.AssetGroupID == groupID && row.AssetID == assetID
	})
	return int64(before - len(s.assigns)), nil
}

func (s memAssets) CreateGroup(_ context.Context, g *models.AssetGroup) (*models.AssetGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *g
	out.AssetGroupID = s.next()
	out.CreatedAt = testNow
	s.groups[out.AssetGroupID] = &out
	cp := out
	return &cp, nil
}

func (s memAssets) GetGroup(_ context.Context, id int64) (*models.AssetGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, repository.ErrAssetGroupNotFound
	}
	out := *g
	return &out, nil
}

func (s memAssets) ListGroups(_ context.Context, companyID int64) ([]models.AssetGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.AssetGroup{}
	for _, g := range s.groups {
		if g.CompanyID == companyID {
			out = append(out, *g)
		}
	}
	return out, nil
}

type memIncidents struct{ *memDB }

func (s memIncidents) Create(_ context.Context, inc *models.Incident) (*models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[inc.CompanyID]; !ok {
		return nil, repository.ErrReferenceNotFound
	}
	out := *inc
	out.CaseID = s.next()
	out.CreatedAt, out.UpdatedAt = testNow, testNow
	s.incidents[out.CaseID] = &out
	cp := out
	return &cp, nil
}

func (s memIncidents) Update(_ context.Context, inc *models.Incident) (*models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incidents[inc.CaseID]; !ok {
		return nil, repository.ErrIncidentNotFound
	}
	out := *inc
	s.incidents[inc.CaseID] = &out
	cp := out
	return &cp, nil
}

func (s memIncidents) GetByID(_ context.Context, id int64) (*models.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc, ok := s.incidents[id]
	if !ok {
		return nil, repository.ErrIncidentNotFound
	}
	out := *inc
	return &out, nil
}

func (s memIncidents) ListByCompany(_ context.Context, companyID int64, w timeframe.Window) ([]models.IncidentSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.IncidentSummary{}
	for _, inc := range s.incidents {
		if inc.CompanyID != companyID || !w.Contains(inc.OpenedAt) {
			continue
		}
		row := models.IncidentSummary{Incident: *inc}
		if inc.Assignee != nil {
			if u, ok := s.users[*inc.Assignee]; ok {
				name := models.DisplayName(u.Username, u.FirstName, u.LastName)
				row.AssigneeName = &name
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return out, nil
}

type memIndicators struct{ *memDB }

func (s memIndicators) Create(_ context.Context, ind *models.Indicator) (*models.Indicator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *ind
	out.IOCID = s.next()
	out.CreatedAt, out.UpdatedAt = testNow, testNow
	s.indicators[out.IOCID] = &out
	cp := out
	return &cp, nil
}

func (s memIndicators) Update(_ context.Context, ind *models.Indicator) (*models.Indicator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indicators[ind.IOCID]; !ok {
		return nil, repository.ErrIndicatorNotFound
	}
	out := *ind
	s.indicators[ind.IOCID] = &out
	cp := out
	return &cp, nil
}

func (s memIndicators) GetByID(_ context.Context, id int64) (*models.Indicator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ind, ok := s.indicators[id]
	if !ok {
		return nil, repository.ErrIndicatorNotFound
	}
	out := *ind
	return &out, nil
}

func (s memIndicators) List(_ context.Context, w timeframe.Window) ([]models.Indicator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Indicator{}
	for _, ind := range s.indicators {
		if w.Contains(ind.CreatedAt) {
			out = append(out, *ind)
		}
	}
	return out, nil
}

func (s memIndicators) ListByIDs(_ context.Context, ids []int64) ([]models.Indicator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Indicator{}
	for _, id := range ids {
		if ind, ok := s.indicators[id]; ok {
			out = append(out, *ind)
		}
	}
	return out, nil
}

func (s memIndicators) CreateLink(_ context.Context, l *models.IndicatorLink) (*models.IndicatorLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLink {
		return nil, errInjected
	}
	out := *l
	out.LinkID = s.next()
	out.CreatedAt = testNow
	s.links = append(s.links, out)
	return &out, nil
}

func (s memIndicators) LinksForCases(_ context.Context, caseIDs []int64, w timeframe.Window) ([]models.IndicatorLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.IndicatorLink{}
	for _, l := range s.links {
		if l.CaseID != nil && slices.Contains(caseIDs, *l.CaseID) && w.Contains(l.CreatedAt) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s memIndicators) DeleteLinks(_ context.Context, iocID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.links)
	s.links = slices.DeleteFunc(s.links, func(l models.IndicatorLink) bool { return l.IOCID == iocID })
	n := int64(before - len(s.links))
	if n == 0 {
		return 0, repository.ErrLinkNotFound
	}
	return n, nil
}

type memTasks struct{ *memDB }

func (s memTasks) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *t
	out.TaskID = s.next()
	out.CreatedAt, out.UpdatedAt = testNow, testNow
	s.tasks[out.TaskID] = &out
	cp := out
	return &cp, nil
}

func (s memTasks) Update(_ context.Context, req *models.UpdateTaskRequest) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[int64(req.TaskID)]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Status != nil {
		t.Status = req.Status
	}
	out := *t
	return &out, nil
}

func (s memTasks) detail(t *models.Task) models.TaskDetail {
	d := models.TaskDetail{Task: *t}
	if t.CaseID != nil {
		if inc, ok := s.incidents[*t.CaseID]; ok {
			d.IncidentTitle = &inc.Title
		}
	}
	if t.AssetID != nil {
		if a, ok := s.assets[*t.AssetID]; ok {
			d.AssetName = &a.Name
		}
	}
	return d
}

func (s memTasks) GetByID(_ context.Context, id int64) (*models.TaskDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	d := s.detail(t)
	return &d, nil
}

func (s memTasks) ListByCases(_ context.Context, caseIDs []int64) ([]models.TaskDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.TaskDetail{}
	for _, t := range s.tasks {
		if t.CaseID != nil && slices.Contains(caseIDs, *t.CaseID) {
			out = append(out, s.detail(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out, nil
}

type memReports struct{ *memDB }

func (s memReports) Create(_ context.Context, rep *models.Report) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *rep
	out.ReportID = s.next()
	out.CreatedAt = testNow
	s.reports = append(s.reports, out)
	return &out, nil
}

func (s memReports) GetByID(_ context.Context, id int64) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.ReportID == id {
			out := r
			return &out, nil
		}
	}
	return nil, repository.ErrReportNotFound
}

func (s memReports) List(_ context.Context, companyID *int64) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Report{}
	for _, r := range s.reports {
		if companyID == nil || r.CompanyID == *companyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s memReports) ListByCase(_ context.Context, caseID int64) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Report{}
	for _, r := range s.reports {
		if r.CaseID != nil && *r.CaseID == caseID {
			out = append(out, r)
		}
	}
	return out, nil
}

// countingTx runs fn inline and counts transactions.
type countingTx struct {
	mu   sync.Mutex
	runs int
}

func (t *countingTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.runs++
	t.mu.Unlock()
	return fn(ctx)
}

type recordedEvent struct {
	subject string
	payload any
}

type recordingEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingEvents) add(subject string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{subject, payload})
	return nil
}

func (r *recordingEvents) subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.subject
	}
	return out
}

func (r *recordingEvents) PublishIncidentCreated(_ context.Context, ev *natsevents.IncidentEvent) error {
	return r.add("respond.incidents.created", ev)
}

func (r *recordingEvents) PublishIncidentUpdated(_ context.Context, ev *natsevents.IncidentEvent, closed bool) error {
	if err := r.add("respond.incidents.updated", ev); err != nil {
		return err
	}
	if closed {
		return r.add("respond.incidents.closed", ev)
	}
	return nil
}

func (r *recordingEvents) PublishIndicatorLinked(_ context.Context, ev *natsevents.IndicatorLinkedEvent) error {
	return r.add("respond.indicators.linked", ev)
}

func (r *recordingEvents) PublishAssetGrouped(_ context.Context, ev *natsevents.AssetGroupedEvent) error {
	return r.add("respond.assets.grouped", ev)
}

// fixture wires a Service to a fresh memDB.
type fixture struct {
	db     *memDB
	tx     *countingTx
	events *recordingEvents
	svc    *Service
}

func newFixture() *fixture {
	db := newMemDB()
	f := &fixture{db: db, tx: &countingTx{}, events: &recordingEvents{}}
	clock := func() time.Time { return testNow }
	f.svc = NewService(Deps{
		Tx:         f.tx,
		Companies:  memCompanies{db},
		Users:      memUsers{db},
		Tokens:     memTokens{db},
		Assets:     memAssets{db},
		Incidents:  memIncidents{db},
		Indicators: memIndicators{db},
		Tasks:      memTasks{db},
		Reports:    memReports{db},
		Events:     f.events,
		Resolver:   timeframe.NewResolverWithClock(time.UTC, clock),
		TokenGen:   tokens.NewGenerator("test-secret", time.Hour),
		BcryptCost: bcrypt.MinCost,
		Logger:     logging.NewWithWriter(io.Discard, logging.ParseLevel("error"), "json"),
		Now:        clock,
	})
	return f
}

func (f *fixture) company(cin string) *models.Company {
	c, _ := memCompanies{f.db}.Create(context.Background(), &models.Company{CIN: cin, Name: "Company " + cin, IsActive: true})
	return c
}

func (f *fixture) user(username, email string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	u, _ := memUsers{f.db}.Create(context.Background(), &models.User{Username: username, Email: email, Password: string(hash)})
	return u
}

func (f *fixture) grant(companyID, roleID, userID int64) {
	_, _ = memUsers{f.db}.GrantRole(context.Background(), companyID, roleID, userID)
}

func ptr[T any](v T) *T { return &v }
