// Package seeder fills a respond database with generated demo data. Every
// record goes through the service layer, so group fan-out, indicator links
// and events behave exactly as they do for API calls.
package seeder

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/respond/internal/models"
	"github.com/axisir/axisir-stack/respond/internal/service"
)

// Options controls how much data is generated.
type Options struct {
	Companies             int
	GroupsPerCompany      int
	AssetsPerCompany      int
	IncidentsPerCompany   int
	IndicatorsPerIncident int
	TasksPerIncident      int

	// Owner is signed up, or logged in when the username is taken, and
	// becomes ADMIN of every generated company.
	OwnerUsername string
	OwnerEmail    string
	OwnerPassword string

	// Seed makes runs reproducible. Zero picks a random seed.
	Seed int64
}

// DefaultOptions returns a small but complete data set.
func DefaultOptions() Options {
	return Options{
		Companies:             2,
		GroupsPerCompany:      2,
		AssetsPerCompany:      5,
		IncidentsPerCompany:   4,
		IndicatorsPerIncident: 2,
		TasksPerIncident:      2,
		OwnerUsername:         "admin",
		OwnerEmail:            "admin@axisir.local",
		OwnerPassword:         "changeme",
	}
}

// Summary counts what a run created.
type Summary struct {
	OwnerID    int64 `json:"ownerId" yaml:"owner_id"`
	Companies  int   `json:"companies" yaml:"companies"`
	Groups     int   `json:"groups" yaml:"groups"`
	Assets     int   `json:"assets" yaml:"assets"`
	Incidents  int   `json:"incidents" yaml:"incidents"`
	Indicators int   `json:"indicators" yaml:"indicators"`
	Tasks      int   `json:"tasks" yaml:"tasks"`
	Warnings   int   `json:"warnings" yaml:"warnings"`
}

var (
	incidentStatuses = []string{"OPEN", "IN_PROGRESS", "ON_HOLD", models.StatusClosed}
	priorities       = []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}
	tlps             = []string{"WHITE", "GREEN", "AMBER", "RED"}
	assetTypes       = []string{"server", "workstation", "firewall", "database", "laptop"}
	osNames          = []string{"Ubuntu 22.04", "Windows Server 2019", "Windows 11", "macOS 14", "RHEL 9"}
	attackPhases     = []string{"reconnaissance", "initial-access", "execution", "persistence", "exfiltration"}
	linkTypes        = []string{"observed", "related", "suspected"}
)

type Seeder struct {
	svc    *service.Service
	logger *logging.Logger
	now    func() time.Time
}

func New(svc *service.Service, logger *logging.Logger) *Seeder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Seeder{svc: svc, logger: logger, now: time.Now}
}

// Run generates the data set described by opts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	faker := gofakeit.New(opts.Seed)
	sum := &Summary{}

	ownerID, err := s.owner(ctx, opts)
	if err != nil {
		return nil, err
	}
	sum.OwnerID = ownerID

	for i := 0; i < opts.Companies; i++ {
		company, err := s.svc.Companies.Create(ctx, &models.CreateCompanyRequest{
			CIN:          fmt.Sprintf("CIN-%s", faker.DigitN(8)),
			Name:         faker.Company(),
			Industry:     ptr(faker.RandomString([]string{"finance", "healthcare", "retail", "energy", "logistics"})),
			Address:      ptr(faker.Street() + ", " + faker.City()),
			PrimaryEmail: ptr(faker.Email()),
			PrimaryPhone: ptr(faker.Phone()),
			Description:  ptr(faker.Sentence(8)),
		}, ownerID)
		if err != nil {
			return sum, fmt.Errorf("create company: %w", err)
		}
		sum.Companies++

		if err := s.seedCompany(ctx, faker, opts, company.CompanyID, ownerID, sum); err != nil {
			return sum, err
		}
	}

	s.logger.InfoContext(ctx, "seed complete",
		"companies", sum.Companies, "assets", sum.Assets, "incidents", sum.Incidents,
		"indicators", sum.Indicators, "tasks", sum.Tasks)
	return sum, nil
}

func (s *Seeder) owner(ctx context.Context, opts Options) (int64, error) {
	res, err := s.svc.Users.Signup(ctx, &models.SignupRequest{
		Username:  opts.OwnerUsername,
		Email:     opts.OwnerEmail,
		Password:  opts.OwnerPassword,
		FirstName: ptr("Seed"),
		LastName:  ptr("Admin"),
	})
	if err == nil {
		return res.Value.User.UserID, nil
	}
	if service.KindOf(err) != service.KindConflict {
		return 0, fmt.Errorf("sign up owner: %w", err)
	}

	sess, err := s.svc.Users.Login(ctx, &models.LoginRequest{
		Username: opts.OwnerUsername,
		Password: opts.OwnerPassword,
	})
	if err != nil {
		return 0, fmt.Errorf("owner %q exists but could not log in: %w", opts.OwnerUsername, err)
	}
	return sess.User.UserID, nil
}

func (s *Seeder) seedCompany(ctx context.Context, faker *gofakeit.Faker, opts Options, companyID, ownerID int64, sum *Summary) error {
	cid := models.FlexibleID(companyID)

	groupIDs := make([]int64, 0, opts.GroupsPerCompany)
	for i := 0; i < opts.GroupsPerCompany; i++ {
		g, err := s.svc.Assets.CreateGroup(ctx, &models.CreateAssetGroupRequest{
			CompanyID:   cid,
			Title:       faker.RandomString([]string{"DMZ", "Core", "Finance", "Branch", "Cloud"}) + " " + faker.LetterN(3),
			Description: ptr(faker.Sentence(6)),
		})
		if err != nil {
			return fmt.Errorf("create asset group: %w", err)
		}
		groupIDs = append(groupIDs, g.AssetGroupID)
		sum.Groups++
	}

	assetIDs := make([]int64, 0, opts.AssetsPerCompany)
	for i := 0; i < opts.AssetsPerCompany; i++ {
		req := &models.SaveAssetRequest{
			CompanyID:       &companyID,
			Name:            ptr(faker.Word() + "-" + faker.DigitN(2)),
			Type:            ptr(faker.RandomString(assetTypes)),
			OperatingSystem: ptr(faker.RandomString(osNames)),
			Status:          ptr(faker.RandomString([]string{"ACTIVE", "INACTIVE", "ISOLATED"})),
			Priority:        ptr(faker.RandomString(priorities)),
			TLP:             ptr(faker.RandomString(tlps)),
			MetaData:        metaData(map[string]string{"ip": faker.IPv4Address(), "mac": faker.MacAddress()}),
			LastHeartbeat:   ptr(s.now().Add(-time.Duration(faker.Number(1, 7200)) * time.Second)),
		}
		if len(groupIDs) > 0 {
			enc := models.EncodedGroups(encodeGroups(pick(faker, groupIDs)))
			req.AssetGroupID = &enc
		}
		res, err := s.svc.Assets.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("create asset: %w", err)
		}
		assetIDs = append(assetIDs, res.AssetID)
		sum.Assets++
		sum.Warnings += len(res.Warnings)
	}

	for i := 0; i < opts.IncidentsPerCompany; i++ {
		opened := s.now().Add(-time.Duration(faker.Number(0, 400*24)) * time.Hour)
		inc, err := s.svc.Incidents.Create(ctx, &models.CreateIncidentRequest{
			CompanyID:   cid,
			Assignee:    &ownerID,
			Title:       faker.HackerPhrase(),
			Description: ptr(faker.Paragraph(1, 3, 12, " ")),
			Status:      faker.RandomString(incidentStatuses),
			Priority:    ptr(faker.RandomString(priorities)),
			TLP:         ptr(faker.RandomString(tlps)),
			OpenedAt:    &opened,
		}, ownerID)
		if err != nil {
			return fmt.Errorf("create incident: %w", err)
		}
		sum.Incidents++

		if err := s.seedIncident(ctx, faker, opts, inc.CaseID, assetIDs, ownerID, sum); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedIncident(ctx context.Context, faker *gofakeit.Faker, opts Options, caseID int64, assetIDs []int64, ownerID int64, sum *Summary) error {
	for i := 0; i < opts.IndicatorsPerIncident; i++ {
		typ, value := indicator(faker)
		req := &models.CreateIndicatorRequest{
			Type:           typ,
			Value:          value,
			Classification: ptr(faker.RandomString([]string{"malicious", "suspicious", "benign"})),
			Priority:       ptr(faker.RandomString(priorities)),
			ClassifiedBy:   &ownerID,
			TLP:            ptr(faker.RandomString(tlps)),
			MetaData:       metaData(map[string]string{"source": faker.RandomString([]string{"edr", "ids", "manual", "threat-feed"})}),
			DetectedAt:     ptr(s.now().Add(-time.Duration(faker.Number(1, 72)) * time.Hour)),
			CaseID:         &caseID,
			LinkType:       ptr(faker.RandomString(linkTypes)),
			AttackPhase:    ptr(faker.RandomString(attackPhases)),
			Confidence:     ptr(int32(faker.Number(10, 100))),
		}
		if len(assetIDs) > 0 {
			req.AssetID = ptr(assetIDs[faker.Number(0, len(assetIDs)-1)])
		}
		if _, err := s.svc.Indicators.Create(ctx, req, ownerID); err != nil {
			return fmt.Errorf("create indicator: %w", err)
		}
		sum.Indicators++
	}

	for i := 0; i < opts.TasksPerIncident; i++ {
		if _, err := s.svc.Tasks.Create(ctx, &models.CreateTaskRequest{
			CaseID:      &caseID,
			Assignee:    &ownerID,
			Title:       faker.Verb() + " " + faker.Noun(),
			Description: ptr(faker.Sentence(10)),
			Priority:    ptr(faker.RandomString(priorities)),
			Status:      ptr(faker.RandomString([]string{"TODO", "IN_PROGRESS", "DONE"})),
			DueDate:     ptr(s.now().Add(time.Duration(faker.Number(1, 14)) * 24 * time.Hour)),
		}); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		sum.Tasks++
	}
	return nil
}

func indicator(faker *gofakeit.Faker) (typ, value string) {
	switch faker.Number(0, 3) {
	case 0:
		return "ip", faker.IPv4Address()
	case 1:
		return "domain", faker.DomainName()
	case 2:
		return "url", faker.URL()
	default:
		return "sha256", fmt.Sprintf("%x", sha256.Sum256([]byte(faker.UUID())))
	}
}

// pick returns a random non-empty subset of ids in their original order.
func pick(faker *gofakeit.Faker, ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if faker.Bool() {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		out = append(out, ids[faker.Number(0, len(ids)-1)])
	}
	return out
}

// encodeGroups writes ids in the legacy "[1,2]" form.
func encodeGroups(ids []int64) string {
	b, _ := json.Marshal(ids)
	return string(b)
}

func metaData(m map[string]string) json.RawMessage {
	b, _ := json.Marshal(m)
	return b
}

func ptr[T any](v T) *T { return &v }
