package terms

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/config"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
)

type stubRepo struct {
	records  []models.TermsAcceptance
	upserted []models.TermsAcceptance
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Upsert(ctx context.Context, record *models.TermsAcceptance) error {
	s.upserted = append(s.upserted, *record)
	return nil
}

func (s *stubRepo) Find(ctx context.Context, userID uuid.UUID, termsType enums.TermsType, version string) (*models.TermsAcceptance, error) {
	for i := range s.records {
		r := s.records[i]
		if r.UserID == userID && r.TermsType == termsType && r.TermsVersion == version {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) FindLatest(ctx context.Context, userID uuid.UUID, termsType enums.TermsType) (*models.TermsAcceptance, error) {
	var latest *models.TermsAcceptance
	for i := range s.records {
		r := s.records[i]
		if r.UserID != userID || r.TermsType != termsType {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			copied := r
			latest = &copied
		}
	}
	return latest, nil
}

func (s *stubRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.TermsAcceptance, error) {
	return s.records, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   repo,
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Versions: config.TermsConfig{
			TermsOfServiceVersion: "2.0",
			PrivacyPolicyVersion:  "1.5",
			RefundPolicyVersion:   "1.0",
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func acceptance(userID uuid.UUID, termsType enums.TermsType, version string, createdAt time.Time) models.TermsAcceptance {
	return models.TermsAcceptance{
		UserID:       userID,
		TermsType:    termsType,
		TermsVersion: version,
		Accepted:     true,
		CreatedAt:    createdAt,
	}
}

func TestNeedsNewVersionWithoutHistory(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	needs, err := svc.NeedsNewVersion(context.Background(), uuid.New(), enums.TermsTypeTermsOfService)
	if err != nil {
		t.Fatalf("needs new version: %v", err)
	}
	if !needs {
		t.Fatal("user with no history must need acceptance")
	}
}

func TestNeedsNewVersionWhenVersionDiffers(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{records: []models.TermsAcceptance{
		acceptance(userID, enums.TermsTypeTermsOfService, "1.0", time.Now()),
	}}
	svc := newTestService(t, repo)

	needs, err := svc.NeedsNewVersion(context.Background(), userID, enums.TermsTypeTermsOfService)
	if err != nil {
		t.Fatalf("needs new version: %v", err)
	}
	if !needs {
		t.Fatal("outdated acceptance must require the new version")
	}
}

func TestNeedsNewVersionCurrentAccepted(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{records: []models.TermsAcceptance{
		acceptance(userID, enums.TermsTypeTermsOfService, "2.0", time.Now()),
	}}
	svc := newTestService(t, repo)

	needs, err := svc.NeedsNewVersion(context.Background(), userID, enums.TermsTypeTermsOfService)
	if err != nil {
		t.Fatalf("needs new version: %v", err)
	}
	if needs {
		t.Fatal("current acceptance must not require re-acceptance")
	}
}

func TestNeedsNewVersionComparesStringsNotNumbers(t *testing.T) {
	userID := uuid.New()
	// "2.00" is numerically equal to "2.0" but versions are opaque strings.
	repo := &stubRepo{records: []models.TermsAcceptance{
		acceptance(userID, enums.TermsTypeTermsOfService, "2.00", time.Now()),
	}}
	svc := newTestService(t, repo)

	needs, err := svc.NeedsNewVersion(context.Background(), userID, enums.TermsTypeTermsOfService)
	if err != nil {
		t.Fatalf("needs new version: %v", err)
	}
	if !needs {
		t.Fatal("version comparison must be a plain string inequality")
	}
}

func TestHasAcceptedAllRequiredTerms(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{records: []models.TermsAcceptance{
		acceptance(userID, enums.TermsTypeTermsOfService, "2.0", time.Now()),
	}}
	svc := newTestService(t, repo)

	ok, err := svc.HasAcceptedAllRequiredTerms(context.Background(), userID)
	if err != nil {
		t.Fatalf("has accepted all: %v", err)
	}
	if ok {
		t.Fatal("missing privacy policy acceptance must fail the gate")
	}

	repo.records = append(repo.records, acceptance(userID, enums.TermsTypePrivacyPolicy, "1.5", time.Now()))
	ok, err = svc.HasAcceptedAllRequiredTerms(context.Background(), userID)
	if err != nil {
		t.Fatalf("has accepted all: %v", err)
	}
	if !ok {
		t.Fatal("both required documents accepted; gate must pass")
	}
}

func TestRefundPolicyNotRequired(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{records: []models.TermsAcceptance{
		acceptance(userID, enums.TermsTypeTermsOfService, "2.0", time.Now()),
		acceptance(userID, enums.TermsTypePrivacyPolicy, "1.5", time.Now()),
	}}
	svc := newTestService(t, repo)

	ok, err := svc.HasAcceptedAllRequiredTerms(context.Background(), userID)
	if err != nil {
		t.Fatalf("has accepted all: %v", err)
	}
	if !ok {
		t.Fatal("refund policy must not be part of the required set")
	}
}

func TestAcceptDefaultsToCurrentVersion(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(t, repo)

	record, err := svc.Accept(context.Background(), uuid.New(), AcceptInput{
		TermsType: enums.TermsTypePrivacyPolicy,
	})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if record.TermsVersion != "1.5" {
		t.Fatalf("expected current version 1.5, got %s", record.TermsVersion)
	}
	if !record.Accepted || record.AcceptedAt == nil {
		t.Fatal("acceptance must be marked accepted with a timestamp")
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserted))
	}
}

func TestAcceptRejectsUnknownType(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	if _, err := svc.Accept(context.Background(), uuid.New(), AcceptInput{TermsType: "marketing"}); err == nil {
		t.Fatal("expected validation error for unknown terms type")
	}
}

func TestStatusReportsPerDocument(t *testing.T) {
	userID := uuid.New()
	repo := &stubRepo{records: []models.TermsAcceptance{
		acceptance(userID, enums.TermsTypeTermsOfService, "2.0", time.Now()),
		acceptance(userID, enums.TermsTypePrivacyPolicy, "1.0", time.Now()),
	}}
	svc := newTestService(t, repo)

	statuses, err := svc.Status(context.Background(), userID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	byType := map[enums.TermsType]TypeStatus{}
	for _, s := range statuses {
		byType[s.TermsType] = s
	}

	if !byType[enums.TermsTypeTermsOfService].Accepted {
		t.Fatal("terms of service should be accepted")
	}
	if byType[enums.TermsTypePrivacyPolicy].Accepted {
		t.Fatal("outdated privacy policy must not count as accepted")
	}
	if !byType[enums.TermsTypePrivacyPolicy].NeedsNewVersion {
		t.Fatal("outdated privacy policy must need a new version")
	}
	if byType[enums.TermsTypeRefundPolicy].AcceptedVersion != nil {
		t.Fatal("refund policy has no acceptance history")
	}
}
