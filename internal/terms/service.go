package terms

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/tarunagarwal1981/travelhub-backend/pkg/config"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/db/models"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/errors"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
)

// ServiceParams groups dependencies for the terms service.
type ServiceParams struct {
	Repo     Repository
	Logger   *logger.Logger
	Versions config.TermsConfig
	Now      func() time.Time
}

// Service answers whether a user has accepted the currently required legal
// documents and records new acceptances.
type Service struct {
	repo     Repository
	logg     *logger.Logger
	versions config.TermsConfig
	now      func() time.Time
}

// TypeStatus is the acceptance state of one document for a user.
type TypeStatus struct {
	TermsType       enums.TermsType `json:"termsType"`
	CurrentVersion  string          `json:"currentVersion"`
	AcceptedVersion *string         `json:"acceptedVersion,omitempty"`
	Accepted        bool            `json:"accepted"`
	NeedsNewVersion bool            `json:"needsToAcceptNewVersion"`
}

// AcceptInput records one consent action.
type AcceptInput struct {
	TermsType enums.TermsType
	Version   string
	IPAddress *string
	UserAgent *string
}

// NewService builds a terms service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, stdErrors.New("repo is required")
	}
	if params.Logger == nil {
		return nil, stdErrors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		repo:     params.Repo,
		logg:     params.Logger,
		versions: params.Versions,
		now:      now,
	}, nil
}

// CurrentVersion returns the required version for the document type.
func (s *Service) CurrentVersion(termsType enums.TermsType) string {
	switch termsType {
	case enums.TermsTypeTermsOfService:
		return s.versions.TermsOfServiceVersion
	case enums.TermsTypePrivacyPolicy:
		return s.versions.PrivacyPolicyVersion
	case enums.TermsTypeRefundPolicy:
		return s.versions.RefundPolicyVersion
	default:
		return ""
	}
}

// HasAcceptedCurrentTerms reports whether the user accepted the current
// version of the given document.
func (s *Service) HasAcceptedCurrentTerms(ctx context.Context, userID uuid.UUID, termsType enums.TermsType) (bool, error) {
	record, err := s.repo.Find(ctx, userID, termsType, s.CurrentVersion(termsType))
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "loading terms acceptance")
	}
	return record != nil && record.Accepted, nil
}

// HasAcceptedAllRequiredTerms reports whether every required document is
// accepted at its current version.
func (s *Service) HasAcceptedAllRequiredTerms(ctx context.Context, userID uuid.UUID) (bool, error) {
	for _, termsType := range enums.RequiredTermsTypes {
		accepted, err := s.HasAcceptedCurrentTerms(ctx, userID, termsType)
		if err != nil {
			return false, err
		}
		if !accepted {
			return false, nil
		}
	}
	return true, nil
}

// NeedsNewVersion reports whether the user must re-accept: true when the user
// has no acceptance history for the type, or when their latest accepted
// version differs from the current one. Versions compare as opaque strings.
func (s *Service) NeedsNewVersion(ctx context.Context, userID uuid.UUID, termsType enums.TermsType) (bool, error) {
	latest, err := s.repo.FindLatest(ctx, userID, termsType)
	if err != nil {
		return false, errors.Wrap(errors.CodeInternal, err, "loading latest terms acceptance")
	}
	if latest == nil || !latest.Accepted {
		return true, nil
	}
	return latest.TermsVersion != s.CurrentVersion(termsType), nil
}

// Accept records consent to one document version. An omitted version means
// the current one.
func (s *Service) Accept(ctx context.Context, userID uuid.UUID, input AcceptInput) (*models.TermsAcceptance, error) {
	if !input.TermsType.IsValid() {
		return nil, errors.New(errors.CodeValidation, "unknown terms type")
	}
	version := input.Version
	if version == "" {
		version = s.CurrentVersion(input.TermsType)
	}

	now := s.now()
	record := &models.TermsAcceptance{
		UserID:       userID,
		TermsVersion: version,
		TermsType:    input.TermsType,
		Accepted:     true,
		AcceptedAt:   &now,
		IPAddress:    input.IPAddress,
		UserAgent:    input.UserAgent,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "recording terms acceptance")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"terms_type":    input.TermsType.String(),
		"terms_version": version,
	})
	s.logg.Info(ctx, "terms accepted")
	return record, nil
}

// Status summarizes the user's standing against every known document type.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) ([]TypeStatus, error) {
	types := []enums.TermsType{
		enums.TermsTypeTermsOfService,
		enums.TermsTypePrivacyPolicy,
		enums.TermsTypeRefundPolicy,
	}

	statuses := make([]TypeStatus, 0, len(types))
	for _, termsType := range types {
		latest, err := s.repo.FindLatest(ctx, userID, termsType)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "loading latest terms acceptance")
		}

		status := TypeStatus{
			TermsType:      termsType,
			CurrentVersion: s.CurrentVersion(termsType),
		}
		if latest != nil && latest.Accepted {
			version := latest.TermsVersion
			status.AcceptedVersion = &version
			status.Accepted = version == status.CurrentVersion
		}
		status.NeedsNewVersion = !status.Accepted
		statuses = append(statuses, status)
	}
	return statuses, nil
}
