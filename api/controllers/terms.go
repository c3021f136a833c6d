package controllers

import (
	"net/http"

	"github.com/tarunagarwal1981/travelhub-backend/api/responses"
	"github.com/tarunagarwal1981/travelhub-backend/api/validators"
	termsvc "github.com/tarunagarwal1981/travelhub-backend/internal/terms"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/enums"
	pkgerrors "github.com/tarunagarwal1981/travelhub-backend/pkg/errors"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
)

// TermsStatus summarizes the actor's acceptance standing per document.
func TermsStatus(svc *termsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		statuses, err := svc.Status(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		allAccepted, err := svc.HasAcceptedAllRequiredTerms(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"terms":               statuses,
			"allRequiredAccepted": allAccepted,
		})
	}
}

// TermsAccept records consent to a document version.
func TermsAccept(svc *termsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var payload acceptTermsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		termsType, err := enums.ParseTermsType(payload.TermsType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}

		input := termsvc.AcceptInput{
			TermsType: termsType,
			Version:   payload.Version,
		}
		if ip := clientIP(r); ip != "" {
			input.IPAddress = &ip
		}
		if ua := r.UserAgent(); ua != "" {
			input.UserAgent = &ua
		}

		record, err := svc.Accept(r.Context(), actor.UserID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

type acceptTermsRequest struct {
	TermsType string `json:"termsType" validate:"required"`
	Version   string `json:"version,omitempty"`
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
