package controllers

import (
	"net/http"

	"github.com/chifaexpress/storefront-backend/api/middleware"
	"github.com/chifaexpress/storefront-backend/api/responses"
	"github.com/chifaexpress/storefront-backend/api/validators"
	"github.com/chifaexpress/storefront-backend/internal/checkout"
	"github.com/chifaexpress/storefront-backend/internal/session"
	pkgerrors "github.com/chifaexpress/storefront-backend/pkg/errors"
	"github.com/chifaexpress/storefront-backend/pkg/logger"
)

// CheckoutSubmit turns the caller's cart into an order. The body is optional
// and only overrides the contact snapshot taken from the profile. Failures
// carry the terminal outcome in the error details so clients can distinguish
// a clean failure from a partially registered order.
func CheckoutSubmit(submitter *checkout.Submitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if submitter == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		identity := middleware.IdentityFromContext(r.Context())

		var body checkout.SubmitInput
		if err := validators.DecodeOptionalJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := submitter.Submit(r.Context(), identity, body)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && result != nil {
				details := map[string]any{"outcome": string(result.Outcome)}
				if result.Order != nil {
					details["order_id"] = result.Order.ID.String()
				}
				err = typed.WithDetails(details)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type checkoutIntentRequest struct {
	VisitorID  string `json:"visitor_id" validate:"required"`
	ResumePath string `json:"resume_path" validate:"required"`
}

// CheckoutIntentRecord remembers that an anonymous visitor tried to check
// out, so the flow can resume once they sign in.
func CheckoutIntentRecord(gate *session.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gate == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session gate unavailable"))
			return
		}

		var body checkoutIntentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := gate.RecordCheckoutIntent(r.Context(), body.VisitorID, body.ResumePath); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record checkout intent"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "recorded"})
	}
}

type checkoutIntentClaimRequest struct {
	VisitorID string `json:"visitor_id" validate:"required"`
}

// CheckoutIntentClaim consumes a recorded intent and hands the resume path
// back to the now-authenticated client. A missing intent is not an error.
func CheckoutIntentClaim(gate *session.Gate, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gate == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session gate unavailable"))
			return
		}

		var body checkoutIntentClaimRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := gate.TakeCheckoutIntent(r.Context(), body.VisitorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim checkout intent"))
			return
		}

		responses.WriteSuccess(w, intent)
	}
}
