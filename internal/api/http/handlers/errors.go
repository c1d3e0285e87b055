package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/support-kit/helpdesk-bot/internal/domain"
	"github.com/support-kit/helpdesk-bot/internal/store"
	apperrors "github.com/support-kit/helpdesk-bot/pkg/util"
)

// validate is the shared request validator.
var validate = validator.New()

// mapDomainError translates domain and store sentinels onto the HTTP
// error shape. AlreadyClosed is handled by callers before reaching here;
// anything unknown falls through as an internal error.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NewNotFound("ticket", nil)
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperrors.NewConflict("operation not allowed in current ticket state", nil)
	case errors.Is(err, domain.ErrDuplicateActiveTicket):
		return apperrors.NewConflict("subject already has an active ticket", nil)
	case errors.Is(err, domain.ErrInvalidRating):
		return apperrors.NewValidationError("rating must be 1-3 and set once", nil)
	case errors.Is(err, domain.ErrAlreadyClosed):
		return apperrors.NewConflict("ticket already closed", nil)
	case errors.Is(err, domain.ErrSubjectBanned):
		return apperrors.NewDomainError("BANNED", "subject is banned", http.StatusForbidden, nil)
	default:
		return err
	}
}

// validationDetails flattens validator errors into the details map.
func validationDetails(err error) map[string]any {
	details := map[string]any{}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return details
}
