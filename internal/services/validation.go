package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"messenger-service/internal/apperrors"
)

// Paging bounds for message history.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validationError turns validator output into an apperrors.ErrValidation.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Validation("%v", err)
	}
	reasons := lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
		if fe.Param() != "" {
			return fmt.Sprintf("%s must satisfy %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s must satisfy %s", strings.ToLower(fe.Field()), fe.Tag())
	})
	return apperrors.Validation("%s", strings.Join(reasons, "; "))
}
