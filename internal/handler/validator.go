package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	apperrors "donationhub/internal/errors"
)

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the validator installed on the echo instance.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// validationError turns a validator failure into a client-facing 400. Any
// missing field yields missing; otherwise the first field with an entry in
// byField decides the message.
func validationError(err error, missing string, byField map[string]string) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperrors.Internal(err)
	}
	for _, fe := range ve {
		if fe.Tag() == "required" {
			return apperrors.Validation(missing)
		}
	}
	for _, fe := range ve {
		if msg, ok := byField[fe.Field()]; ok {
			return apperrors.Validation(msg)
		}
	}
	return apperrors.Validation(missing)
}

func invalidBody(err error) error {
	return apperrors.NewHTTPError(http.StatusBadRequest, "Invalid request body", apperrors.CodeInvalidRequest).WithInternal(err)
}
