package errors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrUserAlreadyExists is returned when signing up with a registered email.
	ErrUserAlreadyExists = errors.New("User with this email already exists")
	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = errors.New("Invalid email or password")
	// ErrUnauthenticated is returned when no bearer token was presented.
	ErrUnauthenticated = errors.New("Unauthorized - No token provided")
	// ErrInvalidSession is returned for any token that fails verification.
	ErrInvalidSession = errors.New("Unauthorized - Invalid or expired token")
	// ErrForbidden is returned when a verified identity has the wrong role.
	ErrForbidden = errors.New("Forbidden - Insufficient permissions")
	// ErrUpstream is returned when the donation API fails or answers with garbage.
	ErrUpstream = errors.New("donation service failure")
)

// Stable machine-readable codes carried by every error response.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUserAlreadyExists  = "USER_ALREADY_EXISTS"
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeUpstream           = "UPSTREAM_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    string
	Internal   error
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// WithDetails attaches a diagnostic string. Never pass credentials here.
func (e *HTTPError) WithDetails(details string) *HTTPError {
	e.Details = details
	return e
}

// WithInternal records the underlying cause for logging.
func (e *HTTPError) WithInternal(err error) *HTTPError {
	e.Internal = err
	return e
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// Validation builds a 400 with a client-facing message.
func Validation(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, CodeValidation).WithInternal(ErrValidation)
}

// Upstream builds a 500 for a failed donation API call with the cause as details.
func Upstream(message string, cause error) *HTTPError {
	he := NewHTTPError(http.StatusInternalServerError, message, CodeUpstream).WithInternal(cause)
	if cause != nil {
		he.Details = cause.Error()
	}
	return he
}

// Internal builds the generic 500.
func Internal(cause error) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, "Internal server error", CodeInternal).WithInternal(cause)
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var he *HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrUserAlreadyExists.Error(), CodeUserAlreadyExists)
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), CodeInvalidCredentials)
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), CodeAuthRequired)
	case errors.Is(err, ErrInvalidSession):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidSession.Error(), CodeInvalidToken)
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), CodeForbidden)
	case errors.Is(err, ErrValidation):
		return Validation(err.Error())
	case errors.Is(err, ErrUpstream):
		return Upstream("Donation service request failed", err)
	default:
		return Internal(err)
	}
}

// Handler returns an echo.HTTPErrorHandler that renders every error as ErrorResponse.
// Framework errors (404, 405, 413, 429, bind errors) keep their status.
func Handler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *HTTPError
		var ee *echo.HTTPError
		switch {
		case errors.As(err, &he):
		case errors.As(err, &ee):
			he = fromEcho(ee)
		default:
			he = MapErrorToHTTP(err)
		}

		entry := log.WithFields(logrus.Fields{
			"status":     he.StatusCode,
			"code":       he.Code,
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		})
		if he.Internal != nil {
			entry = entry.WithError(he.Internal)
		}
		if he.StatusCode >= http.StatusInternalServerError {
			entry.Error(he.Message)
		} else {
			entry.Debug(he.Message)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(he.StatusCode)
		} else {
			werr = c.JSON(he.StatusCode, he.ToErrorResponse())
		}
		if werr != nil {
			log.WithError(werr).Error("write error response")
		}
	}
}

func fromEcho(ee *echo.HTTPError) *HTTPError {
	msg, ok := ee.Message.(string)
	if !ok {
		msg = http.StatusText(ee.Code)
	}
	code := CodeInternal
	switch ee.Code {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		code = CodeInvalidRequest
	case http.StatusUnauthorized:
		code = CodeAuthRequired
	case http.StatusForbidden:
		code = CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		code = CodeNotFound
	case http.StatusTooManyRequests:
		code = CodeRateLimited
	}
	if ee.Code >= http.StatusInternalServerError {
		msg = "Internal server error"
	}
	return NewHTTPError(ee.Code, msg, code).WithInternal(ee.Internal)
}
