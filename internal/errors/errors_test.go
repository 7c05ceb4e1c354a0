package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"conflict", fmt.Errorf("signup: %w", ErrUserAlreadyExists), http.StatusConflict, CodeUserAlreadyExists, "User with this email already exists"},
		{"bad credentials", ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password"},
		{"no token", ErrUnauthenticated, http.StatusUnauthorized, CodeAuthRequired, "Unauthorized - No token provided"},
		{"bad token", ErrInvalidSession, http.StatusUnauthorized, CodeInvalidToken, "Unauthorized - Invalid or expired token"},
		{"wrong role", ErrForbidden, http.StatusForbidden, CodeForbidden, "Forbidden - Insufficient permissions"},
		{"validation", Validation("All fields are required"), http.StatusBadRequest, CodeValidation, "All fields are required"},
		{"unknown", errors.New("db password=hunter2 leaked"), http.StatusInternalServerError, CodeInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, he.StatusCode)
			assert.Equal(t, tt.wantCode, he.Code)
			assert.Equal(t, tt.wantMsg, he.Message)
			assert.Empty(t, he.Details)
		})
	}
}

func TestUpstream(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	he := Upstream("Failed to fetch donations", cause)

	assert.Equal(t, http.StatusInternalServerError, he.StatusCode)
	assert.Equal(t, CodeUpstream, he.Code)
	assert.Equal(t, cause.Error(), he.Details)
	assert.ErrorIs(t, he, cause)
}

func newErrorEcho(h echo.HandlerFunc) *echo.Echo {
	log := logrus.New()
	log.SetOutput(io.Discard)

	e := echo.New()
	e.HTTPErrorHandler = Handler(log)
	e.GET("/", h)
	e.HEAD("/", h)
	return e
}

func serve(e *echo.Echo, method, path string) (*httptest.ResponseRecorder, ErrorResponse) {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var body ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		want       ErrorResponse
	}{
		{
			name:       "domain error",
			err:        ErrForbidden,
			wantStatus: http.StatusForbidden,
			want:       ErrorResponse{Error: "Forbidden - Insufficient permissions", Code: CodeForbidden},
		},
		{
			name:       "http error with details",
			err:        Upstream("Failed to create donation", errors.New("status 502")),
			wantStatus: http.StatusInternalServerError,
			want:       ErrorResponse{Error: "Failed to create donation", Code: CodeUpstream, Details: "status 502"},
		},
		{
			name:       "echo error",
			err:        echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"),
			wantStatus: http.StatusRequestEntityTooLarge,
			want:       ErrorResponse{Error: "Request Entity Too Large", Code: CodeInvalidRequest},
		},
		{
			name:       "echo 5xx hides message",
			err:        echo.NewHTTPError(http.StatusServiceUnavailable, "pool exhausted"),
			wantStatus: http.StatusServiceUnavailable,
			want:       ErrorResponse{Error: "Internal server error", Code: CodeInternal},
		},
		{
			name:       "unknown error",
			err:        errors.New("secret internals"),
			wantStatus: http.StatusInternalServerError,
			want:       ErrorResponse{Error: "Internal server error", Code: CodeInternal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newErrorEcho(func(echo.Context) error { return tt.err })
			rec, body := serve(e, http.MethodGet, "/")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.want, body)
		})
	}
}

func TestHandler_NotFoundAndHead(t *testing.T) {
	e := newErrorEcho(func(echo.Context) error { return ErrInvalidSession })

	rec, body := serve(e, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, CodeNotFound, body.Code)

	rec, _ = serve(e, http.MethodHead, "/")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
}
