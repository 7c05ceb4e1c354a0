package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donationhub/internal/config"
)

func TestNew_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.Log{Level: "debug", Format: "json"}, &buf)

	log.WithFields(logrus.Fields{
		"email":         "a@x.com",
		"password":      "secret1",
		"password_hash": "$2a$10$abc",
		"Authorization": "Bearer abc",
		"jwt_secret":    "s3cret",
	}).Info("signup")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "a@x.com", line["email"])
	assert.Equal(t, redacted, line["password"])
	assert.Equal(t, redacted, line["password_hash"])
	assert.Equal(t, redacted, line["Authorization"])
	assert.Equal(t, redacted, line["jwt_secret"])
	assert.NotContains(t, buf.String(), "secret1")
}

func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.Log{Level: "warn", Format: "text"}, &buf)

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	fallback := New(config.Log{Level: "nonsense"}, &buf)
	assert.Equal(t, logrus.InfoLevel, fallback.GetLevel())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.Log{Level: "info", Format: "json"}, &buf)

	e := echo.New()
	e.Use(middleware.RequestID(), RequestLogger(log))
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "/healthz", line["uri"])
	assert.Equal(t, float64(http.StatusOK), line["status"])
	assert.NotEmpty(t, line["request_id"])
}
