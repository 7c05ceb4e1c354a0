package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DONATION_API_URL", "http://donations.local")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 5*time.Second, cfg.Donation.Timeout)
	assert.Equal(t, "Users", cfg.DynamoDB.Table)
	assert.Equal(t, "ap-south-1", cfg.DynamoDB.Region)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Limits.AuthBurst)
}

func TestLoad_MissingSecretFailsClosed(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DONATION_API_URL", "http://donations.local")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_MissingDonationURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DONATION_API_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "dynamodb")
	t.Setenv("DYNAMO_DB_TABLE", "DonationUsers")
	t.Setenv("DONATION_API_TIMEOUT", "2s")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverDynamoDB, cfg.StoreDriver)
	assert.Equal(t, "DonationUsers", cfg.DynamoDB.Table)
	assert.Equal(t, 2*time.Second, cfg.Donation.Timeout)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_UnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestUsage(t *testing.T) {
	usage, err := Usage()
	require.NoError(t, err)
	assert.Contains(t, usage, "JWT_SECRET")
}
