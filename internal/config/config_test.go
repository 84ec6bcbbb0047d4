package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mlpipe/mlpipe/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		TrackingURI:   "http://localhost:5000",
		Experiment:    "wine-quality",
		ServePort:     8000,
		ServeWorkers:  2,
		ContainerName: "mlpipe-serving",
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	t.Run("missing tracking URI", func(t *testing.T) {
		cfg := validConfig()
		cfg.TrackingURI = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := validConfig()
		cfg.ServePort = 0
		assert.Error(t, cfg.Validate())

		cfg.ServePort = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero workers", func(t *testing.T) {
		cfg := validConfig()
		cfg.ServeWorkers = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing container name", func(t *testing.T) {
		cfg := validConfig()
		cfg.ContainerName = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestIsDatabricks(t *testing.T) {
	cases := []struct {
		uri  string
		want bool
	}{
		{"databricks", true},
		{"databricks://staging", true},
		{"https://myworkspace.cloud.databricks.com", true},
		{"https://adb-123.azuredatabricks.net/path", true},
		{"http://localhost:5000", false},
		{"https://mlflow.internal.example.com", false},
	}

	for _, tc := range cases {
		cfg := validConfig()
		cfg.TrackingURI = tc.uri
		assert.Equal(t, tc.want, cfg.IsDatabricks(), "uri: %s", tc.uri)
	}
}

func TestGetDatabricksProfile(t *testing.T) {
	cfg := validConfig()

	cfg.TrackingURI = "databricks://staging"
	assert.Equal(t, "staging", cfg.GetDatabricksProfile())

	cfg.TrackingURI = "databricks://staging/extra"
	assert.Equal(t, "staging", cfg.GetDatabricksProfile())

	cfg.TrackingURI = "http://localhost:5000"
	assert.Equal(t, "", cfg.GetDatabricksProfile())
}
