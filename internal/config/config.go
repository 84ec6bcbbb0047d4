package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Databricks domain suffixes for URL detection
var databricksDomains = []string{
	".cloud.databricks.com",
	".azuredatabricks.net",
	".gcp.databricks.com",
}

type Config struct {
	TrackingURI     string
	Experiment      string
	ManifestPath    string
	LogFile         string
	ServePort       int
	ServeWorkers    int
	ContainerName   string
	ContainerImage  string
	DatabricksHost  string
	DatabricksToken string
}

func New() *Config {
	return &Config{
		TrackingURI:     viper.GetString("tracking_uri"),
		Experiment:      viper.GetString("experiment"),
		ManifestPath:    viper.GetString("manifest"),
		LogFile:         viper.GetString("log_file"),
		ServePort:       viper.GetInt("serve_port"),
		ServeWorkers:    viper.GetInt("serve_workers"),
		ContainerName:   viper.GetString("container_name"),
		ContainerImage:  viper.GetString("container_image"),
		DatabricksHost:  viper.GetString("databricks_host"),
		DatabricksToken: viper.GetString("databricks_token"),
	}
}

func (c *Config) Validate() error {
	if c.TrackingURI == "" {
		return fmt.Errorf("tracking URI is required")
	}

	if c.ServePort <= 0 || c.ServePort > 65535 {
		return fmt.Errorf("invalid serve port: %d", c.ServePort)
	}

	if c.ServeWorkers < 1 {
		return fmt.Errorf("serve workers must be at least 1, got %d", c.ServeWorkers)
	}

	if c.ContainerName == "" {
		return fmt.Errorf("container name is required")
	}

	return nil
}

// IsDatabricks checks if the tracking URI points to Databricks
func (c *Config) IsDatabricks() bool {
	if c.TrackingURI == "databricks" {
		return true
	}

	// Check for databricks:// protocol
	if strings.HasPrefix(c.TrackingURI, "databricks://") {
		return true
	}

	// Check for Databricks URLs
	if strings.HasPrefix(c.TrackingURI, "https://") {
		host := c.extractHostFromURL(c.TrackingURI)
		return c.isDatabricksHost(host)
	}

	return false
}

// extractHostFromURL extracts the hostname from a URL
func (c *Config) extractHostFromURL(url string) string {
	host := strings.TrimPrefix(url, "https://")
	// Remove any path components
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	return host
}

// isDatabricksHost checks if a hostname belongs to Databricks
func (c *Config) isDatabricksHost(host string) bool {
	for _, domain := range databricksDomains {
		if strings.HasSuffix(host, domain) {
			return true
		}
	}
	return false
}

// GetDatabricksProfile extracts the profile name from databricks://{profile} URI
func (c *Config) GetDatabricksProfile() string {
	if !strings.HasPrefix(c.TrackingURI, "databricks://") {
		return ""
	}

	profile := strings.TrimPrefix(c.TrackingURI, "databricks://")
	// Remove any trailing slashes or paths
	if idx := strings.Index(profile, "/"); idx != -1 {
		profile = profile[:idx]
	}
	return profile
}
