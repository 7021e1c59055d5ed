package config

import (
	"errors"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// UpstreamConfig points the front-end at the Mabarin REST API.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"MABARIN_API_URL" required:"true"`
	Version string        `envconfig:"MABARIN_API_VERSION" default:"v1"`
	Timeout time.Duration `envconfig:"MABARIN_API_TIMEOUT" default:"10s"`
}

// LoadUpstream processes the MABARIN_API_* variables.
func LoadUpstream() (UpstreamConfig, error) {
	var c UpstreamConfig
	if err := envconfig.Process("", &c); err != nil {
		return c, err
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return c, errors.New("MABARIN_API_URL is empty")
	}
	return c, nil
}

// APIBase joins base URL and version segment: http://host/api/v1
func (u UpstreamConfig) APIBase() string {
	return strings.TrimRight(u.BaseURL, "/") + "/api/" + strings.Trim(u.Version, "/")
}
