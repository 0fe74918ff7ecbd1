// Package settings loads process-level settings from the environment.
package settings

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

// Prefix of every environment variable read by Load.
const Prefix = "EMR_FLEET"

// Settings holds everything that is not part of the cluster document.
type Settings struct {
	// SessionID names the cluster when the document has no name. A random
	// id is generated when unset.
	SessionID string `envconfig:"SESSION_ID"`

	StateFile string `envconfig:"STATE_FILE" default:".emr-fleet/state.yaml"`

	// Region overrides the region from the AWS shared config.
	Region string `envconfig:"REGION"`

	DevelopmentLogging bool `envconfig:"DEVELOPMENT_LOGGING" default:"false"`
}

// Load reads EMR_FLEET_* variables.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(Prefix, &s); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if s.SessionID == "" {
		s.SessionID = uuid.NewString()
	}
	return &s, nil
}
