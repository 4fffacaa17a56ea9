package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_DEBUG_JSON logs every frame received by the test clients
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours        bool          `envconfig:"E2E_COLOURS" default:"true"`
	ReceiveTimeout time.Duration `envconfig:"E2E_RECEIVE_TIMEOUT" default:"2s"`
	SilenceTimeout time.Duration `envconfig:"E2E_SILENCE_TIMEOUT" default:"200ms"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
