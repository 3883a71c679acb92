// internal/workers/match/run-lender-match/config.go
package runlendermatch

import (
	"time"

	"lender-match-engine/internal/match"
)

type Config struct {
	Timeout time.Duration
	Engine  match.Config
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Engine:  match.DefaultConfig(),
	}
}
