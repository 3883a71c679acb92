// internal/workers/match/evaluate-hard-money-path/config.go
package evaluatehardmoneypath

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
