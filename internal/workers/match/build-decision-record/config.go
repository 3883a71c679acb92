// internal/workers/match/build-decision-record/config.go
package builddecisionrecord

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
