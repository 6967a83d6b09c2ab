package engine

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries the engine tunables. Every field has a built-in default and
// an environment override.
type Config struct {
	Trigger  TriggerConfig  `envPrefix:"CQ_BOSS_"`
	Practice SelectorConfig `envPrefix:"CQ_PRACTICE_"`
}

// LoadConfig reads the environment over the defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns the built-in defaults without consulting the
// environment.
func DefaultConfig() Config {
	return Config{
		Trigger: TriggerConfig{
			MinCompletedQuests: 3,
			ChanceAfterMin:     0.25,
			RequiredGrades:     []string{"A", "B"},
			CooldownQuests:     2,
		},
		Practice: SelectorConfig{
			StruggleThreshold:    60,
			MaintenanceThreshold: 30,
			MaxItems:             5,
		},
	}
}
