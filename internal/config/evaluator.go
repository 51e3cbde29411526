package config

import (
	"fmt"

	"inthound/internal/evaluator"
)

// Build translates the YAML evaluator section into the immutable
// evaluator config. The section is a partial override: whatever it sets
// replaces the corresponding piece of the shipped defaults, so
// disabling the floor does not require restating the weight table.
func (e Evaluator) Build() (evaluator.Config, error) {
	cfg := evaluator.DefaultConfig()
	cfg.Threshold = e.Threshold

	for name, w := range e.Weights {
		role, err := parseRoleKey(name)
		if err != nil {
			return evaluator.Config{}, err
		}
		cfg.Weights[role] = evaluator.Weights{Kill: w.Kill, Death: w.Death, Assist: w.Assist}
	}

	if e.Floor != nil {
		cfg.Floor = evaluator.Floor{
			Enabled:   e.Floor.Enabled,
			MaxDeaths: e.Floor.MaxDeaths,
			MinKills:  e.Floor.MinKills,
		}
	}

	if len(e.Ranges) > 0 {
		cfg.Ranges = nil
		for _, r := range e.Ranges {
			level, err := evaluator.ParseLevel(r.Level)
			if err != nil {
				return evaluator.Config{}, fmt.Errorf("config: evaluator.ranges: %w", err)
			}
			if r.MaxDeaths < r.MinDeaths {
				return evaluator.Config{}, fmt.Errorf("config: evaluator.ranges: max_deaths < min_deaths for level %q", r.Level)
			}
			cfg.Ranges = append(cfg.Ranges, evaluator.DeathRange{
				Level:     level,
				MinDeaths: r.MinDeaths,
				MaxDeaths: r.MaxDeaths,
			})
		}
	}

	return cfg, nil
}

func parseRoleKey(name string) (evaluator.Role, error) {
	switch evaluator.Role(name) {
	case evaluator.RoleTop, evaluator.RoleJungle, evaluator.RoleMid,
		evaluator.RoleBot, evaluator.RoleSupport, evaluator.RoleOther:
		return evaluator.Role(name), nil
	default:
		return "", fmt.Errorf("config: evaluator.weights: unknown role %q", name)
	}
}
