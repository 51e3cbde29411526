// Package evaluator classifies a player's stat line into an ordered
// severity scale. It is deterministic and free of I/O: identical inputs
// always yield the identical level, which keeps it unit-testable in
// isolation.
package evaluator

import (
	"fmt"

	"inthound/internal/storage"
)

// Level is the ordered severity classification. LevelNone means the
// performance is not noteworthy and produces no notification.
type Level int

const (
	LevelNone Level = iota
	LevelMinor
	LevelNormal
	LevelBig
	LevelTurbo
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelMinor:
		return "minor"
	case LevelNormal:
		return "normal"
	case LevelBig:
		return "big"
	case LevelTurbo:
		return "turbo"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel is the inverse of String.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "none":
		return LevelNone, nil
	case "minor":
		return LevelMinor, nil
	case "normal":
		return LevelNormal, nil
	case "big":
		return LevelBig, nil
	case "turbo":
		return LevelTurbo, nil
	default:
		return LevelNone, fmt.Errorf("unknown severity level %q", s)
	}
}

// Weights is the per-role tuple of the weighted linear combination.
type Weights struct {
	Kill   float64
	Death  float64
	Assist float64
}

// Score computes the weighted score of a stat line.
func (w Weights) Score(kills, deaths, assists int64) float64 {
	return w.Kill*float64(kills) + w.Death*float64(deaths) + w.Assist*float64(assists)
}

// DeathRange maps an inclusive death-count range to a severity level.
type DeathRange struct {
	Level     Level
	MinDeaths int64
	MaxDeaths int64
}

// Floor is the insignificance carve-out: a scoreline with few deaths
// and at least one kill is never noteworthy, whatever its score.
type Floor struct {
	Enabled   bool
	MaxDeaths int64
	MinKills  int64
}

// Config is loaded once at startup and immutable thereafter.
type Config struct {
	// Weights per role. RoleOther is the fallback and must be present.
	Weights map[Role]Weights
	// Threshold; a weighted score above it is not noteworthy.
	Threshold float64
	// Optional death-range buckets refining the severity tier.
	Ranges []DeathRange
	Floor  Floor
}

// DefaultConfig mirrors the shipped evaluation profile.
func DefaultConfig() Config {
	w := Weights{Kill: 1, Death: -1, Assist: 0.5}
	return Config{
		Weights: map[Role]Weights{
			RoleTop:     w,
			RoleJungle:  w,
			RoleMid:     w,
			RoleBot:     w,
			RoleSupport: {Kill: 1, Death: -1, Assist: 0.75},
			RoleOther:   w,
		},
		Threshold: 0,
		Ranges: []DeathRange{
			{Level: LevelNormal, MinDeaths: 8, MaxDeaths: 11},
			{Level: LevelBig, MinDeaths: 12, MaxDeaths: 15},
			{Level: LevelTurbo, MinDeaths: 16, MaxDeaths: 1 << 30},
		},
		Floor: Floor{Enabled: true, MaxDeaths: 4, MinKills: 1},
	}
}

type Evaluator struct {
	cfg Config
}

// New validates the config. The fallback role weights are required so
// every stat line has a defined score.
func New(cfg Config) (*Evaluator, error) {
	if _, ok := cfg.Weights[RoleOther]; !ok {
		return nil, fmt.Errorf("evaluator: weights for role %q are required", RoleOther)
	}
	return &Evaluator{cfg: cfg}, nil
}

// Evaluate classifies one stat line in its match context.
//
// Below-threshold scores classify at least at the lowest noteworthy
// tier; a matching death range upgrades the tier from there.
func (e *Evaluator) Evaluate(stats *storage.PlayerMatch, match *storage.Match) Level {
	_ = match // match context reserved for duration-based refinements

	if e.cfg.Floor.Enabled &&
		stats.Deaths <= e.cfg.Floor.MaxDeaths &&
		stats.Kills >= e.cfg.Floor.MinKills {
		return LevelNone
	}

	position := ""
	if stats.Position != nil {
		position = *stats.Position
	}
	weights, ok := e.cfg.Weights[ParseRole(position)]
	if !ok {
		weights = e.cfg.Weights[RoleOther]
	}

	score := weights.Score(stats.Kills, stats.Deaths, stats.Assists)
	if score > e.cfg.Threshold {
		return LevelNone
	}

	level := LevelMinor
	for _, r := range e.cfg.Ranges {
		if stats.Deaths >= r.MinDeaths && stats.Deaths <= r.MaxDeaths && r.Level > level {
			level = r.Level
		}
	}
	return level
}
