package notify

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	yaml "go.yaml.in/yaml/v3"

	"inthound/internal/evaluator"
	"inthound/internal/storage"
)

// MessageBuilder renders a notification from a template picked at
// random among those registered for the severity level.
//
// Template placeholders: %s player name, %S player name uppercased,
// %d deaths, %k kills.
type MessageBuilder struct {
	templates map[evaluator.Level][]string
}

func NewMessageBuilder(templates map[evaluator.Level][]string) (*MessageBuilder, error) {
	for level, ts := range templates {
		if len(ts) == 0 {
			return nil, fmt.Errorf("notify: no templates for level %q", level)
		}
	}
	return &MessageBuilder{templates: templates}, nil
}

// DefaultTemplates are the shipped messages, one list per severity.
func DefaultTemplates() map[evaluator.Level][]string {
	return map[evaluator.Level][]string{
		evaluator.LevelMinor: {
			"%s just died %d times.",
			"%s went down %d times this game.",
		},
		evaluator.LevelNormal: {
			"%s died %d times and only got %k kills.",
			"Another day, another %d deaths for %s.",
		},
		evaluator.LevelBig: {
			"%S DIED %d TIMES.",
			"%d deaths. %k kills. %s, why.",
		},
		evaluator.LevelTurbo: {
			"%S JUST WENT %k/%d. INCREDIBLE.",
			"STOP EVERYTHING. %S DIED %d TIMES.",
		},
	}
}

// LoadTemplates reads a YAML file mapping severity level names to
// template lists.
func LoadTemplates(path string) (map[evaluator.Level][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("notify: read templates: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("notify: parse templates: %w", err)
	}

	templates := make(map[evaluator.Level][]string, len(raw))
	for name, ts := range raw {
		level, err := evaluator.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("notify: templates: %w", err)
		}
		templates[level] = ts
	}
	return templates, nil
}

// Build renders a message for the player's stat line. Falls back to a
// plain scoreline when the level has no templates.
func (b *MessageBuilder) Build(pm *storage.PlayerMatch, player *storage.Player, level evaluator.Level) string {
	ts := b.templates[level]
	if len(ts) == 0 {
		return fmt.Sprintf("%s just died %d times", player.GameName, pm.Deaths)
	}
	template := ts[rand.IntN(len(ts))]

	r := strings.NewReplacer(
		"%s", player.GameName,
		"%S", strings.ToUpper(player.GameName),
		"%d", strconv.FormatInt(pm.Deaths, 10),
		"%k", strconv.FormatInt(pm.Kills, 10),
	)
	return r.Replace(template)
}
