package notify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inthound/internal/evaluator"
	"inthound/internal/storage"
)

func TestBuildReplacesPlaceholders(t *testing.T) {
	b, err := NewMessageBuilder(map[evaluator.Level][]string{
		evaluator.LevelNormal: {"%S went %k/%d, classic %s"},
	})
	if err != nil {
		t.Fatalf("NewMessageBuilder: %v", err)
	}

	pm := &storage.PlayerMatch{Kills: 2, Deaths: 11}
	player := &storage.Player{GameName: "Feeder"}

	got := b.Build(pm, player, evaluator.LevelNormal)
	want := "FEEDER went 2/11, classic Feeder"
	if got != want {
		t.Fatalf("Build = %q, want %q", got, want)
	}
}

func TestBuildFallsBackWithoutTemplates(t *testing.T) {
	b, err := NewMessageBuilder(map[evaluator.Level][]string{})
	if err != nil {
		t.Fatalf("NewMessageBuilder: %v", err)
	}

	got := b.Build(&storage.PlayerMatch{Deaths: 7}, &storage.Player{GameName: "Feeder"}, evaluator.LevelBig)
	if !strings.Contains(got, "Feeder") || !strings.Contains(got, "7") {
		t.Fatalf("fallback message %q missing name or deaths", got)
	}
}

func TestBuildPicksFromRegisteredTemplates(t *testing.T) {
	templates := []string{"a %s", "b %s", "c %s"}
	b, err := NewMessageBuilder(map[evaluator.Level][]string{
		evaluator.LevelTurbo: templates,
	})
	if err != nil {
		t.Fatalf("NewMessageBuilder: %v", err)
	}

	player := &storage.Player{GameName: "X"}
	for i := 0; i < 50; i++ {
		got := b.Build(&storage.PlayerMatch{}, player, evaluator.LevelTurbo)
		switch got {
		case "a X", "b X", "c X":
		default:
			t.Fatalf("Build = %q, not a registered template", got)
		}
	}
}

func TestNewMessageBuilderRejectsEmptyList(t *testing.T) {
	_, err := NewMessageBuilder(map[evaluator.Level][]string{
		evaluator.LevelMinor: {},
	})
	if err == nil {
		t.Fatal("NewMessageBuilder accepted empty template list")
	}
}

func TestDefaultTemplatesCoverNoteworthyLevels(t *testing.T) {
	templates := DefaultTemplates()
	for _, level := range []evaluator.Level{
		evaluator.LevelMinor, evaluator.LevelNormal, evaluator.LevelBig, evaluator.LevelTurbo,
	} {
		if len(templates[level]) == 0 {
			t.Fatalf("no default templates for level %v", level)
		}
	}
	if _, err := NewMessageBuilder(templates); err != nil {
		t.Fatalf("NewMessageBuilder(DefaultTemplates()): %v", err)
	}
}

func TestLoadTemplates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	content := `minor:
  - "%s died %d times"
turbo:
  - "%S WENT %k/%d"
  - "unbelievable, %s"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write templates: %v", err)
	}

	templates, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	if len(templates[evaluator.LevelMinor]) != 1 || len(templates[evaluator.LevelTurbo]) != 2 {
		t.Fatalf("templates = %v", templates)
	}
}

func TestLoadTemplatesRejectsUnknownLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte("catastrophic:\n  - oops\n"), 0o644); err != nil {
		t.Fatalf("write templates: %v", err)
	}

	if _, err := LoadTemplates(path); err == nil {
		t.Fatal("LoadTemplates accepted unknown level name")
	}
}
