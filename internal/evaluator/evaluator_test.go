package evaluator

import (
	"testing"

	"inthound/internal/storage"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"TOP", RoleTop},
		{"top", RoleTop},
		{"Jungle", RoleJungle},
		{"MIDDLE", RoleMid},
		{"BOTTOM", RoleBot},
		{"UTILITY", RoleSupport},
		{"utility", RoleSupport},
		{"", RoleOther},
		{"invalid", RoleOther},
		{"ARAM", RoleOther},
	}
	for _, tc := range cases {
		if got := ParseRole(tc.in); got != tc.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLevelRoundTrip(t *testing.T) {
	for _, l := range []Level{LevelNone, LevelMinor, LevelNormal, LevelBig, LevelTurbo} {
		got, err := ParseLevel(l.String())
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", l.String(), err)
		}
		if got != l {
			t.Fatalf("ParseLevel(%q) = %v, want %v", l.String(), got, l)
		}
	}
	if _, err := ParseLevel("catastrophic"); err == nil {
		t.Fatal("ParseLevel accepted unknown level")
	}
}

func TestNewRequiresFallbackWeights(t *testing.T) {
	_, err := New(Config{Weights: map[Role]Weights{RoleTop: {Kill: 1}}})
	if err == nil {
		t.Fatal("New accepted config without fallback role weights")
	}
}

func statLine(kills, deaths, assists int64, position string) *storage.PlayerMatch {
	pm := &storage.PlayerMatch{Kills: kills, Deaths: deaths, Assists: assists}
	if position != "" {
		pm.Position = &position
	}
	return pm
}

func TestEvaluate(t *testing.T) {
	eval, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	match := &storage.Match{ID: "NA1_1", Duration: 1800}

	cases := []struct {
		name  string
		stats *storage.PlayerMatch
		want  Level
	}{
		{"good game", statLine(10, 2, 8, "MIDDLE"), LevelNone},
		{"few deaths with a kill", statLine(1, 4, 0, "TOP"), LevelNone},
		{"zero kills few deaths", statLine(0, 3, 0, "TOP"), LevelMinor},
		{"even score not noteworthy", statLine(5, 4, 0, "JUNGLE"), LevelNone},
		{"slightly behind", statLine(2, 6, 1, "BOTTOM"), LevelMinor},
		// Support assists weigh 0.75, so 2 + 0.75 - 9 stays under zero.
		{"support feeding", statLine(2, 9, 1, "UTILITY"), LevelNormal},
		{"normal range", statLine(0, 8, 2, "TOP"), LevelNormal},
		{"big range", statLine(3, 13, 0, "MIDDLE"), LevelBig},
		{"turbo range", statLine(0, 20, 5, "BOTTOM"), LevelTurbo},
		{"unknown position uses fallback", statLine(0, 9, 0, ""), LevelNormal},
		{"high deaths but positive score", statLine(25, 12, 4, "JUNGLE"), LevelNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := eval.Evaluate(tc.stats, match); got != tc.want {
				t.Fatalf("Evaluate(%d/%d/%d %v) = %v, want %v",
					tc.stats.Kills, tc.stats.Deaths, tc.stats.Assists, tc.stats.Position, got, tc.want)
			}
		})
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eval, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stats := statLine(2, 9, 1, "UTILITY")
	match := &storage.Match{ID: "NA1_1"}

	first := eval.Evaluate(stats, match)
	for i := 0; i < 100; i++ {
		if got := eval.Evaluate(stats, match); got != first {
			t.Fatalf("run %d: Evaluate = %v, want %v", i, got, first)
		}
	}
}

func TestEvaluateFloorDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Floor.Enabled = false
	eval, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// 1 kill, 4 deaths scores -3: noteworthy once the carve-out is off.
	got := eval.Evaluate(statLine(1, 4, 0, "TOP"), &storage.Match{})
	if got != LevelMinor {
		t.Fatalf("Evaluate = %v, want %v", got, LevelMinor)
	}
}

func TestEvaluateThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = -5
	eval, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Score -3 is above the lowered threshold.
	if got := eval.Evaluate(statLine(0, 3, 0, "TOP"), &storage.Match{}); got != LevelNone {
		t.Fatalf("Evaluate = %v, want %v", got, LevelNone)
	}
	// Score -6 is below it.
	if got := eval.Evaluate(statLine(0, 6, 0, "TOP"), &storage.Match{}); got != LevelMinor {
		t.Fatalf("Evaluate = %v, want %v", got, LevelMinor)
	}
}
