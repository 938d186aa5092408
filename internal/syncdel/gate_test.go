package syncdel_test

import (
	"path/filepath"
	"testing"

	"mediasyncdel/internal/syncdel"
)

func TestCheckSafety(t *testing.T) {
	excluded := []string{"/media/kids", "/mnt/archive/"}
	tests := []struct {
		name     string
		fields   map[string]string
		settings syncdel.Settings
		action   syncdel.GateAction
		kind     syncdel.Kind
	}{
		{
			name:   "missing virtual flag disables",
			fields: map[string]string{syncdel.FieldItemIsVirtual: "<absent>"},
			action: syncdel.GateDisable,
			kind:   syncdel.KindMissingItemVirtualFlag,
		},
		{
			name:   "empty virtual flag disables",
			fields: map[string]string{syncdel.FieldItemIsVirtual: ""},
			action: syncdel.GateDisable,
			kind:   syncdel.KindMissingItemVirtualFlag,
		},
		{
			name:   "virtual item skipped",
			fields: map[string]string{syncdel.FieldItemIsVirtual: "True"},
			action: syncdel.GateSkip,
			kind:   syncdel.KindVirtualItem,
		},
		{
			name:     "excluded path skipped",
			fields:   map[string]string{syncdel.FieldMediaPath: "/media/kids/Bluey/S01/E01.mkv"},
			settings: syncdel.Settings{ExcludedPaths: excluded},
			action:   syncdel.GateSkip,
			kind:     syncdel.KindPathExcluded,
		},
		{
			name:     "excluded prefix with trailing slash",
			fields:   map[string]string{syncdel.FieldMediaPath: "/mnt/archive/old.mkv"},
			settings: syncdel.Settings{ExcludedPaths: excluded},
			action:   syncdel.GateSkip,
			kind:     syncdel.KindPathExcluded,
		},
		{
			name:     "unnormalized media path skipped",
			fields:   map[string]string{syncdel.FieldMediaPath: "/media/movies/../kids/x.mkv"},
			settings: syncdel.Settings{ExcludedPaths: excluded},
			action:   syncdel.GateSkip,
			kind:     syncdel.KindPathExcluded,
		},
		{
			name:     "prefix elsewhere in path does not match",
			fields:   map[string]string{syncdel.FieldMediaPath: "/data/media/kids/x.mkv"},
			settings: syncdel.Settings{ExcludedPaths: excluded},
			action:   syncdel.GateProceed,
		},
		{
			name:   "no exclusions proceeds",
			fields: map[string]string{syncdel.FieldMediaPath: "/media/kids/x.mkv"},
			action: syncdel.GateProceed,
		},
		{
			name:     "no media path proceeds",
			settings: syncdel.Settings{ExcludedPaths: excluded},
			action:   syncdel.GateProceed,
		},
		{
			name: "virtual flag checked before exclusion",
			fields: map[string]string{
				syncdel.FieldItemIsVirtual: "<absent>",
				syncdel.FieldMediaPath:     "/media/kids/x.mkv",
			},
			settings: syncdel.Settings{ExcludedPaths: excluded},
			action:   syncdel.GateDisable,
			kind:     syncdel.KindMissingItemVirtualFlag,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := syncdel.CheckSafety(deletionEvent(tc.fields), tc.settings)
			if got.Action != tc.action {
				t.Fatalf("expected action %s, got %s", tc.action, got.Action)
			}
			if got.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, got.Kind)
			}
		})
	}
}

func TestPathExcludedResolvesRelativePaths(t *testing.T) {
	base := t.TempDir()
	t.Chdir(base)

	if !syncdel.PathExcluded(filepath.Join(base, "skip", "a.mkv"), []string{"skip"}) {
		t.Fatal("expected relative prefix to resolve against working directory")
	}
	if !syncdel.PathExcluded("skip/a.mkv", []string{filepath.Join(base, "skip")}) {
		t.Fatal("expected relative media path to resolve against working directory")
	}
}

func TestPathExcludedExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	if !syncdel.PathExcluded(filepath.Join(home, "media", "kids", "a.mkv"), []string{"~/media/kids"}) {
		t.Fatal("expected ~ prefix to expand to the home directory")
	}
	if syncdel.PathExcluded("/srv/media/kids/a.mkv", []string{"~/media/kids"}) {
		t.Fatal("expanded prefix must not match paths outside home")
	}
}

func TestPathExcludedComparesNFC(t *testing.T) {
	decomposed := "/media/Ame\u0301lie/film.mkv"
	composed := "/media/Am\u00e9lie"
	if !syncdel.PathExcluded(decomposed, []string{composed}) {
		t.Fatal("expected decomposed path to match composed prefix")
	}
}

func TestPathExcludedIgnoresBlankPrefixes(t *testing.T) {
	if syncdel.PathExcluded("/media/a.mkv", []string{"", "  "}) {
		t.Fatal("blank prefixes must not exclude everything")
	}
}
