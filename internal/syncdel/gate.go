package syncdel

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// GateAction is the safety gate's verdict for one event.
type GateAction int

const (
	GateProceed GateAction = iota
	GateSkip
	// GateDisable means the handler must switch itself off.
	GateDisable
)

func (a GateAction) String() string {
	switch a {
	case GateProceed:
		return "proceed"
	case GateSkip:
		return "skip"
	case GateDisable:
		return "disable"
	default:
		return "unknown"
	}
}

// GateResult pairs the verdict with the reason for a skip or disable.
type GateResult struct {
	Action GateAction
	Kind   Kind
}

// CheckSafety runs the guard checks that must pass before a deletion can be
// propagated. The enable toggle is the caller's responsibility.
//
// A payload without item_isvirtual yields GateDisable: without that flag the
// pipeline cannot tell placeholders from real files.
func CheckSafety(raw RawEvent, settings Settings) GateResult {
	virtual, ok := raw.Get(FieldItemIsVirtual)
	if !ok {
		return GateResult{Action: GateDisable, Kind: KindMissingItemVirtualFlag}
	}
	if virtual == "True" {
		return GateResult{Action: GateSkip, Kind: KindVirtualItem}
	}
	if path, ok := raw.Get(FieldMediaPath); ok && PathExcluded(path, settings.ExcludedPaths) {
		return GateResult{Action: GateSkip, Kind: KindPathExcluded}
	}
	return GateResult{Action: GateProceed}
}

// PathExcluded reports whether the absolute form of path starts with the
// absolute form of any prefix. The comparison is on strings, so "/media/tv"
// also covers "/media/tv2".
func PathExcluded(path string, prefixes []string) bool {
	if path == "" || len(prefixes) == 0 {
		return false
	}
	target := normalizePath(path)
	for _, prefix := range prefixes {
		if strings.TrimSpace(prefix) == "" {
			continue
		}
		if strings.HasPrefix(target, normalizePath(prefix)) {
			return true
		}
	}
	return false
}

// normalizePath resolves p to a clean absolute path in Unicode NFC, so names
// written by macOS clients in decomposed form still compare equal. A leading
// ~ expands to the home directory.
func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	} else {
		p = filepath.Clean(p)
	}
	return norm.NFC.String(p)
}
