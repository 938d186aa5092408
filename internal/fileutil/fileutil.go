package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// RemoveFile deletes path. A file that is already gone is not an error; the
// returned bool reports whether something was removed.
func RemoveFile(path string) (bool, error) {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("refusing to remove directory %s", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("remove %s: %w", path, err)
	}
	return true, nil
}

// PruneEmptyDirs removes dir and then each parent in turn while they are
// empty, never touching stop or anything above it. The walk ends at the first
// directory that still has entries or does not exist. A dir outside stop is
// left alone. The removed directories are returned deepest first.
func PruneEmptyDirs(dir, stop string) ([]string, error) {
	if stop == "" {
		return nil, nil
	}
	stop = filepath.Clean(stop)
	var removed []string
	current := filepath.Clean(dir)
	for within(current, stop) {
		entries, err := os.ReadDir(current)
		if errors.Is(err, fs.ErrNotExist) {
			return removed, nil
		}
		if err != nil {
			return removed, fmt.Errorf("read %s: %w", current, err)
		}
		if len(entries) > 0 {
			return removed, nil
		}
		if err := os.Remove(current); err != nil {
			return removed, fmt.Errorf("remove %s: %w", current, err)
		}
		removed = append(removed, current)
		current = filepath.Dir(current)
	}
	return removed, nil
}

// within reports whether path sits strictly below root.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Boundary returns the longest root that contains path, or "" when none does.
func Boundary(path string, roots []string) string {
	var best string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		if within(filepath.Clean(path), root) && len(root) > len(best) {
			best = root
		}
	}
	return best
}
