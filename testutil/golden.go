// Package testutil provides golden-file comparison helpers shared by
// package tests that check generated text against a checked-in fixture.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// UpdateGoldens controls whether CompareWithGoldenText overwrites the
// fixture instead of comparing against it. Set via:
// UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenPath returns the path to a golden fixture under dir/name.golden.
func GoldenPath(dir, name, ext string) string {
	return filepath.Join(dir, name+".golden"+ext)
}

// CompareWithGoldenText compares actual text against the fixture at
// dir/name.golden<ext>, or writes it when UpdateGoldens is set.
func CompareWithGoldenText(t *testing.T, dir, name, ext, actual string) {
	t.Helper()

	path := GoldenPath(dir, name, ext)

	if UpdateGoldens {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("failed to create golden directory %q: %v", dir, err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			t.Fatalf("failed to write golden file %q: %v", path, err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s\nrun with UPDATE_GOLDENS=true to create it", path)
		}
		t.Fatalf("failed to read golden file %q: %v", path, err)
	}

	if string(want) != actual {
		t.Errorf("golden mismatch for %s\n--- want ---\n%s\n--- got ---\n%s", path, want, actual)
	}
}
