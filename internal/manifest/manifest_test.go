package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"lectern/internal/manifest"
)

const sampleManifest = `{
  "course": "Go from Scratch",
  "sections": [
    {
      "label": "Section 1: Basics",
      "lectures": [
        {"id": "l1", "title": "Hello Go", "url": "https://learn.example.com/l1"},
        {"id": "l2", "title": "Types", "url": "https://learn.example.com/l2"}
      ]
    },
    {
      "label": "Section 2: Concurrency",
      "lectures": [
        {"id": "l3", "title": "Goroutines", "url": "https://learn.example.com/l3"}
      ]
    }
  ]
}`

func parseSample(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

func TestFlattenPreservesOrder(t *testing.T) {
	entries, err := parseSample(t).Flatten(manifest.Filter{})
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].LectureID != "l1" || entries[2].LectureID != "l3" {
		t.Fatalf("order not preserved: %+v", entries)
	}
	if entries[2].SectionLabel != "Section 2: Concurrency" {
		t.Fatalf("section context missing: %+v", entries[2])
	}
}

func TestFlattenFuzzySectionFilter(t *testing.T) {
	entries, err := parseSample(t).Flatten(manifest.Filter{Section: "concurrency"})
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if len(entries) != 1 || entries[0].LectureID != "l3" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestFlattenSectionIndex(t *testing.T) {
	entries, err := parseSample(t).Flatten(manifest.Filter{SectionIndex: 2})
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if len(entries) != 1 || entries[0].LectureID != "l3" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	if _, err := parseSample(t).Flatten(manifest.Filter{SectionIndex: 5}); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestFlattenLimitAppliesOnlyUnfiltered(t *testing.T) {
	entries, err := parseSample(t).Flatten(manifest.Filter{Limit: 2})
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit applied, got %d entries", len(entries))
	}

	// An explicit section target is never truncated by the batch cap.
	entries, err = parseSample(t).Flatten(manifest.Filter{Section: "Basics", Limit: 1})
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected full filtered section, got %d entries", len(entries))
	}
}

func TestFlattenNoMatch(t *testing.T) {
	if _, err := parseSample(t).Flatten(manifest.Filter{Section: "nonexistent"}); err == nil {
		t.Fatal("expected error for unmatched section filter")
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	m, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Course != "Go from Scratch" || len(m.Sections) != 2 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}
