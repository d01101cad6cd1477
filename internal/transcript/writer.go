package transcript

import (
	"fmt"
	"os"
	"path/filepath"

	"lectern/internal/fileutil"
	"lectern/internal/textutil"
)

// OutputPath derives the deterministic destination for one lecture transcript.
// Section and title are sanitized for filesystem use with whitespace
// collapsed, so repeated runs overwrite the same file instead of duplicating.
func OutputPath(baseDir, sectionLabel, title string) string {
	section := textutil.SanitizeFileName(sectionLabel)
	if section == "" {
		section = "section"
	}
	name := textutil.SanitizeFileName(title)
	if name == "" {
		name = "lecture"
	}
	return filepath.Join(baseDir, section, name+".txt")
}

// Write stores an assembled document at path, creating the section directory
// on demand.
func Write(path, document string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create transcript directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte(document+"\n"), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
