// Package segments persists raw captured subtitle fragments on disk, one
// directory per video id. Writes are idempotent by identity key: once a
// segment name exists for a video its bytes are never replaced, so a partial
// retry can never corrupt a complete capture.
package segments

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lectern/internal/fileutil"
	"lectern/internal/textutil"
)

// Store keeps raw segment files under a base directory.
type Store struct {
	baseDir string
}

// NewStore creates a store rooted at baseDir. The directory itself is created
// lazily per video.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Put persists data under (videoID, segmentName). It is a silent no-op when
// the key already exists and creates the video's namespace on demand. First
// write wins even under concurrent Puts: the bytes are linked into place, so
// a late duplicate can never replace persisted content.
func (s *Store) Put(videoID, segmentName string, data []byte) error {
	path, err := s.segmentPath(videoID, segmentName)
	if err != nil {
		return err
	}
	if fileutil.FileExists(path) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create segment directory: %w", err)
	}
	if err := fileutil.WriteFileOnce(path, data, 0o644); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("write segment %s/%s: %w", videoID, segmentName, err)
	}
	return nil
}

// List returns the stored segment names for a video in lexical order. A video
// with no segments yields an empty slice, not an error.
func (s *Store) List(videoID string) ([]string, error) {
	dir, err := s.videoDir(videoID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list segments for %s: %w", videoID, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the bytes stored under (videoID, segmentName).
func (s *Store) Read(videoID, segmentName string) ([]byte, error) {
	path, err := s.segmentPath(videoID, segmentName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segment %s/%s: %w", videoID, segmentName, err)
	}
	return data, nil
}

// ReadAll returns the contents of every stored segment for a video, in the
// same order List reports. The enumeration order is irrelevant to assembly,
// which sorts cues by time, but a stable order keeps runs reproducible.
func (s *Store) ReadAll(videoID string) ([][]byte, error) {
	names, err := s.List(videoID)
	if err != nil {
		return nil, err
	}
	contents := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := s.Read(videoID, name)
		if err != nil {
			return nil, err
		}
		contents = append(contents, data)
	}
	return contents, nil
}

func (s *Store) videoDir(videoID string) (string, error) {
	cleaned := textutil.SanitizeFileName(videoID)
	if cleaned == "" || strings.ContainsAny(cleaned, "/\\") {
		return "", fmt.Errorf("invalid video id %q", videoID)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

func (s *Store) segmentPath(videoID, segmentName string) (string, error) {
	dir, err := s.videoDir(videoID)
	if err != nil {
		return "", err
	}
	cleaned := textutil.SanitizeFileName(segmentName)
	if cleaned == "" || strings.ContainsAny(cleaned, "/\\") {
		return "", fmt.Errorf("invalid segment name %q", segmentName)
	}
	return filepath.Join(dir, cleaned), nil
}
