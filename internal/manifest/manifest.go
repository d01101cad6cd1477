// Package manifest models the course structure handed over by the scraping
// collaborator: a tree of sections, each holding ordered lectures. It is the
// sole seed for a run's job queue.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"lectern/internal/textutil"
)

// Lecture is one video lecture inside a section.
type Lecture struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Section groups lectures under a label.
type Section struct {
	Label    string    `json:"label"`
	Lectures []Lecture `json:"lectures"`
}

// Manifest is the scraped course tree.
type Manifest struct {
	Course   string    `json:"course,omitempty"`
	Sections []Section `json:"sections"`
}

// Entry is one flattened unit of work: a lecture with its section context.
type Entry struct {
	SectionLabel string
	Title        string
	LectureID    string
	SourceURL    string
}

// Filter narrows a flattened run. Section matches fuzzily (case-folded
// substring); SectionIndex selects by 1-based position. A filtered run
// ignores Limit: an explicit target is never silently truncated.
type Filter struct {
	Section      string
	SectionIndex int
	Limit        int
}

func (f Filter) filtered() bool {
	return strings.TrimSpace(f.Section) != "" || f.SectionIndex > 0
}

// Load reads and parses a manifest JSON document from disk.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes a manifest JSON document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Flatten materializes the ordered list of entries the filter selects.
func (m *Manifest) Flatten(f Filter) ([]Entry, error) {
	sections, err := m.selectSections(f)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, section := range sections {
		for _, lecture := range section.Lectures {
			entries = append(entries, Entry{
				SectionLabel: section.Label,
				Title:        lecture.Title,
				LectureID:    lecture.ID,
				SourceURL:    lecture.URL,
			})
		}
	}

	if !f.filtered() && f.Limit > 0 && len(entries) > f.Limit {
		entries = entries[:f.Limit]
	}
	return entries, nil
}

func (m *Manifest) selectSections(f Filter) ([]Section, error) {
	if f.SectionIndex > 0 {
		if f.SectionIndex > len(m.Sections) {
			return nil, fmt.Errorf("section index %d out of range, manifest has %d sections", f.SectionIndex, len(m.Sections))
		}
		return m.Sections[f.SectionIndex-1 : f.SectionIndex], nil
	}
	needle := strings.TrimSpace(f.Section)
	if needle == "" {
		return m.Sections, nil
	}
	var matched []Section
	for _, section := range m.Sections {
		if textutil.FoldContains(section.Label, needle) {
			matched = append(matched, section)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("no section matches %q", needle)
	}
	return matched, nil
}
