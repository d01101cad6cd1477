package cue

import (
	"strings"
)

// Cue is one decoded timed-text entry. Immutable once decoded. Two cues are
// considered identical when their trimmed text matches; timing is ignored for
// that comparison because overlapping segment files legitimately repeat the
// same cue at different transport timings.
type Cue struct {
	StartMs    uint64
	EndMs      uint64
	Text       string
	SequenceID string
}

const rangeSeparator = " --> "

// Decode parses one raw timed-text buffer into cues. It never fails: headers
// and metadata lines are dropped wherever they appear, blocks without a range
// line are skipped, and malformed timestamps decode as zero. Headerless or
// fully malformed content yields an empty slice.
func Decode(data []byte) []Cue {
	lines := strings.Split(string(data), "\n")

	var cues []Cue
	var block []string
	flush := func() {
		if len(block) > 0 {
			if c, ok := decodeBlock(block); ok {
				cues = append(cues, c)
			}
			block = block[:0]
		}
	}

	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if isMetadataLine(line) {
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	return cues
}

func decodeBlock(lines []string) (Cue, bool) {
	rangeIdx := -1
	for i, line := range lines {
		if strings.Contains(line, rangeSeparator) {
			rangeIdx = i
			break
		}
	}
	if rangeIdx < 0 {
		return Cue{}, false
	}

	var c Cue

	// A lone all-digit line directly before the range line is a sequence
	// number; any other leading lines are cue identifiers or settings noise.
	if rangeIdx > 0 {
		if prev := strings.TrimSpace(lines[rangeIdx-1]); isDigits(prev) {
			c.SequenceID = prev
		}
	}

	rangeLine := lines[rangeIdx]
	sep := strings.Index(rangeLine, rangeSeparator)
	c.StartMs = parseTimestampMs(strings.TrimSpace(rangeLine[:sep]))
	end := strings.TrimSpace(rangeLine[sep+len(rangeSeparator):])
	// Cue settings may trail the end timestamp.
	if fields := strings.Fields(end); len(fields) > 0 {
		c.EndMs = parseTimestampMs(fields[0])
	}

	c.Text = strings.TrimSpace(strings.Join(lines[rangeIdx+1:], " "))
	return c, true
}

var metadataPrefixes = []string{
	"WEBVTT",
	"NOTE",
	"Kind:",
	"Language:",
	"X-TIMESTAMP-MAP",
	"STYLE",
	"REGION",
}

// isMetadataLine matches header and metadata lines anywhere in the buffer:
// captured fragments omit or duplicate headers at arbitrary positions.
func isMetadataLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range metadataPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseTimestampMs parses HH:MM:SS.mmm into milliseconds. Anything that does
// not match decodes as zero; malformed timestamps sort to the front rather
// than failing the whole fragment.
func parseTimestampMs(value string) uint64 {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0
	}
	secParts := strings.SplitN(parts[2], ".", 2)
	if len(secParts) != 2 {
		return 0
	}
	hours, ok1 := parseUint(parts[0])
	minutes, ok2 := parseUint(parts[1])
	seconds, ok3 := parseUint(secParts[0])
	millis, ok4 := parseUint(secParts[1])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0
	}
	return ((hours*60+minutes)*60+seconds)*1000 + millis
}

func parseUint(value string) (uint64, bool) {
	if value == "" {
		return 0, false
	}
	var n uint64
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + uint64(r-'0')
	}
	return n, true
}
