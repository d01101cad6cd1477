package transcript

import (
	"errors"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"lectern/internal/cue"
)

// ErrNoContent signals that assembly produced no prose at all. Callers must
// not write an output file in that case.
var ErrNoContent = errors.New("no transcript produced")

// continuationWords keep a candidate sentence start glued to the open
// accumulator. Matching is exact, word plus trailing space.
var continuationWords = []string{
	"And ", "But ", "Or ", "So ", "Then ", "However ", "Therefore ",
}

var terminalRunes = map[rune]bool{'.': true, '!': true, '?': true, ':': true, ';': true}

var flushRunes = map[rune]bool{'.': true, '!': true, '?': true}

// Assemble merges decoded cues from every segment file of one video into a
// single paragraph-structured document. Cues are stably sorted by start time
// before any stateful processing, so the result is identical for any
// enumeration order of the input files. Exact duplicate texts collapse to the
// first occurrence. All accumulator and dedup state is local to the call;
// nothing leaks between videos.
func Assemble(cues []cue.Cue) (string, error) {
	sorted := make([]cue.Cue, len(cues))
	copy(sorted, cues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartMs < sorted[j].StartMs
	})

	seen := make(map[string]struct{}, len(sorted))
	var paragraphs []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			paragraphs = append(paragraphs, current.String())
			current.Reset()
		}
	}

	for _, c := range sorted {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}

		if current.Len() == 0 {
			current.WriteString(text)
		} else if startsNewSentence(current.String(), text) {
			flush()
			current.WriteString(text)
		} else {
			current.WriteByte(' ')
			current.WriteString(text)
		}

		if last, ok := lastNonSpaceRune(current.String()); ok && flushRunes[last] {
			flush()
		}
	}
	flush()

	if len(paragraphs) == 0 {
		return "", ErrNoContent
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// startsNewSentence applies the paragraph-break heuristic: an uppercase-led
// cue is a candidate new sentence when the open accumulator does not already
// end in terminal punctuation, unless the cue begins with a continuation
// word. Lowercase-led cues always continue the current sentence.
func startsNewSentence(accumulated, text string) bool {
	first, _ := utf8.DecodeRuneInString(text)
	if !unicode.IsUpper(first) {
		return false
	}
	last, ok := lastNonSpaceRune(accumulated)
	if ok && terminalRunes[last] {
		return false
	}
	for _, word := range continuationWords {
		if strings.HasPrefix(text, word) {
			return false
		}
	}
	return true
}

func lastNonSpaceRune(value string) (rune, bool) {
	for i := len(value); i > 0; {
		r, size := utf8.DecodeLastRuneInString(value[:i])
		if r == utf8.RuneError && size <= 1 {
			return 0, false
		}
		if !unicode.IsSpace(r) {
			return r, true
		}
		i -= size
	}
	return 0, false
}
