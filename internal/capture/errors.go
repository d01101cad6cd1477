package capture

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoVideoID means the pipeline never observed a video identifier
	// within the bounded discovery window.
	ErrNoVideoID = errors.New("no video id observed")
	// ErrNoSegments means zero segments were available at assembly time.
	ErrNoSegments = errors.New("no segments captured")
	// ErrEmptyTranscript means assembly produced no prose.
	ErrEmptyTranscript = errors.New("empty transcript")
	// ErrTransient marks failures worth retrying manually.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "capture failure"
	}
	return strings.Join(parts, ": ")
}
