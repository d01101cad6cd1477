package cue_test

import (
	"testing"

	"lectern/internal/cue"
)

func TestDecodeBasicFragment(t *testing.T) {
	data := []byte("WEBVTT\n" +
		"Kind: captions\n" +
		"Language: en\n" +
		"\n" +
		"1\n" +
		"00:00:01.000 --> 00:00:03.500\n" +
		"Hello world.\n" +
		"\n" +
		"2\n" +
		"00:00:03.500 --> 00:00:05.000\n" +
		"Second line\n" +
		"continues here.\n")

	cues := cue.Decode(data)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].StartMs != 1000 || cues[0].EndMs != 3500 {
		t.Fatalf("unexpected timing: %+v", cues[0])
	}
	if cues[0].SequenceID != "1" {
		t.Fatalf("expected sequence id 1, got %q", cues[0].SequenceID)
	}
	if cues[0].Text != "Hello world." {
		t.Fatalf("unexpected text: %q", cues[0].Text)
	}
	if cues[1].Text != "Second line continues here." {
		t.Fatalf("expected multi-line join with single space, got %q", cues[1].Text)
	}
}

func TestDecodeHeaderlessFragment(t *testing.T) {
	data := []byte("00:00:02.000 --> 00:00:04.000\nNo header here.\n")
	cues := cue.Decode(data)
	if len(cues) != 1 || cues[0].Text != "No header here." {
		t.Fatalf("unexpected cues: %+v", cues)
	}
}

func TestDecodeMetadataAnywhere(t *testing.T) {
	data := []byte("00:00:01.000 --> 00:00:02.000\nFirst.\n" +
		"\n" +
		"WEBVTT\n" +
		"X-TIMESTAMP-MAP=MPEGTS:900000,LOCAL:00:00:00.000\n" +
		"\n" +
		"00:00:02.000 --> 00:00:03.000\nSecond.\n")
	cues := cue.Decode(data)
	if len(cues) != 2 {
		t.Fatalf("expected duplicate headers dropped mid-buffer, got %d cues", len(cues))
	}
}

func TestDecodeMetadataOnlyYieldsNoCues(t *testing.T) {
	data := []byte("WEBVTT\nKind: captions\nLanguage: en\nNOTE something\n")
	if cues := cue.Decode(data); len(cues) != 0 {
		t.Fatalf("expected zero cues, got %d", len(cues))
	}
}

func TestDecodeSkipsBlocksWithoutRangeLine(t *testing.T) {
	data := []byte("garbage line\nmore garbage\n\n00:00:01.000 --> 00:00:02.000\nKept.\n")
	cues := cue.Decode(data)
	if len(cues) != 1 || cues[0].Text != "Kept." {
		t.Fatalf("unexpected cues: %+v", cues)
	}
}

func TestDecodeMalformedTimestampDefaultsToZero(t *testing.T) {
	data := []byte("bogus --> 00:00:02.000\nStill a cue.\n")
	cues := cue.Decode(data)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].StartMs != 0 {
		t.Fatalf("expected zero start for malformed timestamp, got %d", cues[0].StartMs)
	}
	if cues[0].EndMs != 2000 {
		t.Fatalf("expected end parsed independently, got %d", cues[0].EndMs)
	}
}

func TestDecodeKeepsEmptyCueText(t *testing.T) {
	data := []byte("00:00:01.000 --> 00:00:02.000\n\n00:00:02.000 --> 00:00:03.000\nText.\n")
	cues := cue.Decode(data)
	// The blank line after the first range line ends that block, leaving a
	// cue with empty text; content policy belongs to assembly, not decoding.
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d: %+v", len(cues), cues)
	}
	if cues[0].Text != "" {
		t.Fatalf("expected empty text kept, got %q", cues[0].Text)
	}
}

func TestDecodeIgnoresNonDigitLeadingLines(t *testing.T) {
	data := []byte("cue-id-abc\n00:00:05.000 --> 00:00:06.000\nIdentified.\n")
	cues := cue.Decode(data)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].SequenceID != "" {
		t.Fatalf("expected no sequence id for non-numeric lead, got %q", cues[0].SequenceID)
	}
}

func TestDecodeCueSettingsAfterEndTimestamp(t *testing.T) {
	data := []byte("00:00:01.000 --> 00:00:02.000 align:start position:0%\nWith settings.\n")
	cues := cue.Decode(data)
	if len(cues) != 1 || cues[0].EndMs != 2000 {
		t.Fatalf("unexpected cues: %+v", cues)
	}
}
