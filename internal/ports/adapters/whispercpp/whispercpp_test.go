package whispercpp

import (
	"testing"

	"github.com/tavm/clipcap/internal/types"
)

func TestFlattenTranscript_WordsPreferred(t *testing.T) {
	tr := types.Transcript{Segments: []types.Segment{
		{Start: 0, End: 1, Text: "hello world", Words: []types.Word{
			{Start: 0.0, End: 0.3, Word: " hello"},
			{Start: 0.3, End: 0.8, Word: "world "},
			{Start: 0.8, End: 0.8, Word: "glitch"}, // zero-length, skipped
		}},
	}}
	caps := FlattenTranscript(tr)
	if len(caps) != 2 {
		t.Fatalf("expected 2 captions, got %+v", caps)
	}
	if caps[0].Text != "hello" || caps[0].StartMs != 0 || caps[0].EndMs != 300 {
		t.Fatalf("unexpected first caption: %+v", caps[0])
	}
	if caps[1].Text != "world" || caps[1].StartMs != 300 {
		t.Fatalf("unexpected second caption: %+v", caps[1])
	}
}

func TestFlattenTranscript_SegmentFallback(t *testing.T) {
	tr := types.Transcript{Segments: []types.Segment{
		{Start: 1.5, End: 2.5, Text: "  no words here  "},
		{Start: 3, End: 4, Text: "   "},
	}}
	caps := FlattenTranscript(tr)
	if len(caps) != 1 {
		t.Fatalf("expected 1 caption, got %+v", caps)
	}
	if caps[0].Text != "no words here" || caps[0].StartMs != 1500 || caps[0].EndMs != 2500 {
		t.Fatalf("unexpected caption: %+v", caps[0])
	}
}
