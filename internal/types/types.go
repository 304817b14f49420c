package types

// Caption is a single word-level token of transcribed speech. Times are
// milliseconds from the start of the clip, matching the caption JSON written
// next to each rendered clip.
type Caption struct {
	Text    string  `json:"text"`
	StartMs float64 `json:"startMs"`
	EndMs   float64 `json:"endMs"`
}

// CaptionTrack is the on-disk caption file format.
type CaptionTrack struct {
	Captions []Caption `json:"captions"`
}

// Page is a contiguous run of captions shown together as one subtitle block.
type Page struct {
	StartMs float64
	Tokens  []Caption
}

// PageInterval places one page on the output timeline as a half-open frame
// range [StartFrame, StartFrame+DurationFrames). Page indexes into the page
// slice the interval was computed from.
type PageInterval struct {
	Page           int
	StartFrame     int
	DurationFrames int
}

// Transcript mirrors the whisper.cpp JSON output.
type Transcript struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// Manifest describes one finished run.
type Manifest struct {
	Source    string   `json:"source"`
	SessionID string   `json:"session_id"`
	Clip      ClipInfo `json:"clip"`
}

type ClipInfo struct {
	File        string  `json:"file"`
	Captions    string  `json:"captions"`
	Rendered    string  `json:"rendered"`
	StartSec    float64 `json:"start_sec"`
	DurationSec float64 `json:"duration_sec"`
	AspectRatio string  `json:"aspect_ratio"`
	FPS         int     `json:"fps"`
	Pages       int     `json:"pages"`
}
