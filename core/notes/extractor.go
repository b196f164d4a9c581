package notes

import (
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// AllKey is the single key of an unfilled note's values.
	AllKey = "ALL"
	// Unfilled marks a note the reporter left empty.
	Unfilled = "TO_FILL"
)

// DefaultFillerGlyphs are placeholder texts that count as an empty note.
var DefaultFillerGlyphs = []string{"-", "–", "_", "—"}

// DefaultMinLength is the longest trimmed note, in runes, still treated as
// unfilled.
const DefaultMinLength = 3

// Note is the parsed form of a release note. The zero value is the unfilled
// sentinel.
type Note struct {
	filled   bool
	values   [fieldCount]string
	segments []segment
}

// segment is a run of note text owned by one keyword, or unmatched text when
// keyed is false. lines[0] is the text on the keyword's own line.
type segment struct {
	field Field
	keyed bool
	label string
	lines []string
}

// IsUnfilled reports whether the note is the unfilled sentinel.
func (n Note) IsUnfilled() bool { return !n.filled }

// Value returns the trimmed value of f, "" when absent or unfilled.
func (n Note) Value(f Field) string {
	if !n.filled || f < 0 || f >= fieldCount {
		return ""
	}
	return n.values[f]
}

// Values returns the structured mapping of the note: {"ALL": "TO_FILL"} for an
// unfilled note, otherwise one entry per field key.
func (n Note) Values() map[string]string {
	if !n.filled {
		return map[string]string{AllKey: Unfilled}
	}
	out := make(map[string]string, fieldCount)
	for _, f := range Fields {
		out[f.Key()] = n.values[f]
	}
	return out
}

// Extractor parses note text. The zero value uses the English keywords and
// default thresholds.
type Extractor struct {
	Keywords     Keywords
	FillerGlyphs []string
	// MinLength is the longest trimmed note, in runes, treated as unfilled.
	MinLength int
}

// NewExtractor returns an extractor for the given keywords with default
// thresholds.
func NewExtractor(keywords Keywords) *Extractor {
	return &Extractor{
		Keywords:     keywords,
		FillerGlyphs: slices.Clone(DefaultFillerGlyphs),
		MinLength:    DefaultMinLength,
	}
}

// IsUnfilled reports whether text counts as an empty note.
func (e *Extractor) IsUnfilled(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return true
	}
	if slices.Contains(e.fillerGlyphs(), t) {
		return true
	}
	return utf8.RuneCountInString(t) <= e.minLength()
}

// Extract parses text into a Note. Unfilled text yields the sentinel without
// any field parsing.
//
// The scan is a state machine over lines whose state is the current field.
// A line may hold several "<Keyword>:" anchors; text before the first anchor
// continues the current field, and each anchor opens a new one. A line with
// no anchor continues the current field, or is unmatched text when no field
// is open yet. Line-oriented and inline notes thus parse alike.
func (e *Extractor) Extract(text string) Note {
	if e.IsUnfilled(text) {
		return Note{}
	}

	var segs []segment
	continueWith := func(s string) {
		if s == "" {
			return
		}
		if len(segs) == 0 {
			segs = append(segs, segment{})
		}
		last := &segs[len(segs)-1]
		last.lines = append(last.lines, s)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		anchors := e.findAnchors(line)
		if len(anchors) == 0 {
			continueWith(line)
			continue
		}
		continueWith(strings.TrimSpace(line[:anchors[0].start]))
		for i, a := range anchors {
			end := len(line)
			if i+1 < len(anchors) {
				end = anchors[i+1].start
			}
			segs = append(segs, segment{
				field: a.field,
				keyed: true,
				label: e.keywords().Label(a.field),
				lines: []string{strings.TrimSpace(line[a.end:end])},
			})
		}
	}

	n := Note{filled: true, segments: segs}
	var set [fieldCount]bool
	for _, s := range segs {
		if !s.keyed || set[s.field] {
			continue
		}
		set[s.field] = true
		n.values[s.field] = normalizeValue(strings.Join(s.lines, "\n"))
	}
	return n
}

type anchor struct {
	field      Field
	start, end int
}

// findAnchors returns the keyword anchors of a line in order. An anchor is a
// keyword at line start or after a blank, followed by optional blanks and a
// colon; the longest keyword wins at a position.
func (e *Extractor) findAnchors(line string) []anchor {
	kw := e.keywords()
	var out []anchor
	for i := 0; i < len(line); {
		if i > 0 && line[i-1] != ' ' && line[i-1] != '\t' {
			i++
			continue
		}
		best := -1
		bestEnd := 0
		for _, f := range Fields {
			k := kw[f]
			if k == "" || i+len(k) > len(line) {
				continue
			}
			if !strings.EqualFold(line[i:i+len(k)], k) {
				continue
			}
			j := i + len(k)
			for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
				j++
			}
			if j < len(line) && line[j] == ':' && (best < 0 || len(k) > len(kw[best])) {
				best = int(f)
				bestEnd = j + 1
			}
		}
		if best < 0 {
			i++
			continue
		}
		out = append(out, anchor{field: Field(best), start: i, end: bestEnd})
		i = bestEnd
	}
	return out
}

func (e *Extractor) keywords() Keywords {
	if e.Keywords == (Keywords{}) {
		return EnglishKeywords
	}
	return e.Keywords
}

func (e *Extractor) fillerGlyphs() []string {
	if e.FillerGlyphs == nil {
		return DefaultFillerGlyphs
	}
	return e.FillerGlyphs
}

func (e *Extractor) minLength() int {
	if e.MinLength <= 0 {
		return DefaultMinLength
	}
	return e.MinLength
}

func normalizeValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "-" {
		return ""
	}
	return v
}
