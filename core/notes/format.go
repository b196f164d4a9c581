package notes

import "strings"

// Run is a piece of composite note text. Emphasis marks a keyword.
type Run struct {
	Text     string
	Emphasis bool
}

// Composite renders the whole note as text runs: every keyword emphasized
// and followed by its value, continuation lines indented by two spaces, and
// unmatched text kept as written. An unfilled note is a single emphasized
// Unfilled run.
func Composite(n Note) []Run {
	if n.IsUnfilled() {
		return []Run{{Text: Unfilled, Emphasis: true}}
	}
	var runs []Run
	for i, s := range n.segments {
		sep := ""
		if i > 0 {
			sep = "\n"
		}
		if !s.keyed {
			runs = append(runs, Run{Text: sep + strings.Join(s.lines, "\n")})
			continue
		}
		runs = append(runs, Run{Text: sep + s.label + ":", Emphasis: true})
		var b strings.Builder
		for j, line := range s.lines {
			switch {
			case j == 0 && line != "":
				b.WriteString(" " + line)
			case j > 0:
				b.WriteString("\n  " + line)
			}
		}
		if b.Len() > 0 {
			runs = append(runs, Run{Text: b.String()})
		}
	}
	return runs
}

// Format renders the composite note as a Markdown fragment: keywords in
// **bold**, note text with Markdown punctuation escaped, one line per field
// or continuation line. An unfilled note renders as Unfilled.
func Format(n Note) string {
	if n.IsUnfilled() {
		return Unfilled
	}
	var b strings.Builder
	for _, r := range Composite(n) {
		if r.Emphasis {
			// Leading separators stay outside the markers.
			text := strings.TrimLeft(r.Text, "\n")
			b.WriteString(r.Text[:len(r.Text)-len(text)])
			b.WriteString("**" + escapeMarkdown(text) + "**")
			continue
		}
		b.WriteString(escapeMarkdown(r.Text))
	}
	return b.String()
}

// Scalars returns one value per field, "" for fields an unfilled note lacks.
func Scalars(n Note) map[Field]string {
	out := make(map[Field]string, fieldCount)
	for _, f := range Fields {
		out[f] = n.Value(f)
	}
	return out
}

// PlainText is the composite without emphasis, used when a richer rendering
// of the note fails.
func PlainText(n Note) string {
	var b strings.Builder
	for _, r := range Composite(n) {
		b.WriteString(r.Text)
	}
	return b.String()
}

const markdownPunct = "\\`*_{}[]()<>#+-=.!|~&"

func escapeMarkdown(s string) string {
	if !strings.ContainsAny(s, markdownPunct) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if r < 128 && strings.ContainsRune(markdownPunct, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
