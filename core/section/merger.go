// Package section maintains versioned sections of a wiki document body.
package section

import (
	"fmt"
	"html"
	"strings"
)

// Document is a wiki page as read from and written to the document store.
type Document struct {
	ID    string
	Title string
	// Version is the store's optimistic concurrency counter.
	Version int
	Body    string
}

// HeadingFormat is the heading contract shared by whatever renders section
// headings and the Merger that finds them again.
type HeadingFormat struct {
	// Level is the heading level, 1 to 6.
	Level int
}

// DefaultHeading delimits sections with <h1> headings.
var DefaultHeading = HeadingFormat{Level: 1}

// Validate checks the heading level.
func (h HeadingFormat) Validate() error {
	if h.Level < 1 || h.Level > 6 {
		return fmt.Errorf("heading level must be between 1 and 6, got %d", h.Level)
	}
	return nil
}

// Marker returns the exact heading markup of a section label.
func (h HeadingFormat) Marker(label string) string {
	return fmt.Sprintf("<h%d>%s</h%d>", h.Level, html.EscapeString(label), h.Level)
}

// nextBoundary returns the offset of the first heading of the same level in
// s, or -1. Both <hN> and <hN ...> open a heading.
func (h HeadingFormat) nextBoundary(s string) int {
	open := fmt.Sprintf("<h%d", h.Level)
	for off := 0; ; {
		i := strings.Index(s[off:], open)
		if i < 0 {
			return -1
		}
		i += off
		if j := i + len(open); j < len(s) && (s[j] == '>' || s[j] == ' ' || s[j] == '\t' || s[j] == '\n') {
			return i
		}
		off = i + len(open)
	}
}

// Merger inserts or replaces the section of one version label.
type Merger struct {
	Heading HeadingFormat
}

// Merge returns doc with the section of label set to content and Version
// incremented by one.
//
// When the label's heading exists, everything strictly between it and the
// next heading of the same level (or the end of the body) is replaced; the
// heading itself and everything from the next heading on stay untouched. A
// missing section is appended. Merging the same content twice yields the
// same body.
func (m Merger) Merge(doc Document, label, content string) (Document, error) {
	h := m.Heading
	if h == (HeadingFormat{}) {
		h = DefaultHeading
	}
	if err := h.Validate(); err != nil {
		return Document{}, err
	}
	if strings.TrimSpace(label) == "" {
		return Document{}, fmt.Errorf("version label cannot be empty")
	}

	marker := h.Marker(label)
	section := "\n" + content + "\n"
	body := doc.Body

	if i := strings.Index(body, marker); i >= 0 {
		start := i + len(marker)
		end := len(body)
		if j := h.nextBoundary(body[start:]); j >= 0 {
			end = start + j
		}
		body = body[:start] + section + body[end:]
	} else {
		body = body + marker + section
	}

	out := doc
	out.Body = body
	out.Version = doc.Version + 1
	return out, nil
}
