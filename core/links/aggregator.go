// Package links collects the cross-references of a ticket from its issue
// links, web links and remote links.
package links

import (
	"log/slog"
	"net/url"
	"strings"
)

// Source tells where a cross-reference was found.
type Source int

const (
	SourceInternal Source = iota + 1
	SourceWeb
	SourceRemote
)

func (s Source) String() string {
	switch s {
	case SourceInternal:
		return "internal"
	case SourceWeb:
		return "web"
	case SourceRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Direction of an issue-to-issue link as seen from the ticket that holds it.
type Direction int

const (
	Outward Direction = iota + 1
	Inward
)

// IssueLink points from a ticket to another ticket.
type IssueLink struct {
	Direction Direction
	// Relation is the tracker's link description, e.g. "relates to".
	Relation string
	Key      string
}

// WebLink is an attached hyperlink. Title may be empty.
type WebLink struct {
	URL   string
	Title string
}

// CrossReference is one outbound hyperlink of a ticket. The url and title are
// raw; escaping is up to the renderer.
type CrossReference struct {
	URL    string
	Title  string
	Source Source
}

// Sources holds the raw links of one ticket. RemoteErr records a failed
// remote-link fetch, which contributes nothing.
type Sources struct {
	Ticket      string
	IssueLinks  []IssueLink
	WebLinks    []WebLink
	RemoteLinks []WebLink
	RemoteErr   error
}

// AllowList holds domain suffixes. A host matches a suffix when it equals it
// or ends with "." followed by it.
type AllowList []string

// Allows reports whether rawURL points to an allowed host.
func (a AllowList) Allows(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return false
	}
	for _, d := range a {
		d = strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Aggregator classifies, filters and deduplicates cross-references.
type Aggregator struct {
	AllowList AllowList
	// BrowseBase is the tracker base URL used to build links to other tickets.
	BrowseBase string
	// IncludeInward also keeps links where the other ticket points at this one.
	IncludeInward bool
}

// Aggregate concatenates issue links, web links and remote links in that
// order, drops URLs outside the allow-list and keeps the first occurrence of
// every URL.
func (a *Aggregator) Aggregate(src Sources) []CrossReference {
	if src.RemoteErr != nil {
		slog.Warn("Failed to fetch remote links, continuing without them", "ticket", src.Ticket, "error", src.RemoteErr)
	}

	var all []CrossReference
	for _, l := range src.IssueLinks {
		if l.Key == "" {
			continue
		}
		if l.Direction != Outward && !(a.IncludeInward && l.Direction == Inward) {
			continue
		}
		all = append(all, CrossReference{URL: a.browseURL(l.Key), Title: l.Key, Source: SourceInternal})
	}
	all = appendWebLinks(all, src.WebLinks, SourceWeb)
	if src.RemoteErr == nil {
		all = appendWebLinks(all, src.RemoteLinks, SourceRemote)
	}

	seen := make(map[string]struct{}, len(all))
	out := make([]CrossReference, 0, len(all))
	for _, ref := range all {
		if !a.AllowList.Allows(ref.URL) {
			slog.Debug("Dropping cross-reference outside allow-list", "ticket", src.Ticket, "url", ref.URL)
			continue
		}
		if _, dup := seen[ref.URL]; dup {
			continue
		}
		seen[ref.URL] = struct{}{}
		out = append(out, ref)
	}
	return out
}

func (a *Aggregator) browseURL(key string) string {
	return strings.TrimRight(a.BrowseBase, "/") + "/browse/" + key
}

func appendWebLinks(dst []CrossReference, src []WebLink, kind Source) []CrossReference {
	for _, l := range src {
		u := strings.TrimSpace(l.URL)
		if u == "" {
			continue
		}
		title := strings.TrimSpace(l.Title)
		if title == "" {
			title = u
		}
		dst = append(dst, CrossReference{URL: u, Title: title, Source: kind})
	}
	return dst
}
