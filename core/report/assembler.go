// Package report builds the release-notes records handed to the renderers.
package report

import (
	"github.com/opensdd/relnotes/core/links"
	"github.com/opensdd/relnotes/core/notes"
)

// Ticket is a ticket as returned by the issue source.
type Ticket struct {
	Key     string
	Summary string
	// URL is the ticket's browse link.
	URL        string
	IssueLinks []links.IssueLink
	WebLinks   []links.WebLink
	// Note is the designated free-text release-note field, "" when absent.
	Note string
}

// Entry pairs a ticket with the result of its separate remote-link fetch.
type Entry struct {
	Ticket      Ticket
	RemoteLinks []links.WebLink
	RemoteErr   error
}

// Record is one row of the release notes.
type Record struct {
	Summary         string
	TicketID        string
	TicketURL       string
	CrossReferences []links.CrossReference
	Note            notes.Note
}

// Assembler turns entries into records.
type Assembler struct {
	Links *links.Aggregator
	Notes *notes.Extractor
}

// Build produces the record of one entry.
func (a *Assembler) Build(e Entry) Record {
	t := e.Ticket
	return Record{
		Summary:   t.Summary,
		TicketID:  t.Key,
		TicketURL: t.URL,
		CrossReferences: a.Links.Aggregate(links.Sources{
			Ticket:      t.Key,
			IssueLinks:  t.IssueLinks,
			WebLinks:    t.WebLinks,
			RemoteLinks: e.RemoteLinks,
			RemoteErr:   e.RemoteErr,
		}),
		Note: a.Notes.Extract(t.Note),
	}
}

// Assemble builds one record per entry, in entry order.
func (a *Assembler) Assemble(entries []Entry) []Record {
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, a.Build(e))
	}
	return out
}
