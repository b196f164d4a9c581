package providers

import (
	"context"

	"github.com/opensdd/relnotes/core/links"
	"github.com/opensdd/relnotes/core/query"
	"github.com/opensdd/relnotes/core/report"
	"github.com/opensdd/relnotes/core/section"
)

// IssueSource runs a query against the issue tracker.
type IssueSource interface {
	FetchIssues(ctx context.Context, d query.Descriptor) ([]report.Ticket, error)
}

// RemoteLinkSource returns the remote links of one ticket.
type RemoteLinkSource interface {
	FetchRemoteLinks(ctx context.Context, key string) ([]links.WebLink, error)
}

// DocumentStore reads and writes wiki documents.
type DocumentStore interface {
	Get(ctx context.Context, id string) (section.Document, error)
	Put(ctx context.Context, id string, doc section.Document) error
}

type TableRenderer interface {
	Render(records []report.Record) (string, error)
}

type WorkbookRenderer interface {
	Render(records []report.Record) ([]byte, error)
}
