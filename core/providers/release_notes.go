package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opensdd/relnotes/core"
	"github.com/opensdd/relnotes/core/links"
	"github.com/opensdd/relnotes/core/query"
	"github.com/opensdd/relnotes/core/report"
	"golang.org/x/sync/errgroup"
)

// Progress reports one processed ticket.
type Progress struct {
	Done    int
	Total   int
	Key     string
	Elapsed time.Duration
}

// ReleaseNotes collects release-notes records from the issue tracker.
type ReleaseNotes struct {
	Issues      IssueSource
	RemoteLinks RemoteLinkSource
	Assembler   *report.Assembler
	// Concurrency bounds parallel remote-link fetches; <= 1 is sequential.
	Concurrency int
	// OnProgress, when set, is called once per ticket in ticket order.
	OnProgress func(Progress)
}

// Collect runs the query and returns one record per ticket, in the tracker's
// order.
func (r *ReleaseNotes) Collect(ctx context.Context, d query.Descriptor) ([]report.Record, error) {
	if r.Issues == nil || r.Assembler == nil {
		return nil, fmt.Errorf("release notes collector is not configured")
	}
	log := slog.With("op", "Collect")
	start := time.Now()

	tickets, err := r.Issues.FetchIssues(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets: %w", err)
	}
	if len(tickets) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrNoResults, d.JQL())
	}
	log.Debug("Tickets fetched", "count", len(tickets))

	var entries []report.Entry
	if r.Concurrency > 1 {
		entries, err = r.fetchConcurrent(ctx, tickets, start)
	} else {
		entries, err = r.fetchSequential(ctx, tickets, start)
	}
	if err != nil {
		return nil, err
	}

	records := r.Assembler.Assemble(entries)
	log.Debug("Records assembled", "count", len(records), "elapsed", time.Since(start))
	return records, nil
}

func (r *ReleaseNotes) fetchSequential(ctx context.Context, tickets []report.Ticket, start time.Time) ([]report.Entry, error) {
	entries := make([]report.Entry, len(tickets))
	for i, t := range tickets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries[i] = r.entry(ctx, t)
		r.progress(i+1, len(tickets), t.Key, start)
	}
	return entries, nil
}

// fetchConcurrent fetches remote links in parallel. Progress is still
// reported in ticket order.
func (r *ReleaseNotes) fetchConcurrent(ctx context.Context, tickets []report.Ticket, start time.Time) ([]report.Entry, error) {
	entries := make([]report.Entry, len(tickets))
	done := make([]chan struct{}, len(tickets))
	for i := range done {
		done[i] = make(chan struct{})
	}

	var g errgroup.Group
	g.SetLimit(r.Concurrency)
	finished := make(chan error, 1)
	go func() {
		for i, t := range tickets {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				defer close(done[i])
				entries[i] = r.entry(ctx, t)
				return nil
			})
		}
		finished <- g.Wait()
	}()

	for i, t := range tickets {
		select {
		case <-done[i]:
		case <-ctx.Done():
		}
		if err := ctx.Err(); err != nil {
			<-finished
			return nil, err
		}
		r.progress(i+1, len(tickets), t.Key, start)
	}
	if err := <-finished; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ReleaseNotes) entry(ctx context.Context, t report.Ticket) report.Entry {
	e := report.Entry{Ticket: t}
	if r.RemoteLinks == nil {
		return e
	}
	var remote []links.WebLink
	remote, e.RemoteErr = r.RemoteLinks.FetchRemoteLinks(ctx, t.Key)
	e.RemoteLinks = remote
	return e
}

func (r *ReleaseNotes) progress(done, total int, key string, start time.Time) {
	p := Progress{Done: done, Total: total, Key: key, Elapsed: time.Since(start)}
	slog.Debug("Ticket processed", "done", p.Done, "total", p.Total, "key", p.Key, "elapsed", p.Elapsed)
	if r.OnProgress != nil {
		r.OnProgress(p)
	}
}
