package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/opensdd/relnotes/core"
	"github.com/opensdd/relnotes/core/links"
	"github.com/opensdd/relnotes/core/query"
	"github.com/opensdd/relnotes/core/report"
)

const (
	jiraDefaultPageSize = 100
	// DefaultNoteField is the custom field holding the release note.
	DefaultNoteField = "customfield_13240"
)

// JiraClient reads tickets and remote links from a Jira server over REST v2.
type JiraClient struct {
	BaseURL string
	// Token is a personal access token, or "user:password" for Basic auth.
	Token string
	// NoteField is the id of the free-text release-note field.
	NoteField  string
	PageSize   int
	// MaxIssues rejects queries matching more tickets; 0 means no limit.
	MaxIssues  int
	HTTPClient *http.Client
}

// jiraSearchRequest is the POST body for the Jira search endpoint.
type jiraSearchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

// jiraSearchResponse is the relevant subset of the Jira search response.
type jiraSearchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []jiraIssue `json:"issues"`
}

type jiraIssue struct {
	Key    string          `json:"key"`
	Fields json.RawMessage `json:"fields"`
}

type jiraIssueFields struct {
	Summary    string          `json:"summary"`
	IssueLinks []jiraIssueLink `json:"issuelinks"`
}

type jiraIssueLink struct {
	Type         jiraLinkType     `json:"type"`
	OutwardIssue *jiraLinkedIssue `json:"outwardIssue,omitempty"`
	InwardIssue  *jiraLinkedIssue `json:"inwardIssue,omitempty"`
	// Object is set on link entries that carry a plain web link.
	Object *jiraLinkObject `json:"object,omitempty"`
}

type jiraLinkType struct {
	Name    string `json:"name"`
	Inward  string `json:"inward"`
	Outward string `json:"outward"`
}

type jiraLinkedIssue struct {
	Key string `json:"key"`
}

type jiraLinkObject struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type jiraRemoteLink struct {
	Object jiraLinkObject `json:"object"`
}

func (c *JiraClient) base() string { return strings.TrimRight(c.BaseURL, "/") }

func (c *JiraClient) noteField() string {
	if c.NoteField == "" {
		return DefaultNoteField
	}
	return c.NoteField
}

// BrowseURL returns the browse link of a ticket key.
func (c *JiraClient) BrowseURL(key string) string {
	return c.base() + "/browse/" + key
}

// Ping checks connectivity and credentials.
func (c *JiraClient) Ping(ctx context.Context) error {
	resp, err := doJSON(ctx, c.HTTPClient, http.MethodGet, c.base()+"/rest/api/2/myself", c.Token, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to reach jira: %v", core.ErrSourceUnavailable, err)
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("%w: jira API returned status %d: %s", core.ErrSourceUnavailable, resp.Status, truncateBody(resp.Body))
	}
	return nil
}

// FetchIssues runs the query and returns the tickets in the tracker's order.
func (c *JiraClient) FetchIssues(ctx context.Context, d query.Descriptor) ([]report.Ticket, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return nil, fmt.Errorf("%w: jira url cannot be empty", core.ErrSourceUnavailable)
	}
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = jiraDefaultPageSize
	}
	jql := d.JQL()
	slog.Debug("Fetching Jira issues", "jql", jql, "kind", d.Kind)

	var tickets []report.Ticket
	for startAt := 0; ; {
		reqBody := jiraSearchRequest{
			JQL:        jql,
			StartAt:    startAt,
			MaxResults: pageSize,
			Fields:     []string{"summary", "issuelinks", c.noteField()},
		}
		resp, err := doJSON(ctx, c.HTTPClient, http.MethodPost, c.base()+"/rest/api/2/search", c.Token, reqBody)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch from jira: %v", core.ErrSourceUnavailable, err)
		}
		if err := searchStatusError(resp); err != nil {
			return nil, err
		}

		var page jiraSearchResponse
		if err := json.Unmarshal(resp.Body, &page); err != nil {
			return nil, fmt.Errorf("%w: failed to parse jira response: %v", core.ErrSourceQuery, err)
		}
		if c.MaxIssues > 0 && page.Total > c.MaxIssues {
			return nil, fmt.Errorf("%w: query matches %d tickets, more than the limit of %d", core.ErrSourceQuery, page.Total, c.MaxIssues)
		}
		for _, issue := range page.Issues {
			t, err := c.toTicket(issue)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", core.ErrSourceQuery, err)
			}
			tickets = append(tickets, t)
		}
		slog.Debug("Jira pagination", "issuesSoFar", len(tickets), "total", page.Total)

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			break
		}
	}

	slog.Debug("Jira issues fetched", "count", len(tickets))
	return tickets, nil
}

// FetchRemoteLinks returns the remote links of one ticket.
func (c *JiraClient) FetchRemoteLinks(ctx context.Context, key string) ([]links.WebLink, error) {
	u := c.base() + "/rest/api/2/issue/" + url.PathEscape(key) + "/remotelink"
	resp, err := doJSON(ctx, c.HTTPClient, http.MethodGet, u, c.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote links of %s: %w", key, err)
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("jira API returned status %d for remote links of %s: %s", resp.Status, key, truncateBody(resp.Body))
	}
	var remote []jiraRemoteLink
	if err := json.Unmarshal(resp.Body, &remote); err != nil {
		return nil, fmt.Errorf("failed to parse remote links of %s: %w", key, err)
	}
	out := make([]links.WebLink, 0, len(remote))
	for _, r := range remote {
		if r.Object.URL == "" {
			continue
		}
		out = append(out, links.WebLink{URL: r.Object.URL, Title: r.Object.Title})
	}
	return out, nil
}

func (c *JiraClient) toTicket(issue jiraIssue) (report.Ticket, error) {
	var fields jiraIssueFields
	if len(issue.Fields) > 0 {
		if err := json.Unmarshal(issue.Fields, &fields); err != nil {
			return report.Ticket{}, fmt.Errorf("failed to parse fields of %s: %w", issue.Key, err)
		}
	}
	var all map[string]json.RawMessage
	if len(issue.Fields) > 0 {
		if err := json.Unmarshal(issue.Fields, &all); err != nil {
			return report.Ticket{}, fmt.Errorf("failed to parse fields of %s: %w", issue.Key, err)
		}
	}

	t := report.Ticket{
		Key:     issue.Key,
		Summary: fields.Summary,
		URL:     c.BrowseURL(issue.Key),
		Note:    fieldText(all[c.noteField()]),
	}
	for _, l := range fields.IssueLinks {
		switch {
		case l.Object != nil && l.Object.URL != "":
			t.WebLinks = append(t.WebLinks, links.WebLink{URL: l.Object.URL, Title: l.Object.Title})
		case l.OutwardIssue != nil:
			t.IssueLinks = append(t.IssueLinks, links.IssueLink{Direction: links.Outward, Relation: l.Type.Outward, Key: l.OutwardIssue.Key})
		case l.InwardIssue != nil:
			t.IssueLinks = append(t.IssueLinks, links.IssueLink{Direction: links.Inward, Relation: l.Type.Inward, Key: l.InwardIssue.Key})
		}
	}
	return t, nil
}

// searchStatusError maps a non-OK search response onto the error taxonomy.
// A 400 means Jira rejected the query or filter; everything else means the
// source could not serve the request.
func searchStatusError(resp *apiResponse) error {
	switch {
	case resp.Status == http.StatusOK:
		return nil
	case resp.Status == http.StatusBadRequest:
		return fmt.Errorf("%w: jira API returned status %d: %s", core.ErrSourceQuery, resp.Status, truncateBody(resp.Body))
	default:
		return fmt.Errorf("%w: jira API returned status %d: %s", core.ErrSourceUnavailable, resp.Status, truncateBody(resp.Body))
	}
}

// fieldText returns the text of a string field. Atlassian document format
// values are flattened to plain text, one line per block.
func fieldText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var doc adfNode
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	var b strings.Builder
	doc.writeText(&b)
	return strings.TrimSpace(b.String())
}

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

func (n adfNode) writeText(b *strings.Builder) {
	switch n.Type {
	case "text":
		b.WriteString(n.Text)
		return
	case "hardBreak":
		b.WriteString("\n")
		return
	}
	for _, c := range n.Content {
		c.writeText(b)
	}
	switch n.Type {
	case "paragraph", "heading", "listItem", "codeBlock":
		b.WriteString("\n")
	}
}
