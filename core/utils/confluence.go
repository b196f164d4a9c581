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
	"github.com/opensdd/relnotes/core/section"
)

// ConfluenceClient reads and writes page bodies in storage format.
type ConfluenceClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

type confluencePage struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Version confluenceVersion `json:"version"`
	Body    confluenceBody    `json:"body"`
}

type confluenceVersion struct {
	Number int `json:"number"`
}

type confluenceBody struct {
	Storage confluenceStorage `json:"storage"`
}

type confluenceStorage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

func (c *ConfluenceClient) pageURL(id string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/rest/api/content/" + url.PathEscape(id)
}

// Get reads a page with its storage body and version number.
func (c *ConfluenceClient) Get(ctx context.Context, id string) (section.Document, error) {
	if strings.TrimSpace(id) == "" {
		return section.Document{}, fmt.Errorf("%w: page id cannot be empty", core.ErrDocumentRead)
	}
	resp, err := doJSON(ctx, c.HTTPClient, http.MethodGet, c.pageURL(id)+"?expand=body.storage,version", c.Token, nil)
	if err != nil {
		return section.Document{}, fmt.Errorf("%w: failed to fetch page %s: %v", core.ErrDocumentRead, id, err)
	}
	if resp.Status != http.StatusOK {
		return section.Document{}, fmt.Errorf("%w: confluence API returned status %d: %s", core.ErrDocumentRead, resp.Status, truncateBody(resp.Body))
	}
	var page confluencePage
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return section.Document{}, fmt.Errorf("%w: failed to parse page %s: %v", core.ErrDocumentRead, id, err)
	}
	slog.Debug("Confluence page read", "id", id, "version", page.Version.Number, "bytes", len(page.Body.Storage.Value))
	return section.Document{
		ID:      id,
		Title:   page.Title,
		Version: page.Version.Number,
		Body:    page.Body.Storage.Value,
	}, nil
}

// Put writes doc as the next version of page id. doc.Version must already be
// the new version number.
func (c *ConfluenceClient) Put(ctx context.Context, id string, doc section.Document) error {
	payload := confluencePage{
		ID:      id,
		Type:    "page",
		Title:   doc.Title,
		Version: confluenceVersion{Number: doc.Version},
		Body: confluenceBody{Storage: confluenceStorage{
			Value:          doc.Body,
			Representation: "storage",
		}},
	}
	resp, err := doJSON(ctx, c.HTTPClient, http.MethodPut, c.pageURL(id), c.Token, payload)
	if err != nil {
		return fmt.Errorf("%w: failed to update page %s: %v", core.ErrDocumentWrite, id, err)
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("%w: confluence API returned status %d: %s", core.ErrDocumentWrite, resp.Status, truncateBody(resp.Body))
	}
	slog.Debug("Confluence page updated", "id", id, "version", doc.Version)
	return nil
}
