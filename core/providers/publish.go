package providers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/opensdd/relnotes/core"
	"github.com/opensdd/relnotes/core/report"
	"github.com/opensdd/relnotes/core/section"
)

// Wiki publishes records as a versioned section of a wiki page.
type Wiki struct {
	Store    DocumentStore
	Renderer TableRenderer
	Merger   section.Merger

	// mu serializes read-merge-write cycles.
	mu sync.Mutex
}

// Publish renders records and merges them into the section label of page
// pageID. A failed read aborts before anything is written.
func (w *Wiki) Publish(ctx context.Context, pageID, label string, records []report.Record) (section.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	log := slog.With("op", "Publish", "page", pageID, "label", label)

	table, err := w.Renderer.Render(records)
	if err != nil {
		return section.Document{}, fmt.Errorf("failed to render table: %w", err)
	}
	doc, err := w.Store.Get(ctx, pageID)
	if err != nil {
		return section.Document{}, fmt.Errorf("failed to read page: %w", err)
	}
	merged, err := w.Merger.Merge(doc, label, table)
	if err != nil {
		return section.Document{}, fmt.Errorf("failed to merge section: %w", err)
	}
	if err := w.Store.Put(ctx, pageID, merged); err != nil {
		return section.Document{}, fmt.Errorf("failed to write page: %w", err)
	}
	log.Info("Wiki page updated", "version", merged.Version, "records", len(records))
	return merged, nil
}

// Spreadsheet exports records as a workbook file.
type Spreadsheet struct {
	Renderer WorkbookRenderer
}

// Export renders records in memory and writes them atomically to the
// artifact path of in: in.OutputPath when set, otherwise the default
// artifact name under outDir. Returns the written path.
func (s *Spreadsheet) Export(ctx context.Context, outDir string, in *core.RunInput, records []report.Record) (string, error) {
	if err := in.ValidateDate(); err != nil {
		return "", err
	}
	name := in.OutputPath
	if name == "" {
		name = in.ArtifactName(".xlsx")
	}
	path, err := core.ResolveArtifactPath(outDir, name)
	if err != nil {
		return "", err
	}
	data, err := s.Renderer.Render(records)
	if err != nil {
		return "", fmt.Errorf("failed to render workbook: %w", err)
	}
	if err := core.WriteArtifact(ctx, path, data); err != nil {
		return "", err
	}
	slog.Info("Spreadsheet written", "path", path, "records", len(records))
	return path, nil
}
