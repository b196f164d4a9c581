package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/opensdd/relnotes/core"
	"github.com/opensdd/relnotes/core/config"
	"github.com/opensdd/relnotes/core/generators"
	"github.com/opensdd/relnotes/core/progressui"
	"github.com/opensdd/relnotes/core/providers"
	"github.com/opensdd/relnotes/core/query"
	"github.com/opensdd/relnotes/core/report"
	"github.com/opensdd/relnotes/core/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runOptions are the flags shared by the wiki and excel commands.
type runOptions struct {
	url          string
	recipe       string
	strictRecipe bool
	version      string
}

func (o *runOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.url, "url", "", "Jira search URL with a jql or filter parameter")
	cmd.Flags().StringVar(&o.recipe, "recipe", "", "Jira issues recipe (YAML or JSON) used instead of --url")
	cmd.Flags().BoolVar(&o.strictRecipe, "strict-recipe", false, "Reject unknown fields in the recipe")
	cmd.Flags().StringVar(&o.version, "version", "", "Release version label, e.g. v2.4.1")
	_ = cmd.MarkFlagRequired("version")
	cmd.MarkFlagsMutuallyExclusive("url", "recipe")
	cmd.MarkFlagsOneRequired("url", "recipe")
}

// descriptor resolves the query of a run from --url or --recipe.
func (o *runOptions) descriptor() (query.Descriptor, error) {
	if o.recipe != "" {
		src, err := query.LoadRecipe(o.recipe, o.strictRecipe)
		if err != nil {
			return query.Descriptor{}, err
		}
		return query.FromRecipe(src)
	}
	d, err := query.Resolve(o.url)
	if err != nil {
		return query.Descriptor{}, err
	}
	if d.Warning != "" {
		slog.Warn("Ambiguous search URL", "detail", d.Warning)
	}
	return d, nil
}

// session holds the clients and settings of one command invocation.
type session struct {
	cfg        *config.Config
	jira       *utils.JiraClient
	confluence *utils.ConfluenceClient
	stderr     io.Writer
	tui        bool
}

func newSession(ctx context.Context, g *globalOptions, cmd *cobra.Command) (*session, error) {
	stderr := cmd.ErrOrStderr()
	cfg, err := loadConfig(g, stderr)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Timeout: timeout}

	jiraToken, err := cfg.Jira.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve jira token: %w", err)
	}
	confluenceToken, err := cfg.Confluence.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve confluence token: %w", err)
	}

	return &session{
		cfg: cfg,
		jira: &utils.JiraClient{
			BaseURL:    cfg.Jira.URL,
			Token:      jiraToken,
			NoteField:  cfg.Jira.NoteField,
			PageSize:   cfg.Jira.PageSize,
			MaxIssues:  cfg.Jira.MaxIssues,
			HTTPClient: httpClient,
		},
		confluence: &utils.ConfluenceClient{
			BaseURL:    cfg.Confluence.URL,
			Token:      confluenceToken,
			HTTPClient: httpClient,
		},
		stderr: stderr,
		tui:    !g.noTUI && isTerminal(os.Stdin) && isTerminal(stderr),
	}, nil
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// collect fetches and assembles the records of d, showing progress.
func (s *session) collect(ctx context.Context, d query.Descriptor) ([]report.Record, error) {
	if strings.TrimSpace(s.cfg.Jira.URL) == "" {
		return nil, fmt.Errorf("%w: jira.url is not configured", core.ErrSourceUnavailable)
	}
	extractor, err := s.cfg.Extractor()
	if err != nil {
		return nil, err
	}
	rn := &providers.ReleaseNotes{
		Issues:      s.jira,
		RemoteLinks: s.jira,
		Assembler:   &report.Assembler{Links: s.cfg.Aggregator(), Notes: extractor},
		Concurrency: s.cfg.Concurrency,
	}

	if !s.tui {
		rn.OnProgress = func(p providers.Progress) {
			slog.Info("Ticket processed", "done", p.Done, "total", p.Total, "key", p.Key, "elapsed", p.Elapsed.Round(time.Millisecond))
		}
		return rn.Collect(ctx, d)
	}

	var records []report.Record
	err = progressui.Run(ctx, s.stderr, "Collecting release notes", func(ctx context.Context, onProgress func(providers.Progress)) error {
		rn.OnProgress = onProgress
		var err error
		records, err = rn.Collect(ctx, d)
		return err
	})
	return records, err
}

func (s *session) hungarian() bool {
	return s.cfg.Notes.KeywordsPreset == "hu"
}

func (s *session) wikiTable() *generators.WikiTable {
	g := &generators.WikiTable{}
	if s.hungarian() {
		g.Columns = generators.HungarianWikiColumns
	}
	return g
}

func (s *session) spreadsheet() *generators.Spreadsheet {
	g := &generators.Spreadsheet{
		Responsible: s.cfg.Spreadsheet.Responsible,
		Statuses:    s.cfg.Spreadsheet.Statuses,
	}
	if s.hungarian() {
		g.Columns = generators.HungarianSpreadsheetColumns
	}
	return g
}
