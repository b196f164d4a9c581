package main

import (
	"fmt"
	"time"

	"github.com/opensdd/relnotes/core"
	"github.com/opensdd/relnotes/core/providers"
	"github.com/opensdd/relnotes/core/section"
	"github.com/spf13/cobra"
)

func newWikiCmd(g *globalOptions) *cobra.Command {
	opts := &runOptions{}
	var pageID string
	cmd := &cobra.Command{
		Use:   "wiki",
		Short: "Publish release notes as a section of a Confluence page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := opts.descriptor()
			if err != nil {
				return err
			}
			s, err := newSession(ctx, g, cmd)
			if err != nil {
				return err
			}
			if pageID == "" {
				pageID = s.cfg.Confluence.PageID
			}
			if pageID == "" {
				return fmt.Errorf("confluence page id is required (--page or confluence.page_id)")
			}

			records, err := s.collect(ctx, d)
			if err != nil {
				return err
			}
			w := &providers.Wiki{
				Store:    s.confluence,
				Renderer: s.wikiTable(),
				Merger:   section.Merger{Heading: s.cfg.Heading()},
			}
			doc, err := w.Publish(ctx, pageID, opts.version, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated page %s (%s) to version %d with %d tickets\n", pageID, doc.Title, doc.Version, len(records))
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&pageID, "page", "", "Confluence page id (overrides confluence.page_id)")
	return cmd
}

func newExcelCmd(g *globalOptions) *cobra.Command {
	opts := &runOptions{}
	var date, output, outDir string
	cmd := &cobra.Command{
		Use:   "excel",
		Short: "Export release notes to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in := &core.RunInput{
				SearchURL:    opts.url,
				VersionLabel: opts.version,
				InstallDate:  date,
				OutputPath:   output,
			}
			if err := in.ValidateDate(); err != nil {
				return err
			}
			d, err := opts.descriptor()
			if err != nil {
				return err
			}
			s, err := newSession(ctx, g, cmd)
			if err != nil {
				return err
			}

			records, err := s.collect(ctx, d)
			if err != nil {
				return err
			}
			sp := &providers.Spreadsheet{Renderer: s.spreadsheet()}
			path, err := sp.Export(ctx, outDir, in, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d tickets\n", path, len(records))
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&date, "date", time.Now().Format("20060102"), "Install date as YYYYMMDD")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default v{version}_{date}.xlsx)")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory for the output file")
	return cmd
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check configuration and connectivity to Jira and Confluence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			s, err := newSession(ctx, g, cmd)
			if err != nil {
				fmt.Fprintf(out, "FAIL config: %v\n", err)
				return err
			}
			fmt.Fprintln(out, "OK   config")

			failed := 0
			check := func(label string, err error) {
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", label, err)
					return
				}
				fmt.Fprintf(out, "OK   %s\n", label)
			}

			check("jira "+s.cfg.Jira.URL, s.jira.Ping(ctx))
			if s.cfg.Confluence.URL != "" && s.cfg.Confluence.PageID != "" {
				_, err := s.confluence.Get(ctx, s.cfg.Confluence.PageID)
				check("confluence page "+s.cfg.Confluence.PageID, err)
			} else {
				fmt.Fprintln(out, "SKIP confluence (url or page_id not configured)")
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}
