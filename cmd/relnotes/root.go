package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/opensdd/relnotes/core/config"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalOptions struct {
	configPath string
	logLevel   string
	noTUI      bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "relnotes",
		Short: "Generate release notes from Jira tickets",
		Long: `relnotes collects the tickets matched by a Jira search, parses their release-note
field and publishes the result as a versioned section of a Confluence page or as an
xlsx workbook.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default ~/.config/relnotes/config.yaml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().BoolVar(&g.noTUI, "no-tui", false, "Log progress instead of showing the progress bar")

	root.AddCommand(newWikiCmd(g))
	root.AddCommand(newExcelCmd(g))
	root.AddCommand(newCheckCmd(g))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "relnotes %s\n", version)
		},
	})
	return root
}

// loadConfig reads the config file and installs the default logger.
func loadConfig(g *globalOptions, logOut io.Writer) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	lvl, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: lvl})))
	return cfg, nil
}
