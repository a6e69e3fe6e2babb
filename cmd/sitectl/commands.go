package main

import (
	"fmt"
	"strings"

	"MatchPublisher/internal/model"

	"github.com/spf13/cobra"
)

// newRootCmd open 在子命令执行前按 --config 组装服务
func newRootCmd(open func(configPath string) (*app, error)) *cobra.Command {
	var (
		configPath string
		a          *app
	)
	root := &cobra.Command{
		Use:   "sitectl",
		Short: "Maintain the match site from the command line",
		Long: `Maintenance commands for the static match site.

Available subcommands:
  regenerate - Rebuild homepage cards and/or match pages from data/events.json
  check      - Report drift between the catalog, homepage and page files
  list       - List published matches, newest first
  delete     - Remove a match page, its catalog entries, cards and sitemap URL
  logs       - Show recent publish log records`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = open(configPath)
			return err
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config/config.yaml or CONFIG_PATH)")

	current := func() *app { return a }
	root.AddCommand(
		newRegenerateCmd(current),
		newCheckCmd(current),
		newListCmd(current),
		newDeleteCmd(current),
		newLogsCmd(current),
	)
	return root
}

func newRegenerateCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:       "regenerate cards|pages|all",
		Short:     "Rebuild homepage cards and/or match pages from the catalog",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"cards", "pages", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			if target != "cards" && target != "pages" && target != "all" {
				return fmt.Errorf("unknown target %q (want cards, pages or all)", target)
			}
			a := current()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if target == "cards" || target == "all" {
				n, err := a.reconciler.RegenerateCards(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "regenerated %d homepage cards\n", n)
			}
			if target == "pages" || target == "all" {
				n, err := a.reconciler.RegeneratePages(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "regenerated %d match pages\n", n)
			}
			return nil
		},
	}
}

func newCheckCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report drift between catalog, homepage cards and page files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := current().reconciler.Check(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "catalog entries: %d, homepage cards: %d\n", report.CatalogCount, report.CardCount)
			if report.Clean() {
				fmt.Fprintln(out, "site is consistent")
				return nil
			}
			printList(cmd, "missing cards", report.MissingCards)
			printList(cmd, "orphan cards", report.OrphanCards)
			printList(cmd, "missing pages", report.MissingPages)
			printList(cmd, "duplicate slugs", report.DuplicateSlugs)
			return fmt.Errorf("site has drifted; run `sitectl regenerate all`")
		},
	}
}

func newListCmd(current func() *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published matches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := current().publisher.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "no matches published")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %s %s  %s  [%s]\n", e.Slug, e.Date, e.Time, e.League, e.Status)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max entries to show (0 = all)")
	return cmd
}

func newDeleteCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Remove a match from the site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := current().publisher.Delete(cmd.Context(), args[0], 0)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "deleted %s: page=%t entries=%d cards=%d sitemap=%t\n",
				res.Slug, res.PageRemoved, res.EntriesRemoved, res.CardsRemoved, res.SitemapRemoved)
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
}

func newLogsCmd(current func() *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent publish log records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, err := current().logs.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, l := range logs {
				fmt.Fprintf(out, "%s  %-10s %s  %s\n", l.CreatedAt.Format(model.DateTimeLayout), l.Action, l.Slug, l.Detail)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max records to show")
	return cmd
}

func printList(cmd *cobra.Command, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d):\n  %s\n", title, len(items), strings.Join(items, "\n  "))
}
