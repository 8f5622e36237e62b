package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/scaffold"
	"github.com/eringen/folio/views"
)

// version is set at build time via ldflags.
var version = "dev"

// errCheckFailed makes `folio check` exit non-zero without printing twice.
var errCheckFailed = errors.New("content check failed")

func buildCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Render the static site into the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.app(views.Funcs())
			if err != nil {
				return err
			}
			defer app.Close()
			report, err := app.Build(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Built %s in %s\n", report.OutputDir, report.Duration.Round(time.Millisecond))
			fmt.Fprintf(out, "  articles:  %d\n  pages:     %d\n  redirects: %d\n  assets:    %d (%d resized)\n",
				report.Articles, report.Pages, report.Redirects, report.Assets, report.Resized)
			if report.Drafts > 0 {
				fmt.Fprintf(out, "  drafts:    %d excluded\n", report.Drafts)
			}
			for _, s := range report.Skipped {
				fmt.Fprintf(out, "  skipped %s: %s\n", s.Path, s.Reason)
			}
			return nil
		},
	}
}

func serveCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the preview server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.app(views.Funcs())
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Start(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default :3000)")
	cmd.Flags().Bool("drafts", false, "Include draft articles")
	_ = c.v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	_ = c.v.BindPFlag("include_drafts", cmd.Flags().Lookup("drafts"))
	return cmd
}

func checkCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load all content and report articles that would be excluded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.app(views.Funcs())
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.ArticleLoader().LoadReport(cmd.Context())
			if err != nil {
				return err
			}
			pages, err := app.PageLoader().Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tSLUG\tTITLE\tTAGS")
			for _, a := range res.Articles {
				date := a.Meta.DateRaw
				if !a.Meta.Date.IsZero() {
					date = a.Meta.Date.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", date, a.Slug, a.Meta.Title, strings.Join(a.Meta.Tags, ","))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d articles, %d pages, %d drafts excluded\n", len(res.Articles), len(pages), res.Drafts)

			if len(res.Skipped) == 0 {
				return nil
			}
			fmt.Fprintf(out, "%d excluded:\n", len(res.Skipped))
			for _, s := range res.Skipped {
				fmt.Fprintf(out, "  %s: %s\n", s.Path, s.Reason)
			}
			return errCheckFailed
		},
	}
}

func newCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new folio site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Creating new folio site: %s\n\n", dir)
			created, err := scaffold.Generate(dir, scaffold.NewData(filepath.Base(dir)))
			if err != nil {
				return err
			}
			for _, f := range created {
				fmt.Fprintf(out, "  created %s\n", f)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Done! Next steps:")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  cd %s\n", dir)
			fmt.Fprintln(out, "  folio serve")
			return nil
		},
	}
}

func subscribersCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribers",
		Short: "List newsletter subscribers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := folio.NewStore(c.cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()
			subs, err := store.ListSubscribers()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EMAIL\tSINCE\tSTATUS")
			active := 0
			for _, s := range subs {
				status := "active"
				if s.Unsubscribed {
					status = "unsubscribed"
				} else {
					active++
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Email, s.CreatedAt.Format("2006-01-02"), status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d active of %d\n", active, len(subs))
			return nil
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the folio version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "folio %s\n", version)
		},
	}
}
