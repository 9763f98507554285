package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/axsim/audit"
	"github.com/hazyhaar/axsim/axtree"
	"github.com/hazyhaar/axsim/watch"
)

var (
	watchFormat   string
	watchSanitize bool
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-audit a document every time it changes",
	Long: `Watch an HTML file or JSON snapshot and print a fresh report after each change.

Examples:
  axsim watch page.html
  axsim watch page.html --detector fsnotify --debounce 1s --format md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]
		override(cmd, "detector", &cfg.Watch.Detector)
		if f := cmd.Flags().Lookup("interval"); f.Changed {
			cfg.Watch.Interval, _ = cmd.Flags().GetDuration("interval")
		}
		if f := cmd.Flags().Lookup("debounce"); f.Changed {
			cfg.Watch.Debounce, _ = cmd.Flags().GetDuration("debounce")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		var detector watch.ChangeDetector
		switch cfg.Watch.Detector {
		case "stat":
			detector = watch.FileStat(path)
		case "hash":
			detector = watch.ContentHash(path)
		case "fsnotify":
			n, err := watch.FSNotify(path)
			if err != nil {
				return err
			}
			defer n.Close()
			detector = n.Detector()
		}

		session := audit.NewSession(path, fileLoader(path, watchSanitize), newAuditor())
		session.OnRebuild(func(_ *axtree.Tree, r *audit.Report) {
			if err := writeReport(os.Stdout, r, watchFormat); err != nil {
				logger.Error("axsim: write report", "error", err)
			}
		})
		if _, err := session.Rebuild(ctx); err != nil {
			return err
		}

		w := watch.New(watch.Options{
			Interval: cfg.Watch.Interval,
			Debounce: cfg.Watch.Debounce,
			Detector: detector,
			Logger:   logger,
		})
		w.OnChange(ctx, func() error {
			_, err := session.Rebuild(ctx)
			return err
		})

		st := w.Stats()
		fmt.Fprintf(os.Stderr, "checks=%d changes=%d rebuilds=%d errors=%d avg_rebuild=%s\n",
			st.Checks, st.ChangesDetected, st.Rebuilds, st.Errors, st.AvgRebuildTime)
		return nil
	},
}

func init() {
	f := watchCmd.Flags()
	f.String("detector", "hash", "change detector: stat, hash, fsnotify")
	f.Duration("interval", 500*time.Millisecond, "polling interval")
	f.Duration("debounce", 300*time.Millisecond, "quiet period before rebuilding")
	f.StringVar(&watchFormat, "format", "summary", "report format: summary, json, md, html")
	f.BoolVar(&watchSanitize, "sanitize", false, "strip scripts and event handlers before parsing")
	rootCmd.AddCommand(watchCmd)
}
