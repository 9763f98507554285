package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/axsim/analyze"
	"github.com/hazyhaar/axsim/announce"
	"github.com/hazyhaar/axsim/audit"
	"github.com/hazyhaar/axsim/axtree"
	"github.com/hazyhaar/axsim/livepage"
	"github.com/hazyhaar/axsim/livepage/mutation"
	"github.com/hazyhaar/axsim/source"
)

var (
	liveFormat string
	liveJSON   bool
)

var liveCmd = &cobra.Command{
	Use:   "live URL",
	Short: "Audit a live page and speak its live region updates",
	Long: `Open URL in headless Chrome, audit the rendered page and keep auditing as the
DOM changes. Updates inside live regions are spoken the way the selected
screen reader would announce them.

Examples:
  axsim live https://example.com
  axsim live http://localhost:3000 --vendor voiceover --remote ws://127.0.0.1:9222/devtools/browser/...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		url := args[0]
		if err := applySimulatorFlags(cmd); err != nil {
			return err
		}
		override(cmd, "remote", &cfg.Live.Remote)
		if f := cmd.Flags().Lookup("stealth"); f.Changed {
			cfg.Live.Stealth, _ = cmd.Flags().GetBool("stealth")
		}
		if f := cmd.Flags().Lookup("block"); f.Changed {
			cfg.Live.Block, _ = cmd.Flags().GetStringSlice("block")
		}
		verbosity, err := announce.ParseVerbosity(cfg.Simulator.Verbosity)
		if err != nil {
			return err
		}

		page, err := livepage.Open(ctx, url, cfg.LivePage(logger))
		if err != nil {
			return err
		}
		defer page.Close()

		sr, err := newScreenReader()
		if err != nil {
			return err
		}

		rates := mutation.NewRateCounter(nil)
		session := audit.NewSession(url, func(ctx context.Context) (source.Document, error) {
			return page.Capture(ctx)
		}, liveAuditor(rates))
		session.OnRebuild(func(t *axtree.Tree, r *audit.Report) {
			sr.SetTree(t)
			if err := writeReport(os.Stdout, r, liveFormat); err != nil {
				logger.Error("axsim: write report", "error", err)
			}
		})
		if _, err := session.Rebuild(ctx); err != nil {
			return err
		}

		return page.Observe(ctx, func(b mutation.Batch) {
			rates.Add(b)
			if !b.Affects() {
				return
			}
			logger.Debug("axsim: mutation batch", "seq", b.Seq, "records", len(b.Records))
			if _, err := session.Rebuild(ctx); err != nil {
				logger.Warn("axsim: rebuild", "error", err)
				return
			}
			t := session.Tree()
			gen := announce.NewGenerator(t)
			for _, key := range b.LiveKeys() {
				n := t.NodeByKey(source.Key(key))
				if n == nil || n.Hidden || n.Live == "off" {
					continue
				}
				a := gen.LiveRegion(n, sr.Vendor(), cfg.Simulator.Browser, verbosity)
				if err := speak(os.Stdout, a, liveJSON); err != nil {
					logger.Error("axsim: write announcement", "error", err)
				}
			}
		})
	},
}

// liveAuditor reports live region update rates observed on the page.
func liveAuditor(rates *mutation.RateCounter) *audit.Auditor {
	return newAuditor(audit.WithLiveRegionOptions(analyze.WithUpdateRate(func(n *axtree.Node) float64 {
		return rates.Rate(uint64(n.Source.Key()))
	})))
}

func init() {
	addSimulatorFlags(liveCmd)
	f := liveCmd.Flags()
	f.String("remote", "", "DevTools websocket URL of a running Chrome")
	f.Bool("stealth", false, "open the tab with stealth evasions")
	f.StringSlice("block", nil, "resource kinds to block: images, fonts, media, stylesheets")
	f.StringVar(&liveFormat, "format", "summary", "report format: summary, json, md, html")
	f.BoolVar(&liveJSON, "json", false, "print live announcements as JSON lines")
	rootCmd.AddCommand(liveCmd)
}
