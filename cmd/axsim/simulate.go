package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/axsim/announce"
	"github.com/hazyhaar/axsim/screenreader"
)

var (
	simCommands    []string
	simInteractive bool
	simJSON        bool
	simSanitize    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate FILE",
	Short: "Simulate a screen reader navigating a document",
	Long: `Run navigation commands against a simulated screen reader and print what it
would speak. Without --cmd the document is read from top to bottom.
With --interactive, commands are read from stdin one per line.

Examples:
  axsim simulate page.html --vendor nvda
  axsim simulate page.html --vendor voiceover --platform ios --cmd next-heading,next,rotor
  axsim simulate page.html --vendor jaws --interactive`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applySimulatorFlags(cmd); err != nil {
			return err
		}

		t, err := buildTree(args[0], simSanitize)
		if err != nil {
			return err
		}
		sr, err := newScreenReader()
		if err != nil {
			return err
		}
		sr.SetTree(t)

		out := os.Stdout
		if simInteractive {
			return interact(sr, os.Stdin, out)
		}

		if len(simCommands) == 0 {
			return speakAll(out, sr.ReadAll(), simJSON)
		}
		for _, c := range simCommands {
			got, err := screenreader.Run(sr, c)
			if err != nil {
				return err
			}
			if err := speakAll(out, got, simJSON); err != nil {
				return err
			}
		}
		return nil
	},
}

func speakAll(w io.Writer, as []announce.Announcement, asJSON bool) error {
	for _, a := range as {
		if err := speak(w, a, asJSON); err != nil {
			return err
		}
	}
	return nil
}

func addSimulatorFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("vendor", "nvda", "screen reader: nvda, jaws, voiceover")
	f.String("verbosity", "normal", "verbosity: minimal, normal, verbose")
	f.String("platform", "macos", "VoiceOver platform: macos, ios")
	f.String("browser", "chrome", "browser reported in announcements")
	f.String("order", "tree", "document order for navigation: tree, geometry")
}

// applySimulatorFlags copies explicitly set simulator flags over the config.
func applySimulatorFlags(c *cobra.Command) error {
	override(c, "vendor", &cfg.Simulator.Vendor)
	override(c, "verbosity", &cfg.Simulator.Verbosity)
	override(c, "platform", &cfg.Simulator.Platform)
	override(c, "browser", &cfg.Simulator.Browser)
	override(c, "order", &cfg.Simulator.DocumentOrder)
	return cfg.Validate()
}

func newScreenReader() (screenreader.ScreenReader, error) {
	vendor, opts, err := cfg.SimulatorOptions()
	if err != nil {
		return nil, err
	}
	return screenreader.New(vendor, append(opts, screenreader.WithLogger(logger))...)
}

func interact(sr screenreader.ScreenReader, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "%s ready. Commands: %s\n", sr.Vendor(), strings.Join(screenreader.Commands(), " "))
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		}
		got, err := screenreader.Run(sr, line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		for _, a := range got {
			if err := speak(out, a, simJSON); err != nil {
				return err
			}
		}
	}
	return sc.Err()
}

func speak(w io.Writer, a announce.Announcement, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(a)
	}
	_, err := fmt.Fprintln(w, a.Text)
	return err
}

func init() {
	addSimulatorFlags(simulateCmd)
	f := simulateCmd.Flags()
	f.StringSliceVar(&simCommands, "cmd", nil, "comma separated navigation commands")
	f.BoolVar(&simInteractive, "interactive", false, "read commands from stdin")
	f.BoolVar(&simJSON, "json", false, "print announcements as JSON lines")
	f.BoolVar(&simSanitize, "sanitize", false, "strip scripts and event handlers before parsing")
	rootCmd.AddCommand(simulateCmd)
}
