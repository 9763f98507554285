package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/axsim/config"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "axsim",
	Short: "Accessibility tree builder and screen reader simulator",
	Long: `axsim derives the accessibility tree a browser would expose for an HTML
document or a live page, audits it for reading order, landmarks, headings,
form labels and live regions, and simulates what NVDA, JAWS and VoiceOver
would announce while navigating it.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		var err error
		if configPath == "" {
			cfg = config.Default()
		} else if cfg, err = config.LoadFile(configPath); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to axsim.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
}

// override sets *dst to the flag value when the user passed the flag.
func override(cmd *cobra.Command, name string, dst *string) {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		*dst = f.Value.String()
	}
}
