package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	treeFormat   string
	treeSanitize bool
)

var treeCmd = &cobra.Command{
	Use:   "tree FILE",
	Short: "Print the accessibility tree of a document",
	Long: `Print the accessibility tree of an HTML file, a JSON snapshot or stdin (-).

Examples:
  axsim tree page.html
  axsim tree capture.json --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := buildTree(args[0], treeSanitize)
		if err != nil {
			return err
		}
		switch treeFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(t.Export())
		case "outline":
			_, err := fmt.Fprint(os.Stdout, t.Outline())
			return err
		default:
			return fmt.Errorf("unknown format %q", treeFormat)
		}
	},
}

func init() {
	treeCmd.Flags().StringVar(&treeFormat, "format", "outline", "output format: outline, json")
	treeCmd.Flags().BoolVar(&treeSanitize, "sanitize", false, "strip scripts and event handlers before parsing")
	rootCmd.AddCommand(treeCmd)
}
