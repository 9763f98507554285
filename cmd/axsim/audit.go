package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/axsim/audit"
	"github.com/hazyhaar/axsim/internal/store"
)

var (
	auditFormat   string
	auditSanitize bool
	auditSave     bool
	auditMinScore int
)

var auditCmd = &cobra.Command{
	Use:   "audit FILE",
	Short: "Audit a document for screen reader accessibility",
	Long: `Audit reading order, landmarks, headings, form labels and live regions.

Exits with an error when --min-score is set and the overall score is below it.

Examples:
  axsim audit page.html
  axsim audit page.html --format md > report.md
  axsim audit page.html --save --min-score 80`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(args[0], auditSanitize)
		if err != nil {
			return err
		}
		r, err := newAuditor().Audit(cmd.Context(), args[0], doc)
		if err != nil {
			return err
		}

		if auditSave {
			s, err := store.Open(cfg.Server.DB)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.SaveReport(cmd.Context(), r); err != nil {
				return err
			}
			logger.Info("axsim: report saved", "id", r.ID, "db", cfg.Server.DB)
		}

		if err := writeReport(os.Stdout, r, auditFormat); err != nil {
			return err
		}
		if auditMinScore > 0 && r.Score < auditMinScore {
			return fmt.Errorf("score %d below %d", r.Score, auditMinScore)
		}
		return nil
	},
}

func writeReport(w io.Writer, r *audit.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "md":
		md, err := audit.RenderMarkdown(r)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	case "html":
		page, err := audit.RenderHTML(r)
		if err != nil {
			return err
		}
		_, err = w.Write(page)
		return err
	case "summary":
		_, err := fmt.Fprintf(w, "%s score=%d nodes=%d critical=%d serious=%d moderate=%d minor=%d\n",
			r.Source, r.Score, r.Nodes, r.Count("critical"), r.Count("serious"), r.Count("moderate"), r.Count("minor"))
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

func init() {
	auditCmd.Flags().StringVar(&auditFormat, "format", "json", "output format: json, md, html, summary")
	auditCmd.Flags().BoolVar(&auditSanitize, "sanitize", false, "strip scripts and event handlers before parsing")
	auditCmd.Flags().BoolVar(&auditSave, "save", false, "store the report in server.db")
	auditCmd.Flags().IntVar(&auditMinScore, "min-score", 0, "fail when the overall score is below this value")
	rootCmd.AddCommand(auditCmd)
}
