// Command axsim builds accessibility trees from HTML, audits them and
// simulates how NVDA, JAWS and VoiceOver would read them.
//
// Usage:
//
//	axsim tree page.html
//	axsim audit page.html --format md
//	axsim simulate page.html --vendor jaws --cmd next-heading,next-link
//	axsim watch page.html
//	axsim live https://example.com
//	axsim serve --addr :8087
//	axsim mcp
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("axsim: fatal", "error", err)
		os.Exit(1)
	}
}
