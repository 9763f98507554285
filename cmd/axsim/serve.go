package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/axsim/audit"
	"github.com/hazyhaar/axsim/dbopen"
	"github.com/hazyhaar/axsim/internal/store"
	"github.com/hazyhaar/axsim/observability"
	"github.com/hazyhaar/axsim/service"
)

const version = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and MCP over streamable HTTP",
	Long: `Serve the audit, tree and simulate API under /api, stored reports under
/api/reports and the MCP tools under /mcp.

Examples:
  axsim serve --addr :8087 --db data/axsim.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		override(cmd, "addr", &cfg.Server.Addr)
		override(cmd, "db", &cfg.Server.DB)

		st, err := store.Open(cfg.Server.DB)
		if err != nil {
			return err
		}
		defer st.Close()

		metricsDB := st.DB
		if cfg.Server.MetricsDB != "" {
			db, err := dbopen.Open(cfg.Server.MetricsDB, dbopen.WithMkdirAll())
			if err != nil {
				return err
			}
			defer db.Close()
			metricsDB = db
		}
		mm, err := newMetrics(metricsDB)
		if err != nil {
			return err
		}
		defer mm.Close()

		svc := service.New(newAuditor(audit.WithMetrics(mm)),
			service.WithStore(st),
			service.WithLogger(logger),
			service.WithConfig(cfg),
		)
		svc.StartGC(ctx.Done())
		mcpSrv := mcp.NewServer(&mcp.Implementation{Name: "axsim", Version: version}, nil)
		svc.RegisterMCP(mcpSrv)

		r := chi.NewRouter()
		r.Mount("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpSrv }, nil))
		r.Mount("/", svc.Handler())

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errc := make(chan error, 1)
		go func() {
			logger.Info("axsim: listening", "addr", cfg.Server.Addr, "db", cfg.Server.DB)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("axsim: shutting down")
		return srv.Shutdown(shutdownCtx)
	},
}

func newMetrics(db *sql.DB) (*observability.MetricsManager, error) {
	if err := observability.Init(db); err != nil {
		return nil, err
	}
	return observability.NewMetricsManager(db, observability.WithLogger(logger)), nil
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "127.0.0.1:8087", "listen address")
	f.String("db", "axsim.db", "report database path")
	rootCmd.AddCommand(serveCmd)
}
