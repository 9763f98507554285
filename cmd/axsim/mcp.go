package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/axsim/internal/store"
	"github.com/hazyhaar/axsim/service"
)

var mcpStore bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP tools over stdio",
	Long: `Serve axsim_audit, axsim_tree and axsim_simulate to an MCP client over stdio.
With --store, audit reports are saved to server.db.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := []service.Option{service.WithLogger(logger), service.WithConfig(cfg)}
		if mcpStore {
			st, err := store.Open(cfg.Server.DB)
			if err != nil {
				return err
			}
			defer st.Close()
			opts = append(opts, service.WithStore(st))
		}

		srv := mcp.NewServer(&mcp.Implementation{Name: "axsim", Version: version}, nil)
		service.New(newAuditor(), opts...).RegisterMCP(srv)
		return srv.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpStore, "store", false, "save audit reports to server.db")
	rootCmd.AddCommand(mcpCmd)
}
