package main

import (
	"context"

	"github.com/spf13/cobra"

	"jestfail/internal/logging"
	mcpserver "jestfail/internal/mcp"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Starts an MCP server over stdin/stdout exposing summarize_failure,
render_failures and summarize_results.

The server watches its parent process and exits when the editor that started
it goes away.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv := mcpserver.NewServer(version)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	logger := logging.New("mcp")
	mcpserver.WatchParent(ctx, logger, cancel)

	logger.Info("starting jestfail MCP server over stdio", "root", srv.ProjectRoot)
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
