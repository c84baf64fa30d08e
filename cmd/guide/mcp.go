package main

import (
	"github.com/socialsphere/guide/internal/cli"
	"github.com/socialsphere/guide/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the guide as an MCP server",
	Long:  `Exposes the chat, reset_session and show_menu tools over stdio (default) or SSE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sseAddr, _ := cmd.Flags().GetString("sse")
		baseURL, _ := cmd.Flags().GetString("base-url")

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()
		cmd.SetContext(sc)

		eng, backend, _, logger, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		srv := mcp.NewServer(eng, logger)
		if sseAddr != "" {
			if baseURL == "" {
				baseURL = "http://localhost" + sseAddr
			}
			return srv.ServeSSE(sc, sseAddr, baseURL)
		}
		return srv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("sse", "", "Serve over SSE on this address instead of stdio (e.g. :8081)")
	mcpCmd.Flags().String("base-url", "", "Public base URL announced to SSE clients")
}
