package main

import (
	"fmt"

	"github.com/socialsphere/guide/internal/cli"
	"github.com/socialsphere/guide/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Inspect the response table",
}

var contentValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a content file for missing or duplicate keys",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.Content = args[0]
		}
		table, err := cli.LoadTable(cfg.Content)
		if err != nil {
			return err
		}
		answers := 0
		for _, d := range table.Domains {
			answers += len(d.Answers)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Content is valid: %d domains, %d answers\n", len(table.Domains), answers)
		return nil
	},
}

var contentGraphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the dialogue as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart of the menu, domains and answers. With --session the session's current position is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		eng, backend, _, _, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		var overlay *graph.Overlay
		if sessionID != "" {
			conv, err := eng.Session(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", sessionID, err)
			}
			overlay = graph.OverlayFor(conv)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(eng.Table(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(contentCmd)
	contentCmd.AddCommand(contentValidateCmd, contentGraphCmd)
	contentGraphCmd.Flags().StringP("session", "s", "", "Highlight the current step of this session")
}
