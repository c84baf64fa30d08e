package main

import (
	"fmt"
	"strings"

	"github.com/socialsphere/guide"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of guide",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "guide version %s\n", strings.TrimSpace(guide.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
