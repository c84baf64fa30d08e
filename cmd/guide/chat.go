package main

import (
	"os"

	"github.com/socialsphere/guide/internal/cli"
	"github.com/socialsphere/guide/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the guide in the terminal",
	Long:  `Starts an interactive session. Type 'menu' to return to the main menu and 'exit' to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()
		cmd.SetContext(sc)

		eng, backend, _, logger, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer backend.Close()

		return cli.RunChat(sc, eng, cli.ChatOptions{
			SessionID: sessionID,
			In:        os.Stdin,
			Out:       os.Stdout,
			Rich:      !plain && tui.IsTerminal(os.Stdout),
			Logger:    logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume or create")
	chatCmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")
}
