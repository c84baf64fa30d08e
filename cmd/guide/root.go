package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/socialsphere/guide"
	"github.com/socialsphere/guide/internal/cli"
	"github.com/socialsphere/guide/internal/config"
	"github.com/socialsphere/guide/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guide",
	Short: "SocialSphere guided help assistant",
	Long: `guide answers SocialSphere product questions through a menu-driven dialogue.
Run it interactively in the terminal, as an HTTP API, or as an MCP server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().String("content", "", "Content file overriding the built-in SocialSphere table")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if content, _ := cmd.Flags().GetString("content"); content != "" {
		cfg.Content = content
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg, debug)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// openEngine loads config and builds an engine over the configured store.
// The caller closes the returned backend.
func openEngine(cmd *cobra.Command, hooks ...domain.LifecycleHooks) (*guide.Engine, *cli.Backend, config.Config, *slog.Logger, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, cfg, nil, err
	}
	backend, err := cli.OpenBackend(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, cfg, nil, err
	}
	eng, err := cli.BuildEngine(cfg, backend, logger, hooks...)
	if err != nil {
		_ = backend.Close()
		return nil, nil, cfg, nil, err
	}
	return eng, backend, cfg, logger, nil
}
