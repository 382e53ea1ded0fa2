// Command screener drafts screening criteria and ranks resumes from the
// command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/app"
	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/logger"
)

const appName = "screener"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           appName,
		Short:         "screener drafts yes/no screening criteria and ranks resumes against them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a YAML config file (environment variables still win)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration with the persistent flags bound on
// top of the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.LoadWith(cfgFile, func(v *viper.Viper) error {
		if err := v.BindPFlag("log.debug", cmd.Flags().Lookup("debug")); err != nil {
			return err
		}
		return v.BindPFlag("log.json", cmd.Flags().Lookup("json"))
	})
}

// setup loads the configuration and builds the command logger.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}
	return cfg, zl, nil
}

// newStack is setup plus the LLM-backed services.
func newStack(ctx context.Context, cmd *cobra.Command) (*app.Stack, error) {
	cfg, zl, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	return app.NewStack(ctx, cfg, zl)
}
