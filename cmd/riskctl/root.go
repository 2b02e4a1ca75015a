package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ZanzyTHEbar/student-risk-meter/internal/config"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/history"
)

var version = "dev"

const (
	outputText = "text"
	outputJSON = "json"
)

// cli holds the flags shared by every subcommand.
type cli struct {
	configFile string
	output     string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "riskctl",
		Short: "Classify student metrics and manage assessment history",
		Long: `riskctl grades student wellbeing metrics, groups risk factors into
categories and reads or clears the assessment history the server records.

History commands use the same configuration as the server: risk.yaml in the
working directory, a .env file and RISK_ prefixed environment variables.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if c.noColor {
				color.NoColor = true
			}
			if c.output != outputText && c.output != outputJSON {
				return fmt.Errorf("unknown output format %q", c.output)
			}
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default ./risk.yaml)")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", outputText, "output format: text or json")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().String("data-dir", "", "data directory holding the file history")
	root.PersistentFlags().String("history-backend", "", "history backend: file, redis or memory")
	root.PersistentFlags().String("redis-addr", "", "redis address for the redis history backend")

	root.AddCommand(
		newClassifyCmd(c),
		newCategorizeCmd(c),
		newCatalogCmd(c),
		newHistoryCmd(c),
		newDistributionCmd(c),
	)
	return root
}

// configFlags maps config keys to the flags that override them
var configFlags = map[string]string{
	"data_dir":        "data-dir",
	"history.backend": "history-backend",
	"redis.addr":      "redis-addr",
}

// openHistory opens the configured history backend. Flags set on cmd win over
// every other config source. The returned close function releases backend
// connections.
func (c *cli) openHistory(ctx context.Context, cmd *cobra.Command) (*history.Registry, func(), error) {
	v := viper.New()
	for key, name := range configFlags {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, nil, fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(v, c.configFile)
	if err != nil {
		return nil, nil, err
	}

	backend, err := history.OpenBackend(ctx, cfg.History.Backend, history.BackendOptions{
		Dir: filepath.Join(cfg.DataDir, "history"),
		Redis: history.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history backend: %w", err)
	}

	closeFn := func() {}
	if closer, ok := backend.(io.Closer); ok {
		closeFn = func() { _ = closer.Close() }
	}
	return history.NewRegistry(backend), closeFn, nil
}
