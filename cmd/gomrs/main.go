// Package main provides the gomrs binary entry point. Gomrs converts,
// compares, and validates underspecified semantic graphs in the
// SimpleMRS, MRX, and JSON serializations.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	// Register codecs via init()
	_ "github.com/delph-in/gomrs/codec/mrsjson"
	_ "github.com/delph-in/gomrs/codec/mrx"
	_ "github.com/delph-in/gomrs/codec/simplemrs"

	"github.com/delph-in/gomrs/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "gomrs"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		cfg        *config.Config
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Semantic graph toolkit",
		Long: `Gomrs works with scope-underspecified semantic graphs (Minimal
Recursion Semantics and its variants).

It provides:
- Conversion between the SimpleMRS, MRX, and JSON serializations
- Graph comparison under variable renaming, for corpus scoring
- Structural validation with link-derivation diagnostics`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if configPath != "" {
				cfg, err = config.LoadFromFile(configPath)
				if err == nil {
					err = cfg.Validate()
				}
			} else {
				cfg, err = config.NewLoader(nil).Load()
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: config.ParseLogLevel(cfg.LogLevel),
			}))
			slog.SetDefault(logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cfgRef := func() *config.Config { return cfg }
	cmd.AddCommand(convertCmd(cfgRef))
	cmd.AddCommand(compareCmd(cfgRef))
	cmd.AddCommand(validateCmd(cfgRef))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}
