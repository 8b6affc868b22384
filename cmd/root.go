/*
Copyright © 2023 Glossopoeia
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/glossopoeia/vmheap/runtime"
)

var (
	configPath string
	config     = defaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "vmheap",
	Short: "Inspect the generational value heap of the VM",
	Long: `vmheap drives the value heap of the VM outside of the interpreter.

It can build value graphs in a young generation, promote them into an older
generation with a deep clone, and report what each generation allocated.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return nil
		}
		loaded, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		config = mergeFlags(cmd, loaded, config)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML configuration file")
	flags.Uint64Var(&config.MemoryLimit, "memory-limit", config.MemoryLimit, "bytes each generation may allocate, 0 for no limit")
	flags.BoolVar(&config.Trace, "trace", config.Trace, "log every allocation to stderr")
	flags.IntVar(&config.Depth, "depth", config.Depth, "how deep values are rendered")
}

func newMachine() *runtime.Machine {
	cfg := runtime.Config{
		MemoryLimit: uintptr(config.MemoryLimit),
		Trace:       config.Trace,
	}
	if config.Trace {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return runtime.NewMachine(cfg)
}

func render(v runtime.Value) string {
	return runtime.Debug(v, config.Depth)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
