package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/glossopoeia/vmheap/runtime"
)

type Config struct {
	MemoryLimit uint64 `yaml:"memory_limit"`
	Trace       bool   `yaml:"trace"`
	Depth       int    `yaml:"depth"`
}

func defaultConfig() Config {
	return Config{Depth: runtime.DefaultDebugDepth}
}

func loadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := defaultConfig()
	if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Depth <= 0 {
		return Config{}, fmt.Errorf("parsing config %s: depth must be positive, got %d", path, cfg.Depth)
	}
	return cfg, nil
}

// Flags given on the command line win over the configuration file.
func mergeFlags(cmd *cobra.Command, file Config, flags Config) Config {
	merged := file
	if cmd.Flags().Changed("memory-limit") {
		merged.MemoryLimit = flags.MemoryLimit
	}
	if cmd.Flags().Changed("trace") {
		merged.Trace = flags.Trace
	}
	if cmd.Flags().Changed("depth") {
		merged.Depth = flags.Depth
	}
	return merged
}
