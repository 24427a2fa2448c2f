// Package config loads the emulator's optional TOML configuration file,
// following the same load-defaults-then-overlay pattern used throughout
// the pack. The assembler does not read it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable of the toolchain. Every field has a default
// from DefaultConfig; a TOML file only needs to mention what it overrides.
type Config struct {
	Memory struct {
		SizeBytes uint64 `toml:"size_bytes"`
	} `toml:"memory"`

	Execution struct {
		MaxCycles   uint64 `toml:"max_cycles"`
		EntryPoint  string `toml:"entry_point"`
		EnableTrace bool   `toml:"enable_trace"`
	} `toml:"execution"`

	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowRegisters bool `toml:"show_registers"`
		ShowFlags     bool `toml:"show_flags"`
	} `toml:"debugger"`

	Display struct {
		ColorOutput   bool   `toml:"color_output"`
		BytesPerLine  int    `toml:"bytes_per_line"`
		DisasmContext int    `toml:"disasm_context"`
		NumberFormat  string `toml:"number_format"` // hex, dec
	} `toml:"display"`
}

// DefaultConfig returns the configuration used when no file is present,
// matching the defaults named in the instruction-set and execution spec.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Memory.SizeBytes = 32 * 1024 * 1024

	cfg.Execution.MaxCycles = 10_000_000
	cfg.Execution.EntryPoint = "0x0400"
	cfg.Execution.EnableTrace = false

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.ShowFlags = true

	cfg.Display.ColorOutput = true
	cfg.Display.BytesPerLine = 16
	cfg.Display.DisasmContext = 5
	cfg.Display.NumberFormat = "hex"

	return cfg
}

// Load reads the config file at path, overlaying it onto the defaults. A
// missing file is not an error: the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfigPath returns the platform-specific config file path, used
// when -config is not given on the command line.
func DefaultConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "acca")
	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "acca.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "acca")
	default:
		return "acca.toml"
	}

	return filepath.Join(configDir, "acca.toml")
}
