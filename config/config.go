// Package config holds the simulator configuration and its JSON form.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sarchlab/la32sim/log"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings of one simulation run.
type Config struct {
	// MemBase is the lowest physical address of guest memory.
	// Default: 0x80000000.
	MemBase uint32 `json:"mem_base"`

	// MemSize is the size of guest memory in bytes. Default: 128 MiB.
	MemSize uint32 `json:"mem_size"`

	// ResetVector is the pc at reset. Default: MemBase.
	ResetVector uint32 `json:"reset_vector"`

	// MaxInstructions stops the run after this many instructions.
	// 0 means no limit.
	MaxInstructions uint64 `json:"max_instructions"`

	// ITraceDepth is the number of recent instructions kept for the
	// abort report. Default: 16.
	ITraceDepth int `json:"itrace_depth"`

	// ITrace logs every executed instruction at trace level.
	ITrace bool `json:"itrace"`

	// MTrace logs every memory access at trace level.
	MTrace bool `json:"mtrace"`

	// LogLevel is one of trace, debug, info, warn, error, crit.
	// Default: info.
	LogLevel string `json:"log_level"`

	Cache CacheConfig `json:"cache"`
}

// CacheConfig describes the optional data cache in front of memory.
type CacheConfig struct {
	Enabled bool `json:"enabled"`

	// Size in bytes. Default: 32 KiB.
	Size int `json:"size"`

	// Associativity is the number of ways. Default: 4.
	Associativity int `json:"associativity"`

	// BlockSize is the line size in bytes. Default: 64.
	BlockSize int `json:"block_size"`
}

// Default memory layout.
const (
	DefaultMemBase uint32 = 0x80000000
	DefaultMemSize uint32 = 128 * 1024 * 1024
)

// DefaultConfig returns a Config with the default memory layout and the
// cache disabled.
func DefaultConfig() *Config {
	return &Config{
		MemBase:     DefaultMemBase,
		MemSize:     DefaultMemSize,
		ResetVector: DefaultMemBase,
		ITraceDepth: 16,
		LogLevel:    "info",
		Cache: CacheConfig{
			Size:          32 * 1024,
			Associativity: 4,
			BlockSize:     64,
		},
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MemEnd returns the first address past guest memory.
func (c *Config) MemEnd() uint64 {
	return uint64(c.MemBase) + uint64(c.MemSize)
}

// InMemory reports whether [addr, addr+size) lies inside guest memory.
func (c *Config) InMemory(addr uint32, size uint64) bool {
	return addr >= c.MemBase && uint64(addr)+size <= c.MemEnd()
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.MemSize == 0 {
		return fmt.Errorf("%w: mem_size must be > 0", ErrInvalidConfig)
	}
	if c.MemEnd() > 1<<32 {
		return fmt.Errorf("%w: memory must end within the 32-bit address space", ErrInvalidConfig)
	}
	if !c.InMemory(c.ResetVector, 4) {
		return fmt.Errorf("%w: reset_vector 0x%08x outside memory", ErrInvalidConfig, c.ResetVector)
	}
	if c.ITraceDepth < 0 {
		return fmt.Errorf("%w: itrace_depth must be >= 0", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Cache.Enabled {
		return c.Cache.Validate()
	}
	return nil
}

// Validate checks the cache geometry.
func (c *CacheConfig) Validate() error {
	if c.Size <= 0 || c.Associativity <= 0 || c.BlockSize <= 0 {
		return fmt.Errorf("%w: cache size, associativity and block_size must be > 0", ErrInvalidConfig)
	}
	if c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("%w: cache block_size must be a power of two", ErrInvalidConfig)
	}
	if c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("%w: cache size must be a multiple of associativity * block_size", ErrInvalidConfig)
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
