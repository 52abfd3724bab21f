// Copyright (c) 2025 The APIFund developers
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package config holds the launch tool's configuration: where state lives,
// which network and currency token launches settle on, and where the
// discovery surface listens.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Config holds all tool-level settings.
type Config struct {
	// DataDir is where the registry database and local state live.
	DataDir string

	// Network names the settlement network: mainnet, testnet or devnet.
	Network string

	// CurrencyAddr is the hex address of the payment-currency token.
	CurrencyAddr string

	// ListenAddr is the host:port the discovery surface binds to.
	ListenAddr string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// DefaultConfig returns the devnet defaults.
func DefaultConfig() Config {
	return Config{
		DataDir:      defaultDataDir(),
		Network:      "devnet",
		CurrencyAddr: "0x0000000000000000000000000000000000000001",
		ListenAddr:   "127.0.0.1:8402",
		LogLevel:     "info",
	}
}

// defaultDataDir returns ~/.apifund, falling back to the relative path when
// the home directory cannot be resolved.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".apifund"
	}
	return home + "/.apifund"
}

// LoadConfig reads a key=value configuration file and applies it on top of
// the defaults. Blank lines and lines starting with '#' are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "datadir":
			cfg.DataDir = value
		case "network":
			cfg.Network = value
		case "currency":
			cfg.CurrencyAddr = value
		case "listen":
			cfg.ListenAddr = value
		case "loglevel":
			cfg.LogLevel = value
		default:
			return cfg, fmt.Errorf("%w: line %d: %q", ErrUnknownKey, lineNum, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	return cfg, ValidateConfig(cfg)
}
