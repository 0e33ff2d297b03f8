// Copyright 2024 The bowline Authors
// This file is part of bowline.
//
// bowline is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// bowline is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with bowline. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/bowline-proxy/bowline/limits"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

// Config is the full configuration of the planner. Zero overrides mean
// "compute from the environment"; non-zero values are operator decisions
// used verbatim, though still subject to the attainability check.
type Config struct {
	// Limits holds the planner policy constants.
	Limits limits.Policy

	// MaxConn, MaxPipes and MaxSock override the corresponding estimates.
	MaxConn  int
	MaxPipes int
	MaxSock  int

	// MaxMem caps the usable memory in MiB instead of probing the system.
	MaxMem uint64

	// StrictLimits aborts startup when the envelope is unattainable instead
	// of shrinking it.
	StrictLimits bool

	Metrics     bool
	MetricsAddr string
}

func defaultConfig() *Config {
	return &Config{
		Limits:      *limits.DefaultPolicy(),
		MetricsAddr: metricsAddrFlag.Value,
	}
}

// These settings ensure that TOML keys use the same names as Go struct
// fields, and that fields in the config file not defined in the struct are
// rejected with a pointer to where they should live.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see github.com/bowline-proxy/bowline/cmd/bowline/config.go for available fields")
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

func loadConfig(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add the file name to errors that carry a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig assembles the effective configuration: built-in defaults, then
// the config file, then command line overrides, in that order.
func makeConfig(ctx *cli.Context) (*Config, error) {
	cfg := defaultConfig()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, cfg); err != nil {
			return nil, err
		}
	}
	if ctx.IsSet(maxconnFlag.Name) {
		cfg.MaxConn = ctx.Int(maxconnFlag.Name)
	}
	if ctx.IsSet(maxpipesFlag.Name) {
		cfg.MaxPipes = ctx.Int(maxpipesFlag.Name)
	}
	if ctx.IsSet(maxsockFlag.Name) {
		cfg.MaxSock = ctx.Int(maxsockFlag.Name)
	}
	if ctx.IsSet(maxmemFlag.Name) {
		cfg.MaxMem = ctx.Uint64(maxmemFlag.Name)
	}
	if ctx.IsSet(listenersFlag.Name) {
		cfg.Limits.Listeners = ctx.Int(listenersFlag.Name)
	}
	if ctx.IsSet(strictLimitsFlag.Name) {
		cfg.StrictLimits = ctx.Bool(strictLimitsFlag.Name)
	}
	if ctx.IsSet(metricsFlag.Name) {
		cfg.Metrics = ctx.Bool(metricsFlag.Name)
	}
	if ctx.IsSet(metricsAddrFlag.Name) {
		cfg.MetricsAddr = ctx.String(metricsAddrFlag.Name)
	}
	if cfg.MaxConn < 0 || cfg.MaxPipes < 0 || cfg.MaxSock < 0 {
		return nil, errors.New("limit overrides must not be negative")
	}
	if err := cfg.Limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid limits policy: %v", err)
	}
	return cfg, nil
}

var dumpConfigCommand = &cli.Command{
	Name:        "dumpconfig",
	Usage:       "Export the effective configuration as TOML",
	ArgsUsage:   "",
	Flags:       planFlags,
	Action:      dumpConfig,
	Description: `Prints the configuration the planner would run with, defaults and overrides merged, in a form loadable via --config.`,
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
