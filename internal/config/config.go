// Package config defines the CLI structure and configuration for bitusb.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/ardnew/bitusb/internal/cmd"
)

// Log configures the CLI logger.
type Log struct {
	Level  string `help:"Log level: trace, debug, info, warn, error" default:"warn" env:"BITUSB_LOG_LEVEL"`
	File   string `help:"Log file path (default: none; logs only to stderr)" env:"BITUSB_LOG_FILE"`
	Format string `help:"Log format: text, json" enum:"text,json" default:"text" env:"BITUSB_LOG_FORMAT"`
}

// Profile selects profiles written while a command runs.
type Profile struct {
	CPU  string `name:"cpu" help:"Write a CPU profile to this file" env:"BITUSB_PROFILE_CPU"`
	Heap string `help:"Write a heap profile to this file when the command ends" env:"BITUSB_PROFILE_HEAP"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Log     `embed:"" prefix:"log."`
	Profile `embed:"" prefix:"profile."`

	Version kong.VersionFlag `short:"V" help:"Print the version and exit"`
	Config  string           `help:"Configuration file (json, yaml or toml)" type:"path" env:"BITUSB_CONFIG"`

	Enumerate  cmd.Enumerate     `cmd:"" help:"Enumerate the simulated device and print its descriptors"`
	Poll       cmd.Poll          `cmd:"" help:"Poll the interrupt endpoints and print reports"`
	Trim       cmd.Trim          `cmd:"" help:"Run keepalives and print the oscillator trim convergence"`
	Capture    cmd.Capture       `cmd:"" help:"Enumerate with the logic analyzer running and dump the capture as YAML"`
	Bootloader cmd.Bootloader    `cmd:"" help:"Send the bootloader request and print the recorded system writes"`
	Cfg        cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}
