// Command bitusb drives the simulated low-speed device stack from a
// simulated host.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/ardnew/bitusb/internal/config"
	"github.com/ardnew/bitusb/internal/configpaths"
	"github.com/ardnew/bitusb/internal/log"
	"github.com/ardnew/bitusb/pkg/prof"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("bitusb"),
		kong.Description("Bit-banged USB 1.1 low-speed device stack, simulated (${version})"),
		kong.Vars{"version": buildVersion()},
		kong.UsageOnError(),
		// Flags and env override config file values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File, cli.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to setup logger:", err)
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)
	ctx.BindTo(os.Stdout, (*io.Writer)(nil))

	err = run(ctx, cli.Profile)
	ctx.FatalIfErrorf(err)
}

// run runs the selected command with the requested profiles.
func run(ctx *kong.Context, p config.Profile) error {
	if p.CPU != "" {
		if err := prof.StartCPU(p.CPU); err != nil {
			return fmt.Errorf("cpu profile: %w", err)
		}
	}
	err := ctx.Run()
	if stopErr := prof.StopCPU(); stopErr != nil && err == nil {
		err = fmt.Errorf("cpu profile: %w", stopErr)
	}
	if p.Heap != "" {
		if heapErr := prof.Write(prof.ProfileHeap, p.Heap); heapErr != nil && err == nil {
			err = fmt.Errorf("heap profile: %w", heapErr)
		}
	}
	return err
}

func findUserConfig(args []string) string {
	for i, a := range args {
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("BITUSB_CONFIG")
}
