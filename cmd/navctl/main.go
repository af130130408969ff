// Command navctl prints the NAV dashboard figures in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/bobmcallan/nav-portal/internal/app"
	"github.com/bobmcallan/nav-portal/internal/common"
	"github.com/bobmcallan/nav-portal/internal/config"
)

// configPaths is a custom flag type that allows multiple -config flags.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	sheetURL    = flag.String("sheet", "", "Sheet URL or local CSV path (overrides config)")
	rawOutput   = flag.Bool("raw", false, "Print markdown without terminal styling")
	logLevel    = flag.String("log-level", "warn", "Log level")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times)")
}

// commands lists every navctl subcommand.
var commands = []subcommands.Command{
	&summaryCmd{},
	&performanceCmd{},
	&tableCmd{},
	&benchmarkCmd{},
}

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// openPipeline loads the configuration and wires the dashboard pipeline.
func openPipeline() (*app.Pipeline, error) {
	if len(configFiles) == 0 {
		if _, err := os.Stat("portal.toml"); err == nil {
			configFiles = append(configFiles, "portal.toml")
		}
	}

	cfg, err := config.LoadFromFiles(configFiles...)
	if err != nil {
		return nil, err
	}
	if *sheetURL != "" {
		cfg.Sheet.URL = *sheetURL
	}

	logger := common.NewLoggerFromConfig(config.LoggingConfig{
		Level:   *logLevel,
		Outputs: []string{"console"},
	})

	return app.NewPipeline(cfg, logger, nil)
}
