package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"

	"github.com/grassfps/grassfps/internal/config"
	"github.com/grassfps/grassfps/internal/logging"
)

var RootCommand = &cobra.Command{
	Use:           "grassfps",
	Short:         "Rewrite grass records according to configured categories",
	SilenceUsage:  true,
	SilenceErrors: false,
}

type globalParams struct {
	logLevel  logging.Level
	logFormat string
}

var global = globalParams{
	logLevel:  logging.Info,
	logFormat: "console",
}

func init() {
	RootCommand.PersistentFlags().Var(enumflag.New(&global.logLevel, "level", logging.LevelIds, enumflag.EnumCaseInsensitive), "log-level", "set log level (trace, debug, info, warn, error)")
	RootCommand.PersistentFlags().StringVar(&global.logFormat, "log-format", global.logFormat, "set log format (console, json)")
}

func newLogger(cmd *cobra.Command) (*logging.Logger, error) {
	switch strings.ToLower(global.logFormat) {
	case "console", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", global.logFormat)
	}

	return logging.NewLogger(logging.Config{
		Level:  global.logLevel,
		Format: global.logFormat,
		Output: cmd.ErrOrStderr(),
	}), nil
}

// configParams are shared by every command reading a configuration.
type configParams struct {
	configFiles []string
	configPatch string
}

func (p *configParams) addFlags(fs *pflag.FlagSet) {
	fs.StringSliceVarP(&p.configFiles, "config", "c", nil, "configuration file or directory, may be repeated (default configuration if unset)")
	fs.StringVar(&p.configPatch, "config-patch", "", "JSON patch (JSON or YAML) applied to the merged configuration")
}

// load merges the configuration files, applies the optional patch and parses
// the result. Without files the default configuration is patched.
func (p *configParams) load(log *logging.Logger) (*config.Root, error) {
	var (
		bs  []byte
		err error
	)

	if len(p.configFiles) == 0 {
		log.Debugf("No configuration given, using defaults")
		bs, err = yaml.Marshal(config.Default())
	} else {
		bs, err = config.Merge(p.configFiles, false)
	}
	if err != nil {
		return nil, err
	}

	if p.configPatch != "" {
		patch, err := os.ReadFile(p.configPatch)
		if err != nil {
			return nil, err
		}
		if bs, err = config.Patch(bs, patch); err != nil {
			return nil, fmt.Errorf("failed to apply configuration patch %v: %w", p.configPatch, err)
		}
	}

	root, err := config.Parse(bs)
	if err != nil {
		return nil, err
	}

	log.Debugf("Loaded %d categories", len(root.Categories))
	return root, nil
}
