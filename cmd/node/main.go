package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DeBrosOfficial/gossipnode/pkg/config"
	"github.com/DeBrosOfficial/gossipnode/pkg/logging"
)

// envPrefix lets every global flag be set from the environment, e.g.
// GOSSIPNODE_LOG_LEVEL=debug. Flags given on the command line win.
const envPrefix = "GOSSIPNODE"

type globalFlags struct {
	configPath string
	logLevel   string
	logFile    string
	noColor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	v := viper.New()

	root := &cobra.Command{
		Use:          "node",
		Short:        "Gossip node",
		Long:         "Validate, inspect and run a gossip node from its YAML configuration",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			flags.load(v)
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "Path to config YAML file (default ~/.gossipnode/"+config.DefaultFileName+")")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Write logs to this file instead of stderr")
	pf.Bool("no-color", false, "Disable colored log output")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(pf); err != nil {
		panic(err)
	}

	root.AddCommand(
		newValidateCmd(flags),
		newShowCmd(flags),
		newInitCmd(flags),
		newRunCmd(flags),
	)
	return root
}

func (f *globalFlags) load(v *viper.Viper) {
	f.configPath = v.GetString("config")
	f.logLevel = v.GetString("log-level")
	f.logFile = v.GetString("log-file")
	f.noColor = v.GetBool("no-color")
}

// resolveConfigPath returns the --config value or the default file path.
func (f *globalFlags) resolveConfigPath() (string, error) {
	if f.configPath != "" {
		return f.configPath, nil
	}
	return config.DefaultPath(config.DefaultFileName)
}

func (f *globalFlags) newLogger(stderr io.Writer) (*logging.ColoredLogger, error) {
	level, err := logging.ParseLevel(f.logLevel)
	if err != nil {
		return nil, err
	}
	if f.logFile != "" {
		logger, err := logging.NewFileLogger(f.logFile, level, false)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		return logger, nil
	}
	return logging.NewLogger(stderr, level, !f.noColor), nil
}
