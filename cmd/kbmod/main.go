package main

import (
	"fmt"
	"os"

	"kbmod/internal/config"
	"kbmod/internal/log"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
)

// options shared by every subcommand, filled in by the root command
type options struct {
	cfgFile string
	debug   bool

	cfg     *config.Config
	cfgPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "kbmod",
		Short:   "Pick keyboard modifiers for a hotkey",
		Long:    `kbmod edits the modifier keys (Alt, Control, Shift, Win) of a hotkey and stores them as a bitmask.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.config/kbmod/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(guiCmd(opts))
	rootCmd.AddCommand(tuiCmd(opts))
	rootCmd.AddCommand(maskCmd())
	rootCmd.AddCommand(namesCmd())

	return rootCmd
}

// load resolves the config path, reads the config and applies its log
// settings. A broken config falls back to defaults with a warning.
func (o *options) load() error {
	o.cfgPath = o.cfgFile
	if o.cfgPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		o.cfgPath = path
	}

	cfg, err := config.LoadConfigFile(o.cfgPath)
	if err != nil {
		log.LogWithError(err).Warn("Using default settings")
		cfg = config.New()
	}
	o.cfg = cfg

	if logOpts := logOptions(cfg); len(logOpts) > 0 {
		log.Configure(logOpts...)
	}
	log.SetDebug(o.debug || cfg.Log.Debug)
	return nil
}

// logOptions maps the log section of cfg onto logger options. Extra options
// go first so a log file is teed onto whatever output they select.
func logOptions(cfg *config.Config, extra ...log.Option) []log.Option {
	opts := append([]log.Option(nil), extra...)
	if cfg.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	if cfg.Log.File != "" {
		opts = append(opts, log.WithFile(cfg.Log.File))
	}
	return opts
}
