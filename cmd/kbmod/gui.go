package main

import (
	"kbmod/internal/gui"

	"github.com/spf13/cobra"
)

func guiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Launch the graphical modifier picker",
		Long:  `Open a window with the modifier combo box. Changes are saved to the config file, and edits made to the file while the window is open are picked up.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			gui.NewApp(opts.cfg, opts.cfgPath).Run()
		},
	}
}
