package main

import (
	"fmt"
	"io"

	"kbmod/internal/config"
	"kbmod/internal/log"
	"kbmod/internal/modlist"
	"kbmod/internal/tui"
	"kbmod/pkg/types"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func tuiCmd(opts *options) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Pick modifiers in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			initial, err := opts.cfg.Bitmask()
			if err != nil {
				return err
			}

			list := modlist.New()
			for _, m := range types.AllModifiers {
				list.AddModifierRow(m)
			}
			list.SetBitmask(initial)

			model := tui.New(list)
			model.SetAbbreviated(opts.cfg.UI.Abbreviated)

			// Log lines would draw over the alt screen; only the log file, if
			// any, receives them while the program runs
			restore := log.Redirect(logOptions(opts.cfg, log.WithOutput(io.Discard))...)
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = p.Run()
			restore()
			if err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}

			mask := model.Bitmask()
			fmt.Fprintf(cmd.OutOrStdout(), "0x%02X %s\n", uint32(mask), mask)

			if !save || mask == initial {
				return nil
			}
			opts.cfg.SetBitmask(mask)
			if err := config.SaveConfig(opts.cfg, opts.cfgPath); err != nil {
				return err
			}
			log.LogWithFields(log.F("path", opts.cfgPath), log.F("bitmask", uint32(mask))).Debug("Saved modifiers")
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", true, "write the selection back to the config file")
	return cmd
}
