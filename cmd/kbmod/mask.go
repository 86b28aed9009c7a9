package main

import (
	"fmt"
	"strconv"
	"strings"

	"kbmod/internal/errors"
	"kbmod/pkg/types"

	"github.com/spf13/cobra"
)

func maskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mask <modifier>...",
		Short: "Print the bitmask for modifier names",
		Long: `Combine modifier names into a bitmask. Arguments may be single names
(ctrl, shift), joined names (ctrl+shift) or glob patterns (c*).`,
		Example: "  kbmod mask ctrl shift\n  kbmod mask alt+win\n  kbmod mask '*'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := parseMaskArgs(args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "0x%02X %d %s\n", uint32(mask), uint32(mask), mask)
			return nil
		},
	}
}

func parseMaskArgs(args []string) (types.Bitmask, error) {
	var mask types.Bitmask
	for _, arg := range args {
		var part types.Bitmask
		var err error
		if strings.ContainsAny(arg, "*?[{") {
			part, err = types.MatchModifiers(arg)
			if err == nil && part == 0 {
				err = errors.NewModifierError("pattern matches no modifier", arg, errors.InvalidModifier, nil)
			}
		} else {
			part, err = types.ParseBitmask(arg)
		}
		if err != nil {
			return 0, err
		}
		mask |= part
	}
	return mask, nil
}

func namesCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:     "names <bitmask>",
		Short:   "Print the modifier names in a bitmask",
		Example: "  kbmod names 0x6\n  kbmod names 9 --short",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return errors.NewModifierError("invalid bitmask", args[0], errors.InvalidBitmask, err)
			}
			mask := types.Bitmask(v)
			if unknown := mask.Unknown(); unknown != 0 {
				return errors.NewModifierError("bitmask has unknown bits", fmt.Sprintf("0x%X", uint32(unknown)), errors.InvalidBitmask, nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), mask.Format(short))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "use abbreviated names")
	return cmd
}
