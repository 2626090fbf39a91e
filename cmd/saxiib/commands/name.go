package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func nameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "name <display name>",
		Short: "Change your display name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok, err := wire.Identity.UpdateDisplayName(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No identity yet. Run init first.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Display name set to %q.\n", id.DisplayName)
			return nil
		},
	}
}
