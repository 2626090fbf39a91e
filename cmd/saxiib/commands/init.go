package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the local identity (no-op if it exists)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.GetOrCreateIdentity(cmd.Context())
			if err != nil {
				return err
			}
			fp, err := wire.Identity.Fingerprint(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Identity ready.\nID: %s\nName: %s\nFingerprint: %s\n", id.ID, id.DisplayName, fp)
			return nil
		},
	}
}
