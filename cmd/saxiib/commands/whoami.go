package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"saxiib/internal/crypto"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print identity, fingerprint and contact card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.GetOrCreateIdentity(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %s\n", id.ID)
			fmt.Fprintf(out, "Name: %s\n", id.DisplayName)
			fmt.Fprintf(out, "Fingerprint: %s\n", crypto.FingerprintText(id.PublicKey))
			fmt.Fprintf(out, "Card: %s\n", id.Card)
			return nil
		},
	}
}
