package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"saxiib/internal/card"
)

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image>...",
		Short: "Add a contact from QR code images",
		Long:  "Reads each image in turn and adds the first valid contact card found.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s := &card.ScanSession{
				Scanner:   card.ImageScanner{Paths: args, Log: wire.Log},
				Directory: wire.Contacts,
				Log:       wire.Log,
				OnError: func(err error) {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", err)
				},
			}
			c, ok, err := s.Run(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "No contact code found.")
				return nil
			}
			fmt.Fprintf(out, "Added %s (%s).\n", c.DisplayName, c.ID)
			return nil
		},
	}
}
