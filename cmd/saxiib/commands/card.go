package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"saxiib/internal/card"
)

func cardCmd() *cobra.Command {
	var (
		out     string
		dataURL bool
		plain   bool
	)
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Render your contact card as a QR code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Identity.GetOrCreateIdentity(cmd.Context())
			if err != nil {
				return err
			}
			r := wire.Renderer
			if plain {
				r = card.NewRenderer(card.PlainStyle)
			}
			if dataURL {
				u, err := r.RenderDataURL(id.Card)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), u)
				return nil
			}
			png, err := r.Render(id.Card)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "saxiib-contact.png", "PNG output path")
	cmd.Flags().BoolVar(&dataURL, "data-url", false, "print a data: URL instead of writing a file")
	cmd.Flags().BoolVar(&plain, "plain", false, "black on white, for printing")
	return cmd
}
