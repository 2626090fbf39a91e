package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"saxiib/internal/card"
	"saxiib/internal/crypto"
	"saxiib/internal/domain"
)

func contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage your contacts",
	}
	cmd.AddCommand(contactsListCmd(), contactsAddCmd(), contactsRemoveCmd())
	return cmd
}

func contactsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := wire.Contacts.List()
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No contacts.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tID\tFINGERPRINT")
			for _, c := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.DisplayName, c.ID, crypto.FingerprintText(c.PublicKey))
			}
			return tw.Flush()
		},
	}
}

func contactsAddCmd() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "add [<id> <name> <publicKey>]",
		Short: "Add or update a contact from its card text or fields",
		Args: func(cmd *cobra.Command, args []string) error {
			if text == "" && len(args) != 3 {
				return errors.New("give --card or <id> <name> <publicKey>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				c   domain.Contact
				err error
			)
			if text != "" {
				c, err = card.Decode(text)
			} else {
				c = domain.Contact{ID: domain.PeerID(args[0]), DisplayName: args[1], PublicKey: args[2]}
				err = card.Validate(c.Card())
			}
			if err != nil {
				return err
			}
			if err := wire.Contacts.Upsert(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s).\n", c.DisplayName, c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "card", "", `contact card text, e.g. '{"id":"...","name":"...","publicKey":"..."}'`)
	return cmd
}

func contactsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id|name>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a contact",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := resolvePeer(args[0])
			if _, ok := wire.Contacts.Get(peer); !ok {
				return fmt.Errorf("no contact %q", args[0])
			}
			if err := wire.Contacts.Delete(cmd.Context(), peer); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", peer)
			return nil
		},
	}
}

// resolvePeer maps a contact name to its id; anything else is taken as an id.
func resolvePeer(arg string) domain.PeerID {
	if _, ok := wire.Contacts.Get(domain.PeerID(arg)); ok {
		return domain.PeerID(arg)
	}
	for _, c := range wire.Contacts.List() {
		if c.DisplayName == arg {
			return c.ID
		}
	}
	return domain.PeerID(arg)
}
