package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"saxiib/internal/domain"
	"saxiib/internal/services/session"
)

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [peer]",
		Short: "Print the message history, optionally for one peer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []domain.Message
			if len(args) == 1 {
				list = wire.Messages.ListFor(resolvePeer(args[0]))
			} else {
				list = wire.Messages.List()
			}
			if limit > 0 && len(list) > limit {
				list = list[len(list)-limit:]
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No messages.")
				return nil
			}
			for _, m := range list {
				fmt.Fprintln(out, formatMessage(m))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last n messages")
	return cmd
}

func formatMessage(m domain.Message) string {
	arrow, peer := "->", m.ReceiverID
	if m.Status == domain.StatusReceived {
		arrow, peer = "<-", m.SenderID
	}
	name := string(peer)
	if c, ok := wire.Contacts.Get(peer); ok {
		name = c.DisplayName
	}
	body := m.Content
	if m.Kind.IsMedia() {
		body = describeMedia(m)
	}
	return fmt.Sprintf("%s %s %s: %s", m.Timestamp.Local().Format("2006-01-02 15:04:05"), arrow, name, strings.TrimSpace(body))
}

func describeMedia(m domain.Message) string {
	mime, data, err := session.DecodeDataURI(m.Content)
	if err != nil {
		return fmt.Sprintf("[%s, unreadable]", m.Kind)
	}
	return fmt.Sprintf("[%s %s, %d bytes]", m.Kind, mime, len(data))
}
