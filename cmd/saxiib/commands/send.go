package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"saxiib/internal/domain"
	"saxiib/internal/services/session"
)

func sendCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Send a text message to a peer (id or contact name)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer := resolvePeer(args[0])
			m, err := wire.Online(cmd.Context(), nil)
			if err != nil {
				return err
			}
			msg, err := m.Send(cmd.Context(), strings.Join(args[1:], " "), peer)
			if err != nil {
				return err
			}
			return deliver(cmd, m, peer, msg, timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "how long to wait for delivery")
	return cmd
}

func sendMediaCmd() *cobra.Command {
	var (
		kind    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send-media <peer> <file>",
		Short: "Send an image, video or voice recording to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := domain.MessageKind(kind)
			if !k.IsMedia() {
				return fmt.Errorf("--kind must be image, video or voice, got %q", kind)
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			peer := resolvePeer(args[0])
			m, err := wire.Online(cmd.Context(), nil)
			if err != nil {
				return err
			}
			msg, err := m.SendMedia(cmd.Context(), data, k, peer)
			if err != nil {
				return err
			}
			return deliver(cmd, m, peer, msg, timeout)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(domain.KindImage), "media kind: image, video or voice")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "how long to wait for delivery")
	return cmd
}

// deliver waits for the session to write everything queued for peer. The
// message is already in the log whatever the outcome.
func deliver(cmd *cobra.Command, m *session.Manager, peer domain.PeerID, msg domain.Message, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	if err := m.Flush(ctx, peer); err != nil {
		return fmt.Errorf("message %s logged but not delivered: %w", msg.ID, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent to %s (%s).\n", peer, msg.ID)
	return nil
}
