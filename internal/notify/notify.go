// Package notify provides sinks for received-message notifications.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"saxiib/internal/domain"
)

// Log reports each message as an info line.
type Log struct {
	Entry *logrus.Entry
}

func (n Log) NotifyNewMessage(displayName, preview string) {
	n.Entry.WithFields(logrus.Fields{"from": displayName, "preview": preview}).Info("new message")
}

// Writer prints one line per message, e.g. for a terminal.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a sink printing to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (n *Writer) NotifyNewMessage(displayName, preview string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] %s\n", displayName, preview)
}

// Multi fans a notification out to several sinks in order.
type Multi []domain.Notifier

func (m Multi) NotifyNewMessage(displayName, preview string) {
	for _, n := range m {
		n.NotifyNewMessage(displayName, preview)
	}
}

var (
	_ domain.Notifier = Log{}
	_ domain.Notifier = (*Writer)(nil)
	_ domain.Notifier = Multi(nil)
)
