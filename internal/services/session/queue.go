package session

import (
	"context"
	"sync"

	"saxiib/internal/domain"
)

type eventKind int

const (
	evOpen eventKind = iota + 1
	evData
	evClosed
	evSend
	evFlush
)

type event struct {
	kind  eventKind
	frame domain.Frame
	err   error
	done  chan error
}

// queue is an unbounded FIFO with a single consumer.
type queue struct {
	mu     sync.Mutex
	items  []event
	signal chan struct{}
}

func newQueue() *queue {
	return &queue{signal: make(chan struct{}, 1)}
}

// push never blocks.
func (q *queue) push(ev event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// pop waits for the next event. It reports false once ctx is done.
func (q *queue) pop(ctx context.Context) (event, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items[0] = event{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return ev, true
		}
		q.mu.Unlock()

		select {
		case <-q.signal:
		case <-ctx.Done():
			return event{}, false
		}
	}
}

// drain removes and returns everything queued.
func (q *queue) drain() []event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
