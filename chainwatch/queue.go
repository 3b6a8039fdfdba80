package chainwatch

import (
	"context"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsproject/lightning-integration/node"
)

// Queue is a FIFO of broadcast events. A transaction is queued at most
// once, even if it is observed again later.
type Queue struct {
	mu     sync.Mutex
	items  []*node.BroadcastTxEvent
	seen   map[chainhash.Hash]struct{}
	notify chan struct{}
}

func NewQueue() *Queue {
	return &Queue{
		seen:   make(map[chainhash.Hash]struct{}),
		notify: make(chan struct{}, 1),
	}
}

// Push appends ev and reports whether it was new.
func (q *Queue) Push(ev *node.BroadcastTxEvent) bool {
	txid := ev.Tx.TxHash()
	q.mu.Lock()
	if _, ok := q.seen[txid]; ok {
		q.mu.Unlock()
		return false
	}
	q.seen[txid] = struct{}{}
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Pop removes the oldest event, waiting for one until ctx is done.
func (q *Queue) Pop(ctx context.Context) (*node.BroadcastTxEvent, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ev := q.items[0]
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()
			if more {
				// Hand the wakeup on to another waiting Pop.
				select {
				case q.notify <- struct{}{}:
				default:
				}
			}
			return ev, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
