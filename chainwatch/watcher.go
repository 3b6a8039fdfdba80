// Package chainwatch follows the transactions a node publishes after a
// unilateral close by watching the shared bitcoind.
package chainwatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/elementsproject/lightning-integration/chain"
	"github.com/elementsproject/lightning-integration/log"
	"github.com/elementsproject/lightning-integration/node"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	// maxBlockWalk bounds how many blocks are scanned per poll when the
	// tip moved by more than one block.
	maxBlockWalk = 50
)

// TxSource is the part of chain.Oracle the watcher reads from.
type TxSource interface {
	GetRawMempool(ctx context.Context) ([]*chainhash.Hash, error)
	GetRawTransaction(ctx context.Context, txid *chainhash.Hash) (*wire.MsgTx, error)
	GetBlockchainInfo(ctx context.Context) (*chain.BlockchainInfo, error)
	GetBlock(ctx context.Context, hash *chainhash.Hash) (*chain.Block, error)
}

type watchKind int

const (
	watchFunding watchKind = iota
	watchCommitmentOutput
	watchHTLCOutput
)

type watched struct {
	kind watchKind
	// commitment we published, only set for funding outpoints
	ourCommit chainhash.Hash
}

// Watcher scans mempool and new blocks for spends of watched outpoints and
// queues the ones that belong to our side of a unilateral close.
type Watcher struct {
	src      TxSource
	interval time.Duration
	queue    *Queue

	mu        sync.Mutex
	outpoints map[wire.OutPoint]watched
	processed map[chainhash.Hash]struct{}
	lastTip   *chainhash.Hash

	stopOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func NewWatcher(src TxSource, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{
		src:       src,
		interval:  interval,
		queue:     NewQueue(),
		outpoints: make(map[wire.OutPoint]watched),
		processed: make(map[chainhash.Hash]struct{}),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// WatchCommitment starts following the close of the channel funded by
// funding, where ourCommit is the commitment this node broadcast.
func (w *Watcher) WatchCommitment(funding wire.OutPoint, ourCommit chainhash.Hash) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.outpoints[funding] = watched{kind: watchFunding, ourCommit: ourCommit}
	// The commitment may have been seen before we knew it was ours.
	w.processed = make(map[chainhash.Hash]struct{})
}

func (w *Watcher) Queue() *Queue {
	return w.queue
}

// Next waits up to PublishedTxTimeout for the next queued event.
func (w *Watcher) Next(ctx context.Context) (*node.BroadcastTxEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, node.PublishedTxTimeout)
	defer cancel()
	ev, err := w.queue.Pop(ctx)
	if err != nil {
		return nil, node.FromContext("published encumbered tx", err)
	}
	return ev, nil
}

// Start polls in the background until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			if err := w.Poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Debugf("chainwatch poll: %v", err)
			}
			select {
			case <-w.quit:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}

// Wait blocks until a started watcher returned.
func (w *Watcher) Wait() {
	<-w.done
}

// Poll does one scan of new blocks and the mempool.
func (w *Watcher) Poll(ctx context.Context) error {
	txids, err := w.blockTxids(ctx)
	if err != nil {
		return err
	}
	mempool, err := w.src.GetRawMempool(ctx)
	if err != nil {
		return err
	}
	txids = append(txids, mempool...)

	var pending []*wire.MsgTx
	for _, txid := range txids {
		w.mu.Lock()
		_, done := w.processed[*txid]
		w.mu.Unlock()
		if done {
			continue
		}

		tx, err := w.src.GetRawTransaction(ctx, txid)
		if errors.Is(err, chain.ErrTxNotFound) {
			// Evicted or replaced between the listing and the fetch.
			continue
		}
		if err != nil {
			return err
		}
		pending = append(pending, tx)
	}

	// The mempool is unordered, so a child may be listed before the
	// transaction that makes its input watched. Repeat until nothing new
	// matches.
	for progress := true; progress; {
		progress = false
		rest := pending[:0]
		for _, tx := range pending {
			if w.inspect(tx) {
				progress = true
				continue
			}
			rest = append(rest, tx)
		}
		pending = rest
	}

	w.mu.Lock()
	for _, tx := range pending {
		w.processed[tx.TxHash()] = struct{}{}
	}
	w.mu.Unlock()
	return nil
}

// blockTxids returns the txids of blocks mined since the last poll, oldest
// block first.
func (w *Watcher) blockTxids(ctx context.Context) ([]*chainhash.Hash, error) {
	info, err := w.src.GetBlockchainInfo(ctx)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	last := w.lastTip
	w.mu.Unlock()

	tip := info.BestBlockHash
	if last != nil && *last == tip {
		return nil, nil
	}

	var blocks []*chain.Block
	hash := tip
	for i := 0; i < maxBlockWalk; i++ {
		if last != nil && hash == *last {
			break
		}
		block, err := w.src.GetBlock(ctx, &hash)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
		if last == nil || block.PrevHash == (chainhash.Hash{}) {
			// First poll only looks at the tip.
			break
		}
		hash = block.PrevHash
	}

	var txids []*chainhash.Hash
	for i := len(blocks) - 1; i >= 0; i-- {
		for j := range blocks[i].Tx {
			txids = append(txids, &blocks[i].Tx[j])
		}
	}

	w.mu.Lock()
	w.lastTip = &tip
	w.mu.Unlock()
	return txids, nil
}

// inspect queues tx if it spends a watched outpoint and reports whether
// it did.
func (w *Watcher) inspect(tx *wire.MsgTx) bool {
	txid := tx.TxHash()

	w.mu.Lock()
	defer w.mu.Unlock()

	for i, in := range tx.TxIn {
		spent, ok := w.outpoints[in.PreviousOutPoint]
		if !ok {
			continue
		}

		var name string
		switch spent.kind {
		case watchFunding:
			if txid != spent.ourCommit {
				// The remote closed; nothing of ours is encumbered.
				w.processed[txid] = struct{}{}
				return true
			}
			name = NameCommitment
			w.watchOutputs(tx, watchCommitmentOutput)
		case watchCommitmentOutput:
			var ours bool
			name, ours = classifyCommitmentSpend(tx, i)
			if !ours {
				w.processed[txid] = struct{}{}
				return true
			}
			if name == NameHTLCTx {
				w.watchOutputs(tx, watchHTLCOutput)
			}
		case watchHTLCOutput:
			if !isDelayedSpend(in) {
				w.processed[txid] = struct{}{}
				return true
			}
			name = NameSecondStage
		}

		w.processed[txid] = struct{}{}
		if w.queue.Push(&node.BroadcastTxEvent{Name: name, Tx: tx}) {
			log.Debugf("chainwatch: %s %s", name, txid)
		}
		// One event per transaction, named after the first watched input.
		return true
	}
	return false
}

func (w *Watcher) watchOutputs(tx *wire.MsgTx, kind watchKind) {
	txid := tx.TxHash()
	for i := range tx.TxOut {
		w.outpoints[wire.OutPoint{Hash: txid, Index: uint32(i)}] = watched{kind: kind}
	}
}
