package node

import (
	"context"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

type (
	// CloseStartFunc asks the backend to force close and returns the txid
	// of the published commitment.
	CloseStartFunc func(ctx context.Context) (chainhash.Hash, error)
	// CloseWaitFunc blocks until the backend reports the close as handled.
	CloseWaitFunc func(ctx context.Context, txid chainhash.Hash) error
)

// ForceCloseStep is one milestone of a unilateral close. The first step
// carries the closing txid, the second one has Done set.
type ForceCloseStep struct {
	TxID chainhash.Hash
	Done bool
}

// ForceCloseSequence is a resumable two step handshake. Nothing is sent to
// the backend before the first step is requested.
type ForceCloseSequence struct {
	mu    sync.Mutex
	start CloseStartFunc
	wait  CloseWaitFunc

	txid    *chainhash.Hash
	settled bool
	steps   int
}

func NewForceCloseSequence(start CloseStartFunc, wait CloseWaitFunc) *ForceCloseSequence {
	return &ForceCloseSequence{start: start, wait: wait}
}

// ClosingTxID resolves the first milestone, bounded by
// ForceCloseAckTimeout. Repeated calls return the same txid.
func (s *ForceCloseSequence) ClosingTxID(ctx context.Context) (chainhash.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closingTxID(ctx)
}

func (s *ForceCloseSequence) closingTxID(ctx context.Context) (chainhash.Hash, error) {
	if s.txid != nil {
		return *s.txid, nil
	}
	ctx, cancel := context.WithTimeout(ctx, ForceCloseAckTimeout)
	defer cancel()
	txid, err := s.start(ctx)
	if err != nil {
		return chainhash.Hash{}, FromContext("force close", err)
	}
	s.txid = &txid
	return txid, nil
}

// Done resolves the second milestone, bounded by ForceCloseDoneTimeout.
func (s *ForceCloseSequence) Done(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done(ctx)
}

func (s *ForceCloseSequence) done(ctx context.Context) error {
	if s.settled {
		return nil
	}
	txid, err := s.closingTxID(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, ForceCloseDoneTimeout)
	defer cancel()
	if err := s.wait(ctx, txid); err != nil {
		return FromContext("force close completion", err)
	}
	s.settled = true
	return nil
}

// Next yields the milestones in order and ErrSequenceDone afterwards.
func (s *ForceCloseSequence) Next(ctx context.Context) (*ForceCloseStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.steps {
	case 0:
		txid, err := s.closingTxID(ctx)
		if err != nil {
			return nil, err
		}
		s.steps++
		return &ForceCloseStep{TxID: txid}, nil
	case 1:
		if err := s.done(ctx); err != nil {
			return nil, err
		}
		s.steps++
		return &ForceCloseStep{TxID: *s.txid, Done: true}, nil
	default:
		return nil, ErrSequenceDone
	}
}
