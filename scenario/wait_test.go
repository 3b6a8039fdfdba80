package scenario

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsproject/lightning-integration/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	mu        sync.Mutex
	height    int32
	generated int
	err       error
}

func (c *fakeChain) Generate(ctx context.Context, n int) ([]*chainhash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	hashes := make([]*chainhash.Hash, n)
	for i := range hashes {
		c.height++
		c.generated++
		hashes[i] = &chainhash.Hash{byte(c.height)}
	}
	return hashes, nil
}

func (c *fakeChain) GetBlockchainInfo(ctx context.Context) (*chain.BlockchainInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &chain.BlockchainInfo{Chain: "regtest", Blocks: c.height}, nil
}

func (c *fakeChain) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generated
}

const tick = 5 * time.Millisecond

func TestWaitFor(t *testing.T) {
	ctx := context.Background()

	t.Run("eventually true", func(t *testing.T) {
		calls := 0
		err := WaitFor(ctx, Cond(func(context.Context) bool {
			calls++
			return calls == 3
		}), time.Second, tick)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("errors and panics count as false", func(t *testing.T) {
		calls := 0
		err := WaitFor(ctx, func(context.Context) (bool, error) {
			calls++
			switch calls {
			case 1:
				return false, errors.New("connection refused")
			case 2:
				panic("half started")
			}
			return true, nil
		}, time.Second, tick)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("times out", func(t *testing.T) {
		err := WaitFor(ctx, func(context.Context) (bool, error) {
			return false, errors.New("still syncing")
		}, 20*time.Millisecond, tick)
		require.ErrorIs(t, err, ErrWaitTimeout)
		assert.Contains(t, err.Error(), "still syncing")
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := WaitFor(cctx, Cond(func(context.Context) bool { return false }), time.Second, tick)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGenerateUntil(t *testing.T) {
	ctx := context.Background()

	t.Run("stops once the predicate holds", func(t *testing.T) {
		c := &fakeChain{height: 100}
		err := GenerateUntil(ctx, c, Cond(func(context.Context) bool {
			return c.count() >= 2
		}), DefaultBlocks, tick)
		require.NoError(t, err)
		assert.Equal(t, 2, c.count())
	})

	t.Run("gives up after blocks", func(t *testing.T) {
		c := &fakeChain{}
		err := GenerateUntil(ctx, c, Cond(func(context.Context) bool { return false }), 3, tick)
		require.Error(t, err)
		assert.Equal(t, 3, c.count())
	})

	t.Run("generate fails", func(t *testing.T) {
		c := &fakeChain{err: errors.New("bitcoind gone")}
		err := GenerateUntil(ctx, c, Cond(func(context.Context) bool { return false }), 3, tick)
		assert.EqualError(t, err, "bitcoind gone")
	})
}
