package chainwatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/elementsproject/lightning-integration/chain"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	sync.Mutex
	mempool []*wire.MsgTx
	blocks  []*chain.Block
	txs     map[chainhash.Hash]*wire.MsgTx
}

func newFakeSource() *fakeSource {
	genesis := &chain.Block{Hash: chainhash.DoubleHashH([]byte("genesis"))}
	return &fakeSource{blocks: []*chain.Block{genesis}, txs: map[chainhash.Hash]*wire.MsgTx{}}
}

func (f *fakeSource) broadcast(txs ...*wire.MsgTx) {
	f.Lock()
	defer f.Unlock()
	for _, tx := range txs {
		f.txs[tx.TxHash()] = tx
		f.mempool = append(f.mempool, tx)
	}
}

func (f *fakeSource) mine() {
	f.Lock()
	defer f.Unlock()
	prev := f.blocks[len(f.blocks)-1]
	b := &chain.Block{
		Hash:     chainhash.DoubleHashH(prev.Hash[:]),
		Height:   prev.Height + 1,
		PrevHash: prev.Hash,
	}
	for _, tx := range f.mempool {
		b.Tx = append(b.Tx, tx.TxHash())
	}
	f.mempool = nil
	f.blocks = append(f.blocks, b)
}

func (f *fakeSource) GetRawMempool(context.Context) ([]*chainhash.Hash, error) {
	f.Lock()
	defer f.Unlock()
	var out []*chainhash.Hash
	for _, tx := range f.mempool {
		h := tx.TxHash()
		out = append(out, &h)
	}
	return out, nil
}

func (f *fakeSource) GetRawTransaction(_ context.Context, txid *chainhash.Hash) (*wire.MsgTx, error) {
	f.Lock()
	defer f.Unlock()
	tx, ok := f.txs[*txid]
	if !ok {
		return nil, chain.ErrTxNotFound
	}
	return tx, nil
}

func (f *fakeSource) GetBlockchainInfo(context.Context) (*chain.BlockchainInfo, error) {
	f.Lock()
	defer f.Unlock()
	tip := f.blocks[len(f.blocks)-1]
	return &chain.BlockchainInfo{Blocks: tip.Height, BestBlockHash: tip.Hash}, nil
}

func (f *fakeSource) GetBlock(_ context.Context, hash *chainhash.Hash) (*chain.Block, error) {
	f.Lock()
	defer f.Unlock()
	for _, b := range f.blocks {
		if b.Hash == *hash {
			return b, nil
		}
	}
	return nil, chain.ErrTxNotFound
}

func spend(prev wire.OutPoint, witnessItems int, sequence uint32, outputs int) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	in := wire.NewTxIn(&prev, nil, nil)
	in.Sequence = sequence
	for i := 0; i < witnessItems; i++ {
		in.Witness = append(in.Witness, []byte{byte(i + 1)})
	}
	tx.AddTxIn(in)
	for i := 0; i < outputs; i++ {
		tx.AddTxOut(wire.NewTxOut(int64(1000*(i+1)), []byte{0x00, 0x20, byte(i)}))
	}
	return tx
}

func toLocalScript(t *testing.T, delay int64) []byte {
	t.Helper()
	key := make([]byte, 33)
	key[0] = 0x02
	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_IF).AddData(key).
		AddOp(txscript.OP_ELSE).AddInt64(delay).
		AddOp(txscript.OP_CHECKSEQUENCEVERIFY).AddOp(txscript.OP_DROP).AddData(key).
		AddOp(txscript.OP_ENDIF).AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)
	return script
}

// delayedSpend claims a to_local style output through the delayed branch.
func delayedSpend(t *testing.T, prev wire.OutPoint, delay uint32) *wire.MsgTx {
	tx := spend(prev, 0, delay, 1)
	tx.TxIn[0].Witness = wire.TxWitness{{0x30}, {}, toLocalScript(t, int64(delay))}
	return tx
}

// revokedSpend is the remote taking a to_local style output with the
// revocation key.
func revokedSpend(t *testing.T, prev wire.OutPoint) *wire.MsgTx {
	tx := spend(prev, 0, wire.MaxTxInSequenceNum, 1)
	tx.TxIn[0].Witness = wire.TxWitness{{0x30}, {0x01}, toLocalScript(t, 144)}
	return tx
}

// htlcTxSpend is an htlc-timeout transaction signed by both sides.
func htlcTxSpend(prev wire.OutPoint) *wire.MsgTx {
	tx := spend(prev, 0, 0, 1)
	tx.TxIn[0].Witness = wire.TxWitness{{}, {0x30}, {0x30}, {}, {0x76, 0xa9}}
	return tx
}

func outpoint(tx *wire.MsgTx, i uint32) wire.OutPoint {
	return wire.OutPoint{Hash: tx.TxHash(), Index: i}
}

func TestWatcherClassifiesCloseInOrder(t *testing.T) {
	src := newFakeSource()
	w := NewWatcher(src, time.Millisecond)
	ctx := context.Background()

	funding := wire.OutPoint{Hash: chainhash.DoubleHashH([]byte("funding")), Index: 0}
	commit := spend(funding, 4, 0x80000000, 3)
	w.WatchCommitment(funding, commit.TxHash())

	toLocal := delayedSpend(t, outpoint(commit, 0), 144)
	htlc := htlcTxSpend(outpoint(commit, 1))
	second := delayedSpend(t, outpoint(htlc, 0), 144)
	toRemote := spend(outpoint(commit, 2), 2, 0, 1)
	unrelated := spend(wire.OutPoint{Hash: chainhash.DoubleHashH([]byte("x"))}, 2, 0, 1)

	src.broadcast(commit, unrelated)
	require.NoError(t, w.Poll(ctx))
	src.mine()
	// Children listed before their parent still match.
	src.broadcast(second, htlc, toLocal, toRemote)
	require.NoError(t, w.Poll(ctx))
	src.mine()
	require.NoError(t, w.Poll(ctx))

	var names []string
	for w.Queue().Len() > 0 {
		ev, err := w.Next(ctx)
		require.NoError(t, err)
		names = append(names, ev.Name)
	}
	assert.Equal(t, NameCommitment, names[0])
	assert.ElementsMatch(t, []string{NameCommitment, NameToLocal, NameHTLCTx, NameSecondStage}, names)
}

func TestWatcherIgnoresRemoteCommitment(t *testing.T) {
	src := newFakeSource()
	w := NewWatcher(src, time.Millisecond)

	funding := wire.OutPoint{Hash: chainhash.DoubleHashH([]byte("funding"))}
	theirs := spend(funding, 4, 0, 2)
	w.WatchCommitment(funding, chainhash.DoubleHashH([]byte("ours")))

	src.broadcast(theirs, delayedSpend(t, outpoint(theirs, 0), 144))
	require.NoError(t, w.Poll(context.Background()))
	assert.Equal(t, 0, w.Queue().Len())
}

func TestWatcherCommitmentSeenBeforeRegistration(t *testing.T) {
	src := newFakeSource()
	w := NewWatcher(src, time.Millisecond)

	funding := wire.OutPoint{Hash: chainhash.DoubleHashH([]byte("funding"))}
	commit := spend(funding, 4, 0, 1)
	src.broadcast(commit)
	require.NoError(t, w.Poll(context.Background()))

	w.WatchCommitment(funding, commit.TxHash())
	require.NoError(t, w.Poll(context.Background()))
	assert.Equal(t, 1, w.Queue().Len())
}

func TestWatcherStartStop(t *testing.T) {
	src := newFakeSource()
	w := NewWatcher(src, time.Millisecond)
	funding := wire.OutPoint{Hash: chainhash.DoubleHashH([]byte("funding"))}
	commit := spend(funding, 4, 0, 1)
	w.WatchCommitment(funding, commit.TxHash())

	w.Start(context.Background())
	src.broadcast(commit)
	ev, err := w.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NameCommitment, ev.Name)
	w.Stop()
	w.Wait()
}

func TestQueueDedupAndTimeout(t *testing.T) {
	q := NewQueue()
	tx := spend(wire.OutPoint{}, 1, 0, 1)
	assert.True(t, q.Push(&node.BroadcastTxEvent{Name: "a", Tx: tx}))
	assert.False(t, q.Push(&node.BroadcastTxEvent{Name: "b", Tx: tx}))

	ev, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", ev.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClassifyCommitmentSpend(t *testing.T) {
	prev := wire.OutPoint{}
	tests := []struct {
		name string
		tx   *wire.MsgTx
		want string
		ours bool
	}{
		{"to_local", delayedSpend(t, prev, 6), NameToLocal, true},
		{"htlc tx", htlcTxSpend(prev), NameHTLCTx, true},
		{"revoked to_local", revokedSpend(t, prev), "", false},
		{"to_remote", spend(prev, 2, 1, 1), "", false},
		{"remote htlc claim", spend(prev, 3, 1, 1), "", false},
		{"remote htlc claim with preimage", spend(prev, 5, 0, 1), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ours := classifyCommitmentSpend(tt.tx, 0)
			assert.Equal(t, tt.want, name)
			assert.Equal(t, tt.ours, ours)
		})
	}
}

func TestWatcherSkipsRemoteSpends(t *testing.T) {
	src := newFakeSource()
	w := NewWatcher(src, time.Millisecond)
	ctx := context.Background()

	funding := wire.OutPoint{Hash: chainhash.DoubleHashH([]byte("funding"))}
	commit := spend(funding, 4, 0x80000000, 3)
	w.WatchCommitment(funding, commit.TxHash())

	src.broadcast(commit,
		revokedSpend(t, outpoint(commit, 0)),
		spend(outpoint(commit, 1), 3, 1, 1),
		spend(outpoint(commit, 2), 2, 0, 1),
	)
	require.NoError(t, w.Poll(ctx))

	ev, err := w.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, NameCommitment, ev.Name)
	assert.Equal(t, 0, w.Queue().Len())
}
