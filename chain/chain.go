// Package chain is the harness view of the shared regtest bitcoind.
package chain

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Oracle is the bitcoind surface the node adapters and scenarios use.
// Implementations are safe for concurrent use.
type Oracle interface {
	Generate(ctx context.Context, n int) ([]*chainhash.Hash, error)
	SendToAddress(ctx context.Context, addr string, amt btcutil.Amount) (*chainhash.Hash, error)
	GetBlock(ctx context.Context, hash *chainhash.Hash) (*Block, error)
	GetBlockchainInfo(ctx context.Context) (*BlockchainInfo, error)
	GetNewAddress(ctx context.Context) (string, error)
	GetRawMempool(ctx context.Context) ([]*chainhash.Hash, error)
	GetRawTransaction(ctx context.Context, txid *chainhash.Hash) (*wire.MsgTx, error)
	// GetTxHeight returns the confirmation height of txid, 0 while it is
	// in the mempool.
	GetTxHeight(ctx context.Context, txid *chainhash.Hash) (int32, error)
}

type Block struct {
	Hash     chainhash.Hash
	Height   int32
	PrevHash chainhash.Hash
	Tx       []chainhash.Hash
}

// Contains reports whether txid was mined in b.
func (b *Block) Contains(txid chainhash.Hash) bool {
	for _, tx := range b.Tx {
		if tx == txid {
			return true
		}
	}
	return false
}

type BlockchainInfo struct {
	Chain         string
	Blocks        int32
	BestBlockHash chainhash.Hash
}
