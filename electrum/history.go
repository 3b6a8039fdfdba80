package electrum

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/checksum0/go-electrum/electrum"
)

type scriptPubKey struct {
	txscript.PkScript
}

func newScriptPubKey(script []byte) (scriptPubKey, error) {
	s, err := txscript.ParsePkScript(script)
	if err != nil {
		return scriptPubKey{s}, fmt.Errorf("failed to parse script: %w", err)
	}
	return scriptPubKey{s}, nil
}

// scriptHash is the key ElectrumX indexes histories by: the reversed
// sha256 of the output script.
func (s *scriptPubKey) scriptHash() string {
	hash := sha256.Sum256(s.Script())
	reversedHash := make([]byte, len(hash))
	for i, b := range hash {
		reversedHash[len(hash)-1-i] = b
	}
	return fmt.Sprintf("%X", reversedHash)
}

// historyHeight finds txID in a scripthash history. Mempool entries carry
// a height of 0 or -1 and map to 0.
func historyHeight(hs []*electrum.GetMempoolResult, txID *chainhash.Hash) (int32, bool) {
	for _, h := range hs {
		hh, err := chainhash.NewHashFromStr(h.Hash)
		if err != nil {
			continue
		}
		if hh.IsEqual(txID) {
			if h.Height <= 0 {
				return 0, true
			}
			return int32(h.Height), true
		}
	}
	return 0, false
}

// txHeight asks ElectrumX for the confirmation height of txid through the
// history of its first standard output.
func txHeight(ctx context.Context, x ElectrumX, txid *chainhash.Hash) (int32, bool, error) {
	raw, err := x.GetRawTransaction(ctx, txid.String())
	if err != nil {
		if isUnknownTx(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return 0, false, fmt.Errorf("raw transaction %s: %w", txid, err)
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(b)); err != nil {
		return 0, false, fmt.Errorf("raw transaction %s: %w", txid, err)
	}

	for _, out := range tx.TxOut {
		spk, err := newScriptPubKey(out.PkScript)
		if err != nil {
			continue
		}
		hs, err := x.GetHistory(ctx, spk.scriptHash())
		if err != nil {
			return 0, false, fmt.Errorf("failed to get history: %w", err)
		}
		height, ok := historyHeight(hs, txid)
		return height, ok, nil
	}
	return 0, false, fmt.Errorf("transaction %s has no standard output", txid)
}
