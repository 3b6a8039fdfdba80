package electrum

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/checksum0/go-electrum/electrum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptHash(t *testing.T) {
	// P2PKH of 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa
	script, err := hex.DecodeString("76a91462e907b15cbf27d5425399ebf6f0fb50ebb88f1888ac")
	require.NoError(t, err)
	spk, err := newScriptPubKey(script)
	require.NoError(t, err)
	assert.Equal(t,
		strings.ToUpper("8b01df4e368ea28f8dc0423bcf7a4923e3a12d307c875e47a0cfbf90b5c39161"),
		spk.scriptHash())
}

func TestHistoryHeight(t *testing.T) {
	txid := chainhash.Hash{1}
	hs := []*electrum.GetMempoolResult{
		{Hash: "not a hash"},
		{Hash: chainhash.Hash{2}.String(), Height: 90},
	}

	_, found := historyHeight(hs, &txid)
	assert.False(t, found)

	height, found := historyHeight(append(hs, &electrum.GetMempoolResult{Hash: txid.String(), Height: -1}), &txid)
	assert.True(t, found)
	assert.EqualValues(t, 0, height)

	height, found = historyHeight(append(hs, &electrum.GetMempoolResult{Hash: txid.String(), Height: 101}), &txid)
	assert.True(t, found)
	assert.EqualValues(t, 101, height)
}

func TestTxHeightWithoutStandardOutput(t *testing.T) {
	tx, _ := p2wpkhTx(t)
	tx.TxOut[0].PkScript = []byte{0x6a}
	x := &fakeElectrumX{txs: map[string]string{}}
	raw := serialize(t, tx)
	txid := tx.TxHash()
	x.txs[txid.String()] = raw

	_, _, err := txHeight(context.Background(), x, &txid)
	assert.Error(t, err)
}

func TestTxHeightRejectsGarbage(t *testing.T) {
	txid := chainhash.Hash{4}
	x := &fakeElectrumX{txs: map[string]string{txid.String(): "zz"}}
	_, _, err := txHeight(context.Background(), x, &txid)
	assert.Error(t, err)
}
