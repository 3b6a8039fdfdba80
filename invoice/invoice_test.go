package invoice

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeInvoice(t *testing.T, net *chaincfg.Params, amt lnwire.MilliSatoshi) (string, [32]byte, *btcec.PrivateKey) {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	hash := sha256.Sum256([]byte("preimage"))
	inv, err := zpay32.NewInvoice(net, hash, time.Unix(1700000000, 0),
		zpay32.Amount(amt),
		zpay32.Description("integration"),
		zpay32.PaymentAddr([32]byte{1}),
	)
	require.NoError(t, err)

	bolt11, err := inv.Encode(zpay32.MessageSigner{
		SignCompact: func(msg []byte) ([]byte, error) {
			return ecdsa.SignCompact(priv, chainhash.HashB(msg), true), nil
		},
	})
	require.NoError(t, err)
	return bolt11, hash, priv
}

func TestDecode(t *testing.T) {
	bolt11, hash, priv := encodeInvoice(t, &chaincfg.RegressionNetParams, 1_000_000)

	hrp, err := HRP(bolt11)
	require.NoError(t, err)
	assert.Equal(t, "lnbcrt10u", hrp)

	d, err := Decode(bolt11)
	require.NoError(t, err)
	assert.Equal(t, hash, d.PaymentHash)
	assert.Equal(t, lnwire.MilliSatoshi(1_000_000), d.AmountMsat)
	assert.Equal(t, "integration", d.Description)

	want, err := node.IDFromBytes(priv.PubKey().SerializeCompressed())
	require.NoError(t, err)
	assert.Equal(t, want, d.Destination)

	ref := d.Ref()
	assert.Equal(t, bolt11, ref.Bolt11)
	assert.Equal(t, hash, ref.PaymentHash)
}

func TestDecodeRejectsOtherNetworks(t *testing.T) {
	bolt11, _, _ := encodeInvoice(t, &chaincfg.MainNetParams, 1000)
	_, err := Decode(bolt11)
	assert.ErrorContains(t, err, "not a regtest invoice")
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode("lnbcrt1garbage")
	assert.Error(t, err)
}

func TestRefHashMismatch(t *testing.T) {
	bolt11, hash, _ := encodeInvoice(t, &chaincfg.RegressionNetParams, 5000)

	_, err := Ref(bolt11, hash[:])
	require.NoError(t, err)

	other := sha256.Sum256([]byte("other"))
	_, err = Ref(bolt11, other[:])
	assert.ErrorIs(t, err, node.ErrProtocol)
}
