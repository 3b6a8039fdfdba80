package node

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceID = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	bobID   = "02c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"
)

func TestParseID(t *testing.T) {
	id, err := ParseID(" " + aliceID + " ")
	require.NoError(t, err)
	assert.Equal(t, ID(aliceID), id)
	assert.Len(t, id.Bytes(), 33)

	_, err = ParseID("zz")
	assert.ErrorIs(t, err, ErrProtocol)

	_, err = ParseID("02aa")
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestSymmetric(t *testing.T) {
	a, b := ID(aliceID), ID(bobID)
	edges := Symmetric([]Edge{{From: a, To: b}, {From: b, To: a}, {From: a, To: b}})
	assert.ElementsMatch(t, []Edge{{From: a, To: b}, {From: b, To: a}}, edges)
}

func TestWithoutSelf(t *testing.T) {
	a, b := ID(aliceID), ID(bobID)
	assert.Equal(t, []ID{b}, WithoutSelf([]ID{a, b}, a))
}

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("getinfo", cause)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)

	var pe *PaymentError
	err = &PaymentError{Message: "no route"}
	assert.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, ErrPayment)
	assert.Equal(t, "no route", pe.Message)

	assert.ErrorIs(t, Timeout("send"), ErrTimeout)
	assert.ErrorIs(t, FromContext("send", context.DeadlineExceeded), ErrTimeout)
	assert.ErrorIs(t, Protocol("getinfo", "bad %s", "json"), ErrProtocol)
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds("lnd, eclair cln")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindLnd, KindEclair, KindCLightning}, kinds)

	_, err = ParseKinds("lnd,rust")
	assert.Error(t, err)
}

func TestIdentity(t *testing.T) {
	var calls int32
	fetch := func(context.Context) (ID, error) {
		atomic.AddInt32(&calls, 1)
		return ID(aliceID), nil
	}

	var ident Identity
	_, err := ident.RequireSelf()
	assert.ErrorIs(t, err, ErrUnavailable)

	for i := 0; i < 3; i++ {
		id, err := ident.Get(context.Background(), fetch)
		require.NoError(t, err)
		assert.Equal(t, ID(aliceID), id)
	}
	assert.EqualValues(t, 1, calls)

	assert.NoError(t, ident.Verify(ID(aliceID)))
	assert.ErrorIs(t, ident.Verify(ID(bobID)), ErrProtocol)
}

func TestForceCloseSequenceOrder(t *testing.T) {
	txid := chainhash.DoubleHashH([]byte("close"))
	var started, waited int32
	seq := NewForceCloseSequence(
		func(context.Context) (chainhash.Hash, error) {
			atomic.AddInt32(&started, 1)
			return txid, nil
		},
		func(_ context.Context, got chainhash.Hash) error {
			assert.Equal(t, txid, got)
			atomic.AddInt32(&waited, 1)
			return nil
		},
	)
	assert.EqualValues(t, 0, started, "sequence must be lazy")

	ctx := context.Background()
	step, err := seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, txid, step.TxID)
	assert.False(t, step.Done)
	assert.EqualValues(t, 0, waited)

	step, err = seq.Next(ctx)
	require.NoError(t, err)
	assert.True(t, step.Done)

	_, err = seq.Next(ctx)
	assert.ErrorIs(t, err, ErrSequenceDone)
	assert.EqualValues(t, 1, started)
	assert.EqualValues(t, 1, waited)
}

func TestForceCloseSequenceDoneFirst(t *testing.T) {
	txid := chainhash.DoubleHashH([]byte("close"))
	var order []string
	seq := NewForceCloseSequence(
		func(context.Context) (chainhash.Hash, error) {
			order = append(order, "start")
			return txid, nil
		},
		func(context.Context, chainhash.Hash) error {
			order = append(order, "wait")
			return nil
		},
	)
	require.NoError(t, seq.Done(context.Background()))
	got, err := seq.ClosingTxID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, txid, got)
	assert.Equal(t, []string{"start", "wait"}, order)
}

func TestForceCloseSequenceTimeout(t *testing.T) {
	seq := NewForceCloseSequence(
		func(ctx context.Context) (chainhash.Hash, error) {
			<-ctx.Done()
			return chainhash.Hash{}, ctx.Err()
		},
		nil,
	)
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	_, err := seq.ClosingTxID(ctx)
	assert.ErrorIs(t, err, ErrTimeout)
}

type fakeFunder struct {
	balance *btcutil.Amount
	sent    btcutil.Amount
	mined   int
	credit  bool
}

func (f *fakeFunder) SendToAddress(_ context.Context, _ string, amt btcutil.Amount) (*chainhash.Hash, error) {
	f.sent = amt
	return &chainhash.Hash{}, nil
}

func (f *fakeFunder) Generate(_ context.Context, n int) ([]*chainhash.Hash, error) {
	f.mined += n
	if f.credit {
		*f.balance += f.sent
	}
	return make([]*chainhash.Hash, n), nil
}

func TestFundAndWait(t *testing.T) {
	balance := btcutil.Amount(5000)
	funder := &fakeFunder{balance: &balance, credit: true}
	err := FundAndWait(context.Background(), funder, "bcrt1qaddr", 20_000_000,
		func(context.Context) (btcutil.Amount, error) { return balance, nil }, 3)
	require.NoError(t, err)
	assert.Equal(t, btcutil.Amount(20_000_000), funder.sent)
	assert.Equal(t, 1, funder.mined)
}

func TestFundAndWaitCap(t *testing.T) {
	balance := btcutil.Amount(0)
	funder := &fakeFunder{balance: &balance}
	err := FundAndWait(context.Background(), funder, "bcrt1qaddr", 1000,
		func(context.Context) (btcutil.Amount, error) { return balance, nil }, 2)
	assert.ErrorIs(t, err, ErrTimeout)
}
