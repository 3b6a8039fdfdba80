package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcCall struct {
	Path   string
	Method string
	Params []json.RawMessage
}

type fakeBitcoind struct {
	sync.Mutex
	calls    []rpcCall
	handlers map[string]func(params []json.RawMessage) (interface{}, *rpcErr)
}

type rpcErr struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newFakeBitcoind(t *testing.T) (*fakeBitcoind, *Bitcoind) {
	f := &fakeBitcoind{handlers: map[string]func([]json.RawMessage) (interface{}, *rpcErr){}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Basic "))
		var req struct {
			ID     int               `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		f.Lock()
		f.calls = append(f.calls, rpcCall{Path: r.URL.Path, Method: req.Method, Params: req.Params})
		h, ok := f.handlers[req.Method]
		f.Unlock()

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if !ok {
			resp["error"] = rpcErr{Code: -32601, Message: "Method not found"}
		} else if res, e := h(req.Params); e != nil {
			resp["error"] = e
		} else {
			resp["result"] = res
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return f, NewBitcoind(strings.TrimPrefix(srv.URL, "http://"), "rpcuser", "rpcpass", "harness")
}

func (f *fakeBitcoind) on(method string, h func(params []json.RawMessage) (interface{}, *rpcErr)) {
	f.Lock()
	defer f.Unlock()
	f.handlers[method] = h
}

func (f *fakeBitcoind) callsTo(method string) []rpcCall {
	f.Lock()
	defer f.Unlock()
	var out []rpcCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

var (
	hashA = chainhash.DoubleHashH([]byte("a"))
	hashB = chainhash.DoubleHashH([]byte("b"))
)

func TestGenerateUsesWalletAddress(t *testing.T) {
	f, btc := newFakeBitcoind(t)
	f.on("getnewaddress", func([]json.RawMessage) (interface{}, *rpcErr) { return "bcrt1qminer", nil })
	f.on("generatetoaddress", func([]json.RawMessage) (interface{}, *rpcErr) {
		return []string{hashA.String(), hashB.String()}, nil
	})

	ctx := context.Background()
	hashes, err := btc.Generate(ctx, 2)
	require.NoError(t, err)
	require.Len(t, hashes, 2)
	assert.Equal(t, hashA, *hashes[0])

	_, err = btc.Generate(ctx, 2)
	require.NoError(t, err)

	// The mining address is fetched once.
	assert.Len(t, f.callsTo("getnewaddress"), 1)
	assert.Equal(t, "/wallet/harness", f.callsTo("getnewaddress")[0].Path)
	gen := f.callsTo("generatetoaddress")
	require.Len(t, gen, 2)
	assert.JSONEq(t, `"bcrt1qminer"`, string(gen[0].Params[1]))
}

func TestSendToAddressConvertsToBTC(t *testing.T) {
	f, btc := newFakeBitcoind(t)
	f.on("sendtoaddress", func([]json.RawMessage) (interface{}, *rpcErr) { return hashA.String(), nil })

	txid, err := btc.SendToAddress(context.Background(), "bcrt1qdest", btcutil.Amount(20_000_000))
	require.NoError(t, err)
	assert.Equal(t, hashA, *txid)

	c := f.callsTo("sendtoaddress")[0]
	assert.Equal(t, "/wallet/harness", c.Path)
	assert.JSONEq(t, `0.2`, string(c.Params[1]))
}

func TestGetBlock(t *testing.T) {
	f, btc := newFakeBitcoind(t)
	f.on("getblock", func([]json.RawMessage) (interface{}, *rpcErr) {
		return map[string]interface{}{
			"hash":              hashA.String(),
			"height":            107,
			"previousblockhash": hashB.String(),
			"tx":                []string{hashB.String()},
		}, nil
	})

	block, err := btc.GetBlock(context.Background(), &hashA)
	require.NoError(t, err)
	assert.EqualValues(t, 107, block.Height)
	assert.True(t, block.Contains(hashB))
	assert.False(t, block.Contains(hashA))
}

func TestGetRawTransaction(t *testing.T) {
	f, btc := newFakeBitcoind(t)
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&hashA, 1), nil, nil))
	tx.AddTxOut(wire.NewTxOut(1000, []byte{0x00, 0x14}))
	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))

	f.on("getrawtransaction", func(params []json.RawMessage) (interface{}, *rpcErr) {
		if string(params[0]) == `"`+hashB.String()+`"` {
			return nil, &rpcErr{Code: -5, Message: "No such mempool or blockchain transaction"}
		}
		return hex.EncodeToString(buf.Bytes()), nil
	})

	got, err := btc.GetRawTransaction(context.Background(), &hashA)
	require.NoError(t, err)
	assert.Equal(t, tx.TxHash(), got.TxHash())

	_, err = btc.GetRawTransaction(context.Background(), &hashB)
	assert.ErrorIs(t, err, ErrTxNotFound)
}

func TestGetTxHeight(t *testing.T) {
	f, btc := newFakeBitcoind(t)
	f.on("getblockchaininfo", func([]json.RawMessage) (interface{}, *rpcErr) {
		return map[string]interface{}{"chain": "regtest", "blocks": 120, "bestblockhash": hashA.String()}, nil
	})
	f.on("getrawtransaction", func(params []json.RawMessage) (interface{}, *rpcErr) {
		if string(params[0]) == `"`+hashA.String()+`"` {
			return map[string]interface{}{"blockhash": hashB.String(), "confirmations": 3}, nil
		}
		return map[string]interface{}{}, nil
	})

	h, err := btc.GetTxHeight(context.Background(), &hashA)
	require.NoError(t, err)
	assert.EqualValues(t, 118, h)

	h, err = btc.GetTxHeight(context.Background(), &hashB)
	require.NoError(t, err)
	assert.EqualValues(t, 0, h)
}

func TestBootstrap(t *testing.T) {
	f, btc := newFakeBitcoind(t)
	f.on("createwallet", func([]json.RawMessage) (interface{}, *rpcErr) {
		return nil, &rpcErr{Code: -4, Message: "Wallet file verification failed. Database already exists."}
	})
	f.on("loadwallet", func([]json.RawMessage) (interface{}, *rpcErr) {
		return nil, &rpcErr{Code: -35, Message: "Wallet \"harness\" is already loaded."}
	})
	f.on("getblockchaininfo", func([]json.RawMessage) (interface{}, *rpcErr) {
		return map[string]interface{}{"chain": "regtest", "blocks": 1, "bestblockhash": hashA.String()}, nil
	})
	f.on("getnewaddress", func([]json.RawMessage) (interface{}, *rpcErr) { return "bcrt1qminer", nil })
	f.on("generatetoaddress", func([]json.RawMessage) (interface{}, *rpcErr) { return []string{}, nil })

	require.NoError(t, btc.Bootstrap(context.Background()))
	gen := f.callsTo("generatetoaddress")
	require.Len(t, gen, 1)
	assert.JSONEq(t, `100`, string(gen[0].Params[0]))
}

func TestRPCErrorSurfaces(t *testing.T) {
	_, btc := newFakeBitcoind(t)
	_, err := btc.GetRawMempool(context.Background())
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.Code)
}
