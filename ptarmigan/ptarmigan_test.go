package ptarmigan

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsproject/lightning-integration/jrpc2"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	bob   = "02c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"
	carol = "02f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9"

	fundingTxID = "5e5bd6f3b7b2d8e8b0c8a4b6c0d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f7"
)

// rpcError makes a handler answer with a json-rpc error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type handler func(params []json.RawMessage) interface{}

// fakePtarmd is a line based json-rpc server answering by method name.
type fakePtarmd struct {
	mu       sync.Mutex
	handlers map[string]handler
}

func (f *fakePtarmd) handle(method string, h handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
}

func (f *fakePtarmd) serve(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go f.serveConn(conn)
		}
	}()
	return l.Addr().String()
}

func (f *fakePtarmd) serveConn(conn net.Conn) {
	defer conn.Close()
	dec := json.NewDecoder(bufio.NewReader(conn))
	for {
		var req struct {
			Id     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := dec.Decode(&req); err != nil {
			return
		}
		f.mu.Lock()
		h, ok := f.handlers[req.Method]
		f.mu.Unlock()

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.Id}
		if !ok {
			resp["error"] = rpcError{Code: jrpc2.MethodNotFound, Message: "Method not found"}
		} else if v := h(req.Params); v != nil {
			if e, isErr := v.(rpcError); isErr {
				resp["error"] = e
			} else {
				resp["result"] = v
			}
		} else {
			resp["result"] = "OK"
		}
		if err := json.NewEncoder(conn).Encode(resp); err != nil {
			return
		}
	}
}

type stubProcess struct {
	mu            sync.Mutex
	starts, stops int
}

func (p *stubProcess) Start() error { p.mu.Lock(); p.starts++; p.mu.Unlock(); return nil }
func (p *stubProcess) Stop() error  { p.mu.Lock(); p.stops++; p.mu.Unlock(); return nil }

func newTestNode(t *testing.T) (*Node, *fakePtarmd, *stubProcess) {
	t.Helper()
	fake := &fakePtarmd{handlers: map[string]handler{}}
	client := jrpc2.NewTCPClient(fake.serve(t))
	t.Cleanup(func() { client.Close() })
	proc := &stubProcess{}
	return New(proc, client, Options{SettleDelay: time.Millisecond}), fake, proc
}

func str(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func encodeInvoice(t *testing.T, amt lnwire.MilliSatoshi) (string, [32]byte, node.ID) {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	hash := sha256.Sum256([]byte("preimage"))
	inv, err := zpay32.NewInvoice(&chaincfg.RegressionNetParams, hash, time.Now(),
		zpay32.Amount(amt), zpay32.Description("ptarmigan"))
	require.NoError(t, err)
	bolt11, err := inv.Encode(zpay32.MessageSigner{
		SignCompact: func(msg []byte) ([]byte, error) {
			return ecdsa.SignCompact(priv, chainhash.HashB(msg), true), nil
		},
	})
	require.NoError(t, err)
	id, err := node.IDFromBytes(priv.PubKey().SerializeCompressed())
	require.NoError(t, err)
	return bolt11, hash, id
}

func TestInfoAndPeers(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("getinfo", func([]json.RawMessage) interface{} {
		return GetInfoResponse{NodeId: alice, BlockCount: 110, Peers: []*Peer{{NodeId: bob}, {NodeId: carol}}}
	})

	info, err := n.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &node.Info{ID: alice, BlockHeight: 110}, info)

	peers, err := n.Peers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []node.ID{bob, carol}, peers)
	assert.Equal(t, node.KindPtarmigan, n.Kind())
}

func TestUnreachableIsUnavailable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	n := New(&stubProcess{}, jrpc2.NewTCPClient(addr), Options{})
	_, err = n.Info(context.Background())
	assert.ErrorIs(t, err, node.ErrUnavailable)
	assert.False(t, n.Ping(context.Background()))
}

func TestConnectSendsPositionalParams(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("connect", func(params []json.RawMessage) interface{} {
		require.Len(t, params, 3)
		assert.Equal(t, bob, str(t, params[0]))
		assert.Equal(t, "127.0.0.1", str(t, params[1]))
		assert.JSONEq(t, "9736", string(params[2]))
		return nil
	})
	assert.NoError(t, n.Connect(context.Background(), "127.0.0.1", 9736, bob))
}

func TestOpenChannelWaitsForFundingTx(t *testing.T) {
	n, fake, _ := newTestNode(t)
	var mu sync.Mutex
	opened := false
	fake.handle("connect", func([]json.RawMessage) interface{} { return nil })
	fake.handle("openchannel", func(params []json.RawMessage) interface{} {
		assert.Equal(t, bob, str(t, params[0]))
		assert.JSONEq(t, "10000000", string(params[1]))
		mu.Lock()
		opened = true
		mu.Unlock()
		return OpenChannelResponse{Status: "Progressing"}
	})
	polls := 0
	fake.handle("getinfo", func([]json.RawMessage) interface{} {
		mu.Lock()
		defer mu.Unlock()
		polls++
		p := &Peer{NodeId: bob, Status: "establishing"}
		if opened && polls > 1 {
			p.FundingTx = fundingTxID
			p.Remote = &struct {
				ToSelfDelay uint32 `json:"to_self_delay"`
			}{ToSelfDelay: 40}
		}
		return GetInfoResponse{NodeId: alice, Peers: []*Peer{p}}
	})

	res, err := n.OpenChannel(context.Background(), bob, "127.0.0.1", 9736, btcutil.Amount(10_000_000))
	require.NoError(t, err)
	assert.Equal(t, fundingTxID, res.FundingTxID.String())
	assert.EqualValues(t, 40, res.CSVDelay)
}

func TestChannels(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("getinfo", func([]json.RawMessage) interface{} {
		return GetInfoResponse{NodeId: alice, Peers: []*Peer{
			{NodeId: bob, Status: statusNormal, ShortChannelId: "103x1x0", FundingTx: fundingTxID},
			{NodeId: carol, Status: "establishing", FundingTx: fundingTxID},
			{NodeId: carol},
		}}
	})

	views, err := n.Channels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []node.ChannelView{
		{Local: alice, Remote: bob, State: node.ChannelStateOpen, Active: true},
		{Local: alice, Remote: carol, State: node.ChannelStateOther},
	}, views)
	assert.True(t, n.CheckChannel(context.Background(), bob))
	assert.False(t, n.CheckChannel(context.Background(), carol))
}

func TestGraph(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("getinfo", func([]json.RawMessage) interface{} { return GetInfoResponse{NodeId: alice} })
	fake.handle("listchannels", func([]json.RawMessage) interface{} {
		return []ChannelAnnouncement{{ShortChannelId: "103x1x0", Node1: alice, Node2: bob}}
	})
	fake.handle("listnodes", func([]json.RawMessage) interface{} {
		return []NodeAnnouncement{{NodeId: alice}, {NodeId: bob}}
	})

	edges, err := n.GetChannels(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []node.Edge{{From: alice, To: bob}, {From: bob, To: alice}}, edges)

	nodes, err := n.GetNodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []node.ID{bob}, nodes)
}

func TestSendPollsPayment(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("routepay", func(params []json.RawMessage) interface{} {
		assert.Equal(t, "lnbcrt1...", str(t, params[0]))
		return RoutePayResponse{PaymentId: 7}
	})
	var mu sync.Mutex
	polls := 0
	fake.handle("listpayment", func(params []json.RawMessage) interface{} {
		assert.JSONEq(t, "7", string(params[0]))
		mu.Lock()
		defer mu.Unlock()
		polls++
		state := "processing"
		if polls > 2 {
			state = paymentSucceeded
		}
		return []Payment{{PaymentId: 7, State: state, Preimage: "00ff"}}
	})

	preimage, err := n.Send(context.Background(), &node.InvoiceRef{Bolt11: "lnbcrt1..."})
	require.NoError(t, err)
	assert.Equal(t, "00ff", preimage)
}

func TestSendRejected(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("routepay", func([]json.RawMessage) interface{} {
		return rpcError{Code: -26, Message: "no route"}
	})
	_, err := n.Send(context.Background(), &node.InvoiceRef{Bolt11: "lnbcrt1..."})
	var payErr *node.PaymentError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, "no route", payErr.Message)

	fake.handle("routepay", func([]json.RawMessage) interface{} { return RoutePayResponse{PaymentId: 8} })
	fake.handle("listpayment", func([]json.RawMessage) interface{} {
		return []Payment{{PaymentId: 8, State: paymentFailed}}
	})
	_, err = n.Send(context.Background(), &node.InvoiceRef{Bolt11: "lnbcrt1..."})
	assert.ErrorIs(t, err, node.ErrPayment)
}

func TestAddHTLC(t *testing.T) {
	n, fake, _ := newTestNode(t)
	bolt11, hash, dest := encodeInvoice(t, 1000)
	fake.handle("routepay", func([]json.RawMessage) interface{} { return RoutePayResponse{PaymentId: 1} })

	ref, err := n.AddHTLC(context.Background(), &node.InvoiceRef{Bolt11: bolt11, PaymentHash: hash, AmountMsat: 1000})
	require.NoError(t, err)
	assert.Equal(t, dest, ref.Destination)
	assert.Equal(t, hash, ref.PaymentHash)
}

func TestCheckRoute(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("getroute", func([]json.RawMessage) interface{} { return rpcError{Code: -1, Message: "no route"} })
	assert.False(t, n.CheckRoute(context.Background(), carol, 1000))

	fake.handle("getroute", func(params []json.RawMessage) interface{} {
		assert.Equal(t, carol, str(t, params[0]))
		return json.RawMessage(`{"hops":[{"node_id":"` + bob + `"},{"node_id":"` + carol + `"}]}`)
	})
	assert.True(t, n.CheckRoute(context.Background(), carol, 1000))
}

func TestPendingHTLCs(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("getinfo", func([]json.RawMessage) interface{} {
		return GetInfoResponse{NodeId: alice, Peers: []*Peer{{NodeId: bob, Htlcs: []*Htlc{
			{Direction: "offered", AmountMsat: 5000, CltvExpiry: 120},
			{Direction: "received", AmountMsat: 7000, CltvExpiry: 130},
		}}}}
	})

	htlcs, err := n.PendingHTLCs(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, []node.PendingHTLC{
		{Incoming: false, AmountMsat: 5000, ExpirationHeight: 120},
		{Incoming: true, AmountMsat: 7000, ExpirationHeight: 130},
	}, htlcs)

	_, err = n.PendingHTLCs(context.Background(), carol)
	assert.ErrorIs(t, err, node.ErrChannelNotFound)
}

func TestRestartVerifiesIdentity(t *testing.T) {
	n, fake, proc := newTestNode(t)
	fake.handle("getinfo", func([]json.RawMessage) interface{} { return GetInfoResponse{NodeId: alice} })
	fake.handle("stop", func([]json.RawMessage) interface{} { return nil })
	_, err := n.ID(context.Background())
	require.NoError(t, err)

	require.NoError(t, n.Restart(context.Background()))
	assert.Equal(t, 1, proc.starts)
	assert.Equal(t, 1, proc.stops)

	fake.handle("getinfo", func([]json.RawMessage) interface{} { return GetInfoResponse{NodeId: bob} })
	assert.ErrorIs(t, n.Restart(context.Background()), node.ErrProtocol)
}
