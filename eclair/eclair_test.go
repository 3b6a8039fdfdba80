package eclair

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const (
	alice = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"
	bob   = "02c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"
	carol = "02f9308a019258c31049344f85f89d5229b531c845836f99b08601f113bce036f9"

	fundingTxID = "5e5bd6f3b7b2d8e8b0c8a4b6c0d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6f7"
	closingTxID = "a1a2a3a4a5a6a7a8a9aaabacadaeafb0b1b2b3b4b5b6b7b8b9babbbcbdbebfc0"

	password = "rpcpass"
)

type handlerFunc func(form url.Values) (int, interface{})

// fakeEclair answers api calls by method name.
type fakeEclair struct {
	mu       sync.Mutex
	handlers map[string]handlerFunc
	calls    map[string]int
}

func (f *fakeEclair) handle(method string, h handlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
}

func (f *fakeEclair) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeEclair) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != "" || pass != password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	method := r.URL.Path[1:]
	f.mu.Lock()
	h, ok := f.handlers[method]
	f.calls[method]++
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown method " + method})
		return
	}
	status, body := h(r.PostForm)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(v interface{}) handlerFunc {
	return func(url.Values) (int, interface{}) { return http.StatusOK, v }
}

type stubProcess struct {
	starts, stops int
	startErr      error
}

func (p *stubProcess) Start() error { p.starts++; return p.startErr }
func (p *stubProcess) Stop() error  { p.stops++; return nil }

func newTestNode(t *testing.T) (*Node, *fakeEclair, *stubProcess) {
	t.Helper()
	fake := &fakeEclair{handlers: map[string]handlerFunc{}, calls: map[string]int{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	proc := &stubProcess{}
	n := New(proc, Options{
		Address:     node.Address{Host: "127.0.0.1", Port: 9737},
		Logger:      zaptest.NewLogger(t),
		APIURL:      srv.URL,
		Password:    password,
		SettleDelay: time.Millisecond,
		HTTP:        &Option{RetryMax: 0},
	})
	return n, fake, proc
}

func TestStartWaitsForAPI(t *testing.T) {
	fake := &fakeEclair{handlers: map[string]handlerFunc{}, calls: map[string]int{}}
	var mu sync.Mutex
	attempts := 0
	fake.handle("getinfo", func(url.Values) (int, interface{}) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return http.StatusServiceUnavailable, map[string]string{"error": "starting"}
		}
		return http.StatusOK, getInfoResponse{NodeID: alice}
	})
	srv := httptest.NewServer(fake)
	defer srv.Close()

	proc := &stubProcess{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	n, err := Start(ctx, proc, Options{APIURL: srv.URL, Password: password})
	require.NoError(t, err)
	assert.Equal(t, 1, proc.starts)
	assert.Equal(t, 3, fake.count("getinfo"))
	assert.Equal(t, node.KindEclair, n.Kind())
}

func TestStartStopsProcessWhenNotReady(t *testing.T) {
	proc := &stubProcess{startErr: errors.New("eclair exited")}
	_, err := Start(context.Background(), proc, Options{APIURL: "http://127.0.0.1:1", Password: password})
	assert.ErrorIs(t, err, node.ErrUnavailable)
	assert.Equal(t, 1, proc.stops)
}

func TestWrongPassword(t *testing.T) {
	n, _, _ := newTestNode(t)
	n.api.password = "nope"
	_, err := n.Info(context.Background())
	assert.ErrorIs(t, err, node.ErrProtocol)
}

func TestUnreachableIsUnavailable(t *testing.T) {
	n := New(&stubProcess{}, Options{APIURL: "http://127.0.0.1:1", HTTP: &Option{RetryMax: 0}})
	_, err := n.Peers(context.Background())
	assert.ErrorIs(t, err, node.ErrUnavailable)
	assert.False(t, n.Ping(context.Background()))
}

func TestIDIsMemoized(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("getinfo", ok(getInfoResponse{NodeID: alice, BlockHeight: 101}))

	for i := 0; i < 2; i++ {
		id, err := n.ID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, node.ID(alice), id)
	}
	assert.Equal(t, 1, fake.count("getinfo"))
}

func TestPeersSkipsDisconnected(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("peers", ok([]peer{
		{NodeID: bob, State: "CONNECTED"},
		{NodeID: carol, State: "DISCONNECTED"},
	}))

	peers, err := n.Peers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []node.ID{bob}, peers)
}

func TestOpenChannel(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("connect", func(form url.Values) (int, interface{}) {
		assert.Equal(t, bob+"@127.0.0.1:9738", form.Get("uri"))
		return http.StatusOK, "connected"
	})
	fake.handle("open", func(form url.Values) (int, interface{}) {
		assert.Equal(t, bob, form.Get("nodeId"))
		assert.Equal(t, "10000000", form.Get("fundingSatoshis"))
		return http.StatusOK, "created channel e872f5 with fundingTxId=" + fundingTxID + " and fees=720 sat"
	})
	fake.handle("channels", ok(json.RawMessage(`[{"nodeId":"`+bob+`","channelId":"e872f5","state":"WAIT_FOR_FUNDING_CONFIRMED",
		"data":{"commitments":{"params":{"remoteParams":{"toSelfDelay":720}}}}}]`)))

	res, err := n.OpenChannel(context.Background(), bob, "127.0.0.1", 9738, btcutil.Amount(10_000_000))
	require.NoError(t, err)
	want, _ := chainhash.NewHashFromStr(fundingTxID)
	assert.Equal(t, *want, res.FundingTxID)
	assert.EqualValues(t, 720, res.CSVDelay)
}

func TestChannelsAndCheckChannel(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("getinfo", ok(getInfoResponse{NodeID: alice}))
	fake.handle("channels", ok([]channel{
		{NodeID: bob, ChannelID: "1", State: "NORMAL"},
		{NodeID: carol, ChannelID: "2", State: "OFFLINE"},
	}))

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
	fake.handle("getinfo", ok(getInfoResponse{NodeID: alice}))
	fake.handle("allchannels", ok([]publicChannel{{ShortChannelID: "103x1x0", A: alice, B: bob}}))
	fake.handle("allnodes", ok([]announcedNode{{NodeID: alice}, {NodeID: bob}, {NodeID: carol}}))

	edges, err := n.GetChannels(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []node.Edge{{From: alice, To: bob}, {From: bob, To: alice}}, edges)

	nodes, err := n.GetNodes(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []node.ID{bob, carol}, nodes)
}

func TestSend(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("payinvoice", func(form url.Values) (int, interface{}) {
		assert.Equal(t, "true", form.Get("blocking"))
		return http.StatusOK, paymentEvent{Type: paymentSent, PaymentPreimage: "00ff"}
	})
	preimage, err := n.Send(context.Background(), &node.InvoiceRef{Bolt11: "lnbcrt1..."})
	require.NoError(t, err)
	assert.Equal(t, "00ff", preimage)

	fake.handle("payinvoice", ok(paymentEvent{Type: paymentFailed, Failures: []json.RawMessage{json.RawMessage(`{}`)}}))
	_, err = n.Send(context.Background(), &node.InvoiceRef{Bolt11: "lnbcrt1..."})
	assert.ErrorIs(t, err, node.ErrPayment)

	fake.handle("payinvoice", func(url.Values) (int, interface{}) {
		return http.StatusBadRequest, map[string]string{"error": "invoice has expired"}
	})
	_, err = n.Send(context.Background(), &node.InvoiceRef{Bolt11: "lnbcrt1..."})
	var payErr *node.PaymentError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, "invoice has expired", payErr.Message)
}

func TestAddHTLC(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("parseinvoice", ok(parseInvoiceResponse{NodeID: carol}))
	fake.handle("payinvoice", func(form url.Values) (int, interface{}) {
		assert.Empty(t, form.Get("blocking"))
		return http.StatusOK, "0a1b2c3d-0000-0000-0000-000000000000"
	})

	var hash [32]byte
	hash[0] = 0xab
	ref, err := n.AddHTLC(context.Background(), &node.InvoiceRef{Bolt11: "lnbcrt1...", PaymentHash: hash})
	require.NoError(t, err)
	assert.Equal(t, node.ID(carol), ref.Destination)
	assert.Equal(t, hash, ref.PaymentHash)
}

func TestCheckRoute(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("findroutetonode", func(url.Values) (int, interface{}) {
		return http.StatusBadRequest, map[string]string{"error": "route not found"}
	})
	assert.False(t, n.CheckRoute(context.Background(), carol, 1000))

	fake.handle("findroutetonode", func(form url.Values) (int, interface{}) {
		assert.Equal(t, carol, form.Get("nodeId"))
		assert.Equal(t, "1000", form.Get("amountMsat"))
		return http.StatusOK, []string{alice, bob, carol}
	})
	assert.True(t, n.CheckRoute(context.Background(), carol, 1000))
}

func TestPendingHTLCs(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("channels", ok(json.RawMessage(`[{"nodeId":"`+bob+`","channelId":"1","state":"NORMAL","data":{"commitments":{
		"active":[{"localCommit":{"spec":{"htlcs":[
			{"direction":"OUT","add":{"amountMsat":5000,"cltvExpiry":120}},
			{"direction":"IN","add":{"amountMsat":7000,"cltvExpiry":130}}]}}}]}}}]`)))

	htlcs, err := n.PendingHTLCs(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, []node.PendingHTLC{
		{Incoming: false, AmountMsat: 5000, ExpirationHeight: 120},
		{Incoming: true, AmountMsat: 7000, ExpirationHeight: 130},
	}, htlcs)
}

func TestForceClose(t *testing.T) {
	n, fake, _ := newTestNode(t)
	var mu sync.Mutex
	closed := false
	fake.handle("channels", func(url.Values) (int, interface{}) {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			return http.StatusOK, json.RawMessage(`[{"nodeId":"` + bob + `","channelId":"c1","state":"NORMAL"}]`)
		}
		return http.StatusOK, json.RawMessage(`[{"nodeId":"` + bob + `","channelId":"c1","state":"CLOSING",
			"data":{"localCommitPublished":{"commitTx":{"txid":"` + closingTxID + `"}}}}]`)
	})
	fake.handle("forceclose", func(form url.Values) (int, interface{}) {
		assert.Equal(t, "c1", form.Get("channelId"))
		mu.Lock()
		closed = true
		mu.Unlock()
		return http.StatusOK, map[string]string{"c1": "ok"}
	})

	seq, err := n.ForceClose(context.Background(), bob)
	require.NoError(t, err)

	step, err := seq.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, closingTxID, step.TxID.String())

	step, err = seq.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, step.Done)

	_, err = seq.Next(context.Background())
	assert.ErrorIs(t, err, node.ErrSequenceDone)
	assert.Equal(t, 1, fake.count("forceclose"))
}

func TestForceCloseWithoutChannel(t *testing.T) {
	n, fake, _ := newTestNode(t)
	fake.handle("channels", ok([]channel{}))
	_, err := n.ForceClose(context.Background(), bob)
	assert.ErrorIs(t, err, node.ErrChannelNotFound)
}

func TestRestartVerifiesIdentity(t *testing.T) {
	n, fake, proc := newTestNode(t)
	fake.handle("getinfo", ok(getInfoResponse{NodeID: alice}))
	_, err := n.ID(context.Background())
	require.NoError(t, err)

	require.NoError(t, n.Restart(context.Background()))
	assert.Equal(t, 1, proc.starts)
	assert.Equal(t, 1, proc.stops)

	fake.handle("getinfo", ok(getInfoResponse{NodeID: bob}))
	assert.ErrorIs(t, n.Restart(context.Background()), node.ErrProtocol)
}

func TestAddFunds(t *testing.T) {
	n, fake, _ := newTestNode(t)
	var mu sync.Mutex
	var confirmed int64
	fake.handle("getnewaddress", ok("bcrt1qtest"))
	fake.handle("onchainbalance", func(url.Values) (int, interface{}) {
		mu.Lock()
		defer mu.Unlock()
		return http.StatusOK, onchainBalance{Confirmed: confirmed}
	})
	funder := &fakeFunder{onMine: func() {
		mu.Lock()
		confirmed = 100_000
		mu.Unlock()
	}}

	require.NoError(t, n.AddFunds(context.Background(), funder, 100_000))
	assert.Equal(t, "bcrt1qtest", funder.addr)
}

type fakeFunder struct {
	addr   string
	onMine func()
}

func (f *fakeFunder) SendToAddress(_ context.Context, addr string, _ btcutil.Amount) (*chainhash.Hash, error) {
	f.addr = addr
	return &chainhash.Hash{}, nil
}

func (f *fakeFunder) Generate(_ context.Context, n int) ([]*chainhash.Hash, error) {
	f.onMine()
	return make([]*chainhash.Hash, n), nil
}

func TestRequestsAreLogged(t *testing.T) {
	fake := &fakeEclair{handlers: map[string]handlerFunc{}, calls: map[string]int{}}
	fake.handle("getinfo", ok(getInfoResponse{NodeID: alice}))
	srv := httptest.NewServer(fake)
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	n := New(&stubProcess{}, Options{APIURL: srv.URL, Password: password, Logger: zap.New(core)})
	_, err := n.ID(context.Background())
	require.NoError(t, err)

	calls := logs.FilterMessage("api call").All()
	require.Len(t, calls, 1)
	assert.Equal(t, "/getinfo", calls[0].ContextMap()["path"])
	assert.EqualValues(t, http.StatusOK, calls[0].ContextMap()["status"])
}
