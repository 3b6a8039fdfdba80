package scenario_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsproject/lightning-integration/chain"
	"github.com/elementsproject/lightning-integration/config"
	"github.com/elementsproject/lightning-integration/factory"
	"github.com/elementsproject/lightning-integration/invoice"
	"github.com/elementsproject/lightning-integration/log"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/elementsproject/lightning-integration/scenario"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	capacity    = btcutil.Amount(10_000_000)
	gossipWait  = 120 * time.Second
	restartWait = 15 * time.Second
)

// paymentAmount is a tenth of the channel in msat.
var paymentAmount = lnwire.NewMSatFromSatoshis(capacity / 10)

func TestInterop(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION_TESTS") != "1" {
		t.Skip("set env RUN_INTEGRATION_TESTS=1 to run this test")
	}
	suite.Run(t, new(interopSuite))
}

type interopSuite struct {
	suite.Suite

	cfg   *config.Harness
	kinds []node.Kind
}

func (s *interopSuite) SetupSuite() {
	cfg, err := config.Load(os.Getenv("HARNESS_CONFIG"), nil)
	s.Require().NoError(err)
	kinds, err := cfg.Kinds()
	s.Require().NoError(err)
	if cfg.Debug {
		zl, err := log.NewZapLogger(true)
		s.Require().NoError(err)
		log.SetLogger(zl)
	}
	s.cfg, s.kinds = cfg, kinds
	log.Infof("Tests running with %s", cfg)
}

// env is the per subtest state: a fresh factory on the current T.
type env struct {
	t   *testing.T
	ctx context.Context
	f   *factory.Factory
	btc *chain.Bitcoind
}

func (s *interopSuite) env() *env {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	f := factory.New(t, s.cfg)
	btc, err := f.Chain(ctx)
	require.NoError(t, err)
	return &env{t: t, ctx: ctx, f: f, btc: btc}
}

func (e *env) node(kind node.Kind) node.Handle {
	n, err := e.f.GetNode(e.ctx, kind)
	require.NoError(e.t, err)
	return n
}

func (e *env) id(n node.Handle) node.ID {
	id, err := n.ID(e.ctx)
	require.NoError(e.t, err)
	return id
}

func (e *env) generate(n int) []*chainhash.Hash {
	hashes, err := e.btc.Generate(e.ctx, n)
	require.NoError(e.t, err)
	return hashes
}

func (e *env) connect(a, b node.Handle) {
	require.NoError(e.t, scenario.Connect(e.ctx, a, b, scenario.DefaultTimeout))
}

func (e *env) confirm(a, b node.Handle) {
	ok, err := scenario.ConfirmChannel(e.ctx, e.btc, a, b)
	require.NoError(e.t, err)
	require.True(e.t, ok, "channel %s -> %s did not confirm", a.Kind(), b.Kind())
}

func (e *env) syncBlockheight(nodes ...node.Handle) {
	require.NoError(e.t, scenario.SyncBlockheight(e.ctx, e.btc, nodes, scenario.DefaultTimeout))
}

func (e *env) waitFor(pred scenario.Predicate, timeout time.Duration) {
	require.NoError(e.t, scenario.WaitFor(e.ctx, pred, timeout, scenario.DefaultInterval))
}

func (e *env) waitChannel(a, b node.Handle) {
	remote := e.id(b)
	e.waitFor(scenario.Cond(func(ctx context.Context) bool {
		return a.CheckChannel(ctx, remote)
	}), scenario.DefaultTimeout)
}

func (e *env) pay(from, to node.Handle) {
	inv, err := to.Invoice(e.ctx, paymentAmount)
	require.NoError(e.t, err)
	dec, err := invoice.Decode(inv.Bolt11)
	require.NoError(e.t, err)
	log.Infof("Decoded payment request %s: %x", inv.Bolt11, dec.PaymentHash)

	preimage, err := from.Send(e.ctx, inv)
	require.NoError(e.t, err)
	require.NoError(e.t, scenario.VerifyPreimage(preimage, dec.PaymentHash))
}

func (e *env) sleep(d time.Duration) {
	select {
	case <-time.After(d):
	case <-e.ctx.Done():
	}
}

// openChannel connects and funds node1 and opens a confirmed channel to
// node2. It returns the csv delay node2 imposes on node1.
func (e *env) openChannel(n1, n2 node.Handle) uint32 {
	e.connect(n1, n2)
	require.NoError(e.t, n1.AddFunds(e.ctx, e.btc, 2*capacity))
	e.sleep(5 * time.Second)
	e.generate(10)
	e.sleep(5 * time.Second)

	addr := n2.Address()
	res, err := n1.OpenChannel(e.ctx, e.id(n2), addr.Host, addr.Port, capacity)
	require.NoError(e.t, err)
	e.sleep(time.Second)
	mined := e.generate(6)

	block, err := e.btc.GetBlock(e.ctx, mined[0])
	require.NoError(e.t, err)
	require.True(e.t, block.Contains(res.FundingTxID), "funding tx %s not in block %s", res.FundingTxID, block.Hash)
	log.Infof("funding tx in block %s", block.Hash)

	e.syncBlockheight(n1, n2)
	e.confirm(n1, n2)
	if d, ok := n1.(interface {
		ToSelfDelay(context.Context, node.ID) (uint32, error)
	}); ok && res.CSVDelay == 0 {
		delay, err := d.ToSelfDelay(e.ctx, e.id(n2))
		require.NoError(e.t, err)
		return delay
	}
	return res.CSVDelay
}

func (s *interopSuite) eachKind(f func(e *env, kind node.Kind)) {
	for _, kind := range s.kinds {
		kind := kind
		s.Run(string(kind), func() { f(s.env(), kind) })
	}
}

func (s *interopSuite) eachCombo(repeat int, f func(e *env, kinds []node.Kind)) {
	for _, kinds := range scenario.Product(s.kinds, repeat) {
		kinds := kinds
		s.Run(scenario.IDFor(kinds), func() { f(s.env(), kinds) })
	}
}

func (s *interopSuite) TestStart() {
	s.eachKind(func(e *env, kind node.Kind) {
		n := e.node(kind)
		require.True(e.t, n.Ping(e.ctx))
		e.syncBlockheight(n)
	})
}

func (s *interopSuite) TestConnect() {
	s.eachCombo(2, func(e *env, kinds []node.Kind) {
		n1, n2 := e.node(kinds[0]), e.node(kinds[1])
		// lnd wants a block from the last two hours.
		e.generate(1)
		e.connect(n1, n2)

		peers1, err := n1.Peers(e.ctx)
		require.NoError(e.t, err)
		peers2, err := n2.Peers(e.ctx)
		require.NoError(e.t, err)
		require.Contains(e.t, peers1, e.id(n2))
		require.Contains(e.t, peers2, e.id(n1))
	})
}

func (s *interopSuite) TestOpenChannel() {
	s.eachCombo(2, func(e *env, kinds []node.Kind) {
		n1, n2 := e.node(kinds[0]), e.node(kinds[1])
		e.connect(n1, n2)
		require.NoError(e.t, n1.AddFunds(e.ctx, e.btc, 2*capacity))

		addr := n2.Address()
		_, err := n1.OpenChannel(e.ctx, e.id(n2), addr.Host, addr.Port, capacity)
		require.NoError(e.t, err)
		e.sleep(time.Second)
		e.generate(2)

		e.confirm(n1, n2)
		require.True(e.t, n1.CheckChannel(e.ctx, e.id(n2)))
		require.True(e.t, n2.CheckChannel(e.ctx, e.id(n1)))

		// announcement depth
		e.generate(4)
	})
}

func (s *interopSuite) TestGossip() {
	s.eachCombo(2, func(e *env, kinds []node.Kind) {
		n1, n2 := e.node(kinds[0]), e.node(kinds[1])

		// lightningd starts quickest, it builds the line graph.
		line := make([]node.Handle, 5)
		for i := range line {
			line[i] = e.node(node.KindCLightning)
		}
		for i := 0; i < len(line)-1; i++ {
			a, b := line[i], line[i+1]
			e.connect(a, b)
			require.NoError(e.t, a.AddFunds(e.ctx, e.btc, 2*capacity))
			addr := b.Address()
			_, err := a.OpenChannel(e.ctx, e.id(b), addr.Host, addr.Port, capacity)
			require.NoError(e.t, err)
			e.confirm(a, b)
		}

		e.sleep(5 * time.Second)
		e.generate(30)
		e.sleep(5 * time.Second)

		for _, n := range line {
			n := n
			e.waitFor(func(ctx context.Context) (bool, error) {
				nodes, err := n.GetNodes(ctx)
				return len(nodes) == len(line)-1, err
			}, gossipWait)
		}
		e.waitFor(scenario.Cond(func(ctx context.Context) bool {
			return scenario.GossipIsSynced(ctx, line, 2*(len(line)-1))
		}), gossipWait)

		e.connect(n1, line[0])
		e.connect(n2, n1)

		for _, n := range []node.Handle{n1, n2} {
			n := n
			e.waitFor(func(ctx context.Context) (bool, error) {
				nodes, err := n.GetNodes(ctx)
				return len(nodes) >= len(line), err
			}, gossipWait)
		}
	})
}

func (s *interopSuite) TestInvoiceDecode() {
	s.eachKind(func(e *env, kind node.Kind) {
		n := e.node(kind)
		inv, err := n.Invoice(e.ctx, paymentAmount)
		require.NoError(e.t, err)

		hrp, err := invoice.HRP(inv.Bolt11)
		require.NoError(e.t, err)
		require.True(e.t, strings.HasPrefix(hrp, invoice.RegtestPrefix), hrp)

		dec, err := invoice.Decode(inv.Bolt11)
		require.NoError(e.t, err)
		require.Equal(e.t, inv.PaymentHash, dec.PaymentHash)
		require.Equal(e.t, paymentAmount, dec.AmountMsat)
		require.Equal(e.t, e.id(n), dec.Destination)
	})
}

func (s *interopSuite) TestDirectPayment() {
	s.eachCombo(2, func(e *env, kinds []node.Kind) {
		n1, n2 := e.node(kinds[0]), e.node(kinds[1])
		e.openChannel(n1, n2)
		e.pay(n1, n2)
	})
}

func (s *interopSuite) TestForwardedPayment() {
	s.eachCombo(3, func(e *env, kinds []node.Kind) {
		nodes := make([]node.Handle, len(kinds))
		for i, k := range kinds {
			nodes[i] = e.node(k)
		}
		for i := 0; i < len(nodes)-1; i++ {
			e.connect(nodes[i], nodes[i+1])
			require.NoError(e.t, nodes[i].AddFunds(e.ctx, e.btc, 4*capacity))
		}
		for i := 0; i < len(nodes)-1; i++ {
			addr := nodes[i+1].Address()
			_, err := nodes[i].OpenChannel(e.ctx, e.id(nodes[i+1]), addr.Host, addr.Port, capacity)
			require.NoError(e.t, err)
			e.confirm(nodes[i], nodes[i+1])
		}

		e.generate(6)
		e.syncBlockheight(nodes...)

		ids := make([]node.ID, len(nodes))
		for i, n := range nodes {
			info, err := n.Info(e.ctx)
			require.NoError(e.t, err)
			ids[i] = info.ID
		}
		route := scenario.Route(ids...)
		e.waitFor(func(ctx context.Context) (bool, error) {
			return scenario.NodeHasRoute(ctx, nodes[0], route)
		}, gossipWait)
		e.syncBlockheight(nodes...)

		src, dst := nodes[0], nodes[len(nodes)-1]
		dstID := e.id(dst)
		log.Infof("Waiting for a route to be found")
		e.waitFor(scenario.Cond(func(ctx context.Context) bool {
			return src.CheckRoute(ctx, dstID, paymentAmount)
		}), gossipWait)
		e.pay(src, dst)
	})
}

func (s *interopSuite) TestReconnect() {
	s.eachCombo(2, func(e *env, kinds []node.Kind) {
		n1, n2 := e.node(kinds[0]), e.node(kinds[1])
		e.connect(n1, n2)
		require.NoError(e.t, n1.AddFunds(e.ctx, e.btc, 2*capacity))
		e.sleep(5 * time.Second)
		e.generate(10)
		e.sleep(5 * time.Second)

		addr := n2.Address()
		_, err := n1.OpenChannel(e.ctx, e.id(n2), addr.Host, addr.Port, capacity)
		require.NoError(e.t, err)
		require.NoError(e.t, scenario.GenerateUntil(e.ctx, e.btc, scenario.Cond(func(ctx context.Context) bool {
			return scenario.CheckChannels(ctx, [][2]node.Handle{{n1, n2}})
		}), scenario.DefaultBlocks, scenario.DefaultInterval))
		e.waitChannel(n1, n2)
		e.waitChannel(n2, n1)
		e.syncBlockheight(n1, n2)
		e.pay(n1, n2)

		before := e.id(n2)
		e.sleep(5 * time.Second)
		require.NoError(e.t, n2.Restart(e.ctx))
		e.sleep(restartWait)
		require.Equal(e.t, before, e.id(n2))

		e.waitChannel(n1, n2)
		e.waitChannel(n2, n1)
		e.syncBlockheight(n1, n2)
		e.sleep(restartWait)
		e.pay(n1, n2)
	})
}

func (s *interopSuite) TestRedeemHTLCFunds() {
	s.eachCombo(2, func(e *env, kinds []node.Kind) {
		n1, n2 := e.node(kinds[0]), e.node(kinds[1])
		closer, ok1 := n1.(node.ForceCloser)
		watcher, ok2 := n1.(node.BroadcastWatcher)
		heights, ok3 := n1.(node.TxHeighter)
		if !ok1 || !ok2 || !ok3 {
			e.t.Skipf("%s cannot follow its own force close", kinds[0])
		}

		csv := e.openChannel(n1, n2)
		id1, id2 := e.id(n1), e.id(n2)

		addHTLC := func(amt lnwire.MilliSatoshi) {
			inv, err := n2.Invoice(e.ctx, amt)
			require.NoError(e.t, err)
			_, err = n1.AddHTLC(e.ctx, inv)
			require.NoError(e.t, err)
		}
		quarter := lnwire.NewMSatFromSatoshis(capacity / 4)
		addHTLC(quarter)
		addHTLC(quarter + 1000)

		var htlcs []node.PendingHTLC
		e.waitFor(func(ctx context.Context) (bool, error) {
			var err error
			htlcs, err = n2.PendingHTLCs(ctx, id1)
			return len(htlcs) == 2, err
		}, scenario.DefaultTimeout)
		log.Infof("htlcs %+v", htlcs)

		require.NoError(e.t, n2.Stop())

		seq, err := closer.ForceClose(e.ctx, id2)
		require.NoError(e.t, err)
		closing, err := seq.ClosingTxID(e.ctx)
		require.NoError(e.t, err)
		e.sleep(time.Second)

		info, err := n1.Info(e.ctx)
		require.NoError(e.t, err)
		diff := int(htlcs[0].ExpirationHeight) - int(info.BlockHeight)
		log.Infof("expiration: %d, local_height: %d, diff: %d", htlcs[0].ExpirationHeight, info.BlockHeight, diff)

		block, err := e.btc.GetBlock(e.ctx, e.generate(1)[0])
		require.NoError(e.t, err)
		require.True(e.t, block.Contains(closing))
		e.waitFor(func(ctx context.Context) (bool, error) {
			h, err := heights.TxHeights(ctx, []chainhash.Hash{closing}, node.ScopeChain)
			return h[closing] > 0, err
		}, scenario.DefaultTimeout)

		if diff > 0 {
			e.generate(diff)
		}
		h1 := e.published(watcher, "our_ctx_htlc_tx")
		h2 := e.published(watcher, "our_ctx_htlc_tx")
		e.mineUntilIncluded(h1.Tx.TxHash(), h2.Tx.TxHash())

		e.generate(int(csv))
		second := e.published(watcher, "second_stage")
		e.mineUntilIncluded(second.Tx.TxHash())

		e.generate(101)
		require.NoError(e.t, seq.Done(e.ctx))
	})
}

// published returns the next broadcast event named with prefix. The
// commitment and its to_local sweep may come first and are skipped.
func (e *env) published(w node.BroadcastWatcher, prefix string) *node.BroadcastTxEvent {
	for i := 0; i < 3; i++ {
		ev, err := w.PublishedEncumberedTx(e.ctx)
		require.NoError(e.t, err)
		if strings.HasPrefix(ev.Name, prefix) {
			return ev
		}
		log.Infof("skipping %s %s", ev.Name, ev.Tx.TxHash())
	}
	e.t.Fatalf("no %s transaction published", prefix)
	return nil
}

// mineUntilIncluded mines until every txid is confirmed.
func (e *env) mineUntilIncluded(txids ...chainhash.Hash) {
	err := scenario.GenerateUntil(e.ctx, e.btc, func(ctx context.Context) (bool, error) {
		for _, txid := range txids {
			txid := txid
			h, err := e.btc.GetTxHeight(ctx, &txid)
			if err != nil || h == 0 {
				return false, err
			}
		}
		return true, nil
	}, scenario.DefaultBlocks, scenario.DefaultInterval)
	require.NoError(e.t, err, "transactions %v never mined", txids)
}
