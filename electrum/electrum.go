// Package electrum drives an electrum daemon with lightning enabled over its
// json-rpc interface and reads chain state from the ElectrumX server the
// daemon is connected to.
package electrum

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/cenkalti/backoff/v4"
	"github.com/checksum0/go-electrum/electrum"
	"github.com/elementsproject/lightning-integration/chainwatch"
	"github.com/elementsproject/lightning-integration/invoice"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/elementsproject/lightning-integration/worker"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/ybbus/jsonrpc"
	"go.uber.org/zap"
)

const (
	stateOpen         = "OPEN"
	stateForceClosing = "FORCE_CLOSING"
	stateClosed       = "CLOSED"
	stateRedeemed     = "REDEEMED"
	peerStateGood     = "GOOD"

	invoiceMemo   = "cup of coffee"
	invoiceExpiry = 3600
	// lnpayTimeout is handed to the daemon in seconds for payments that
	// keep running after AddHTLC returned.
	lnpayTimeout = 120

	walletExists     = "Remove the existing wallet first"
	readyInterval    = 500 * time.Millisecond
	blockSyncDelay   = 1 * time.Second
	blockSyncTimeout = 30 * time.Second
	stopTimeout      = 5 * time.Second
)

// ElectrumX is the index server connection, see NewElectrumXClient.
type ElectrumX interface {
	Ping(ctx context.Context) error
	GetHistory(ctx context.Context, scripthash string) ([]*electrum.GetMempoolResult, error)
	GetRawTransaction(ctx context.Context, txHash string) (string, error)
	Shutdown()
}

type Process interface {
	Start() error
	Stop() error
}

// DaemonError is an error answer of the electrum daemon.
type DaemonError struct {
	Method  string
	Code    int
	Message string
}

func (e *DaemonError) Error() string {
	return fmt.Sprintf("%s: electrum error %d: %s", e.Method, e.Code, e.Message)
}

type Options struct {
	Address node.Address
	Logger  *zap.Logger
	// RPC talks to the daemon, see NewDaemonClient.
	RPC        jsonrpc.RPCClient
	WalletPath string
	// ElectrumX answers chain scoped height queries. Optional.
	ElectrumX ElectrumX
	// Chain is followed for the transactions of a force close. Optional.
	Chain         chainwatch.TxSource
	FundAttempts  int
	SettleDelay   time.Duration
	WatchInterval time.Duration
}

// Node is the node.Handle of an electrum daemon. Every daemon and ElectrumX
// call runs on the node's worker goroutine.
type Node struct {
	proc       Process
	rpc        jsonrpc.RPCClient
	electrumx  ElectrumX
	chain      chainwatch.TxSource
	walletPath string
	addr       node.Address
	logger     *zap.Logger
	attempts   int
	settle     time.Duration

	worker   *worker.Worker
	identity node.Identity

	mu          sync.Mutex
	watcher     *chainwatch.Watcher
	watchOnce   sync.Once
	watchCancel context.CancelFunc
	stopOnce    sync.Once
	stopErr     error
}

// Start runs proc, creates and loads the wallet and returns the handle.
func Start(ctx context.Context, proc Process, opts Options) (*Node, error) {
	n := New(proc, opts)
	if err := proc.Start(); err != nil {
		n.worker.Stop()
		_ = proc.Stop()
		return nil, node.Unavailable("start electrum", err)
	}
	if err := n.openWallet(ctx, true); err != nil {
		n.worker.Stop()
		_ = proc.Stop()
		return nil, err
	}
	return n, nil
}

// New wraps a running daemon. It starts the worker goroutine, Stop ends it.
func New(proc Process, opts Options) *Node {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = node.RestartSettleDelay
	}
	n := &Node{
		proc:       proc,
		rpc:        opts.RPC,
		electrumx:  opts.ElectrumX,
		chain:      opts.Chain,
		walletPath: opts.WalletPath,
		addr:       opts.Address,
		logger:     opts.Logger,
		attempts:   opts.FundAttempts,
		settle:     opts.SettleDelay,
		worker:     worker.New("electrum " + opts.Address.String()),
	}
	if opts.Chain != nil {
		n.watcher = chainwatch.NewWatcher(opts.Chain, opts.WatchInterval)
	}
	return n
}

// openWallet waits for the daemon to answer and loads the wallet, creating
// it first if asked to.
func (n *Node) openWallet(ctx context.Context, create bool) error {
	err := backoff.Retry(func() error {
		err := n.call(ctx, "getinfo", nil, nil)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, node.ErrUnavailable):
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.NewConstantBackOff(readyInterval), ctx))
	if err != nil {
		return node.FromContext("electrum ready", err)
	}

	if create {
		err := n.call(ctx, "create", params{"wallet_path": n.walletPath}, nil)
		var de *DaemonError
		if err != nil && !(errors.As(err, &de) && strings.Contains(de.Message, walletExists)) {
			return err
		}
	}
	return n.call(ctx, "load_wallet", params{"wallet_path": n.walletPath}, nil)
}

// call runs method on the worker and decodes the result into out.
func (n *Node) call(ctx context.Context, method string, p params, out interface{}) error {
	_, err := n.worker.Do(ctx, func(context.Context) (interface{}, error) {
		return nil, n.rpcCall(method, p, out)
	})
	return n.mapErr(ctx, method, err)
}

// rpcCall runs on the worker, except for in-flight payments.
func (n *Node) rpcCall(method string, p params, out interface{}) error {
	if p == nil {
		p = params{}
	}
	n.logger.Debug("call", zap.String("method", method), zap.Any("params", p))
	r, err := n.rpc.Call(method, p)
	if r != nil && r.Error != nil {
		return &DaemonError{Method: method, Code: r.Error.Code, Message: r.Error.Message}
	}
	if err != nil {
		return node.Unavailable(method, err)
	}
	if out == nil || r == nil {
		return nil
	}
	if err := r.GetObject(out); err != nil {
		return node.Protocol(method, "%v", err)
	}
	return nil
}

func (n *Node) mapErr(ctx context.Context, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, worker.ErrStopped):
		return node.Unavailable(op, err)
	case ctx.Err() != nil:
		return node.FromContext(op, ctx.Err())
	}
	return err
}

func (n *Node) Kind() node.Kind {
	return node.KindElectrum
}

func (n *Node) Address() node.Address {
	return n.addr
}

func (n *Node) ID(ctx context.Context) (node.ID, error) {
	return n.identity.Get(ctx, n.fetchID)
}

func (n *Node) fetchID(ctx context.Context) (node.ID, error) {
	var id string
	if err := n.call(ctx, "nodeid", nil, &id); err != nil {
		return "", err
	}
	// newer daemons append the listen address
	id, _, _ = strings.Cut(id, "@")
	parsed, err := node.ParseID(id)
	if err != nil {
		return "", node.Protocol("nodeid", "%v", err)
	}
	return parsed, nil
}

func (n *Node) Ping(ctx context.Context) bool {
	return n.call(ctx, "getinfo", nil, nil) == nil
}

func (n *Node) Info(ctx context.Context) (*node.Info, error) {
	id, err := n.ID(ctx)
	if err != nil {
		return nil, err
	}
	var res getInfoResponse
	if err := n.call(ctx, "getinfo", nil, &res); err != nil {
		return nil, err
	}
	return &node.Info{ID: id, BlockHeight: res.BlockchainHeight}, nil
}

func connectionString(id node.ID, host string, port int) string {
	return fmt.Sprintf("%s@%s:%d", id, host, port)
}

func (n *Node) Connect(ctx context.Context, host string, port int, id node.ID) error {
	ctx, cancel := context.WithTimeout(ctx, node.ConnectTimeout)
	defer cancel()
	return n.call(ctx, "add_peer", params{"connection_string": connectionString(id, host, port)}, nil)
}

func (n *Node) Peers(ctx context.Context) ([]node.ID, error) {
	var peers []*peer
	if err := n.call(ctx, "list_peers", nil, &peers); err != nil {
		return nil, err
	}
	ids := make([]node.ID, 0, len(peers))
	for _, p := range peers {
		id, err := node.ParseID(p.NodeID)
		if err != nil {
			return nil, node.Protocol("list_peers", "%v", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (n *Node) AddFunds(ctx context.Context, funder node.Funder, amt btcutil.Amount) error {
	var addr string
	if err := n.call(ctx, "getunusedaddress", nil, &addr); err != nil {
		return err
	}
	balance := func(ctx context.Context) (btcutil.Amount, error) {
		var res addressBalance
		if err := n.call(ctx, "getaddressbalance", params{"address": addr}, &res); err != nil {
			return 0, err
		}
		confirmed, err := parseBTC(res.Confirmed)
		if err != nil {
			return 0, node.Protocol("getaddressbalance", "confirmed %q: %v", res.Confirmed, err)
		}
		return confirmed, nil
	}
	return node.FundAndWait(ctx, funder, addr, amt, balance, n.attempts)
}

// OpenChannel lets the daemon connect and fund the channel. The csv delay
// comes from the remote channel config.
func (n *Node) OpenChannel(ctx context.Context, remote node.ID, host string, port int, amt btcutil.Amount) (*node.OpenResult, error) {
	var channelPoint string
	err := n.call(ctx, "open_channel", params{
		"connection_string": connectionString(remote, host, port),
		"amount":            btcString(amt),
	}, &channelPoint)
	if err != nil {
		return nil, err
	}
	funding, err := wire.NewOutPointFromString(channelPoint)
	if err != nil {
		return nil, node.Protocol("open_channel", "channel point %q: %v", channelPoint, err)
	}

	chans, err := n.listChannels(ctx)
	if err != nil {
		return nil, err
	}
	open := &node.OpenResult{FundingTxID: funding.Hash}
	for _, c := range chans {
		if c.ChannelPoint == channelPoint {
			open.CSVDelay = c.RemoteToSelfDelay
		}
	}
	return open, nil
}

func (n *Node) listChannels(ctx context.Context) ([]*channel, error) {
	var chans []*channel
	if err := n.call(ctx, "list_channels", nil, &chans); err != nil {
		return nil, err
	}
	return chans, nil
}

// channelWith returns the channel to remote, preferring an open one.
func (n *Node) channelWith(ctx context.Context, remote node.ID) (*channel, error) {
	chans, err := n.listChannels(ctx)
	if err != nil {
		return nil, err
	}
	var found *channel
	for _, c := range chans {
		if c.RemotePubkey != remote.String() {
			continue
		}
		if found == nil || c.State == stateOpen {
			found = c
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%s: %w", remote, node.ErrChannelNotFound)
	}
	return found, nil
}

func (c *channel) active() bool {
	return c.State == stateOpen && (c.PeerState == "" || c.PeerState == peerStateGood)
}

func (n *Node) CheckChannel(ctx context.Context, remote node.ID) bool {
	c, err := n.channelWith(ctx, remote)
	if err != nil {
		return false
	}
	return c.active()
}

func (n *Node) Channels(ctx context.Context) ([]node.ChannelView, error) {
	self, err := n.ID(ctx)
	if err != nil {
		return nil, err
	}
	chans, err := n.listChannels(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]node.ChannelView, 0, len(chans))
	for _, c := range chans {
		remote, err := node.ParseID(c.RemotePubkey)
		if err != nil {
			return nil, node.Protocol("list_channels", "%v", err)
		}
		v := node.ChannelView{Local: self, Remote: remote, State: node.ChannelStateOther}
		if c.State == stateOpen {
			v.State = node.ChannelStateOpen
			v.Active = c.active()
		}
		views = append(views, v)
	}
	return views, nil
}

func (n *Node) channelDB(ctx context.Context) ([]*channelInfo, error) {
	var infos []*channelInfo
	if err := n.call(ctx, "get_channel_db", nil, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

func (n *Node) GetChannels(ctx context.Context) ([]node.Edge, error) {
	infos, err := n.channelDB(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := graphEdges(infos, 0)
	if err != nil {
		return nil, err
	}
	return node.Symmetric(edges), nil
}

// graphEdges converts the channel db, skipping channels smaller than
// minMsat when the capacity is known.
func graphEdges(infos []*channelInfo, minMsat lnwire.MilliSatoshi) ([]node.Edge, error) {
	edges := make([]node.Edge, 0, len(infos))
	for _, ci := range infos {
		if ci.CapacitySat > 0 && lnwire.NewMSatFromSatoshis(btcutil.Amount(ci.CapacitySat)) < minMsat {
			continue
		}
		a, err := node.ParseID(ci.NodeID1)
		if err != nil {
			return nil, node.Protocol("get_channel_db", "%v", err)
		}
		b, err := node.ParseID(ci.NodeID2)
		if err != nil {
			return nil, node.Protocol("get_channel_db", "%v", err)
		}
		edges = append(edges, node.Edge{From: a, To: b})
	}
	return edges, nil
}

func (n *Node) GetNodes(ctx context.Context) ([]node.ID, error) {
	self, err := n.ID(ctx)
	if err != nil {
		return nil, err
	}
	infos, err := n.channelDB(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := graphEdges(infos, 0)
	if err != nil {
		return nil, err
	}
	seen := make(map[node.ID]struct{})
	var ids []node.ID
	for _, e := range edges {
		for _, id := range []node.ID{e.From, e.To} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return node.WithoutSelf(ids, self), nil
}

func (n *Node) Invoice(ctx context.Context, amountMsat lnwire.MilliSatoshi) (*node.InvoiceRef, error) {
	var res addRequestResponse
	err := n.call(ctx, "add_request", params{
		"amount": fmt.Sprintf("%.11f", amountMsat.ToBTC()),
		"memo":   invoiceMemo,
		"expiry": invoiceExpiry,
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.PaymentHash == "" {
		decoded, err := invoice.Decode(res.LightningInvoice)
		if err != nil {
			return nil, node.Protocol("add_request", "%v", err)
		}
		return decoded.Ref(), nil
	}
	hash, err := hex.DecodeString(res.PaymentHash)
	if err != nil {
		return nil, node.Protocol("add_request", "payment hash: %v", err)
	}
	return invoice.Ref(res.LightningInvoice, hash)
}

func (n *Node) lnpay(bolt11 string, timeout int) (*lnpayResponse, error) {
	var res lnpayResponse
	err := n.rpcCall("lnpay", params{"invoice": bolt11, "timeout": timeout}, &res)
	var de *DaemonError
	if errors.As(err, &de) {
		return nil, &node.PaymentError{Message: de.Message}
	}
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, &node.PaymentError{Message: res.failure()}
	}
	return &res, nil
}

// AddHTLC hands the payment to the daemon and returns once it is in flight.
// lnpay only answers after the payment resolved, so a payment still
// running after AddHTLCTimeout counts as in flight. The call runs off the
// worker so later calls are not queued behind it.
func (n *Node) AddHTLC(ctx context.Context, inv *node.InvoiceRef) (*node.HTLCRef, error) {
	decoded, err := invoice.Decode(inv.Bolt11)
	if err != nil {
		return nil, node.Protocol("AddHTLC", "%v", err)
	}

	payCtx, cancel := context.WithTimeout(context.Background(), lnpayTimeout*time.Second)
	fut := worker.Go(payCtx, func(context.Context) (interface{}, error) {
		return n.lnpay(inv.Bolt11, lnpayTimeout)
	})
	go func() {
		_, _ = fut.Await(payCtx)
		cancel()
	}()

	wait, done := context.WithTimeout(ctx, node.AddHTLCTimeout)
	defer done()
	_, err = fut.Await(wait)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return nil, node.FromContext("AddHTLC", ctx.Err())
	case wait.Err() != nil:
		n.logger.Debug("payment still in flight", zap.String("hash", hex.EncodeToString(inv.PaymentHash[:])))
	default:
		return nil, n.mapErr(ctx, "lnpay", err)
	}
	return &node.HTLCRef{Destination: decoded.Destination, PaymentHash: inv.PaymentHash}, nil
}

func (n *Node) Send(ctx context.Context, inv *node.InvoiceRef) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, node.SendTimeout)
	defer cancel()
	res, err := worker.Call(ctx, n.worker, func(context.Context) (*lnpayResponse, error) {
		return n.lnpay(inv.Bolt11, int(node.SendTimeout/time.Second))
	})
	if err != nil {
		return "", n.mapErr(ctx, "lnpay", err)
	}
	return res.Preimage, nil
}

// CheckRoute searches the gossiped graph for a path with enough capacity.
// The daemon has no route query of its own.
func (n *Node) CheckRoute(ctx context.Context, dest node.ID, amountMsat lnwire.MilliSatoshi) bool {
	self, err := n.ID(ctx)
	if err != nil {
		return false
	}
	infos, err := n.channelDB(ctx)
	if err != nil {
		n.logger.Debug("get_channel_db failed", zap.Error(err))
		return false
	}
	edges, err := graphEdges(infos, amountMsat)
	if err != nil {
		return false
	}
	return reachable(node.Symmetric(edges), self, dest)
}

func reachable(edges []node.Edge, from, to node.ID) bool {
	adj := make(map[node.ID][]node.ID)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	seen := map[node.ID]bool{from: true}
	queue := []node.ID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

func (n *Node) PendingHTLCs(ctx context.Context, remote node.ID) ([]node.PendingHTLC, error) {
	c, err := n.channelWith(ctx, remote)
	if err != nil {
		return nil, err
	}
	htlcs := make([]node.PendingHTLC, 0, len(c.Htlcs))
	for _, h := range c.Htlcs {
		htlcs = append(htlcs, node.PendingHTLC{
			Incoming:         h.incoming(),
			AmountMsat:       lnwire.MilliSatoshi(h.AmountMsat),
			ExpirationHeight: h.CltvExpiry,
		})
	}
	return htlcs, nil
}

// BlockSync waits until the daemon caught up with the block. Without a
// chain view it only gives the daemon a moment.
func (n *Node) BlockSync(ctx context.Context, blockHash chainhash.Hash) error {
	if n.chain == nil {
		select {
		case <-time.After(blockSyncDelay):
			return nil
		case <-ctx.Done():
			return node.FromContext("block sync", ctx.Err())
		}
	}

	ctx, cancel := context.WithTimeout(ctx, blockSyncTimeout)
	defer cancel()
	block, err := n.chain.GetBlock(ctx, &blockHash)
	if err != nil {
		return node.FromContext("block sync", err)
	}
	ticker := time.NewTicker(readyInterval)
	defer ticker.Stop()
	for {
		var res getInfoResponse
		err := n.call(ctx, "getinfo", nil, &res)
		if err == nil && int32(res.BlockchainHeight) >= block.Height {
			return nil
		}
		select {
		case <-ctx.Done():
			return node.FromContext("block sync", ctx.Err())
		case <-ticker.C:
		}
	}
}

// ForceClose publishes our commitment and follows the close on chain.
func (n *Node) ForceClose(ctx context.Context, remote node.ID) (*node.ForceCloseSequence, error) {
	ch, err := n.channelWith(ctx, remote)
	if err != nil {
		return nil, err
	}
	funding, err := wire.NewOutPointFromString(ch.ChannelPoint)
	if err != nil {
		return nil, node.Protocol("list_channels", "channel point %q: %v", ch.ChannelPoint, err)
	}

	start := func(ctx context.Context) (chainhash.Hash, error) {
		var txid string
		err := n.call(ctx, "close_channel", params{"channel_point": ch.ChannelPoint, "force": true}, &txid)
		if err != nil {
			return chainhash.Hash{}, err
		}
		h, err := chainhash.NewHashFromStr(txid)
		if err != nil {
			return chainhash.Hash{}, node.Protocol("close_channel", "closing txid: %v", err)
		}
		n.watchClose(*funding, *h)
		return *h, nil
	}

	wait := func(ctx context.Context, _ chainhash.Hash) error {
		ticker := time.NewTicker(node.FundsPollInterval)
		defer ticker.Stop()
		for {
			chans, err := n.listChannels(ctx)
			if err == nil && closeHandled(chans, ch.ChannelPoint) {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}

	return node.NewForceCloseSequence(start, wait), nil
}

// closeHandled reports whether the channel left the open states or is
// gone.
func closeHandled(chans []*channel, channelPoint string) bool {
	for _, c := range chans {
		if c.ChannelPoint != channelPoint {
			continue
		}
		switch c.State {
		case stateForceClosing, stateClosed, stateRedeemed:
			return true
		}
		return false
	}
	return true
}

func (n *Node) watchClose(funding wire.OutPoint, commitment chainhash.Hash) {
	if n.watcher == nil {
		return
	}
	n.watcher.WatchCommitment(funding, commitment)
	n.watchOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		n.mu.Lock()
		n.watchCancel = cancel
		n.mu.Unlock()
		n.watcher.Start(ctx)
	})
}

func (n *Node) PublishedEncumberedTx(ctx context.Context) (*node.BroadcastTxEvent, error) {
	if n.watcher == nil {
		return nil, node.Unavailable("published encumbered tx", errors.New("no chain view configured"))
	}
	return n.watcher.Next(ctx)
}

// TxHeights asks the wallet, or ElectrumX for chain scope.
func (n *Node) TxHeights(ctx context.Context, txids []chainhash.Hash, scope node.TxScope) (map[chainhash.Hash]int32, error) {
	ctx, cancel := context.WithTimeout(ctx, node.TxHeightsTimeout)
	defer cancel()

	if scope == node.ScopeWallet {
		return n.walletHeights(ctx, txids)
	}
	if n.electrumx == nil {
		return nil, node.Unavailable("tx heights", errors.New("no electrumx configured"))
	}
	heights, err := worker.Call(ctx, n.worker, func(ctx context.Context) (map[chainhash.Hash]int32, error) {
		heights := make(map[chainhash.Hash]int32, len(txids))
		for i := range txids {
			height, ok, err := txHeight(ctx, n.electrumx, &txids[i])
			if err != nil {
				return nil, err
			}
			if ok {
				heights[txids[i]] = height
			}
		}
		return heights, nil
	})
	if err != nil {
		return nil, n.mapErr(ctx, "tx heights", err)
	}
	return heights, nil
}

// walletHeights derives heights from the confirmation counts of the
// wallet. Transactions the wallet does not know are left out.
func (n *Node) walletHeights(ctx context.Context, txids []chainhash.Hash) (map[chainhash.Hash]int32, error) {
	var info getInfoResponse
	if err := n.call(ctx, "getinfo", nil, &info); err != nil {
		return nil, err
	}
	heights := make(map[chainhash.Hash]int32, len(txids))
	for _, txid := range txids {
		var st txStatus
		err := n.call(ctx, "get_tx_status", params{"txid": txid.String()}, &st)
		var de *DaemonError
		if errors.As(err, &de) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if st.Confirmations <= 0 {
			heights[txid] = 0
			continue
		}
		heights[txid] = int32(info.BlockchainHeight) - st.Confirmations + 1
	}
	return heights, nil
}

func (n *Node) Restart(ctx context.Context) error {
	if err := n.shutdown(); err != nil {
		return err
	}
	select {
	case <-time.After(n.settle):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := n.proc.Start(); err != nil {
		return node.Unavailable("restart", err)
	}
	if err := n.openWallet(ctx, false); err != nil {
		return err
	}
	id, err := n.fetchID(ctx)
	if err != nil {
		return err
	}
	return n.identity.Verify(id)
}

func (n *Node) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := n.call(ctx, "stop", nil, nil); err != nil {
		n.logger.Debug("stop", zap.Error(err))
	}
	return n.proc.Stop()
}

// Stop ends the daemon, the worker and the chain watcher. Later calls
// return the first result.
func (n *Node) Stop() error {
	n.stopOnce.Do(func() {
		n.mu.Lock()
		cancel := n.watchCancel
		n.mu.Unlock()
		if cancel != nil {
			cancel()
			n.watcher.Stop()
			n.watcher.Wait()
		}
		n.stopErr = n.shutdown()
		n.worker.Stop()
		if n.electrumx != nil {
			n.electrumx.Shutdown()
		}
	})
	return n.stopErr
}

var (
	_ node.Handle           = (*Node)(nil)
	_ node.ForceCloser      = (*Node)(nil)
	_ node.BroadcastWatcher = (*Node)(nil)
	_ node.TxHeighter       = (*Node)(nil)
)
