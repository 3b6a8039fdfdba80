// Package lnd drives an lnd daemon over gRPC.
package lnd

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
	"github.com/elementsproject/lightning-integration/chain"
	"github.com/elementsproject/lightning-integration/chainwatch"
	"github.com/elementsproject/lightning-integration/invoice"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/elementsproject/lightning-integration/testframework"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"github.com/lightningnetwork/lnd/lnwire"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

const (
	noPathError = "unable to find a path to destination"
	// alreadyConnected is returned by ConnectPeer for an existing peer.
	alreadyConnected = "already connected to peer"

	paymentTimeoutSeconds = 60
	stopTimeout           = 5 * time.Second
)

// Process is the lnd daemon the adapter controls.
type Process interface {
	Start() error
	Stop() error
	WaitForLog(regex string, timeout time.Duration) error
	RpcHost() string
	TLSCertPath() string
	AdminMacaroonPath() string
}

// ChainView is what the adapter reads from the shared bitcoind to follow
// force closes and answer chain scoped height queries.
type ChainView interface {
	chainwatch.TxSource
	GetTxHeight(ctx context.Context, txid *chainhash.Hash) (int32, error)
}

type Options struct {
	Address   node.Address
	Logger    *zap.Logger
	Connector Connector
	Chain     ChainView
	// FundAttempts caps the balance polls of AddFunds, 0 polls until the
	// context is done.
	FundAttempts  int
	SettleDelay   time.Duration
	WatchInterval time.Duration
}

// Node is the node.Handle of an lnd.
type Node struct {
	proc      Process
	connector Connector
	chain     ChainView
	addr      node.Address
	logger    *zap.Logger
	attempts  int
	settle    time.Duration

	mu      sync.Mutex
	clients *Clients

	identity node.Identity

	watcher     *chainwatch.Watcher
	watchOnce   sync.Once
	watchCancel context.CancelFunc
}

// Start runs proc, creates its wallet and returns the handle.
func Start(ctx context.Context, proc Process, opts Options) (*Node, error) {
	if opts.Connector == nil {
		opts.Connector = NewConnector(opts.Logger)
	}
	if err := proc.Start(); err != nil {
		_ = proc.Stop()
		return nil, node.Unavailable("start lnd", err)
	}
	clients, err := opts.Connector(ctx, proc, true)
	if err != nil {
		_ = proc.Stop()
		return nil, err
	}
	return New(proc, clients, opts), nil
}

// New wraps an lnd whose wallet is already unlocked.
func New(proc Process, clients *Clients, opts Options) *Node {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Connector == nil {
		opts.Connector = NewConnector(opts.Logger)
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = node.RestartSettleDelay
	}
	n := &Node{
		proc:      proc,
		connector: opts.Connector,
		chain:     opts.Chain,
		addr:      opts.Address,
		logger:    opts.Logger,
		attempts:  opts.FundAttempts,
		settle:    opts.SettleDelay,
		clients:   clients,
	}
	if opts.Chain != nil {
		n.watcher = chainwatch.NewWatcher(opts.Chain, opts.WatchInterval)
	}
	return n
}

func (n *Node) ln() LightningClient {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clients.Lightning
}

func (n *Node) router() RouterClient {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clients.Router
}

// trace logs a response at debug level.
func (n *Node) trace(method string, m proto.Message) {
	if ce := n.logger.Check(zapcore.DebugLevel, method); ce != nil {
		b, err := protojson.Marshal(m)
		if err != nil {
			return
		}
		ce.Write(zap.ByteString("response", b))
	}
}

func (n *Node) Kind() node.Kind {
	return node.KindLnd
}

func (n *Node) Address() node.Address {
	return n.addr
}

func (n *Node) ID(ctx context.Context) (node.ID, error) {
	return n.identity.Get(ctx, n.fetchID)
}

func (n *Node) fetchID(ctx context.Context) (node.ID, error) {
	info, err := n.Info(ctx)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (n *Node) Ping(ctx context.Context) bool {
	_, err := n.ln().GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		n.logger.Debug("ping failed", zap.Error(err))
	}
	return err == nil
}

func (n *Node) Info(ctx context.Context) (*node.Info, error) {
	res, err := n.ln().GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		return nil, rpcErr("GetInfo", err)
	}
	n.trace("GetInfo", res)
	id, err := node.ParseID(res.IdentityPubkey)
	if err != nil {
		return nil, err
	}
	return &node.Info{ID: id, BlockHeight: res.BlockHeight}, nil
}

func (n *Node) Connect(ctx context.Context, host string, port int, id node.ID) error {
	ctx, cancel := context.WithTimeout(ctx, node.ConnectTimeout)
	defer cancel()
	_, err := n.ln().ConnectPeer(ctx, &lnrpc.ConnectPeerRequest{
		Addr: &lnrpc.LightningAddress{
			Pubkey: id.String(),
			Host:   fmt.Sprintf("%s:%d", host, port),
		},
		Perm: true,
	})
	if err != nil && strings.Contains(err.Error(), alreadyConnected) {
		return nil
	}
	return rpcErr("ConnectPeer", err)
}

func (n *Node) Peers(ctx context.Context) ([]node.ID, error) {
	res, err := n.ln().ListPeers(ctx, &lnrpc.ListPeersRequest{})
	if err != nil {
		return nil, rpcErr("ListPeers", err)
	}
	ids := make([]node.ID, 0, len(res.Peers))
	for _, p := range res.Peers {
		id, err := node.ParseID(p.PubKey)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (n *Node) AddFunds(ctx context.Context, funder node.Funder, amt btcutil.Amount) error {
	res, err := n.ln().NewAddress(ctx, &lnrpc.NewAddressRequest{
		Type: lnrpc.AddressType_WITNESS_PUBKEY_HASH,
	})
	if err != nil {
		return rpcErr("NewAddress", err)
	}
	return node.FundAndWait(ctx, funder, res.Address, amt, n.confirmedBalance, n.attempts)
}

func (n *Node) confirmedBalance(ctx context.Context) (btcutil.Amount, error) {
	res, err := n.ln().WalletBalance(ctx, &lnrpc.WalletBalanceRequest{})
	if err != nil {
		return 0, rpcErr("WalletBalance", err)
	}
	return btcutil.Amount(res.ConfirmedBalance), nil
}

// OpenChannel connects to remote and publishes the funding transaction.
// lnd lists the csv delay only once the funding confirms, so CSVDelay stays
// zero for a channel that is still pending. ToSelfDelay reads it later.
func (n *Node) OpenChannel(ctx context.Context, remote node.ID, host string, port int, amt btcutil.Amount) (*node.OpenResult, error) {
	if err := n.Connect(ctx, host, port, remote); err != nil {
		return nil, fmt.Errorf("Connect() %w", err)
	}
	cp, err := n.ln().OpenChannelSync(ctx, &lnrpc.OpenChannelRequest{
		NodePubkey:         remote.Bytes(),
		LocalFundingAmount: int64(amt),
		PushSat:            0,
	})
	if err != nil {
		return nil, rpcErr("OpenChannelSync", err)
	}
	n.trace("OpenChannelSync", cp)

	txid, err := fundingTxID(cp)
	if err != nil {
		return nil, err
	}
	n.logger.Info("opened channel", zap.Stringer("remote", remote), zap.Stringer("txid", txid))
	res := &node.OpenResult{FundingTxID: *txid}
	if ch, err := n.channelWith(ctx, remote); err == nil {
		res.CSVDelay = toSelfDelay(ch)
	}
	return res, nil
}

// ToSelfDelay returns the csv delay remote imposes on our to_local output of
// the open channel with remote.
func (n *Node) ToSelfDelay(ctx context.Context, remote node.ID) (uint32, error) {
	ch, err := n.channelWith(ctx, remote)
	if err != nil {
		return 0, err
	}
	return toSelfDelay(ch), nil
}

func toSelfDelay(ch *lnrpc.Channel) uint32 {
	if c := ch.GetLocalConstraints(); c != nil && c.CsvDelay > 0 {
		return c.CsvDelay
	}
	return ch.CsvDelay //nolint:staticcheck
}

func fundingTxID(cp *lnrpc.ChannelPoint) (*chainhash.Hash, error) {
	if b := cp.GetFundingTxidBytes(); len(b) > 0 {
		return chainhash.NewHash(b)
	}
	txid, err := chainhash.NewHashFromStr(cp.GetFundingTxidStr())
	if err != nil {
		return nil, node.Protocol("channel point", "%v", err)
	}
	return txid, nil
}

// channelWith returns the channel with remote from ListChannels.
func (n *Node) channelWith(ctx context.Context, remote node.ID) (*lnrpc.Channel, error) {
	res, err := n.ln().ListChannels(ctx, &lnrpc.ListChannelsRequest{})
	if err != nil {
		return nil, rpcErr("ListChannels", err)
	}
	for _, ch := range res.Channels {
		if ch.RemotePubkey == remote.String() {
			return ch, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", remote, node.ErrChannelNotFound)
}

func (n *Node) CheckChannel(ctx context.Context, remote node.ID) bool {
	ch, err := n.channelWith(ctx, remote)
	if err != nil {
		n.logger.Debug("channel lookup failed", zap.Stringer("remote", remote), zap.Error(err))
		return false
	}
	return ch.Active
}

func (n *Node) Channels(ctx context.Context) ([]node.ChannelView, error) {
	self, err := n.ID(ctx)
	if err != nil {
		return nil, err
	}
	open, err := n.ln().ListChannels(ctx, &lnrpc.ListChannelsRequest{})
	if err != nil {
		return nil, rpcErr("ListChannels", err)
	}
	pending, err := n.ln().PendingChannels(ctx, &lnrpc.PendingChannelsRequest{})
	if err != nil {
		return nil, rpcErr("PendingChannels", err)
	}

	var views []node.ChannelView
	for _, ch := range open.Channels {
		remote, err := node.ParseID(ch.RemotePubkey)
		if err != nil {
			return nil, err
		}
		views = append(views, node.ChannelView{Local: self, Remote: remote, State: node.ChannelStateOpen, Active: ch.Active})
	}
	for _, p := range pending.PendingOpenChannels {
		remote, err := node.ParseID(p.GetChannel().GetRemoteNodePub())
		if err != nil {
			return nil, err
		}
		views = append(views, node.ChannelView{Local: self, Remote: remote, State: node.ChannelStateOther})
	}
	return views, nil
}

func (n *Node) GetChannels(ctx context.Context) ([]node.Edge, error) {
	graph, err := n.ln().DescribeGraph(ctx, &lnrpc.ChannelGraphRequest{})
	if err != nil {
		return nil, rpcErr("DescribeGraph", err)
	}
	edges := make([]node.Edge, 0, len(graph.Edges))
	for _, e := range graph.Edges {
		from, err := node.ParseID(e.Node1Pub)
		if err != nil {
			return nil, err
		}
		to, err := node.ParseID(e.Node2Pub)
		if err != nil {
			return nil, err
		}
		edges = append(edges, node.Edge{From: from, To: to})
	}
	return node.Symmetric(edges), nil
}

func (n *Node) GetNodes(ctx context.Context) ([]node.ID, error) {
	self, err := n.ID(ctx)
	if err != nil {
		return nil, err
	}
	graph, err := n.ln().DescribeGraph(ctx, &lnrpc.ChannelGraphRequest{})
	if err != nil {
		return nil, rpcErr("DescribeGraph", err)
	}
	ids := make([]node.ID, 0, len(graph.Nodes))
	for _, gn := range graph.Nodes {
		id, err := node.ParseID(gn.PubKey)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return node.WithoutSelf(ids, self), nil
}

func (n *Node) Invoice(ctx context.Context, amountMsat lnwire.MilliSatoshi) (*node.InvoiceRef, error) {
	res, err := n.ln().AddInvoice(ctx, &lnrpc.Invoice{ValueMsat: int64(amountMsat)})
	if err != nil {
		return nil, rpcErr("AddInvoice", err)
	}
	n.trace("AddInvoice", res)
	return invoice.Ref(res.PaymentRequest, res.RHash)
}

// AddHTLC starts the payment and returns as soon as lnd reports an htlc in
// flight. The payment is left to resolve on its own.
func (n *Node) AddHTLC(ctx context.Context, inv *node.InvoiceRef) (*node.HTLCRef, error) {
	ctx, cancel := context.WithTimeout(ctx, node.AddHTLCTimeout)
	defer cancel()
	stream, err := n.router().SendPaymentV2(ctx, &routerrpc.SendPaymentRequest{
		PaymentRequest: inv.Bolt11,
		TimeoutSeconds: paymentTimeoutSeconds,
		FeeLimitSat:    int64(inv.AmountMsat.ToSatoshis()) + 1000,
	})
	if err != nil {
		return nil, rpcErr("SendPaymentV2", err)
	}
	for {
		payment, err := stream.Recv()
		if err != nil {
			return nil, rpcErr("SendPaymentV2", err)
		}
		n.trace("SendPaymentV2", payment)
		if payment.Status == lnrpc.Payment_FAILED {
			return nil, &node.PaymentError{Message: payment.FailureReason.String()}
		}
		if len(payment.Htlcs) == 0 {
			continue
		}
		dest, err := destination(payment.Htlcs[0])
		if err != nil {
			return nil, err
		}
		return &node.HTLCRef{Destination: dest, PaymentHash: inv.PaymentHash}, nil
	}
}

// destination is the last hop of the route an htlc took.
func destination(htlc *lnrpc.HTLCAttempt) (node.ID, error) {
	hops := htlc.GetRoute().GetHops()
	if len(hops) == 0 {
		return "", node.Protocol("SendPaymentV2", "htlc attempt without route")
	}
	return node.ParseID(hops[len(hops)-1].PubKey)
}

func (n *Node) Send(ctx context.Context, inv *node.InvoiceRef) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, node.SendTimeout)
	defer cancel()
	res, err := n.ln().SendPaymentSync(ctx, &lnrpc.SendRequest{PaymentRequest: inv.Bolt11})
	if err != nil {
		return "", rpcErr("SendPaymentSync", err)
	}
	if res.PaymentError != "" {
		return "", &node.PaymentError{Message: res.PaymentError}
	}
	return hex.EncodeToString(res.PaymentPreimage), nil
}

func (n *Node) CheckRoute(ctx context.Context, dest node.ID, amountMsat lnwire.MilliSatoshi) bool {
	res, err := n.ln().QueryRoutes(ctx, &lnrpc.QueryRoutesRequest{
		PubKey:  dest.String(),
		AmtMsat: int64(amountMsat),
	})
	if err != nil {
		if !strings.Contains(err.Error(), noPathError) {
			n.logger.Debug("QueryRoutes failed", zap.Error(err))
		}
		return false
	}
	return len(res.Routes) > 0
}

func (n *Node) PendingHTLCs(ctx context.Context, remote node.ID) ([]node.PendingHTLC, error) {
	ch, err := n.channelWith(ctx, remote)
	if err != nil {
		return nil, err
	}
	htlcs := make([]node.PendingHTLC, 0, len(ch.PendingHtlcs))
	for _, h := range ch.PendingHtlcs {
		htlcs = append(htlcs, node.PendingHTLC{
			Incoming:         h.Incoming,
			AmountMsat:       lnwire.NewMSatFromSatoshis(btcutil.Amount(h.Amount)),
			ExpirationHeight: h.ExpirationHeight,
		})
	}
	return htlcs, nil
}

func (n *Node) BlockSync(ctx context.Context, blockHash chainhash.Hash) error {
	timeout := testframework.TIMEOUT
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	return n.proc.WaitForLog(fmt.Sprintf("NTFN: New block: height=([0-9]+), sha=%s", blockHash), timeout)
}

// ForceClose closes the channel with remote unilaterally. The first step
// returns the txid of the commitment lnd published and starts following
// the close on chain.
func (n *Node) ForceClose(ctx context.Context, remote node.ID) (*node.ForceCloseSequence, error) {
	ch, err := n.channelWith(ctx, remote)
	if err != nil {
		return nil, err
	}
	funding, err := wire.NewOutPointFromString(ch.ChannelPoint)
	if err != nil {
		return nil, node.Protocol("ListChannels", "channel point %q: %v", ch.ChannelPoint, err)
	}

	start := func(ctx context.Context) (chainhash.Hash, error) {
		stream, err := n.ln().CloseChannel(ctx, &lnrpc.CloseChannelRequest{
			ChannelPoint: &lnrpc.ChannelPoint{
				FundingTxid: &lnrpc.ChannelPoint_FundingTxidStr{FundingTxidStr: funding.Hash.String()},
				OutputIndex: funding.Index,
			},
			Force: true,
		})
		if err != nil {
			return chainhash.Hash{}, rpcErr("CloseChannel", err)
		}
		for {
			update, err := stream.Recv()
			if err != nil {
				return chainhash.Hash{}, rpcErr("CloseChannel", err)
			}
			n.trace("CloseChannel", update)
			pending := update.GetClosePending()
			if pending == nil {
				continue
			}
			txid, err := chainhash.NewHash(pending.Txid)
			if err != nil {
				return chainhash.Hash{}, node.Protocol("CloseChannel", "closing txid: %v", err)
			}
			n.watchClose(*funding, *txid)
			return *txid, nil
		}
	}

	wait := func(ctx context.Context, txid chainhash.Hash) error {
		ticker := time.NewTicker(node.FundsPollInterval)
		defer ticker.Stop()
		for {
			tracked, err := n.closeTracked(ctx, ch.ChannelPoint, txid)
			if err == nil && tracked {
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

// closeTracked reports whether lnd lists the channel as closing with txid
// or no longer lists it at all.
func (n *Node) closeTracked(ctx context.Context, channelPoint string, txid chainhash.Hash) (bool, error) {
	pending, err := n.ln().PendingChannels(ctx, &lnrpc.PendingChannelsRequest{})
	if err != nil {
		return false, rpcErr("PendingChannels", err)
	}
	for _, c := range pending.WaitingCloseChannels {
		if c.GetChannel().GetChannelPoint() == channelPoint {
			return c.ClosingTxid == txid.String(), nil
		}
	}
	for _, c := range pending.PendingForceClosingChannels {
		if c.GetChannel().GetChannelPoint() == channelPoint {
			return c.ClosingTxid == txid.String(), nil
		}
	}

	open, err := n.ln().ListChannels(ctx, &lnrpc.ListChannelsRequest{})
	if err != nil {
		return false, rpcErr("ListChannels", err)
	}
	for _, c := range open.Channels {
		if c.ChannelPoint == channelPoint {
			return false, nil
		}
	}
	return true, nil
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

// PublishedEncumberedTx returns the next transaction of a force close this
// node published.
func (n *Node) PublishedEncumberedTx(ctx context.Context) (*node.BroadcastTxEvent, error) {
	if n.watcher == nil {
		return nil, node.Unavailable("published encumbered tx", errors.New("no chain view configured"))
	}
	return n.watcher.Next(ctx)
}

// TxHeights looks transactions up in the lnd wallet or, for chain scope,
// in bitcoind.
func (n *Node) TxHeights(ctx context.Context, txids []chainhash.Hash, scope node.TxScope) (map[chainhash.Hash]int32, error) {
	ctx, cancel := context.WithTimeout(ctx, node.TxHeightsTimeout)
	defer cancel()

	heights := make(map[chainhash.Hash]int32, len(txids))
	if scope == node.ScopeWallet {
		res, err := n.ln().GetTransactions(ctx, &lnrpc.GetTransactionsRequest{})
		if err != nil {
			return nil, rpcErr("GetTransactions", err)
		}
		wanted := make(map[chainhash.Hash]bool, len(txids))
		for _, txid := range txids {
			wanted[txid] = true
		}
		for _, tx := range res.Transactions {
			txid, err := chainhash.NewHashFromStr(tx.TxHash)
			if err != nil {
				return nil, node.Protocol("GetTransactions", "%v", err)
			}
			if !wanted[*txid] {
				continue
			}
			height := tx.BlockHeight
			if tx.NumConfirmations == 0 {
				height = 0
			}
			heights[*txid] = height
		}
		return heights, nil
	}

	if n.chain == nil {
		return nil, node.Unavailable("tx heights", errors.New("no chain view configured"))
	}
	for i := range txids {
		height, err := n.chain.GetTxHeight(ctx, &txids[i])
		if errors.Is(err, chain.ErrTxNotFound) {
			continue
		}
		if err != nil {
			return nil, node.FromContext("tx heights", err)
		}
		heights[txids[i]] = height
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
	clients, err := n.connector(ctx, n.proc, false)
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.clients = clients
	n.mu.Unlock()

	id, err := n.fetchID(ctx)
	if err != nil {
		return err
	}
	return n.identity.Verify(id)
}

// shutdown terminates the daemon and drops the connection. The chain
// watcher keeps running.
func (n *Node) shutdown() error {
	n.mu.Lock()
	clients := n.clients
	n.mu.Unlock()
	if clients.Closer != nil {
		if err := clients.Closer.Close(); err != nil {
			n.logger.Debug("close connection", zap.Error(err))
		}
	}
	return n.proc.Stop()
}

func (n *Node) Stop() error {
	n.mu.Lock()
	cancel := n.watchCancel
	n.mu.Unlock()
	if cancel != nil {
		cancel()
		n.watcher.Stop()
		n.watcher.Wait()
	}

	ctx, done := context.WithTimeout(context.Background(), stopTimeout)
	defer done()
	if _, err := n.ln().StopDaemon(ctx, &lnrpc.StopRequest{}); err != nil {
		n.logger.Debug("StopDaemon", zap.Error(err))
	}
	return n.shutdown()
}

// rpcErr maps gRPC failures onto the node error taxonomy.
func rpcErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Unavailable:
		return node.Unavailable(op, err)
	case codes.DeadlineExceeded:
		return node.Timeout(op)
	}
	return node.FromContext(op, fmt.Errorf("%s: %w", op, err))
}

var (
	_ node.Handle           = (*Node)(nil)
	_ node.ForceCloser      = (*Node)(nil)
	_ node.BroadcastWatcher = (*Node)(nil)
	_ node.TxHeighter       = (*Node)(nil)
)
