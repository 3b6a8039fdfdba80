// Package ptarmigan drives a ptarmd node over its TCP JSON-RPC port.
package ptarmigan

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsproject/lightning-integration/invoice"
	"github.com/elementsproject/lightning-integration/jrpc2"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/lightningnetwork/lnd/lnwire"
	"go.uber.org/zap"
)

const (
	statusNormal = "normal operation"

	paymentSucceeded = "succeeded"
	paymentFailed    = "failed"

	fundingTimeout = 30 * time.Second
	pollInterval   = 200 * time.Millisecond
	blockSyncDelay = 1 * time.Second
)

// RPC is the json-rpc connection to ptarmd, *jrpc2.Client in production.
type RPC interface {
	Request(ctx context.Context, m jrpc2.Method, resp interface{}) error
	Close() error
}

type Process interface {
	Start() error
	Stop() error
}

type Options struct {
	Address      node.Address
	Logger       *zap.Logger
	FundAttempts int
	SettleDelay  time.Duration
}

type Node struct {
	proc     Process
	rpc      RPC
	addr     node.Address
	logger   *zap.Logger
	attempts int
	settle   time.Duration

	identity node.Identity
}

func New(proc Process, rpc RPC, opts Options) *Node {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = node.RestartSettleDelay
	}
	return &Node{
		proc:     proc,
		rpc:      rpc,
		addr:     opts.Address,
		logger:   opts.Logger,
		attempts: opts.FundAttempts,
		settle:   opts.SettleDelay,
	}
}

func (n *Node) request(ctx context.Context, m jrpc2.Method, resp interface{}) error {
	err := n.rpc.Request(ctx, m, resp)
	if err == nil {
		return nil
	}
	var rpcErr *jrpc2.RpcError
	switch {
	case errors.As(err, &rpcErr):
		return fmt.Errorf("%s: %w", m.Name(), err)
	case ctx.Err() != nil:
		return node.FromContext(m.Name(), ctx.Err())
	default:
		return node.Unavailable(m.Name(), err)
	}
}

func (n *Node) getInfo(ctx context.Context) (*GetInfoResponse, error) {
	var res GetInfoResponse
	if err := n.request(ctx, &GetInfoRequest{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (n *Node) peer(ctx context.Context, remote node.ID) (*Peer, error) {
	info, err := n.getInfo(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range info.Peers {
		if p.NodeId == remote.String() {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", remote, node.ErrChannelNotFound)
}

func (n *Node) Kind() node.Kind {
	return node.KindPtarmigan
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
	_, err := n.getInfo(ctx)
	return err == nil
}

func (n *Node) Info(ctx context.Context) (*node.Info, error) {
	res, err := n.getInfo(ctx)
	if err != nil {
		return nil, err
	}
	id, err := node.ParseID(res.NodeId)
	if err != nil {
		return nil, err
	}
	return &node.Info{ID: id, BlockHeight: res.BlockCount}, nil
}

func (n *Node) Connect(ctx context.Context, host string, port int, id node.ID) error {
	ctx, cancel := context.WithTimeout(ctx, node.ConnectTimeout)
	defer cancel()
	return n.request(ctx, &ConnectRequest{NodeId: id.String(), Host: host, Port: port}, nil)
}

func (n *Node) Peers(ctx context.Context) ([]node.ID, error) {
	info, err := n.getInfo(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]node.ID, 0, len(info.Peers))
	for _, p := range info.Peers {
		id, err := node.ParseID(p.NodeId)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (n *Node) AddFunds(ctx context.Context, funder node.Funder, amt btcutil.Amount) error {
	var addr string
	if err := n.request(ctx, &GetNewAddressRequest{}, &addr); err != nil {
		return err
	}
	return node.FundAndWait(ctx, funder, addr, amt, n.confirmedBalance, n.attempts)
}

func (n *Node) confirmedBalance(ctx context.Context) (btcutil.Amount, error) {
	var sat int64
	if err := n.request(ctx, &GetBalanceRequest{}, &sat); err != nil {
		return 0, err
	}
	return btcutil.Amount(sat), nil
}

// OpenChannel starts the funding flow. ptarmd answers before the funding
// transaction exists, its txid is read from the peer once published.
func (n *Node) OpenChannel(ctx context.Context, remote node.ID, host string, port int, amt btcutil.Amount) (*node.OpenResult, error) {
	if err := n.Connect(ctx, host, port, remote); err != nil {
		return nil, err
	}
	var res OpenChannelResponse
	if err := n.request(ctx, &OpenChannelRequest{NodeId: remote.String(), FundingSat: int64(amt)}, &res); err != nil {
		return nil, err
	}
	n.logger.Debug("openchannel", zap.String("status", res.Status))

	ctx, cancel := context.WithTimeout(ctx, fundingTimeout)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		p, err := n.peer(ctx, remote)
		if err == nil && p.FundingTx != "" {
			txid, err := chainhash.NewHashFromStr(p.FundingTx)
			if err != nil {
				return nil, node.Protocol("getinfo", "funding tx: %v", err)
			}
			open := &node.OpenResult{FundingTxID: *txid}
			if p.Remote != nil {
				open.CSVDelay = p.Remote.ToSelfDelay
			}
			return open, nil
		}
		select {
		case <-ctx.Done():
			return nil, node.FromContext("open channel", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (n *Node) CheckChannel(ctx context.Context, remote node.ID) bool {
	p, err := n.peer(ctx, remote)
	if err != nil {
		return false
	}
	return p.Status == statusNormal
}

func (n *Node) Channels(ctx context.Context) ([]node.ChannelView, error) {
	info, err := n.getInfo(ctx)
	if err != nil {
		return nil, err
	}
	self, err := n.identity.Get(ctx, func(context.Context) (node.ID, error) {
		return node.ParseID(info.NodeId)
	})
	if err != nil {
		return nil, err
	}
	var views []node.ChannelView
	for _, p := range info.Peers {
		if p.ShortChannelId == "" && p.FundingTx == "" {
			continue
		}
		remote, err := node.ParseID(p.NodeId)
		if err != nil {
			return nil, err
		}
		v := node.ChannelView{Local: self, Remote: remote, State: node.ChannelStateOther}
		if p.Status == statusNormal {
			v.State = node.ChannelStateOpen
			v.Active = true
		}
		views = append(views, v)
	}
	return views, nil
}

func (n *Node) GetChannels(ctx context.Context) ([]node.Edge, error) {
	var chans []*ChannelAnnouncement
	if err := n.request(ctx, &ListChannelsRequest{}, &chans); err != nil {
		return nil, err
	}
	edges := make([]node.Edge, 0, len(chans))
	for _, c := range chans {
		a, err := node.ParseID(c.Node1)
		if err != nil {
			return nil, err
		}
		b, err := node.ParseID(c.Node2)
		if err != nil {
			return nil, err
		}
		edges = append(edges, node.Edge{From: a, To: b})
	}
	return node.Symmetric(edges), nil
}

func (n *Node) GetNodes(ctx context.Context) ([]node.ID, error) {
	self, err := n.ID(ctx)
	if err != nil {
		return nil, err
	}
	var nodes []*NodeAnnouncement
	if err := n.request(ctx, &ListNodesRequest{}, &nodes); err != nil {
		return nil, err
	}
	ids := make([]node.ID, 0, len(nodes))
	for _, na := range nodes {
		id, err := node.ParseID(na.NodeId)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return node.WithoutSelf(ids, self), nil
}

func (n *Node) Invoice(ctx context.Context, amountMsat lnwire.MilliSatoshi) (*node.InvoiceRef, error) {
	var res InvoiceResponse
	if err := n.request(ctx, &InvoiceRequest{AmountMsat: uint64(amountMsat)}, &res); err != nil {
		return nil, err
	}
	hash, err := hex.DecodeString(res.Hash)
	if err != nil {
		return nil, node.Protocol("invoice", "payment hash: %v", err)
	}
	return invoice.Ref(res.Bolt11, hash)
}

func (n *Node) routePay(ctx context.Context, inv *node.InvoiceRef) (int64, error) {
	var res RoutePayResponse
	err := n.request(ctx, &RoutePayRequest{Bolt11: inv.Bolt11}, &res)
	var rpcErr *jrpc2.RpcError
	if errors.As(err, &rpcErr) {
		return 0, &node.PaymentError{Message: rpcErr.Message}
	}
	return res.PaymentId, err
}

// AddHTLC returns once ptarmd accepted the payment. routepay does not wait
// for the payment to resolve.
func (n *Node) AddHTLC(ctx context.Context, inv *node.InvoiceRef) (*node.HTLCRef, error) {
	decoded, err := invoice.Decode(inv.Bolt11)
	if err != nil {
		return nil, node.Protocol("AddHTLC", "%v", err)
	}
	ctx, cancel := context.WithTimeout(ctx, node.AddHTLCTimeout)
	defer cancel()
	if _, err := n.routePay(ctx, inv); err != nil {
		return nil, err
	}
	return &node.HTLCRef{Destination: decoded.Destination, PaymentHash: inv.PaymentHash}, nil
}

func (n *Node) Send(ctx context.Context, inv *node.InvoiceRef) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, node.SendTimeout)
	defer cancel()
	id, err := n.routePay(ctx, inv)
	if err != nil {
		return "", err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		var payments []*Payment
		if err := n.request(ctx, &ListPaymentRequest{PaymentId: id}, &payments); err != nil {
			return "", err
		}
		for _, p := range payments {
			if p.PaymentId != id {
				continue
			}
			switch p.State {
			case paymentSucceeded:
				return p.Preimage, nil
			case paymentFailed:
				return "", &node.PaymentError{Message: "payment failed"}
			}
		}
		select {
		case <-ctx.Done():
			return "", node.FromContext("send", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (n *Node) CheckRoute(ctx context.Context, dest node.ID, amountMsat lnwire.MilliSatoshi) bool {
	var res GetRouteResponse
	if err := n.request(ctx, &GetRouteRequest{NodeId: dest.String(), AmountMsat: uint64(amountMsat)}, &res); err != nil {
		n.logger.Debug("getroute failed", zap.Error(err))
		return false
	}
	return len(res.Hops) > 0
}

func (n *Node) PendingHTLCs(ctx context.Context, remote node.ID) ([]node.PendingHTLC, error) {
	p, err := n.peer(ctx, remote)
	if err != nil {
		return nil, err
	}
	htlcs := make([]node.PendingHTLC, 0, len(p.Htlcs))
	for _, h := range p.Htlcs {
		htlcs = append(htlcs, node.PendingHTLC{
			Incoming:         h.Incoming(),
			AmountMsat:       lnwire.MilliSatoshi(h.AmountMsat),
			ExpirationHeight: h.CltvExpiry,
		})
	}
	return htlcs, nil
}

func (n *Node) BlockSync(ctx context.Context, _ chainhash.Hash) error {
	select {
	case <-time.After(blockSyncDelay):
		return nil
	case <-ctx.Done():
		return node.FromContext("block sync", ctx.Err())
	}
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
	id, err := n.fetchID(ctx)
	if err != nil {
		return err
	}
	return n.identity.Verify(id)
}

// shutdown asks ptarmd to stop before stopping the process. The client
// redials on the next request.
func (n *Node) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := n.request(ctx, &StopRequest{}, nil); err != nil {
		n.logger.Debug("stop", zap.Error(err))
	}
	_ = n.rpc.Close()
	return n.proc.Stop()
}

func (n *Node) Stop() error {
	return n.shutdown()
}

var _ node.Handle = (*Node)(nil)
