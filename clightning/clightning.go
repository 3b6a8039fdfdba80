// Package clightning drives a core lightning daemon over its unix socket.
package clightning

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsproject/glightning/glightning"
	"github.com/elementsproject/glightning/jrpc2"
	"github.com/elementsproject/lightning-integration/invoice"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/elementsproject/lightning-integration/testframework"
	"github.com/lightningnetwork/lnd/lnwire"
	"go.uber.org/zap"
)

const (
	stateNormal = "CHANNELD_NORMAL"
	// riskFactor used for route lookups, as lightning-cli does by default.
	riskFactor = 10
	// unilateralTimeout is how many seconds close waits for the peer
	// before broadcasting our commitment.
	unilateralTimeout = 1
)

// closedStates are the channel states in which our commitment is out.
var closedStates = map[string]bool{
	"AWAITING_UNILATERAL": true,
	"FUNDING_SPEND_SEEN":  true,
	"ONCHAIN":             true,
	"CLOSINGD_COMPLETE":   true,
}

// RPC is the subset of glightning.Lightning the adapter uses.
type RPC interface {
	//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_clightning.go -package=mocks github.com/elementsproject/lightning-integration/clightning RPC,Process
	GetInfo() (*glightning.NodeInfo, error)
	ListPeers() ([]*glightning.Peer, error)
	Connect(peerId, host string, port uint) (string, error)
	NewAddr() (string, error)
	FundChannel(id string, amount *glightning.Sat) (*glightning.FundChannelResult, error)
	ListChannels() ([]*glightning.Channel, error)
	ListNodes() ([]*glightning.Node, error)
	Invoice(msat uint64, label, description string) (*glightning.Invoice, error)
	PayBolt(bolt11 string) (*glightning.PaymentSuccess, error)
	Close(id string, timeout uint, destination string) (*glightning.CloseResult, error)
	Stop() (string, error)
	Request(m jrpc2.Method, resp interface{}) error
	Shutdown()
}

// Process is the lightningd daemon behind the socket.
type Process interface {
	Start() error
	Stop() error
	WaitForLog(regex string, timeout time.Duration) error
	SocketPath() string
}

// Dialer connects an RPC client to the socket at path.
type Dialer func(socketPath string) (RPC, error)

// DialSocket is the Dialer used against real daemons.
func DialSocket(socketPath string) (RPC, error) {
	rpc := glightning.NewLightning()
	rpc.SetTimeout(uint(testframework.TIMEOUT.Seconds()))
	if err := rpc.StartUp(filepath.Base(socketPath), filepath.Dir(socketPath)); err != nil {
		return nil, err
	}
	return rpc, nil
}

type Options struct {
	Address node.Address
	Logger  *zap.Logger
	Dial    Dialer
	// FundAttempts caps the balance polls of AddFunds, 0 polls until the
	// context is done.
	FundAttempts int
	// SettleDelay is slept between stop and start on Restart.
	SettleDelay time.Duration
}

// Node is the node.Handle of a lightningd.
type Node struct {
	proc    Process
	rpc     RPC
	dial    Dialer
	addr    node.Address
	logger  *zap.Logger
	attempt int
	settle  time.Duration

	identity node.Identity
	labels   testframework.IntIdGetter
}

// New wraps a started process. The RPC client is connected right away.
func New(proc Process, opts Options) (*Node, error) {
	if opts.Dial == nil {
		opts.Dial = DialSocket
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	rpc, err := opts.Dial(proc.SocketPath())
	if err != nil {
		return nil, node.Unavailable("dial lightning-rpc", err)
	}
	return &Node{
		proc:    proc,
		rpc:     rpc,
		dial:    opts.Dial,
		addr:    opts.Address,
		logger:  opts.Logger,
		attempt: opts.FundAttempts,
		settle:  opts.SettleDelay,
	}, nil
}

func (n *Node) Kind() node.Kind {
	return node.KindCLightning
}

func (n *Node) Address() node.Address {
	return n.addr
}

func (n *Node) ID(ctx context.Context) (node.ID, error) {
	return n.identity.Get(ctx, n.fetchID)
}

func (n *Node) fetchID(ctx context.Context) (node.ID, error) {
	info, err := n.getInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

func (n *Node) Ping(ctx context.Context) bool {
	_, err := n.getInfo(ctx)
	if err != nil {
		n.logger.Debug("ping failed", zap.Error(err))
	}
	return err == nil
}

func (n *Node) Info(ctx context.Context) (*node.Info, error) {
	return n.getInfo(ctx)
}

func (n *Node) getInfo(ctx context.Context) (*node.Info, error) {
	var info *glightning.NodeInfo
	err := call(ctx, "getinfo", func() (err error) {
		info, err = n.rpc.GetInfo()
		return err
	})
	if err != nil {
		return nil, err
	}
	id, err := node.ParseID(info.Id)
	if err != nil {
		return nil, err
	}
	return &node.Info{ID: id, BlockHeight: uint32(info.Blockheight)}, nil
}

func (n *Node) Connect(ctx context.Context, host string, port int, id node.ID) error {
	ctx, cancel := context.WithTimeout(ctx, node.ConnectTimeout)
	defer cancel()
	return call(ctx, "connect", func() error {
		_, err := n.rpc.Connect(id.String(), host, uint(port))
		return err
	})
}

func (n *Node) Peers(ctx context.Context) ([]node.ID, error) {
	var peers []*glightning.Peer
	err := call(ctx, "listpeers", func() (err error) {
		peers, err = n.rpc.ListPeers()
		return err
	})
	if err != nil {
		return nil, err
	}
	ids := make([]node.ID, 0, len(peers))
	for _, p := range peers {
		id, err := node.ParseID(p.Id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (n *Node) AddFunds(ctx context.Context, funder node.Funder, amt btcutil.Amount) error {
	var addr string
	err := call(ctx, "newaddr", func() (err error) {
		addr, err = n.rpc.NewAddr()
		return err
	})
	if err != nil {
		return err
	}
	return node.FundAndWait(ctx, funder, addr, amt, n.confirmedBalance, n.attempt)
}

func (n *Node) confirmedBalance(ctx context.Context) (btcutil.Amount, error) {
	var funds ListFundsResponse
	err := call(ctx, "listfunds", func() error {
		return n.rpc.Request(&ListFundsRequest{}, &funds)
	})
	if err != nil {
		return 0, err
	}
	var total lnwire.MilliSatoshi
	for _, o := range funds.Outputs {
		if o.Status == "confirmed" {
			total += lnwire.MilliSatoshi(o.AmountMsat)
		}
	}
	return total.ToSatoshis(), nil
}

func (n *Node) OpenChannel(ctx context.Context, remote node.ID, host string, port int, amt btcutil.Amount) (*node.OpenResult, error) {
	if err := n.Connect(ctx, host, port, remote); err != nil {
		return nil, fmt.Errorf("Connect() %w", err)
	}

	var res *glightning.FundChannelResult
	err := call(ctx, "fundchannel", func() (err error) {
		res, err = n.rpc.FundChannel(remote.String(), &glightning.Sat{Value: uint64(amt)})
		return err
	})
	if err != nil {
		return nil, err
	}
	txid, err := chainhash.NewHashFromStr(res.FundingTxId)
	if err != nil {
		return nil, node.Protocol("fundchannel", "funding txid %q: %v", res.FundingTxId, err)
	}

	ch, err := n.peerChannel(ctx, remote)
	if err != nil {
		return nil, err
	}
	n.logger.Info("opened channel", zap.Stringer("remote", remote), zap.Stringer("txid", txid))
	return &node.OpenResult{FundingTxID: *txid, CSVDelay: ch.OurToSelfDelay}, nil
}

func (n *Node) listPeerChannels(ctx context.Context, remote node.ID) ([]*PeerChannel, error) {
	var res ListPeerChannelsResponse
	err := call(ctx, "listpeerchannels", func() error {
		return n.rpc.Request(&ListPeerChannelsRequest{PeerId: remote.String()}, &res)
	})
	if err != nil {
		return nil, err
	}
	return res.Channels, nil
}

// peerChannel returns the most recent channel with remote.
func (n *Node) peerChannel(ctx context.Context, remote node.ID) (*PeerChannel, error) {
	channels, err := n.listPeerChannels(ctx, remote)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("%s: %w", remote, node.ErrChannelNotFound)
	}
	return channels[len(channels)-1], nil
}

func (n *Node) CheckChannel(ctx context.Context, remote node.ID) bool {
	ch, err := n.peerChannel(ctx, remote)
	if err != nil {
		n.logger.Debug("channel lookup failed", zap.Stringer("remote", remote), zap.Error(err))
		return false
	}
	return ch.State == stateNormal && ch.PeerConnected
}

func (n *Node) Channels(ctx context.Context) ([]node.ChannelView, error) {
	self, err := n.ID(ctx)
	if err != nil {
		return nil, err
	}
	channels, err := n.listPeerChannels(ctx, "")
	if err != nil {
		return nil, err
	}
	views := make([]node.ChannelView, 0, len(channels))
	for _, ch := range channels {
		remote, err := node.ParseID(ch.PeerId)
		if err != nil {
			return nil, err
		}
		view := node.ChannelView{Local: self, Remote: remote, Active: ch.PeerConnected}
		if ch.State == stateNormal {
			view.State = node.ChannelStateOpen
		}
		views = append(views, view)
	}
	return views, nil
}

func (n *Node) GetChannels(ctx context.Context) ([]node.Edge, error) {
	var channels []*glightning.Channel
	err := call(ctx, "listchannels", func() (err error) {
		channels, err = n.rpc.ListChannels()
		return err
	})
	if err != nil {
		return nil, err
	}
	edges := make([]node.Edge, 0, len(channels))
	for _, c := range channels {
		from, err := node.ParseID(c.Source)
		if err != nil {
			return nil, err
		}
		to, err := node.ParseID(c.Destination)
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
	var nodes []*glightning.Node
	err = call(ctx, "listnodes", func() (err error) {
		nodes, err = n.rpc.ListNodes()
		return err
	})
	if err != nil {
		return nil, err
	}
	ids := make([]node.ID, 0, len(nodes))
	for _, gn := range nodes {
		id, err := node.ParseID(gn.Id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return node.WithoutSelf(ids, self), nil
}

func (n *Node) Invoice(ctx context.Context, amountMsat lnwire.MilliSatoshi) (*node.InvoiceRef, error) {
	label := fmt.Sprintf("lightning-integration-%d-%d", time.Now().UnixNano(), n.labels.NextId())
	var inv *glightning.Invoice
	err := call(ctx, "invoice", func() (err error) {
		inv, err = n.rpc.Invoice(uint64(amountMsat), label, label)
		return err
	})
	if err != nil {
		return nil, err
	}
	hash, err := hex.DecodeString(inv.PaymentHash)
	if err != nil {
		return nil, node.Protocol("invoice", "payment hash %q: %v", inv.PaymentHash, err)
	}
	return invoice.Ref(inv.Bolt11, hash)
}

// AddHTLC routes the payment with sendpay, which returns once the first
// hop accepted the htlc.
func (n *Node) AddHTLC(ctx context.Context, inv *node.InvoiceRef) (*node.HTLCRef, error) {
	ctx, cancel := context.WithTimeout(ctx, node.AddHTLCTimeout)
	defer cancel()

	var decoded DecodePayResponse
	err := call(ctx, "decodepay", func() error {
		return n.rpc.Request(&DecodePayRequest{Bolt11: inv.Bolt11}, &decoded)
	})
	if err != nil {
		return nil, err
	}
	dest, err := node.ParseID(decoded.Payee)
	if err != nil {
		return nil, err
	}

	var route GetRouteResponse
	err = call(ctx, "getroute", func() error {
		return n.rpc.Request(&GetRouteRequest{Id: dest.String(), AmountMsat: uint64(inv.AmountMsat), RiskFactor: riskFactor}, &route)
	})
	if err != nil {
		return nil, &node.PaymentError{Message: err.Error()}
	}

	var sent SendPayResponse
	err = call(ctx, "sendpay", func() error {
		return n.rpc.Request(&SendPayRequest{
			Route:         route.Route,
			PaymentHash:   hex.EncodeToString(inv.PaymentHash[:]),
			Bolt11:        inv.Bolt11,
			PaymentSecret: decoded.PaymentSecret,
			AmountMsat:    uint64(inv.AmountMsat),
		}, &sent)
	})
	if err != nil {
		if errors.Is(err, node.ErrTimeout) {
			return nil, err
		}
		return nil, &node.PaymentError{Message: err.Error()}
	}
	return &node.HTLCRef{Destination: dest, PaymentHash: inv.PaymentHash}, nil
}

func (n *Node) Send(ctx context.Context, inv *node.InvoiceRef) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, node.SendTimeout)
	defer cancel()

	var res *glightning.PaymentSuccess
	err := call(ctx, "pay", func() (err error) {
		res, err = n.rpc.PayBolt(inv.Bolt11)
		return err
	})
	if errors.Is(err, node.ErrTimeout) {
		return "", err
	}
	if err != nil {
		return "", &node.PaymentError{Message: err.Error()}
	}
	return res.PaymentPreimage, nil
}

func (n *Node) CheckRoute(ctx context.Context, dest node.ID, amountMsat lnwire.MilliSatoshi) bool {
	var route GetRouteResponse
	err := call(ctx, "getroute", func() error {
		return n.rpc.Request(&GetRouteRequest{Id: dest.String(), AmountMsat: uint64(amountMsat), RiskFactor: riskFactor}, &route)
	})
	if err != nil {
		n.logger.Debug("no route", zap.Stringer("dest", dest), zap.Error(err))
		return false
	}
	return len(route.Route) > 0
}

func (n *Node) PendingHTLCs(ctx context.Context, remote node.ID) ([]node.PendingHTLC, error) {
	ch, err := n.peerChannel(ctx, remote)
	if err != nil {
		return nil, err
	}
	htlcs := make([]node.PendingHTLC, 0, len(ch.Htlcs))
	for _, h := range ch.Htlcs {
		htlcs = append(htlcs, node.PendingHTLC{
			Incoming:         h.Incoming(),
			AmountMsat:       lnwire.MilliSatoshi(h.AmountMsat),
			ExpirationHeight: h.Expiry,
		})
	}
	return htlcs, nil
}

func (n *Node) BlockSync(ctx context.Context, blockHash chainhash.Hash) error {
	timeout := testframework.TIMEOUT
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	return n.proc.WaitForLog(fmt.Sprintf("Adding block [0-9]+: %s", blockHash), timeout)
}

// ForceClose returns a sequence whose first step runs close with a short
// unilateral timeout, so the peer does not get a chance to negotiate.
func (n *Node) ForceClose(ctx context.Context, remote node.ID) (*node.ForceCloseSequence, error) {
	if _, err := n.peerChannel(ctx, remote); err != nil {
		return nil, err
	}

	start := func(ctx context.Context) (chainhash.Hash, error) {
		var res *glightning.CloseResult
		err := call(ctx, "close", func() (err error) {
			res, err = n.rpc.Close(remote.String(), unilateralTimeout, "")
			return err
		})
		if err != nil {
			return chainhash.Hash{}, err
		}
		txid, err := chainhash.NewHashFromStr(res.TxId)
		if err != nil {
			return chainhash.Hash{}, node.Protocol("close", "txid %q: %v", res.TxId, err)
		}
		return *txid, nil
	}

	wait := func(ctx context.Context, _ chainhash.Hash) error {
		ticker := time.NewTicker(node.FundsPollInterval)
		defer ticker.Stop()
		for {
			ch, err := n.peerChannel(ctx, remote)
			if errors.Is(err, node.ErrChannelNotFound) || (err == nil && closedStates[ch.State]) {
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

func (n *Node) Restart(ctx context.Context) error {
	if err := n.Stop(); err != nil {
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
	rpc, err := n.dial(n.proc.SocketPath())
	if err != nil {
		return node.Unavailable("dial lightning-rpc", err)
	}
	n.rpc = rpc

	id, err := n.fetchID(ctx)
	if err != nil {
		return err
	}
	return n.identity.Verify(id)
}

// Stop asks lightningd to shut down and then reaps the process.
func (n *Node) Stop() error {
	if _, err := n.rpc.Stop(); err != nil {
		n.logger.Debug("stop rpc", zap.Error(err))
	}
	n.rpc.Shutdown()
	return n.proc.Stop()
}

// call runs a blocking glightning request and gives up once ctx is done.
// The request itself keeps running until the client timeout hits.
func call(ctx context.Context, op string, f func() error) error {
	errc := make(chan error, 1)
	go func() { errc <- f() }()
	select {
	case err := <-errc:
		if err != nil && isTransport(err) {
			return node.Unavailable(op, err)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
		return node.FromContext(op, ctx.Err())
	}
}

// isTransport reports whether err came from the socket rather than from
// lightningd.
func isTransport(err error) bool {
	var rpcErr *jrpc2.RpcError
	if errors.As(err, &rpcErr) {
		return false
	}
	msg := err.Error()
	for _, s := range []string{"broken pipe", "connection refused", "not currently up", "EOF"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

var (
	_ node.Handle      = (*Node)(nil)
	_ node.ForceCloser = (*Node)(nil)
)
