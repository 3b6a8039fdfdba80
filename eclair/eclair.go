// Package eclair drives an eclair node through its HTTP API.
package eclair

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cenkalti/backoff/v4"
	"github.com/elementsproject/lightning-integration/invoice"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/lightningnetwork/lnd/lnwire"
	"go.uber.org/zap"
)

const (
	stateNormal  = "NORMAL"
	stateClosing = "CLOSING"
	stateClosed  = "CLOSED"

	paymentSent   = "payment-sent"
	paymentFailed = "payment-failed"

	readyPollInterval = 500 * time.Millisecond
	blockSyncDelay    = 1 * time.Second
	closePollInterval = 500 * time.Millisecond
)

var fundingTxIDRe = regexp.MustCompile(`fundingTxId=([0-9a-f]{64})`)

// Process is the eclair daemon.
type Process interface {
	Start() error
	Stop() error
}

type Options struct {
	Address  node.Address
	Logger   *zap.Logger
	APIURL   string
	Password string
	// HTTP overrides the client timeouts and retries.
	HTTP         *Option
	FundAttempts int
	SettleDelay  time.Duration
}

type Node struct {
	proc     Process
	api      *api
	addr     node.Address
	logger   *zap.Logger
	attempts int
	settle   time.Duration

	identity node.Identity
}

// Start runs proc and waits for the api to answer.
func Start(ctx context.Context, proc Process, opts Options) (*Node, error) {
	n := New(proc, opts)
	if err := proc.Start(); err != nil {
		_ = proc.Stop()
		return nil, node.Unavailable("start eclair", err)
	}
	if err := n.waitReady(ctx); err != nil {
		_ = proc.Stop()
		return nil, err
	}
	return n, nil
}

func New(proc Process, opts Options) *Node {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = node.RestartSettleDelay
	}
	a := NewAPI(opts.APIURL, opts.Password).
		WithLogger(opts.Logger).
		WithInterceptors(logRequests(opts.Logger))
	if opts.HTTP != nil {
		a.WithOption(opts.HTTP)
	}
	return &Node{
		proc:     proc,
		api:      a,
		addr:     opts.Address,
		logger:   opts.Logger,
		attempts: opts.FundAttempts,
		settle:   opts.SettleDelay,
	}
}

func (n *Node) waitReady(ctx context.Context) error {
	b := backoff.WithContext(backoff.NewConstantBackOff(readyPollInterval), ctx)
	err := backoff.Retry(func() error {
		_, err := n.getInfo(ctx)
		return err
	}, b)
	if err != nil {
		return node.Unavailable("eclair api", node.FromContext("eclair api", err))
	}
	return nil
}

func (n *Node) getInfo(ctx context.Context) (*getInfoResponse, error) {
	var res getInfoResponse
	if err := n.api.post(ctx, "getinfo", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (n *Node) Kind() node.Kind {
	return node.KindEclair
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
	if err != nil {
		n.logger.Debug("ping failed", zap.Error(err))
	}
	return err == nil
}

func (n *Node) Info(ctx context.Context) (*node.Info, error) {
	res, err := n.getInfo(ctx)
	if err != nil {
		return nil, err
	}
	id, err := node.ParseID(res.NodeID)
	if err != nil {
		return nil, err
	}
	return &node.Info{ID: id, BlockHeight: res.BlockHeight}, nil
}

func (n *Node) Connect(ctx context.Context, host string, port int, id node.ID) error {
	ctx, cancel := context.WithTimeout(ctx, node.ConnectTimeout)
	defer cancel()
	params := url.Values{"uri": {fmt.Sprintf("%s@%s:%d", id, host, port)}}
	if err := n.api.post(ctx, "connect", params, nil); err != nil {
		return fmt.Errorf("connect %s: %w", id, node.FromContext("connect", err))
	}
	return nil
}

// Peers lists the connected peers. eclair keeps peers it has channels with
// after they disconnect.
func (n *Node) Peers(ctx context.Context) ([]node.ID, error) {
	var peers []*peer
	if err := n.api.post(ctx, "peers", nil, &peers); err != nil {
		return nil, err
	}
	ids := make([]node.ID, 0, len(peers))
	for _, p := range peers {
		if p.State != peerConnected {
			continue
		}
		id, err := node.ParseID(p.NodeID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (n *Node) AddFunds(ctx context.Context, funder node.Funder, amt btcutil.Amount) error {
	var addr string
	if err := n.api.post(ctx, "getnewaddress", nil, &addr); err != nil {
		return err
	}
	return node.FundAndWait(ctx, funder, addr, amt, n.confirmedBalance, n.attempts)
}

func (n *Node) confirmedBalance(ctx context.Context) (btcutil.Amount, error) {
	var res onchainBalance
	if err := n.api.post(ctx, "onchainbalance", nil, &res); err != nil {
		return 0, err
	}
	return btcutil.Amount(res.Confirmed), nil
}

func (n *Node) OpenChannel(ctx context.Context, remote node.ID, host string, port int, amt btcutil.Amount) (*node.OpenResult, error) {
	if err := n.Connect(ctx, host, port, remote); err != nil {
		return nil, err
	}
	var msg string
	params := url.Values{
		"nodeId":          {remote.String()},
		"fundingSatoshis": {strconv.FormatInt(int64(amt), 10)},
	}
	if err := n.api.post(ctx, "open", params, &msg); err != nil {
		return nil, err
	}
	m := fundingTxIDRe.FindStringSubmatch(msg)
	if m == nil {
		return nil, node.Protocol("open", "no funding txid in %q", msg)
	}
	txid, err := chainhash.NewHashFromStr(m[1])
	if err != nil {
		return nil, node.Protocol("open", "%v", err)
	}

	res := &node.OpenResult{FundingTxID: *txid}
	if ch, err := n.channelWith(ctx, remote); err == nil {
		res.CSVDelay = ch.Data.Commitments.remoteToSelfDelay()
	}
	return res, nil
}

func (n *Node) channels(ctx context.Context, remote node.ID) ([]*channel, error) {
	var params url.Values
	if remote != "" {
		params = url.Values{"nodeId": {remote.String()}}
	}
	var chans []*channel
	if err := n.api.post(ctx, "channels", params, &chans); err != nil {
		return nil, err
	}
	return chans, nil
}

// channelWith prefers a NORMAL channel when there are several.
func (n *Node) channelWith(ctx context.Context, remote node.ID) (*channel, error) {
	chans, err := n.channels(ctx, remote)
	if err != nil {
		return nil, err
	}
	var found *channel
	for _, ch := range chans {
		if ch.NodeID != remote.String() {
			continue
		}
		if found == nil || ch.State == stateNormal {
			found = ch
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%s: %w", remote, node.ErrChannelNotFound)
	}
	return found, nil
}

func (n *Node) CheckChannel(ctx context.Context, remote node.ID) bool {
	ch, err := n.channelWith(ctx, remote)
	if err != nil {
		n.logger.Debug("channel lookup failed", zap.Stringer("remote", remote), zap.Error(err))
		return false
	}
	return ch.State == stateNormal
}

func (n *Node) Channels(ctx context.Context) ([]node.ChannelView, error) {
	self, err := n.ID(ctx)
	if err != nil {
		return nil, err
	}
	chans, err := n.channels(ctx, "")
	if err != nil {
		return nil, err
	}
	views := make([]node.ChannelView, 0, len(chans))
	for _, ch := range chans {
		remote, err := node.ParseID(ch.NodeID)
		if err != nil {
			return nil, err
		}
		v := node.ChannelView{Local: self, Remote: remote, State: node.ChannelStateOther}
		if ch.State == stateNormal {
			v.State = node.ChannelStateOpen
			v.Active = true
		}
		views = append(views, v)
	}
	return views, nil
}

func (n *Node) GetChannels(ctx context.Context) ([]node.Edge, error) {
	var chans []*publicChannel
	if err := n.api.post(ctx, "allchannels", nil, &chans); err != nil {
		return nil, err
	}
	edges := make([]node.Edge, 0, len(chans))
	for _, c := range chans {
		a, err := node.ParseID(c.A)
		if err != nil {
			return nil, err
		}
		b, err := node.ParseID(c.B)
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
	var nodes []*announcedNode
	if err := n.api.post(ctx, "allnodes", nil, &nodes); err != nil {
		return nil, err
	}
	ids := make([]node.ID, 0, len(nodes))
	for _, an := range nodes {
		id, err := node.ParseID(an.NodeID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return node.WithoutSelf(ids, self), nil
}

func (n *Node) Invoice(ctx context.Context, amountMsat lnwire.MilliSatoshi) (*node.InvoiceRef, error) {
	var res createInvoiceResponse
	params := url.Values{
		"amountMsat":  {strconv.FormatUint(uint64(amountMsat), 10)},
		"description": {"invoice"},
	}
	if err := n.api.post(ctx, "createinvoice", params, &res); err != nil {
		return nil, err
	}
	hash, err := hex.DecodeString(res.PaymentHash)
	if err != nil {
		return nil, node.Protocol("createinvoice", "payment hash: %v", err)
	}
	return invoice.Ref(res.Serialized, hash)
}

// AddHTLC starts a non blocking payment. eclair answers with the payment
// id once the htlc is being sent.
func (n *Node) AddHTLC(ctx context.Context, inv *node.InvoiceRef) (*node.HTLCRef, error) {
	ctx, cancel := context.WithTimeout(ctx, node.AddHTLCTimeout)
	defer cancel()

	var parsed parseInvoiceResponse
	if err := n.api.post(ctx, "parseinvoice", url.Values{"invoice": {inv.Bolt11}}, &parsed); err != nil {
		return nil, node.FromContext("parseinvoice", err)
	}
	dest, err := node.ParseID(parsed.NodeID)
	if err != nil {
		return nil, err
	}

	var paymentID string
	if err := n.api.post(ctx, "payinvoice", url.Values{"invoice": {inv.Bolt11}}, &paymentID); err != nil {
		return nil, paymentErr("payinvoice", err)
	}
	n.logger.Debug("payment started", zap.String("id", paymentID))
	return &node.HTLCRef{Destination: dest, PaymentHash: inv.PaymentHash}, nil
}

func (n *Node) Send(ctx context.Context, inv *node.InvoiceRef) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, node.SendTimeout)
	defer cancel()

	var ev paymentEvent
	params := url.Values{"invoice": {inv.Bolt11}, "blocking": {"true"}}
	if err := n.api.post(ctx, "payinvoice", params, &ev); err != nil {
		return "", paymentErr("payinvoice", err)
	}
	switch ev.Type {
	case paymentSent:
		return ev.PaymentPreimage, nil
	case paymentFailed:
		return "", &node.PaymentError{Message: fmt.Sprintf("%d failed attempts", len(ev.Failures))}
	}
	return "", node.Protocol("payinvoice", "unexpected event %q", ev.Type)
}

// paymentErr turns rejections of a payment request into PaymentError.
func paymentErr(op string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &node.PaymentError{Message: apiErr.Message}
	}
	return node.FromContext(op, err)
}

func (n *Node) CheckRoute(ctx context.Context, dest node.ID, amountMsat lnwire.MilliSatoshi) bool {
	params := url.Values{
		"nodeId":     {dest.String()},
		"amountMsat": {strconv.FormatUint(uint64(amountMsat), 10)},
	}
	if err := n.api.post(ctx, "findroutetonode", params, nil); err != nil {
		n.logger.Debug("findroutetonode failed", zap.Error(err))
		return false
	}
	return true
}

func (n *Node) PendingHTLCs(ctx context.Context, remote node.ID) ([]node.PendingHTLC, error) {
	ch, err := n.channelWith(ctx, remote)
	if err != nil {
		return nil, err
	}
	raw := ch.Data.Commitments.htlcs()
	htlcs := make([]node.PendingHTLC, 0, len(raw))
	for _, h := range raw {
		htlcs = append(htlcs, node.PendingHTLC{
			Incoming:         h.incoming(),
			AmountMsat:       lnwire.MilliSatoshi(h.Add.AmountMsat),
			ExpirationHeight: h.Add.CltvExpiry,
		})
	}
	return htlcs, nil
}

// BlockSync gives eclair a moment to see the block. Its logs have no line
// keyed by block hash.
func (n *Node) BlockSync(ctx context.Context, _ chainhash.Hash) error {
	select {
	case <-time.After(blockSyncDelay):
		return nil
	case <-ctx.Done():
		return node.FromContext("block sync", ctx.Err())
	}
}

// ForceClose publishes our commitment. The closing txid is read from the
// channel data once eclair stored it.
func (n *Node) ForceClose(ctx context.Context, remote node.ID) (*node.ForceCloseSequence, error) {
	ch, err := n.channelWith(ctx, remote)
	if err != nil {
		return nil, err
	}
	channelID := ch.ChannelID

	start := func(ctx context.Context) (chainhash.Hash, error) {
		if err := n.api.post(ctx, "forceclose", url.Values{"channelId": {channelID}}, nil); err != nil {
			return chainhash.Hash{}, err
		}
		var txid chainhash.Hash
		err := n.pollChannel(ctx, remote, channelID, func(c *channel) (bool, error) {
			if c == nil || c.Data.LocalCommitPublished == nil {
				return false, nil
			}
			h, err := chainhash.NewHashFromStr(c.Data.LocalCommitPublished.CommitTx.TxID)
			if err != nil {
				return false, node.Protocol("channels", "commit txid: %v", err)
			}
			txid = *h
			return true, nil
		})
		return txid, err
	}

	wait := func(ctx context.Context, txid chainhash.Hash) error {
		return n.pollChannel(ctx, remote, channelID, func(c *channel) (bool, error) {
			if c == nil {
				return true, nil
			}
			if c.State != stateClosing && c.State != stateClosed {
				return false, nil
			}
			lcp := c.Data.LocalCommitPublished
			return lcp != nil && lcp.CommitTx.TxID == txid.String(), nil
		})
	}

	return node.NewForceCloseSequence(start, wait), nil
}

// pollChannel calls check on the channel until it reports true. check gets
// nil once eclair no longer lists the channel.
func (n *Node) pollChannel(ctx context.Context, remote node.ID, channelID string, check func(*channel) (bool, error)) error {
	ticker := time.NewTicker(closePollInterval)
	defer ticker.Stop()
	for {
		chans, err := n.channels(ctx, remote)
		if err == nil {
			var found *channel
			for _, c := range chans {
				if c.ChannelID == channelID {
					found = c
				}
			}
			ok, err := check(found)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (n *Node) Restart(ctx context.Context) error {
	if err := n.proc.Stop(); err != nil {
		return node.Unavailable("restart", err)
	}
	select {
	case <-time.After(n.settle):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := n.proc.Start(); err != nil {
		return node.Unavailable("restart", err)
	}
	if err := n.waitReady(ctx); err != nil {
		return err
	}
	id, err := n.fetchID(ctx)
	if err != nil {
		return err
	}
	return n.identity.Verify(id)
}

func (n *Node) Stop() error {
	return n.proc.Stop()
}

var (
	_ node.Handle      = (*Node)(nil)
	_ node.ForceCloser = (*Node)(nil)
)
