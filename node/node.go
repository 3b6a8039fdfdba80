// Package node defines the uniform contract every Lightning implementation
// adapter satisfies, together with the values and errors that cross it.
package node

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/lnwire"
)

// Bounded waits applied inside the adapters.
const (
	ConnectTimeout        = 30 * time.Second
	AddHTLCTimeout        = 5 * time.Second
	SendTimeout           = 5 * time.Second
	ForceCloseAckTimeout  = 5 * time.Second
	ForceCloseDoneTimeout = 30 * time.Second
	PublishedTxTimeout    = 30 * time.Second
	TxHeightsTimeout      = 5 * time.Second
	RestartSettleDelay    = 5 * time.Second
	FundsPollInterval     = 1 * time.Second
)

// ID is the hex encoded compressed public key of a node.
type ID string

// ParseID validates s as a compressed secp256k1 public key.
func ParseID(s string) (ID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", &ProtocolError{Op: "parse id", Err: err}
	}
	if _, err := btcec.ParsePubKey(b); err != nil {
		return "", &ProtocolError{Op: "parse id", Err: err}
	}
	return ID(s), nil
}

// IDFromBytes encodes a serialized public key.
func IDFromBytes(b []byte) (ID, error) {
	return ParseID(hex.EncodeToString(b))
}

func (id ID) String() string {
	return string(id)
}

// Bytes returns the serialized public key. It panics on an ID that was
// not obtained through ParseID.
func (id ID) Bytes() []byte {
	b, err := hex.DecodeString(string(id))
	if err != nil {
		panic(fmt.Sprintf("invalid node id %q", string(id)))
	}
	return b
}

// Address is the host and port other nodes dial to reach a node.
type Address struct {
	Host string
	Port int
}

func (a Address) String() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// ChannelState folds the backend specific channel states into the one
// distinction the scenarios act on.
type ChannelState int

const (
	ChannelStateOther ChannelState = iota
	ChannelStateOpen
)

func (s ChannelState) String() string {
	if s == ChannelStateOpen {
		return "OPEN"
	}
	return "OTHER"
}

// ChannelView is a channel as seen from the local node.
type ChannelView struct {
	Local  ID
	Remote ID
	State  ChannelState
	Active bool
}

// Usable reports whether the channel is open and active.
func (c ChannelView) Usable() bool {
	return c.State == ChannelStateOpen && c.Active
}

// Edge is one direction of a gossiped channel.
type Edge struct {
	From ID
	To   ID
}

// Symmetric returns the edge set with both directions of every edge
// present, without duplicates.
func Symmetric(edges []Edge) []Edge {
	seen := make(map[Edge]struct{}, 2*len(edges))
	out := make([]Edge, 0, 2*len(edges))
	add := func(e Edge) {
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	for _, e := range edges {
		add(e)
		add(Edge{From: e.To, To: e.From})
	}
	return out
}

// WithoutSelf drops self from ids.
func WithoutSelf(ids []ID, self ID) []ID {
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if id != self {
			out = append(out, id)
		}
	}
	return out
}

// Info is what a node reports about itself.
type Info struct {
	ID          ID
	BlockHeight uint32
}

// OpenResult describes a channel whose funding transaction was published.
// A CSVDelay of zero means the backend did not report it yet.
type OpenResult struct {
	FundingTxID chainhash.Hash
	// CSVDelay is the delay the remote imposes on our to_local output.
	CSVDelay uint32
}

// InvoiceRef is an invoice created by the payee.
type InvoiceRef struct {
	Bolt11      string
	PaymentHash [32]byte
	AmountMsat  lnwire.MilliSatoshi
}

// HTLCRef identifies an outgoing HTLC added with AddHTLC.
type HTLCRef struct {
	Destination ID
	PaymentHash [32]byte
}

// PendingHTLC is an unresolved HTLC on one of the node's channels.
type PendingHTLC struct {
	Incoming         bool
	AmountMsat       lnwire.MilliSatoshi
	ExpirationHeight uint32
}

// BroadcastTxEvent is an encumbered transaction a node published while
// closing a channel unilaterally.
type BroadcastTxEvent struct {
	Name string
	Tx   *wire.MsgTx
}

// TxScope selects where a transaction lookup is answered from.
type TxScope int

const (
	ScopeChain TxScope = iota
	ScopeWallet
)

func (s TxScope) String() string {
	if s == ScopeWallet {
		return "wallet"
	}
	return "chain"
}

// Funder pays to addresses and mines blocks. chain.Oracle satisfies it.
type Funder interface {
	SendToAddress(ctx context.Context, addr string, amt btcutil.Amount) (*chainhash.Hash, error)
	Generate(ctx context.Context, n int) ([]*chainhash.Hash, error)
}

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_node.go -package=mocks github.com/elementsproject/lightning-integration/node Handle

// Handle is the uniform control surface of one node under test. Only the
// identity is cached; every other query hits the backend.
type Handle interface {
	Kind() Kind
	Address() Address

	ID(ctx context.Context) (ID, error)
	// Ping reports whether the node answers. It never returns an error.
	Ping(ctx context.Context) bool
	Connect(ctx context.Context, host string, port int, id ID) error
	Peers(ctx context.Context) ([]ID, error)
	AddFunds(ctx context.Context, funder Funder, amt btcutil.Amount) error
	OpenChannel(ctx context.Context, remote ID, host string, port int, amt btcutil.Amount) (*OpenResult, error)
	// CheckChannel reports whether a channel to remote exists, is open and
	// active. Missing channels and backend errors yield false.
	CheckChannel(ctx context.Context, remote ID) bool
	Channels(ctx context.Context) ([]ChannelView, error)
	GetChannels(ctx context.Context) ([]Edge, error)
	GetNodes(ctx context.Context) ([]ID, error)
	Invoice(ctx context.Context, amountMsat lnwire.MilliSatoshi) (*InvoiceRef, error)
	AddHTLC(ctx context.Context, inv *InvoiceRef) (*HTLCRef, error)
	// Send pays inv and returns the hex encoded preimage.
	Send(ctx context.Context, inv *InvoiceRef) (string, error)
	Info(ctx context.Context) (*Info, error)
	BlockSync(ctx context.Context, blockHash chainhash.Hash) error
	Restart(ctx context.Context) error
	CheckRoute(ctx context.Context, dest ID, amountMsat lnwire.MilliSatoshi) bool
	PendingHTLCs(ctx context.Context, remote ID) ([]PendingHTLC, error)
	Stop() error
}

// ForceCloser is implemented by backends that can close a channel
// unilaterally.
type ForceCloser interface {
	ForceClose(ctx context.Context, remote ID) (*ForceCloseSequence, error)
}

// BroadcastWatcher is implemented by backends that report the encumbered
// transactions they publish.
type BroadcastWatcher interface {
	// PublishedEncumberedTx blocks for the next event, up to
	// PublishedTxTimeout.
	PublishedEncumberedTx(ctx context.Context) (*BroadcastTxEvent, error)
}

// TxHeighter is implemented by backends that can report confirmation
// heights. Unconfirmed transactions map to 0 and unknown ones are absent.
type TxHeighter interface {
	TxHeights(ctx context.Context, txids []chainhash.Hash, scope TxScope) (map[chainhash.Hash]int32, error)
}
