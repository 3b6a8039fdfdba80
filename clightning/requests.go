package clightning

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/lightningnetwork/lnd/lnwire"
)

// Commands newer than the glightning release the harness pins are sent as
// raw requests.

type ListPeerChannelsRequest struct {
	PeerId string `json:"id,omitempty"`
}

func (r ListPeerChannelsRequest) Name() string {
	return "listpeerchannels"
}

type ListPeerChannelsResponse struct {
	Channels []*PeerChannel `json:"channels"`
}

type PeerChannel struct {
	PeerId           string  `json:"peer_id"`
	PeerConnected    bool    `json:"peer_connected"`
	State            string  `json:"state"`
	ShortChannelId   string  `json:"short_channel_id"`
	FundingTxId      string  `json:"funding_txid"`
	FundingOutnum    uint32  `json:"funding_outnum"`
	OurToSelfDelay   uint32  `json:"our_to_self_delay"`
	TheirToSelfDelay uint32  `json:"their_to_self_delay"`
	Htlcs            []*Htlc `json:"htlcs"`
}

type Htlc struct {
	Direction   string `json:"direction"`
	Id          uint64 `json:"id"`
	AmountMsat  Msat   `json:"amount_msat"`
	Expiry      uint32 `json:"expiry"`
	PaymentHash string `json:"payment_hash"`
	State       string `json:"state"`
}

// Incoming reports whether the htlc was offered by the peer. Releases
// before 23.02 spell the direction out.
func (h *Htlc) Incoming() bool {
	return h.Direction == "in" || h.Direction == "incoming"
}

type DecodePayRequest struct {
	Bolt11 string `json:"bolt11"`
}

func (r DecodePayRequest) Name() string {
	return "decodepay"
}

type DecodePayResponse struct {
	Payee         string `json:"payee"`
	AmountMsat    Msat   `json:"amount_msat"`
	PaymentHash   string `json:"payment_hash"`
	PaymentSecret string `json:"payment_secret"`
}

// Msat accepts both the plain integer and the legacy "123msat" string
// encodings of amounts.
type Msat lnwire.MilliSatoshi

func (m *Msat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	s = strings.TrimSuffix(s, "msat")
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*m = Msat(v)
	return nil
}

type ListFundsRequest struct{}

func (r ListFundsRequest) Name() string {
	return "listfunds"
}

type ListFundsResponse struct {
	Outputs []*FundOutput `json:"outputs"`
}

type FundOutput struct {
	TxId       string `json:"txid"`
	Output     uint32 `json:"output"`
	AmountMsat Msat   `json:"amount_msat"`
	Status     string `json:"status"`
}

type GetRouteRequest struct {
	Id         string  `json:"id"`
	AmountMsat uint64  `json:"amount_msat"`
	RiskFactor float32 `json:"riskfactor"`
}

func (r GetRouteRequest) Name() string {
	return "getroute"
}

// GetRouteResponse keeps the hops opaque; they are only handed back to
// sendpay.
type GetRouteResponse struct {
	Route []json.RawMessage `json:"route"`
}

type SendPayRequest struct {
	Route         []json.RawMessage `json:"route"`
	PaymentHash   string            `json:"payment_hash"`
	Bolt11        string            `json:"bolt11,omitempty"`
	PaymentSecret string            `json:"payment_secret,omitempty"`
	AmountMsat    uint64            `json:"amount_msat,omitempty"`
}

func (r SendPayRequest) Name() string {
	return "sendpay"
}

type SendPayResponse struct {
	PaymentHash string `json:"payment_hash"`
	Status      string `json:"status"`
	Destination string `json:"destination"`
}
