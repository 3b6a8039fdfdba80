package eclair

import (
	"encoding/json"
	"strings"
)

type getInfoResponse struct {
	NodeID      string `json:"nodeId"`
	Alias       string `json:"alias"`
	BlockHeight uint32 `json:"blockHeight"`
}

const peerConnected = "CONNECTED"

type peer struct {
	NodeID string `json:"nodeId"`
	State  string `json:"state"`
}

type onchainBalance struct {
	Confirmed   int64 `json:"confirmed"`
	Unconfirmed int64 `json:"unconfirmed"`
}

type channel struct {
	NodeID    string      `json:"nodeId"`
	ChannelID string      `json:"channelId"`
	State     string      `json:"state"`
	Data      channelData `json:"data"`
}

type channelData struct {
	Commitments          commitments      `json:"commitments"`
	LocalCommitPublished *commitPublished `json:"localCommitPublished"`
}

// commitments covers both layouts eclair has used. Since 0.9 the
// parameters are nested under params and there is one entry per active
// commitment.
type commitments struct {
	Params *struct {
		RemoteParams *channelParams `json:"remoteParams"`
	} `json:"params"`
	Active []*struct {
		LocalCommit *localCommit `json:"localCommit"`
	} `json:"active"`

	RemoteParams *channelParams `json:"remoteParams"`
	LocalCommit  *localCommit   `json:"localCommit"`
}

type channelParams struct {
	ToSelfDelay uint32 `json:"toSelfDelay"`
}

type localCommit struct {
	Spec struct {
		Htlcs []*htlc `json:"htlcs"`
	} `json:"spec"`
}

type htlc struct {
	Direction string `json:"direction"`
	Add       struct {
		AmountMsat  uint64 `json:"amountMsat"`
		CltvExpiry  uint32 `json:"cltvExpiry"`
		PaymentHash string `json:"paymentHash"`
	} `json:"add"`
}

func (h *htlc) incoming() bool {
	return strings.EqualFold(h.Direction, "IN")
}

// remoteToSelfDelay is the csv delay the remote imposes on our outputs.
func (c *commitments) remoteToSelfDelay() uint32 {
	if c.Params != nil && c.Params.RemoteParams != nil {
		return c.Params.RemoteParams.ToSelfDelay
	}
	if c.RemoteParams != nil {
		return c.RemoteParams.ToSelfDelay
	}
	return 0
}

func (c *commitments) htlcs() []*htlc {
	if len(c.Active) > 0 && c.Active[0].LocalCommit != nil {
		return c.Active[0].LocalCommit.Spec.Htlcs
	}
	if c.LocalCommit != nil {
		return c.LocalCommit.Spec.Htlcs
	}
	return nil
}

type commitPublished struct {
	CommitTx struct {
		TxID string `json:"txid"`
	} `json:"commitTx"`
}

type publicChannel struct {
	ShortChannelID string `json:"shortChannelId"`
	A              string `json:"a"`
	B              string `json:"b"`
}

type announcedNode struct {
	NodeID string `json:"nodeId"`
}

type createInvoiceResponse struct {
	Serialized  string `json:"serialized"`
	PaymentHash string `json:"paymentHash"`
}

type parseInvoiceResponse struct {
	NodeID      string `json:"nodeId"`
	PaymentHash string `json:"paymentHash"`
}

type paymentEvent struct {
	Type            string            `json:"type"`
	PaymentPreimage string            `json:"paymentPreimage"`
	Failures        []json.RawMessage `json:"failures"`
}
