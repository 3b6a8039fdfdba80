package electrum

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/ybbus/jsonrpc"
)

const daemonRequestTimeout = 2 * time.Minute

// NewDaemonClient returns a json-rpc client for the electrum daemon at url
// ("http://127.0.0.1:port").
func NewDaemonClient(url, user, password string) jsonrpc.RPCClient {
	auth := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	return jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{Timeout: daemonRequestTimeout},
		CustomHeaders: map[string]string{
			"Authorization": "Basic " + auth,
		},
	})
}

// params are passed by name.
type params map[string]interface{}

type getInfoResponse struct {
	BlockchainHeight uint32 `json:"blockchain_height"`
	ServerHeight     uint32 `json:"server_height"`
	Connected        bool   `json:"connected"`
}

type peer struct {
	NodeID      string `json:"node_id"`
	Address     string `json:"address"`
	Initialized bool   `json:"initialized"`
}

type addressBalance struct {
	Confirmed   string `json:"confirmed"`
	Unconfirmed string `json:"unconfirmed"`
}

type channel struct {
	ChannelID         string  `json:"channel_id"`
	ShortChannelID    string  `json:"short_channel_id"`
	ChannelPoint      string  `json:"channel_point"`
	State             string  `json:"state"`
	PeerState         string  `json:"peer_state"`
	RemotePubkey      string  `json:"remote_pubkey"`
	RemoteToSelfDelay uint32  `json:"remote_to_self_delay"`
	Htlcs             []*htlc `json:"htlcs"`
}

type htlc struct {
	Direction  string `json:"direction"`
	AmountMsat uint64 `json:"amount_msat"`
	CltvExpiry uint32 `json:"cltv_expiry"`
}

func (h *htlc) incoming() bool {
	return h.Direction == "received"
}

type channelInfo struct {
	ShortChannelID string `json:"short_channel_id"`
	NodeID1        string `json:"node_id_1"`
	NodeID2        string `json:"node_id_2"`
	CapacitySat    int64  `json:"capacity_sat"`
}

type addRequestResponse struct {
	LightningInvoice string `json:"lightning_invoice"`
	PaymentHash      string `json:"rhash"`
}

type lnpayResponse struct {
	PaymentHash string        `json:"payment_hash"`
	Success     bool          `json:"success"`
	Preimage    string        `json:"preimage"`
	Log         []interface{} `json:"log"`
}

func (r *lnpayResponse) failure() string {
	if len(r.Log) > 0 {
		return fmt.Sprint(r.Log[len(r.Log)-1])
	}
	return "payment failed"
}

type txStatus struct {
	Confirmations int32 `json:"confirmations"`
}

// btcString renders amt the way electrum commands take amounts, as a
// decimal bitcoin value.
func btcString(amt btcutil.Amount) string {
	return strconv.FormatFloat(amt.ToBTC(), 'f', -1, 64)
}

func parseBTC(s string) (btcutil.Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return btcutil.NewAmount(f)
}
