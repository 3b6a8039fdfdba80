package ptarmigan

// ptarmd takes positional parameters in field order.

type GetInfoRequest struct{}

func (r *GetInfoRequest) Name() string {
	return "getinfo"
}

type GetInfoResponse struct {
	NodeId     string  `json:"node_id"`
	BlockCount uint32  `json:"block_count"`
	Peers      []*Peer `json:"peers"`
}

type Peer struct {
	NodeId         string `json:"node_id"`
	Status         string `json:"status"`
	ShortChannelId string `json:"short_channel_id"`
	FundingTx      string `json:"funding_tx"`
	FundingVout    uint32 `json:"funding_vout"`
	Remote         *struct {
		ToSelfDelay uint32 `json:"to_self_delay"`
	} `json:"remote,omitempty"`
	Htlcs []*Htlc `json:"htlcs,omitempty"`
}

type Htlc struct {
	Direction  string `json:"dir"`
	AmountMsat uint64 `json:"amount_msat"`
	CltvExpiry uint32 `json:"cltv_expiry"`
}

func (h *Htlc) Incoming() bool {
	return h.Direction == "received"
}

type ConnectRequest struct {
	NodeId string
	Host   string
	Port   int
}

func (r *ConnectRequest) Name() string {
	return "connect"
}

type GetNewAddressRequest struct{}

func (r *GetNewAddressRequest) Name() string {
	return "getnewaddress"
}

// GetBalanceRequest returns the confirmed wallet balance in satoshi.
type GetBalanceRequest struct{}

func (r *GetBalanceRequest) Name() string {
	return "getbalance"
}

type OpenChannelRequest struct {
	NodeId       string
	FundingSat   int64
	PushMsat     uint64
	FeeratePerKw uint32
	IsPrivate    int
}

func (r *OpenChannelRequest) Name() string {
	return "openchannel"
}

type OpenChannelResponse struct {
	Status       string `json:"status"`
	FeeratePerKw uint32 `json:"feerate_per_kw"`
}

type ListChannelsRequest struct{}

func (r *ListChannelsRequest) Name() string {
	return "listchannels"
}

type ChannelAnnouncement struct {
	ShortChannelId string `json:"short_channel_id"`
	Node1          string `json:"node1"`
	Node2          string `json:"node2"`
}

type ListNodesRequest struct{}

func (r *ListNodesRequest) Name() string {
	return "listnodes"
}

type NodeAnnouncement struct {
	NodeId string `json:"node_id"`
}

type InvoiceRequest struct {
	AmountMsat         uint64
	MinFinalCltvExpiry uint32
}

func (r *InvoiceRequest) Name() string {
	return "invoice"
}

type InvoiceResponse struct {
	Hash       string `json:"hash"`
	AmountMsat uint64 `json:"amount_msat"`
	Bolt11     string `json:"bolt11"`
}

type RoutePayRequest struct {
	Bolt11        string
	AddAmountMsat uint64
}

func (r *RoutePayRequest) Name() string {
	return "routepay"
}

type RoutePayResponse struct {
	PaymentId int64 `json:"payment_id"`
}

type ListPaymentRequest struct {
	PaymentId int64
}

func (r *ListPaymentRequest) Name() string {
	return "listpayment"
}

type Payment struct {
	PaymentId   int64  `json:"payment_id"`
	PaymentHash string `json:"payment_hash"`
	State       string `json:"state"`
	Preimage    string `json:"preimage"`
}

type GetRouteRequest struct {
	NodeId     string
	AmountMsat uint64
}

func (r *GetRouteRequest) Name() string {
	return "getroute"
}

type GetRouteResponse struct {
	Hops []struct {
		NodeId string `json:"node_id"`
	} `json:"hops"`
}

type StopRequest struct{}

func (r *StopRequest) Name() string {
	return "stop"
}
