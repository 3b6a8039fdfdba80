package lnd

import (
	"context"

	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"google.golang.org/grpc"
)

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_lnd.go -package=mocks github.com/elementsproject/lightning-integration/lnd LightningClient,RouterClient,UnlockerClient,Process

// LightningClient is the part of lnrpc.LightningClient the adapter calls.
type LightningClient interface {
	GetInfo(ctx context.Context, in *lnrpc.GetInfoRequest, opts ...grpc.CallOption) (*lnrpc.GetInfoResponse, error)
	ListPeers(ctx context.Context, in *lnrpc.ListPeersRequest, opts ...grpc.CallOption) (*lnrpc.ListPeersResponse, error)
	ConnectPeer(ctx context.Context, in *lnrpc.ConnectPeerRequest, opts ...grpc.CallOption) (*lnrpc.ConnectPeerResponse, error)
	NewAddress(ctx context.Context, in *lnrpc.NewAddressRequest, opts ...grpc.CallOption) (*lnrpc.NewAddressResponse, error)
	WalletBalance(ctx context.Context, in *lnrpc.WalletBalanceRequest, opts ...grpc.CallOption) (*lnrpc.WalletBalanceResponse, error)
	OpenChannelSync(ctx context.Context, in *lnrpc.OpenChannelRequest, opts ...grpc.CallOption) (*lnrpc.ChannelPoint, error)
	ListChannels(ctx context.Context, in *lnrpc.ListChannelsRequest, opts ...grpc.CallOption) (*lnrpc.ListChannelsResponse, error)
	PendingChannels(ctx context.Context, in *lnrpc.PendingChannelsRequest, opts ...grpc.CallOption) (*lnrpc.PendingChannelsResponse, error)
	DescribeGraph(ctx context.Context, in *lnrpc.ChannelGraphRequest, opts ...grpc.CallOption) (*lnrpc.ChannelGraph, error)
	AddInvoice(ctx context.Context, in *lnrpc.Invoice, opts ...grpc.CallOption) (*lnrpc.AddInvoiceResponse, error)
	SendPaymentSync(ctx context.Context, in *lnrpc.SendRequest, opts ...grpc.CallOption) (*lnrpc.SendResponse, error)
	QueryRoutes(ctx context.Context, in *lnrpc.QueryRoutesRequest, opts ...grpc.CallOption) (*lnrpc.QueryRoutesResponse, error)
	CloseChannel(ctx context.Context, in *lnrpc.CloseChannelRequest, opts ...grpc.CallOption) (lnrpc.Lightning_CloseChannelClient, error)
	GetTransactions(ctx context.Context, in *lnrpc.GetTransactionsRequest, opts ...grpc.CallOption) (*lnrpc.TransactionDetails, error)
	StopDaemon(ctx context.Context, in *lnrpc.StopRequest, opts ...grpc.CallOption) (*lnrpc.StopResponse, error)
}

// RouterClient is the part of routerrpc.RouterClient the adapter calls.
type RouterClient interface {
	SendPaymentV2(ctx context.Context, in *routerrpc.SendPaymentRequest, opts ...grpc.CallOption) (routerrpc.Router_SendPaymentV2Client, error)
}

// UnlockerClient is the part of lnrpc.WalletUnlockerClient used to create
// and open the wallet.
type UnlockerClient interface {
	GenSeed(ctx context.Context, in *lnrpc.GenSeedRequest, opts ...grpc.CallOption) (*lnrpc.GenSeedResponse, error)
	InitWallet(ctx context.Context, in *lnrpc.InitWalletRequest, opts ...grpc.CallOption) (*lnrpc.InitWalletResponse, error)
	UnlockWallet(ctx context.Context, in *lnrpc.UnlockWalletRequest, opts ...grpc.CallOption) (*lnrpc.UnlockWalletResponse, error)
}

var (
	_ LightningClient = (lnrpc.LightningClient)(nil)
	_ RouterClient    = (routerrpc.RouterClient)(nil)
	_ UnlockerClient  = (lnrpc.WalletUnlockerClient)(nil)
)
