package lnd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/elementsproject/lightning-integration/testframework"
	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"go.uber.org/zap"
)

// WalletPassword unlocks every wallet the harness creates.
const WalletPassword = "password"

// walletOpenedLog is logged once the unlocked wallet serves the main RPC
// services.
const walletOpenedLog = "LightningWallet opened"

// Clients bundles the RPC stubs of one running lnd.
type Clients struct {
	Lightning LightningClient
	Router    RouterClient
	// Closer releases the connection the stubs share.
	Closer io.Closer
}

// Connector brings the wallet of a started lnd up and returns stubs for the
// unlocked RPC server. create is set on the first start of a node.
type Connector func(ctx context.Context, proc Process, create bool) (*Clients, error)

// InitWallet creates a wallet from a fresh seed and returns the admin
// macaroon lnd baked for it.
func InitWallet(ctx context.Context, u UnlockerClient) ([]byte, error) {
	seed, err := u.GenSeed(ctx, &lnrpc.GenSeedRequest{})
	if err != nil {
		return nil, fmt.Errorf("GenSeed() %w", err)
	}
	res, err := u.InitWallet(ctx, &lnrpc.InitWalletRequest{
		WalletPassword:     []byte(WalletPassword),
		CipherSeedMnemonic: seed.CipherSeedMnemonic,
		RecoveryWindow:     0,
	})
	if err != nil {
		return nil, fmt.Errorf("InitWallet() %w", err)
	}
	return res.AdminMacaroon, nil
}

func UnlockWallet(ctx context.Context, u UnlockerClient) error {
	_, err := u.UnlockWallet(ctx, &lnrpc.UnlockWalletRequest{
		WalletPassword: []byte(WalletPassword),
	})
	if err != nil {
		return fmt.Errorf("UnlockWallet() %w", err)
	}
	return nil
}

// NewConnector returns the Connector used against real daemons.
func NewConnector(logger *zap.Logger) Connector {
	return func(ctx context.Context, proc Process, create bool) (*Clients, error) {
		unlockerConn, err := Dial(ctx, &ConnConfig{
			Host:        proc.RpcHost(),
			TLSCertPath: proc.TLSCertPath(),
			Logger:      logger,
		})
		if err != nil {
			return nil, node.Unavailable("dial unlocker", err)
		}
		defer unlockerConn.Close()

		unlocker := lnrpc.NewWalletUnlockerClient(unlockerConn)
		var mac []byte
		if create {
			mac, err = InitWallet(ctx, unlocker)
		} else {
			err = UnlockWallet(ctx, unlocker)
		}
		if err != nil {
			return nil, node.Unavailable("wallet", err)
		}

		if err := proc.WaitForLog(walletOpenedLog, testframework.TIMEOUT); err != nil {
			return nil, node.Unavailable("wallet", err)
		}

		conn, err := Dial(ctx, &ConnConfig{
			Host:         proc.RpcHost(),
			TLSCertPath:  proc.TLSCertPath(),
			Macaroon:     mac,
			MacaroonPath: proc.AdminMacaroonPath(),
			Logger:       logger,
		})
		if err != nil {
			return nil, node.Unavailable("dial lnd", err)
		}
		if err := WaitForReady(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}

		clients := &Clients{
			Lightning: lnrpc.NewLightningClient(conn),
			Router:    routerrpc.NewRouterClient(conn),
			Closer:    conn,
		}
		if err := waitServing(ctx, clients.Lightning); err != nil {
			conn.Close()
			return nil, err
		}
		return clients, nil
	}
}

// waitServing polls GetInfo until the RPC server finished starting.
func waitServing(ctx context.Context, ln LightningClient) error {
	b := backoff.WithContext(backoff.NewConstantBackOff(500*time.Millisecond), ctx)
	err := backoff.Retry(func() error {
		_, err := ln.GetInfo(ctx, &lnrpc.GetInfoRequest{})
		return err
	}, b)
	if err != nil {
		return node.Unavailable("getinfo", node.FromContext("getinfo", err))
	}
	return nil
}
