package factory

import (
	"context"

	"github.com/elementsproject/lightning-integration/clightning"
	"github.com/elementsproject/lightning-integration/eclair"
	"github.com/elementsproject/lightning-integration/electrum"
	"github.com/elementsproject/lightning-integration/jrpc2"
	"github.com/elementsproject/lightning-integration/lnd"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/elementsproject/lightning-integration/ptarmigan"
	"github.com/elementsproject/lightning-integration/testframework"
)

const localhost = "127.0.0.1"

func defaultLaunchers() map[node.Kind]Launcher {
	return map[node.Kind]Launcher{
		node.KindCLightning: startLightningd,
		node.KindLnd:        startLnd,
		node.KindEclair:     startEclair,
		node.KindPtarmigan:  startPtarmigan,
		node.KindElectrum:   startElectrum,
	}
}

func startLightningd(ctx context.Context, env *Env) (node.Handle, error) {
	bitcoin, _, err := env.Bitcoin(ctx)
	if err != nil {
		return nil, err
	}
	proc, err := testframework.NewLightningdProcess(env.Dir, env.Binary, bitcoin, env.Ports, env.ID, env.Args)
	if err != nil {
		return nil, err
	}
	env.Track(proc.DaemonProcess)
	if err := proc.Start(); err != nil {
		_ = proc.Stop()
		return nil, node.Unavailable("start lightningd", err)
	}

	n, err := clightning.New(proc, clightning.Options{
		Address:      node.Address{Host: localhost, Port: proc.ListenPort},
		Logger:       env.Logger,
		FundAttempts: env.FundAttempts,
	})
	if err != nil {
		_ = proc.Stop()
		return nil, err
	}
	return n, nil
}

func startLnd(ctx context.Context, env *Env) (node.Handle, error) {
	bitcoin, oracle, err := env.Bitcoin(ctx)
	if err != nil {
		return nil, err
	}
	proc, err := testframework.NewLndProcess(env.Dir, env.Binary, bitcoin, env.Ports, env.ID, env.Args)
	if err != nil {
		return nil, err
	}
	env.Track(proc.DaemonProcess)

	return lnd.Start(ctx, proc, lnd.Options{
		Address:      node.Address{Host: localhost, Port: proc.ListenPort},
		Logger:       env.Logger,
		Chain:        oracle,
		FundAttempts: env.FundAttempts,
	})
}

func startEclair(ctx context.Context, env *Env) (node.Handle, error) {
	bitcoin, oracle, err := env.Bitcoin(ctx)
	if err != nil {
		return nil, err
	}
	proc, err := testframework.NewEclairProcess(env.Dir, env.Binary, bitcoin, env.Ports, env.ID, env.Args)
	if err != nil {
		return nil, err
	}
	env.Track(proc.DaemonProcess)
	// eclair refuses to start without its bitcoind wallet.
	if err := oracle.CreateWallet(ctx, proc.WalletName); err != nil {
		return nil, err
	}

	return eclair.Start(ctx, proc, eclair.Options{
		Address:      node.Address{Host: localhost, Port: proc.ListenPort},
		Logger:       env.Logger,
		APIURL:       proc.APIURL(),
		Password:     proc.Password,
		FundAttempts: env.FundAttempts,
	})
}

func startPtarmigan(ctx context.Context, env *Env) (node.Handle, error) {
	bitcoin, _, err := env.Bitcoin(ctx)
	if err != nil {
		return nil, err
	}
	proc, err := testframework.NewPtarmiganProcess(env.Dir, env.Binary, bitcoin, env.Ports, env.ID, env.Args)
	if err != nil {
		return nil, err
	}
	env.Track(proc.DaemonProcess)
	if err := proc.Start(); err != nil {
		_ = proc.Stop()
		return nil, node.Unavailable("start ptarmigan", err)
	}

	return ptarmigan.New(proc, jrpc2.NewTCPClient(proc.RpcAddr()), ptarmigan.Options{
		Address:      node.Address{Host: localhost, Port: proc.ListenPort},
		Logger:       env.Logger,
		FundAttempts: env.FundAttempts,
	}), nil
}

func startElectrum(ctx context.Context, env *Env) (node.Handle, error) {
	_, oracle, err := env.Bitcoin(ctx)
	if err != nil {
		return nil, err
	}
	x, err := env.ElectrumX(ctx)
	if err != nil {
		return nil, err
	}
	proc, err := testframework.NewElectrumProcess(env.Dir, env.Binary, x, env.Ports, env.ID, env.Args)
	if err != nil {
		return nil, err
	}
	env.Track(proc.DaemonProcess)

	ex, err := electrum.NewElectrumXClient(ctx, x.Addr(), false)
	if err != nil {
		return nil, node.Unavailable("dial electrumx", err)
	}
	n, err := electrum.Start(ctx, proc, electrum.Options{
		Address:    node.Address{Host: localhost, Port: proc.ListenPort},
		Logger:     env.Logger,
		RPC:        electrum.NewDaemonClient(proc.RpcURL(), testframework.ElectrumRpcUser, testframework.ElectrumRpcPassword),
		WalletPath: proc.WalletPath,
		ElectrumX:  ex,
		Chain:      oracle,

		FundAttempts: env.FundAttempts,
	})
	if err != nil {
		ex.Shutdown()
		return nil, err
	}
	return n, nil
}
