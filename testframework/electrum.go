package testframework

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"
	"github.com/checksum0/go-electrum/electrum"
)

// ElectrumX indexes the shared bitcoind for electrum wallets.
type ElectrumX struct {
	*DaemonProcess

	DataDir string
	TCPPort int
	RpcPort int
}

func NewElectrumX(testDir, binary string, bitcoin *BitcoinNode, ports *PortLedger) (*ElectrumX, error) {
	allocated, err := ports.NextN(2)
	if err != nil {
		return nil, fmt.Errorf("ports.NextN() %w", err)
	}
	tcpPort, rpcPort := allocated[0], allocated[1]

	dataDir := filepath.Join(testDir, "electrumx")
	if err := os.MkdirAll(dataDir, os.ModeDir|os.ModePerm); err != nil {
		return nil, fmt.Errorf("os.MkdirAll() %w", err)
	}

	if binary == "" {
		binary = "electrumx_server"
	}
	d := NewDaemonProcess([]string{binary}, "electrumx")
	d.Env = []string{
		"COIN=BitcoinSegwit",
		"NET=regtest",
		"DB_DIRECTORY=" + dataDir,
		fmt.Sprintf("DAEMON_URL=http://%s:%s@%s:%d", bitcoin.RpcUser, bitcoin.RpcPassword, bitcoin.RpcHost, bitcoin.RpcPort),
		fmt.Sprintf("SERVICES=tcp://127.0.0.1:%d,rpc://127.0.0.1:%d", tcpPort, rpcPort),
		"PEER_DISCOVERY=off",
	}
	d.SaveLogTo(filepath.Join(dataDir, "log"))
	return &ElectrumX{DaemonProcess: d, DataDir: dataDir, TCPPort: tcpPort, RpcPort: rpcPort}, nil
}

func (e *ElectrumX) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", e.TCPPort)
}

// Run starts the server and pings it until it answers.
func (e *ElectrumX) Run(ctx context.Context) error {
	if err := e.DaemonProcess.Run(); err != nil {
		return err
	}
	return backoff.Retry(func() error {
		ec, err := electrum.NewClientTCP(ctx, e.Addr())
		if err != nil {
			return err
		}
		defer ec.Shutdown()
		return ec.Ping(ctx)
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10), ctx))
}

const (
	ElectrumRpcUser     = "rpcuser"
	ElectrumRpcPassword = "rpcpass"
)

// ElectrumProcess is an electrum daemon with lightning enabled, talking to
// ElectrumX only.
type ElectrumProcess struct {
	*DaemonProcess

	DataDir    string
	ListenPort int
	RpcPort    int
	WalletPath string
}

func NewElectrumProcess(testDir, binary string, electrumx *ElectrumX, ports *PortLedger, id int, extraArgs []string) (*ElectrumProcess, error) {
	allocated, err := ports.NextN(2)
	if err != nil {
		return nil, fmt.Errorf("ports.NextN() %w", err)
	}
	listen, rpcPort := allocated[0], allocated[1]

	dataDir := filepath.Join(testDir, fmt.Sprintf("electrum-%d", id))
	networkDir := filepath.Join(dataDir, "regtest")
	if err := os.MkdirAll(filepath.Join(networkDir, "wallets"), os.ModeDir|os.ModePerm); err != nil {
		return nil, fmt.Errorf("os.MkdirAll() %w", err)
	}

	conf := map[string]interface{}{
		"rpcuser":          ElectrumRpcUser,
		"rpcpassword":      ElectrumRpcPassword,
		"rpcport":          rpcPort,
		"rpchost":          "127.0.0.1",
		"server":           electrumx.Addr() + ":t",
		"oneserver":        true,
		"auto_connect":     false,
		"lightning_listen": fmt.Sprintf("127.0.0.1:%d", listen),
		"use_gossip":       true,
		"log_to_file":      false,
	}
	raw, err := json.MarshalIndent(conf, "", "    ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(networkDir, "config"), raw, 0o600); err != nil {
		return nil, fmt.Errorf("WriteFile() %w", err)
	}

	if binary == "" {
		binary = "electrum"
	}
	cmdLine := []string{binary, "--regtest", "-D", dataDir, "daemon", "-v"}
	cmdLine = append(cmdLine, extraArgs...)

	d := NewDaemonProcess(cmdLine, fmt.Sprintf("electrum-%d", id))
	d.SaveLogTo(filepath.Join(dataDir, "log"))
	return &ElectrumProcess{
		DaemonProcess: d,
		DataDir:       dataDir,
		ListenPort:    listen,
		RpcPort:       rpcPort,
		WalletPath:    filepath.Join(networkDir, "wallets", "default_wallet"),
	}, nil
}

func (n *ElectrumProcess) Start() error {
	return n.DaemonProcess.Run()
}

func (n *ElectrumProcess) RpcURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", n.RpcPort)
}
