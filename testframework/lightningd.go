package testframework

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// LightningdProcess is a core lightning daemon on regtest.
type LightningdProcess struct {
	*DaemonProcess

	DataDir    string
	NetworkDir string
	ListenPort int
}

func NewLightningdProcess(testDir, binary string, bitcoin *BitcoinNode, ports *PortLedger, id int, extraArgs []string) (*LightningdProcess, error) {
	listenPort, err := ports.Next()
	if err != nil {
		return nil, fmt.Errorf("ports.Next() %w", err)
	}

	dataDir := filepath.Join(testDir, fmt.Sprintf("lightningd-%d", id))
	networkDir := filepath.Join(dataDir, "regtest")
	if err := os.MkdirAll(networkDir, os.ModeDir|os.ModePerm); err != nil {
		return nil, fmt.Errorf("os.MkdirAll() %w", err)
	}

	if binary == "" {
		binary = "lightningd"
	}
	cmdLine := []string{
		binary,
		fmt.Sprintf("--lightning-dir=%s", dataDir),
		"--log-level=debug",
		fmt.Sprintf("--addr=127.0.0.1:%d", listenPort),
		"--network=regtest",
		"--allow-deprecated-apis=true",
		"--ignore-fee-limits=true",
		"--funding-confirms=1",
		"--bitcoin-rpcconnect=127.0.0.1",
		fmt.Sprintf("--bitcoin-rpcport=%d", bitcoin.RpcPort),
		fmt.Sprintf("--bitcoin-rpcuser=%s", bitcoin.RpcUser),
		fmt.Sprintf("--bitcoin-rpcpassword=%s", bitcoin.RpcPassword),
		fmt.Sprintf("--bitcoin-datadir=%s", bitcoin.DataDir),
	}
	cmdLine = append(cmdLine, extraArgs...)

	// A fixed seed keeps node ids stable across runs of the same test.
	seed := []byte(fmt.Sprintf("lightning-integration-seed-%06d", id))[:32]
	if err := os.WriteFile(filepath.Join(networkDir, "hsm_secret"), seed, 0o600); err != nil {
		return nil, fmt.Errorf("WriteFile() %w", err)
	}

	d := NewDaemonProcess(cmdLine, "lightningd-"+strconv.Itoa(id))
	d.SaveLogTo(filepath.Join(dataDir, "log"))
	return &LightningdProcess{
		DaemonProcess: d,
		DataDir:       dataDir,
		NetworkDir:    networkDir,
		ListenPort:    listenPort,
	}, nil
}

// Start runs lightningd and waits until its RPC socket is served.
func (n *LightningdProcess) Start() error {
	// A stale socket from a previous run makes the client connect to
	// nothing.
	_ = os.Remove(n.SocketPath())
	if err := n.DaemonProcess.Run(); err != nil {
		return err
	}
	return n.WaitForLog("Server started with public key", TIMEOUT)
}

func (n *LightningdProcess) SocketPath() string {
	return filepath.Join(n.NetworkDir, "lightning-rpc")
}
