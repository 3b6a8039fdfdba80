package testframework

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// BTC_BURN receives coins mined by the harness that nobody should own.
const BTC_BURN = "bcrt1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq3xueyj"

var BITCOIND_CONFIG = map[string]string{
	"regtest":     "1",
	"rpcuser":     "rpcuser",
	"rpcpassword": "rpcpass",
	"fallbackfee": "0.00001",
	"txindex":     "1",
}

type BitcoinNode struct {
	*DaemonProcess

	DataDir         string
	ConfigFile      string
	RpcHost         string
	RpcPort         int
	P2PPort         int
	ZmqRawBlockPort int
	ZmqRawTxPort    int
	RpcUser         string
	RpcPassword     string
	WalletName      string
}

// NewBitcoinNode prepares a regtest bitcoind in testDir. The process is not
// started.
func NewBitcoinNode(testDir, binary string, ports *PortLedger, id int) (*BitcoinNode, error) {
	allocated, err := ports.NextN(4)
	if err != nil {
		return nil, fmt.Errorf("ports.NextN() %w", err)
	}
	rpcPort, p2pPort, zmqBlock, zmqTx := allocated[0], allocated[1], allocated[2], allocated[3]

	dataDir := filepath.Join(testDir, fmt.Sprintf("bitcoind-%d", id))
	if err := os.MkdirAll(dataDir, os.ModeDir|os.ModePerm); err != nil {
		return nil, err
	}

	if binary == "" {
		binary = "bitcoind"
	}
	cmdLine := []string{
		binary,
		fmt.Sprintf("-datadir=%s", dataDir),
		"-printtoconsole",
		"-server",
		"-logtimestamps",
		"-nolisten",
		"-nowallet",
		"-addresstype=bech32",
		"-debug=rpc",
	}

	regtestConfig := map[string]string{
		"rpcport":         strconv.Itoa(rpcPort),
		"port":            strconv.Itoa(p2pPort),
		"zmqpubrawblock":  fmt.Sprintf("tcp://127.0.0.1:%d", zmqBlock),
		"zmqpubrawtx":     fmt.Sprintf("tcp://127.0.0.1:%d", zmqTx),
		"zmqpubhashblock": fmt.Sprintf("tcp://127.0.0.1:%d", zmqBlock),
	}
	configFile := filepath.Join(dataDir, "bitcoin.conf")
	if err := WriteConfig(configFile, BITCOIND_CONFIG, regtestConfig, "regtest"); err != nil {
		return nil, fmt.Errorf("WriteConfig() %w", err)
	}

	d := NewDaemonProcess(cmdLine, fmt.Sprintf("bitcoind-%d", id))
	d.SaveLogTo(filepath.Join(dataDir, "log"))
	return &BitcoinNode{
		DaemonProcess:   d,
		DataDir:         dataDir,
		ConfigFile:      configFile,
		RpcHost:         "127.0.0.1",
		RpcPort:         rpcPort,
		P2PPort:         p2pPort,
		ZmqRawBlockPort: zmqBlock,
		ZmqRawTxPort:    zmqTx,
		RpcUser:         BITCOIND_CONFIG["rpcuser"],
		RpcPassword:     BITCOIND_CONFIG["rpcpassword"],
		WalletName:      "lightning-integration",
	}, nil
}

// Run starts bitcoind and waits until it accepts RPC calls.
func (n *BitcoinNode) Run() error {
	if err := n.DaemonProcess.Run(); err != nil {
		return err
	}
	return n.WaitForLog("Done loading", TIMEOUT)
}

func (n *BitcoinNode) RpcURL() string {
	return fmt.Sprintf("http://%s:%d", n.RpcHost, n.RpcPort)
}

func (n *BitcoinNode) ZmqBlockAddr() string {
	return fmt.Sprintf("tcp://127.0.0.1:%d", n.ZmqRawBlockPort)
}

func (n *BitcoinNode) ZmqTxAddr() string {
	return fmt.Sprintf("tcp://127.0.0.1:%d", n.ZmqRawTxPort)
}
