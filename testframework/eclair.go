package testframework

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const EclairAPIPassword = "rpcpass"

// EclairProcess is an eclair node using the shared bitcoind wallet
// interface. Readiness is probed over its HTTP API by the caller.
type EclairProcess struct {
	*DaemonProcess

	DataDir    string
	ListenPort int
	APIPort    int
	Password   string
	// WalletName is the bitcoind wallet eclair funds channels from. It has
	// to exist before eclair starts.
	WalletName string
}

func NewEclairProcess(testDir, binary string, bitcoin *BitcoinNode, ports *PortLedger, id int, extraArgs []string) (*EclairProcess, error) {
	allocated, err := ports.NextN(2)
	if err != nil {
		return nil, fmt.Errorf("ports.NextN() %w", err)
	}
	listen, apiPort := allocated[0], allocated[1]

	dataDir := filepath.Join(testDir, fmt.Sprintf("eclair-%d", id))
	if err := os.MkdirAll(dataDir, os.ModeDir|os.ModePerm); err != nil {
		return nil, fmt.Errorf("os.MkdirAll() %w", err)
	}

	conf := map[string]string{
		"eclair.chain":                   "regtest",
		"eclair.server.public-ips.1":     "127.0.0.1",
		"eclair.server.port":             strconv.Itoa(listen),
		"eclair.api.enabled":             "true",
		"eclair.api.binding-ip":          "127.0.0.1",
		"eclair.api.port":                strconv.Itoa(apiPort),
		"eclair.api.password":            EclairAPIPassword,
		"eclair.bitcoind.host":           "127.0.0.1",
		"eclair.bitcoind.rpcport":        strconv.Itoa(bitcoin.RpcPort),
		"eclair.bitcoind.rpcuser":        bitcoin.RpcUser,
		"eclair.bitcoind.rpcpassword":    bitcoin.RpcPassword,
		"eclair.bitcoind.zmqblock":       bitcoin.ZmqBlockAddr(),
		"eclair.bitcoind.zmqtx":          bitcoin.ZmqTxAddr(),
		"eclair.bitcoind.wallet":         fmt.Sprintf("eclair-%d", id),
		"eclair.channel.mindepth-blocks": "1",
		"eclair.features.keysend":        "optional",
		"eclair.printToConsole":          "true",
	}
	if err := WriteConfig(filepath.Join(dataDir, "eclair.conf"), conf, nil, ""); err != nil {
		return nil, fmt.Errorf("WriteConfig() %w", err)
	}

	if binary == "" {
		binary = "eclair-node.sh"
	}
	cmdLine := []string{binary, fmt.Sprintf("-Declair.datadir=%s", dataDir)}
	cmdLine = append(cmdLine, extraArgs...)

	d := NewDaemonProcess(cmdLine, fmt.Sprintf("eclair-%d", id))
	d.SaveLogTo(filepath.Join(dataDir, "log"))
	return &EclairProcess{
		DaemonProcess: d,
		DataDir:       dataDir,
		ListenPort:    listen,
		APIPort:       apiPort,
		Password:      EclairAPIPassword,
		WalletName:    conf["eclair.bitcoind.wallet"],
	}, nil
}

func (n *EclairProcess) Start() error {
	return n.DaemonProcess.Run()
}

func (n *EclairProcess) APIURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", n.APIPort)
}
