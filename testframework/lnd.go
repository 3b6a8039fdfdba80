package testframework

import (
	"fmt"
	"os"
	"path/filepath"
)

var LND_CONFIG = map[string]string{
	"bitcoin.active":  "true",
	"bitcoin.regtest": "true",
	"bitcoin.node":    "bitcoind",
	"debuglevel":      "debug",
	"norest":          "true",
	"accept-keysend":  "true",
}

// LndProcess is an lnd daemon backed by the shared bitcoind. The wallet is
// created over the WalletUnlocker service after the first start.
type LndProcess struct {
	*DaemonProcess

	LndDir     string
	ConfigFile string
	RpcPort    int
	ListenPort int
}

func NewLndProcess(testDir, binary string, bitcoin *BitcoinNode, ports *PortLedger, id int, extraArgs []string) (*LndProcess, error) {
	allocated, err := ports.NextN(2)
	if err != nil {
		return nil, fmt.Errorf("ports.NextN() %w", err)
	}
	listen, rpcListen := allocated[0], allocated[1]

	lndDir := filepath.Join(testDir, fmt.Sprintf("lnd-%d", id))
	if err := os.MkdirAll(lndDir, os.ModeDir|os.ModePerm); err != nil {
		return nil, fmt.Errorf("os.MkdirAll() %w", err)
	}

	conf := copyConfig(LND_CONFIG)
	conf["lnddir"] = lndDir
	conf["listen"] = fmt.Sprintf("127.0.0.1:%d", listen)
	conf["rpclisten"] = fmt.Sprintf("127.0.0.1:%d", rpcListen)
	conf["bitcoind.dir"] = bitcoin.DataDir
	conf["bitcoind.rpchost"] = fmt.Sprintf("%s:%d", bitcoin.RpcHost, bitcoin.RpcPort)
	conf["bitcoind.rpcuser"] = bitcoin.RpcUser
	conf["bitcoind.rpcpass"] = bitcoin.RpcPassword
	conf["bitcoind.zmqpubrawblock"] = bitcoin.ZmqBlockAddr()
	conf["bitcoind.zmqpubrawtx"] = bitcoin.ZmqTxAddr()

	configFile := filepath.Join(lndDir, "lnd.conf")
	if err := WriteConfig(configFile, conf, nil, ""); err != nil {
		return nil, fmt.Errorf("WriteConfig() %w", err)
	}

	if binary == "" {
		binary = "lnd"
	}
	cmdLine := []string{binary, fmt.Sprintf("--configfile=%s", configFile)}
	cmdLine = append(cmdLine, extraArgs...)

	d := NewDaemonProcess(cmdLine, fmt.Sprintf("lnd-%d", id))
	d.SaveLogTo(filepath.Join(lndDir, "log"))
	return &LndProcess{
		DaemonProcess: d,
		LndDir:        lndDir,
		ConfigFile:    configFile,
		RpcPort:       rpcListen,
		ListenPort:    listen,
	}, nil
}

// Start runs lnd and waits until the unlocker service listens.
func (n *LndProcess) Start() error {
	if err := n.DaemonProcess.Run(); err != nil {
		return err
	}
	return n.WaitForLog("RPC server listening on", TIMEOUT)
}

func (n *LndProcess) RpcHost() string {
	return fmt.Sprintf("127.0.0.1:%d", n.RpcPort)
}

func (n *LndProcess) TLSCertPath() string {
	return filepath.Join(n.LndDir, "tls.cert")
}

func (n *LndProcess) AdminMacaroonPath() string {
	return filepath.Join(n.LndDir, "data", "chain", "bitcoin", "regtest", "admin.macaroon")
}
