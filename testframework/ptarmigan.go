package testframework

import (
	"fmt"
	"os"
	"path/filepath"
)

// PtarmiganProcess is a ptarmd node. ptarmd keeps its state in the working
// directory it is started from.
type PtarmiganProcess struct {
	*DaemonProcess

	DataDir    string
	ListenPort int
	RpcPort    int
}

func NewPtarmiganProcess(testDir, binary string, bitcoin *BitcoinNode, ports *PortLedger, id int, extraArgs []string) (*PtarmiganProcess, error) {
	allocated, err := ports.NextN(2)
	if err != nil {
		return nil, fmt.Errorf("ports.NextN() %w", err)
	}
	listen, rpcPort := allocated[0], allocated[1]

	dataDir := filepath.Join(testDir, fmt.Sprintf("ptarmigan-%d", id))
	if err := os.MkdirAll(dataDir, os.ModeDir|os.ModePerm); err != nil {
		return nil, fmt.Errorf("os.MkdirAll() %w", err)
	}

	if binary == "" {
		binary = "ptarmd"
	}
	cmdLine := []string{
		binary,
		"--network=regtest",
		fmt.Sprintf("--port=%d", listen),
		fmt.Sprintf("--rpcport=%d", rpcPort),
		fmt.Sprintf("--bitcoinrpcurl=127.0.0.1:%d", bitcoin.RpcPort),
		fmt.Sprintf("--bitcoinrpcuser=%s", bitcoin.RpcUser),
		fmt.Sprintf("--bitcoinrpcpassword=%s", bitcoin.RpcPassword),
	}
	cmdLine = append(cmdLine, extraArgs...)

	d := NewDaemonProcess(cmdLine, fmt.Sprintf("ptarmigan-%d", id))
	d.Dir = dataDir
	d.SaveLogTo(filepath.Join(dataDir, "log"))
	return &PtarmiganProcess{
		DaemonProcess: d,
		DataDir:       dataDir,
		ListenPort:    listen,
		RpcPort:       rpcPort,
	}, nil
}

func (n *PtarmiganProcess) Start() error {
	if err := n.DaemonProcess.Run(); err != nil {
		return err
	}
	return n.WaitForLog("start ptarmigan node", TIMEOUT)
}

func (n *PtarmiganProcess) RpcAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", n.RpcPort)
}
