// Package config holds the harness settings. Values come from the defaults,
// then an optional TOML file, then the environment and command line.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/elementsproject/lightning-integration/node"
	"github.com/jessevdk/go-flags"
	"github.com/pelletier/go-toml/v2"
)

var (
	DefaultTestDir             = filepath.Join(os.TempDir(), "lightning-integration")
	DefaultImpls               = "lightningd,lnd,eclair,ptarmigan,electrum"
	DefaultAddFundsMaxAttempts = 120
	DefaultTimeout             = 150 * time.Second
	SlowMachineTimeout         = 420 * time.Second
)

type Binaries struct {
	Bitcoind   string `toml:"bitcoind" long:"bitcoind" description:"path to bitcoind"`
	Lightningd string `toml:"lightningd" long:"lightningd" description:"path to lightningd"`
	Lnd        string `toml:"lnd" long:"lnd" description:"path to lnd"`
	Eclair     string `toml:"eclair" long:"eclair" description:"path to eclair-node.sh"`
	Ptarmigan  string `toml:"ptarmigan" long:"ptarmigan" description:"path to ptarmd"`
	Electrum   string `toml:"electrum" long:"electrum" description:"path to the electrum script"`
	ElectrumX  string `toml:"electrumx" long:"electrumx" description:"path to electrumx_server"`
}

type Harness struct {
	TestDir     string `toml:"test_dir" long:"testdir" env:"TEST_DIR" description:"directory the node data dirs are created in"`
	Debug       bool   `toml:"debug" long:"debug" env:"TEST_DEBUG" description:"log debug output"`
	SlowMachine bool   `toml:"slow_machine" long:"slow" env:"SLOW_MACHINE" description:"scale polling timeouts for slow machines"`
	Impls       string `toml:"impls" long:"impls" env:"LIGHTNING_IMPLS" description:"comma separated implementations under test"`
	PortsDB     string `toml:"ports_db" long:"portsdb" description:"port ledger file shared by concurrent test runs"`
	// AddFundsMaxAttempts caps the balance polls of AddFunds. 0 polls until
	// the context is done.
	AddFundsMaxAttempts int `toml:"addfunds_max_attempts" long:"addfunds-max-attempts" description:"balance polls before AddFunds gives up, 0 for unbounded"`

	Binaries *Binaries `toml:"binaries" group:"Binaries" namespace:"bin"`
	// ExtraArgs are appended to the command line of the kind, keyed by
	// kind name.
	ExtraArgs map[string][]string `toml:"extra_args"`
}

func Default() *Harness {
	return &Harness{
		TestDir:             DefaultTestDir,
		Impls:               DefaultImpls,
		AddFundsMaxAttempts: DefaultAddFundsMaxAttempts,
		Binaries:            &Binaries{},
		ExtraArgs:           map[string][]string{},
	}
}

// Load reads path, if it exists, over the defaults and applies args and
// the environment on top.
func Load(path string, args []string) (*Harness, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config %s: %w", path, err)
			}
		}
	}
	if cfg.Binaries == nil {
		cfg.Binaries = &Binaries{}
	}
	if cfg.ExtraArgs == nil {
		cfg.ExtraArgs = map[string][]string{}
	}

	parser := flags.NewParser(cfg, flags.IgnoreUnknown)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *Harness) Validate() error {
	if h.TestDir == "" {
		return errors.New("test dir must be set")
	}
	if h.AddFundsMaxAttempts < 0 {
		return fmt.Errorf("addfunds max attempts must not be negative, got %d", h.AddFundsMaxAttempts)
	}
	if _, err := h.Kinds(); err != nil {
		return err
	}
	for k := range h.ExtraArgs {
		if _, err := node.ParseKind(k); err != nil {
			return fmt.Errorf("extra_args: %w", err)
		}
	}
	return nil
}

// Kinds returns the implementations under test, all of them when none are
// configured.
func (h *Harness) Kinds() ([]node.Kind, error) {
	kinds, err := node.ParseKinds(h.Impls)
	if err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		return node.AllKinds, nil
	}
	return kinds, nil
}

// Timeout is the budget of the polling helpers.
func (h *Harness) Timeout() time.Duration {
	if h.SlowMachine {
		return SlowMachineTimeout
	}
	return DefaultTimeout
}

func (h *Harness) Binary(kind node.Kind) string {
	switch kind {
	case node.KindCLightning:
		return h.Binaries.Lightningd
	case node.KindLnd:
		return h.Binaries.Lnd
	case node.KindEclair:
		return h.Binaries.Eclair
	case node.KindPtarmigan:
		return h.Binaries.Ptarmigan
	case node.KindElectrum:
		return h.Binaries.Electrum
	}
	return ""
}

// Args returns the extra command line arguments of kind. Keys may use any
// spelling ParseKind accepts.
func (h *Harness) Args(kind node.Kind) []string {
	var args []string
	for k, v := range h.ExtraArgs {
		if parsed, err := node.ParseKind(k); err == nil && parsed == kind {
			args = append(args, v...)
		}
	}
	return args
}

func (h *Harness) String() string {
	return fmt.Sprintf("testdir %s, impls %s, debug %v, slow machine %v, addfunds max attempts %d",
		h.TestDir, h.Impls, h.Debug, h.SlowMachine, h.AddFundsMaxAttempts)
}
