package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	log2 "log"
	"os"
	"os/signal"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/elementsproject/lightning-integration/config"
	"github.com/elementsproject/lightning-integration/factory"
	"github.com/elementsproject/lightning-integration/invoice"
	"github.com/elementsproject/lightning-integration/log"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/elementsproject/lightning-integration/scenario"
	"github.com/urfave/cli"
	"golang.org/x/sys/unix"
)

func main() {
	app := cli.NewApp()
	app.Name = "lnharness"
	app.Usage = "Lightning implementation interop harness"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Value:  "harness.toml",
			Usage:  "path to the harness config file",
			EnvVar: "HARNESS_CONFIG",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "log debug output",
		},
	}
	app.Commands = []cli.Command{
		startCommand, decodeCommand, matrixCommand,
	}
	err := app.Run(os.Args)
	if err != nil {
		log2.Fatal(err)
	}
}

var (
	implFlag = cli.StringSliceFlag{
		Name:  "impl",
		Usage: "implementation to start, can be repeated: 'lightningd' | 'lnd' | 'eclair' | 'ptarmigan' | 'electrum'",
	}
	fundFlag = cli.Int64Flag{
		Name:  "fund_sat",
		Usage: "fund every started node with this many sats, 0 skips funding",
	}
	repeatFlag = cli.IntFlag{
		Name:  "repeat",
		Value: 2,
		Usage: "nodes per combination",
	}

	startCommand = cli.Command{
		Name:  "start",
		Usage: "start a regtest bitcoind and the given nodes, stop everything on interrupt",
		Flags: []cli.Flag{
			implFlag,
			fundFlag,
		},
		Action: start,
	}

	decodeCommand = cli.Command{
		Name:      "decode",
		Usage:     "decode a regtest bolt11 payment request",
		ArgsUsage: "bolt11",
		Action:    decode,
	}

	matrixCommand = cli.Command{
		Name:  "matrix",
		Usage: "list the implementation combinations scenarios run over",
		Flags: []cli.Flag{
			repeatFlag,
		},
		Action: matrix,
	}
)

func loadConfig(ctx *cli.Context) (*config.Harness, error) {
	var args []string
	if ctx.GlobalBool("debug") {
		args = append(args, "--debug")
	}
	cfg, err := config.Load(ctx.GlobalString("config"), args)
	if err != nil {
		return nil, err
	}
	zl, err := log.NewZapLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	log.SetLogger(zl)
	return cfg, nil
}

func start(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	kinds, err := cfg.Kinds()
	if err != nil {
		return err
	}
	if impls := ctx.StringSlice(implFlag.Name); len(impls) > 0 {
		kinds = nil
		for _, s := range impls {
			k, err := node.ParseKind(s)
			if err != nil {
				return err
			}
			kinds = append(kinds, k)
		}
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	f, err := factory.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Teardown(); err != nil {
			log.Warnf("teardown: %v", err)
		}
	}()
	log.Infof("node data in %s", f.Dir())

	btc, err := f.Chain(runCtx)
	if err != nil {
		return err
	}
	amt := btcutil.Amount(ctx.Int64(fundFlag.Name))
	for _, k := range kinds {
		n, err := f.GetNode(runCtx, k)
		if err != nil {
			return err
		}
		id, err := n.ID(runCtx)
		if err != nil {
			return err
		}
		if amt > 0 {
			if err := n.AddFunds(runCtx, btc, amt); err != nil {
				return fmt.Errorf("fund %s: %w", k, err)
			}
		}
		fmt.Printf("%s\t%s@%s\n", k, id, n.Address())
	}

	log.Infof("nodes running, interrupt to stop")
	<-runCtx.Done()
	return nil
}

type decodedInvoice struct {
	PaymentHash string    `json:"payment_hash"`
	AmountMsat  uint64    `json:"amount_msat"`
	Destination string    `json:"destination"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Expiry      string    `json:"expiry"`
}

func decode(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expected exactly one payment request")
	}
	dec, err := invoice.Decode(ctx.Args().First())
	if err != nil {
		return err
	}
	return printJSON(decodedInvoice{
		PaymentHash: hex.EncodeToString(dec.PaymentHash[:]),
		AmountMsat:  uint64(dec.AmountMsat),
		Destination: dec.Destination.String(),
		Description: dec.Description,
		Timestamp:   dec.Timestamp,
		Expiry:      dec.Expiry.String(),
	})
}

func matrix(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	kinds, err := cfg.Kinds()
	if err != nil {
		return err
	}
	for _, combo := range scenario.Product(kinds, ctx.Int(repeatFlag.Name)) {
		fmt.Println(scenario.IDFor(combo))
	}
	return nil
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
