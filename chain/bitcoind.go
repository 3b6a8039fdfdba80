package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/elementsproject/lightning-integration/log"
	"github.com/ybbus/jsonrpc"
)

const defaultRequestTimeout = 60 * time.Second

// ErrTxNotFound is returned for transactions bitcoind does not know.
var ErrTxNotFound = errors.New("transaction not found")

// RPCError is a JSON-RPC error returned by bitcoind.
type RPCError struct {
	Method  string
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s: rpc error %d: %s", e.Method, e.Code, e.Message)
}

// Bitcoind is an Oracle talking JSON-RPC to bitcoind. Calls that mine are
// serialized so concurrent scenario goroutines see a linear chain.
type Bitcoind struct {
	host       string
	authHeader string
	wallet     string

	rpc    jsonrpc.RPCClient
	walRpc jsonrpc.RPCClient

	mineMu   sync.Mutex
	mineAddr string
}

// NewBitcoind connects to bitcoind at host ("127.0.0.1:18443") and uses
// wallet for all wallet calls.
func NewBitcoind(host, user, password, wallet string) *Bitcoind {
	auth := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	b := &Bitcoind{
		host:       host,
		authHeader: "Basic " + auth,
		wallet:     wallet,
	}
	b.rpc = b.newClient(fmt.Sprintf("http://%s", host))
	b.walRpc = b.newClient(fmt.Sprintf("http://%s/wallet/%s", host, wallet))
	return b
}

func (b *Bitcoind) newClient(url string) jsonrpc.RPCClient {
	return jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{Timeout: defaultRequestTimeout},
		CustomHeaders: map[string]string{
			"Authorization": b.authHeader,
		},
	})
}

func (b *Bitcoind) Wallet() string {
	return b.wallet
}

func call(ctx context.Context, client jsonrpc.RPCClient, method string, params ...interface{}) (*jsonrpc.RPCResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := client.Call(method, params...)
	if r != nil && r.Error != nil {
		return nil, &RPCError{Method: method, Code: r.Error.Code, Message: r.Error.Message}
	}
	if err != nil {
		return nil, fmt.Errorf("Call(%s) %w", method, err)
	}
	if r == nil {
		return nil, fmt.Errorf("Call(%s) empty response", method)
	}
	return r, nil
}

// Bootstrap creates and loads the wallet and mines until coinbase outputs
// are spendable.
func (b *Bitcoind) Bootstrap(ctx context.Context) error {
	if err := b.CreateWallet(ctx, b.wallet); err != nil {
		return err
	}
	info, err := b.GetBlockchainInfo(ctx)
	if err != nil {
		return err
	}
	if info.Blocks < 101 {
		if _, err := b.Generate(ctx, int(101-info.Blocks)); err != nil {
			return err
		}
	}
	return nil
}

// CreateWallet creates and loads name. Existing or already loaded wallets
// are not an error.
func (b *Bitcoind) CreateWallet(ctx context.Context, name string) error {
	_, err := call(ctx, b.rpc, "createwallet", name)
	var rpcErr *RPCError
	if err != nil && !(errors.As(err, &rpcErr) && strings.Contains(rpcErr.Message, "already exists")) {
		return err
	}
	_, err = call(ctx, b.rpc, "loadwallet", name)
	if err != nil && !(errors.As(err, &rpcErr) && strings.Contains(rpcErr.Message, "already loaded")) {
		return err
	}
	return nil
}

func (b *Bitcoind) GetNewAddress(ctx context.Context) (string, error) {
	r, err := call(ctx, b.walRpc, "getnewaddress")
	if err != nil {
		return "", err
	}
	return r.GetString()
}

// Generate mines n blocks to the wallet and returns their hashes.
func (b *Bitcoind) Generate(ctx context.Context, n int) ([]*chainhash.Hash, error) {
	b.mineMu.Lock()
	defer b.mineMu.Unlock()

	if b.mineAddr == "" {
		addr, err := b.GetNewAddress(ctx)
		if err != nil {
			return nil, err
		}
		b.mineAddr = addr
	}
	return b.generateToAddress(ctx, n, b.mineAddr)
}

func (b *Bitcoind) generateToAddress(ctx context.Context, n int, addr string) ([]*chainhash.Hash, error) {
	r, err := call(ctx, b.rpc, "generatetoaddress", n, addr)
	if err != nil {
		return nil, err
	}
	var raw []string
	if err := r.GetObject(&raw); err != nil {
		return nil, fmt.Errorf("GetObject() %w", err)
	}
	log.Debugf("mined %d blocks", len(raw))
	return parseHashes(raw)
}

func (b *Bitcoind) SendToAddress(ctx context.Context, addr string, amt btcutil.Amount) (*chainhash.Hash, error) {
	r, err := call(ctx, b.walRpc, "sendtoaddress", addr, amt.ToBTC())
	if err != nil {
		return nil, err
	}
	s, err := r.GetString()
	if err != nil {
		return nil, err
	}
	return chainhash.NewHashFromStr(s)
}

type blockResult struct {
	Hash              string   `json:"hash"`
	Height            int32    `json:"height"`
	PreviousBlockHash string   `json:"previousblockhash"`
	Tx                []string `json:"tx"`
}

func (b *Bitcoind) GetBlock(ctx context.Context, hash *chainhash.Hash) (*Block, error) {
	r, err := call(ctx, b.rpc, "getblock", hash.String(), 1)
	if err != nil {
		return nil, err
	}
	var res blockResult
	if err := r.GetObject(&res); err != nil {
		return nil, fmt.Errorf("GetObject() %w", err)
	}

	block := &Block{Height: res.Height}
	h, err := chainhash.NewHashFromStr(res.Hash)
	if err != nil {
		return nil, err
	}
	block.Hash = *h
	if res.PreviousBlockHash != "" {
		prev, err := chainhash.NewHashFromStr(res.PreviousBlockHash)
		if err != nil {
			return nil, err
		}
		block.PrevHash = *prev
	}
	txs, err := parseHashes(res.Tx)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		block.Tx = append(block.Tx, *tx)
	}
	return block, nil
}

func (b *Bitcoind) GetBlockchainInfo(ctx context.Context) (*BlockchainInfo, error) {
	r, err := call(ctx, b.rpc, "getblockchaininfo")
	if err != nil {
		return nil, err
	}
	var res struct {
		Chain         string `json:"chain"`
		Blocks        int32  `json:"blocks"`
		BestBlockHash string `json:"bestblockhash"`
	}
	if err := r.GetObject(&res); err != nil {
		return nil, fmt.Errorf("GetObject() %w", err)
	}
	best, err := chainhash.NewHashFromStr(res.BestBlockHash)
	if err != nil {
		return nil, err
	}
	return &BlockchainInfo{Chain: res.Chain, Blocks: res.Blocks, BestBlockHash: *best}, nil
}

func (b *Bitcoind) GetRawMempool(ctx context.Context) ([]*chainhash.Hash, error) {
	r, err := call(ctx, b.rpc, "getrawmempool")
	if err != nil {
		return nil, err
	}
	var raw []string
	if err := r.GetObject(&raw); err != nil {
		return nil, fmt.Errorf("GetObject() %w", err)
	}
	return parseHashes(raw)
}

func (b *Bitcoind) GetRawTransaction(ctx context.Context, txid *chainhash.Hash) (*wire.MsgTx, error) {
	r, err := call(ctx, b.rpc, "getrawtransaction", txid.String(), false)
	if err != nil {
		return nil, mapNotFound(err)
	}
	s, err := r.GetString()
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("Deserialize() %w", err)
	}
	return tx, nil
}

func (b *Bitcoind) GetTxHeight(ctx context.Context, txid *chainhash.Hash) (int32, error) {
	r, err := call(ctx, b.rpc, "getrawtransaction", txid.String(), true)
	if err != nil {
		return 0, mapNotFound(err)
	}
	var res struct {
		BlockHash     string `json:"blockhash"`
		Confirmations int32  `json:"confirmations"`
	}
	if err := r.GetObject(&res); err != nil {
		return 0, fmt.Errorf("GetObject() %w", err)
	}
	if res.BlockHash == "" || res.Confirmations == 0 {
		return 0, nil
	}
	info, err := b.GetBlockchainInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.Blocks - res.Confirmations + 1, nil
}

// TransactAndMine creates some traffic so estimatesmartfee has data to work
// with.
func (b *Bitcoind) TransactAndMine(ctx context.Context) error {
	addr, err := b.GetNewAddress(ctx)
	if err != nil {
		return err
	}
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			if _, err := b.SendToAddress(ctx, addr, btcutil.Amount(50_000_000)); err != nil {
				return err
			}
		}
		if _, err := b.Generate(ctx, 1); err != nil {
			return err
		}
	}
	return nil
}

func mapNotFound(err error) error {
	var rpcErr *RPCError
	// -5: RPC_INVALID_ADDRESS_OR_KEY, returned for unknown transactions.
	if errors.As(err, &rpcErr) && rpcErr.Code == -5 {
		return fmt.Errorf("%w: %v", ErrTxNotFound, err)
	}
	return err
}

func parseHashes(raw []string) ([]*chainhash.Hash, error) {
	hashes := make([]*chainhash.Hash, 0, len(raw))
	for _, s := range raw {
		h, err := chainhash.NewHashFromStr(s)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

var _ Oracle = (*Bitcoind)(nil)
