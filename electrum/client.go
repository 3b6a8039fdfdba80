package electrum

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/checksum0/go-electrum/electrum"
	"github.com/elementsproject/lightning-integration/log"
)

type electrumXClient struct {
	mu       sync.Mutex
	client   *electrum.Client
	endpoint string
	isTLS    bool
}

// NewElectrumXClient dials the ElectrumX that indexes the regtest chain the
// wallet under test syncs from. endpoint is "host:port".
func NewElectrumXClient(ctx context.Context, endpoint string, isTLS bool) (ElectrumX, error) {
	ec, err := newClient(ctx, endpoint, isTLS)
	if err != nil {
		return nil, err
	}
	return &electrumXClient{
		client:   ec,
		endpoint: endpoint,
		isTLS:    isTLS,
	}, nil
}

// reconnect redials ElectrumX when it stopped answering.
func (c *electrumXClient) reconnect(ctx context.Context) (*electrum.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.client.Ping(ctx); err != nil {
		log.Infof("electrumx %s not answering, redialing: %v", c.endpoint, err)
		client, err := newClient(ctx, c.endpoint, c.isTLS)
		if err != nil {
			return nil, err
		}
		c.client.Shutdown()
		c.client = client
	}
	return c.client, nil
}

func newClient(ctx context.Context, endpoint string, isTLS bool) (*electrum.Client, error) {
	if isTLS {
		return electrum.NewClientSSL(ctx, endpoint, &tls.Config{
			MinVersion: tls.VersionTLS12,
		})
	}
	return electrum.NewClientTCP(ctx, endpoint)
}

func (c *electrumXClient) GetHistory(ctx context.Context, scripthash string) ([]*electrum.GetMempoolResult, error) {
	client, err := c.reconnect(ctx)
	if err != nil {
		return nil, err
	}
	return client.GetHistory(ctx, scripthash)
}

// GetRawTransaction fetches a transaction the scenarios just mined or saw
// broadcast. ElectrumX may not have indexed it yet, so a missing transaction
// is retried until the index catches up.
func (c *electrumXClient) GetRawTransaction(ctx context.Context, txHash string) (string, error) {
	var rawTx string

	err := untilIndexed(ctx, func() error {
		client, err := c.reconnect(ctx)
		if err != nil {
			return err
		}
		var innerErr error
		rawTx, innerErr = client.GetRawTransaction(ctx, txHash)
		return innerErr
	})

	return rawTx, err
}

// untilIndexed retries lookup while it fails with a missing transaction.
func untilIndexed(ctx context.Context, lookup func() error) error {
	const maxRetries = 10
	const maxElapsedTime = 2 * time.Minute

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.InitialInterval = 100 * time.Millisecond
	backoffStrategy.MaxElapsedTime = maxElapsedTime

	return backoff.Retry(func() error {
		err := lookup()
		if err != nil {
			if isMissingTx(err) {
				log.Debugf("transaction not indexed yet: %v", err)
				return err
			}
			return backoff.Permanent(fmt.Errorf("electrumx lookup: %w", err))
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(backoffStrategy, uint64(maxRetries)), ctx))
}

// isMissingTx matches ElectrumX's answer for a transaction it has not indexed.
func isMissingTx(err error) bool {
	return strings.Contains(err.Error(), "missing transaction")
}

// isUnknownTx matches the daemon error bitcoind hands through ElectrumX for
// transactions it never saw.
func isUnknownTx(err error) bool {
	return strings.Contains(err.Error(), "No such mempool or blockchain transaction") || isMissingTx(err)
}

func (c *electrumXClient) Ping(ctx context.Context) error {
	_, err := c.reconnect(ctx)
	return err
}

func (c *electrumXClient) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client.Shutdown()
}
