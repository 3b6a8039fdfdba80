package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elementsproject/lightning-integration/log"
	"github.com/elementsproject/lightning-integration/node"
)

const (
	confirmRounds   = 10
	confirmInterval = 2 * time.Second
)

// SyncBlockheight waits until every node reports the current tip height of
// the chain.
func SyncBlockheight(ctx context.Context, c Chain, nodes []node.Handle, timeout time.Duration) error {
	info, err := c.GetBlockchainInfo(ctx)
	if err != nil {
		return err
	}
	blocks := uint32(info.Blocks)

	log.Infof("Waiting for %d nodes to blockheight %d", len(nodes), blocks)
	for _, n := range nodes {
		n := n
		err := WaitFor(ctx, func(ctx context.Context) (bool, error) {
			info, err := n.Info(ctx)
			if err != nil {
				return false, err
			}
			return info.BlockHeight == blocks, nil
		}, timeout, DefaultInterval)
		if err != nil {
			return fmt.Errorf("%s at %s did not reach height %d: %w", n.Kind(), n.Address(), blocks, err)
		}
	}
	return nil
}

// ConfirmChannel mines a block at a time until both ends report the channel
// between them as usable. The nodes have to be peers already.
func ConfirmChannel(ctx context.Context, c Chain, n1, n2 node.Handle) (bool, error) {
	return confirmChannel(ctx, c, n1, n2, confirmInterval)
}

func confirmChannel(ctx context.Context, c Chain, n1, n2 node.Handle, interval time.Duration) (bool, error) {
	id1, err := n1.ID(ctx)
	if err != nil {
		return false, err
	}
	id2, err := n2.ID(ctx)
	if err != nil {
		return false, err
	}
	log.Infof("Waiting for channel %s -> %s to confirm", id1, id2)
	if err := requirePeer(ctx, n1, id2); err != nil {
		return false, err
	}
	if err := requirePeer(ctx, n2, id1); err != nil {
		return false, err
	}

	for i := 0; i < confirmRounds; i++ {
		if err := sleep(ctx, interval); err != nil {
			return false, err
		}
		if n1.CheckChannel(ctx, id2) && n2.CheckChannel(ctx, id1) {
			log.Infof("Channel %s -> %s confirmed", id1, id2)
			return true, nil
		}
		hashes, err := c.Generate(ctx, 1)
		if err != nil {
			return false, err
		}
		if len(hashes) == 0 {
			return false, errors.New("generate returned no block")
		}
		for _, n := range []node.Handle{n1, n2} {
			if err := n.BlockSync(ctx, *hashes[0]); err != nil {
				log.Debugf("block sync %s: %v", n.Kind(), err)
			}
		}
	}

	// Last ditch attempt
	return n1.CheckChannel(ctx, id2) && n2.CheckChannel(ctx, id1), nil
}

func requirePeer(ctx context.Context, n node.Handle, peer node.ID) error {
	peers, err := n.Peers(ctx)
	if err != nil {
		return err
	}
	for _, p := range peers {
		if p == peer {
			return nil
		}
	}
	return fmt.Errorf("%s is not connected to %s", n.Kind(), peer)
}
