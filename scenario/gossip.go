package scenario

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/elementsproject/lightning-integration/log"
	"github.com/elementsproject/lightning-integration/node"
)

const peerPollInterval = 100 * time.Millisecond

// GossipIsSynced reports whether every node knows exactly numEdges directed
// channel edges.
func GossipIsSynced(ctx context.Context, nodes []node.Handle, numEdges int) bool {
	log.Infof("Checking %d nodes for gossip sync", len(nodes))
	for i, n := range nodes {
		edges, err := n.GetChannels(ctx)
		if err != nil {
			log.Debugf("Node %d getchannels: %v", i, err)
			return false
		}
		log.Debugf("Node %d knows about the following channels %v", i, edges)
		if len(edges) != numEdges {
			log.Infof("Node %d is missing %d channels", i, numEdges-len(edges))
			return false
		}
	}
	return true
}

// NodeHasRoute reports whether n knows all edges of route.
func NodeHasRoute(ctx context.Context, n node.Handle, route []node.Edge) (bool, error) {
	edges, err := n.GetChannels(ctx)
	if err != nil {
		return false, err
	}
	known := make(map[node.Edge]struct{}, len(edges))
	for _, e := range edges {
		known[e] = struct{}{}
	}
	for _, e := range route {
		if _, ok := known[e]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// Route builds the edges along a path of node ids.
func Route(ids ...node.ID) []node.Edge {
	var route []node.Edge
	for i := 1; i < len(ids); i++ {
		route = append(route, node.Edge{From: ids[i-1], To: ids[i]})
	}
	return route
}

// CheckChannels reports whether both ends of every pair see their channel
// as usable.
func CheckChannels(ctx context.Context, pairs [][2]node.Handle) bool {
	ok := true
	for _, p := range pairs {
		id0, err := p[0].ID(ctx)
		if err != nil {
			return false
		}
		id1, err := p[1].ID(ctx)
		if err != nil {
			return false
		}
		ok = p[0].CheckChannel(ctx, id1) && ok
		ok = p[1].CheckChannel(ctx, id0) && ok
	}
	return ok
}

// VerifyPreimage checks that the hex encoded preimage hashes to hash.
func VerifyPreimage(preimage string, hash [32]byte) error {
	raw, err := hex.DecodeString(preimage)
	if err != nil {
		return fmt.Errorf("preimage %q: %w", preimage, err)
	}
	if sum := sha256.Sum256(raw); sum != hash {
		return fmt.Errorf("preimage hashes to %x, want %x", sum, hash)
	}
	return nil
}

// Connect makes a dial b and waits until each lists the other as a peer.
func Connect(ctx context.Context, a, b node.Handle, timeout time.Duration) error {
	idA, err := a.ID(ctx)
	if err != nil {
		return err
	}
	idB, err := b.ID(ctx)
	if err != nil {
		return err
	}
	addr := b.Address()
	log.Infof("Connecting %s@%s -> %s@%s", idA, a.Address(), idB, addr)
	if err := a.Connect(ctx, addr.Host, addr.Port, idB); err != nil {
		return err
	}
	for _, w := range []struct {
		n    node.Handle
		peer node.ID
	}{{a, idB}, {b, idA}} {
		w := w
		err := WaitFor(ctx, func(ctx context.Context) (bool, error) {
			return requirePeer(ctx, w.n, w.peer) == nil, nil
		}, timeout, peerPollInterval)
		if err != nil {
			return fmt.Errorf("%s never saw peer %s: %w", w.n.Kind(), w.peer, err)
		}
	}
	return nil
}
