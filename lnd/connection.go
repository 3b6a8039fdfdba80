package lnd

import (
	"context"

	"github.com/elementsproject/lightning-integration/log"
	"github.com/elementsproject/lightning-integration/node"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
)

// WaitForReady blocks until conn is READY or ctx is done. It kicks an idle
// connection into connecting.
func WaitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	state := conn.GetState()
	for state != connectivity.Ready {
		if state == connectivity.Idle {
			conn.Connect()
		}
		log.Debugf("Waiting for client connection to be READY: current state: %s", state)
		if !conn.WaitForStateChange(ctx, state) {
			return node.FromContext("grpc connection ready", ctx.Err())
		}
		state = conn.GetState()
	}
	return nil
}
