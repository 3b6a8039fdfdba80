package node

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
)

// BalanceFunc reports the confirmed on-chain balance of a node.
type BalanceFunc func(ctx context.Context) (btcutil.Amount, error)

// FundAndWait pays amt to addr, mines a block and polls balance every
// FundsPollInterval until it grew by amt. maxAttempts <= 0 polls until ctx
// is done. Running out of attempts yields ErrTimeout.
func FundAndWait(ctx context.Context, funder Funder, addr string, amt btcutil.Amount,
	balance BalanceFunc, maxAttempts int) error {

	before, err := balance(ctx)
	if err != nil {
		return err
	}
	if _, err := funder.SendToAddress(ctx, addr, amt); err != nil {
		return fmt.Errorf("SendToAddress(%s) %w", addr, err)
	}
	if _, err := funder.Generate(ctx, 1); err != nil {
		return fmt.Errorf("Generate(1) %w", err)
	}

	ticker := time.NewTicker(FundsPollInterval)
	defer ticker.Stop()
	for attempt := 0; maxAttempts <= 0 || attempt < maxAttempts; attempt++ {
		now, err := balance(ctx)
		if err == nil && now-before >= amt {
			return nil
		}
		select {
		case <-ctx.Done():
			return FromContext("add funds", ctx.Err())
		case <-ticker.C:
		}
	}
	return Timeout(fmt.Sprintf("add funds after %d attempts", maxAttempts))
}
