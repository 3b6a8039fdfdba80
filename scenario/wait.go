// Package scenario has the polling helpers the interop scenarios are built
// from. They bridge asynchronous node state to synchronous assertions.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/elementsproject/lightning-integration/chain"
)

var ErrWaitTimeout = errors.New("timed out waiting for condition")

const (
	DefaultTimeout  = 30 * time.Second
	DefaultInterval = time.Second
	// DefaultBlocks is how many blocks GenerateUntil mines at most.
	DefaultBlocks = 30
)

// Predicate is polled until it returns true. An error or a panic counts as
// false so that nodes may be unavailable while they start or restart.
type Predicate func(ctx context.Context) (bool, error)

// Cond turns a plain boolean check into a Predicate.
func Cond(f func(ctx context.Context) bool) Predicate {
	return func(ctx context.Context) (bool, error) {
		return f(ctx), nil
	}
}

// Generator mines blocks. chain.Oracle satisfies it.
type Generator interface {
	Generate(ctx context.Context, n int) ([]*chainhash.Hash, error)
}

// Chain is what the helpers need from the shared bitcoind.
type Chain interface {
	Generator
	GetBlockchainInfo(ctx context.Context) (*chain.BlockchainInfo, error)
}

func eval(ctx context.Context, pred Predicate) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("predicate panicked: %v", r)
		}
	}()
	return pred(ctx)
}

// WaitFor polls pred every interval until it holds. It gives up with
// ErrWaitTimeout after timeout and with the context error when ctx is done.
func WaitFor(ctx context.Context, pred Predicate, timeout, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := eval(ctx, pred)
		if ok {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ctx.Err()
			}
			if lastErr != nil {
				return fmt.Errorf("%w after %v: last error: %v", ErrWaitTimeout, timeout, lastErr)
			}
			return fmt.Errorf("%w after %v", ErrWaitTimeout, timeout)
		}
	}
}

// GenerateUntil mines one block per interval until pred holds, at most
// blocks of them. Used to wait for transactions that take a few blocks to
// be noticed.
func GenerateUntil(ctx context.Context, gen Generator, pred Predicate, blocks int, interval time.Duration) error {
	for i := 0; i < blocks; i++ {
		if err := sleep(ctx, interval); err != nil {
			return err
		}
		if ok, _ := eval(ctx, pred); ok {
			return nil
		}
		if _, err := gen.Generate(ctx, 1); err != nil {
			return err
		}
	}
	if err := sleep(ctx, interval); err != nil {
		return err
	}
	if ok, _ := eval(ctx, pred); !ok {
		return fmt.Errorf("generated %d blocks, but still no success", blocks)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
