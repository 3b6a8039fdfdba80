// Package factory starts nodes of any implementation against one shared
// regtest bitcoind and stops them again when the test ends.
package factory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elementsproject/lightning-integration/chain"
	"github.com/elementsproject/lightning-integration/config"
	"github.com/elementsproject/lightning-integration/log"
	"github.com/elementsproject/lightning-integration/node"
	"github.com/elementsproject/lightning-integration/testframework"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

var ErrTornDown = errors.New("factory torn down")

const bootstrapRetryInterval = 500 * time.Millisecond

// Launcher starts one node of a kind and returns its handle. The process
// must be stopped again when an error is returned.
type Launcher func(ctx context.Context, env *Env) (node.Handle, error)

// Env carries everything a Launcher needs for one node.
type Env struct {
	ID           int
	Kind         node.Kind
	Dir          string
	Binary       string
	Args         []string
	Logger       *zap.Logger
	FundAttempts int
	Ports        *testframework.PortLedger

	f *Factory
}

func (e *Env) Name() string {
	return fmt.Sprintf("%s-%d", e.Kind, e.ID)
}

// Bitcoin returns the shared bitcoind, starting it on first use.
func (e *Env) Bitcoin(ctx context.Context) (*testframework.BitcoinNode, *chain.Bitcoind, error) {
	return e.f.bitcoin(ctx)
}

// ElectrumX returns the shared ElectrumX, starting it on first use.
func (e *Env) ElectrumX(ctx context.Context) (*testframework.ElectrumX, error) {
	return e.f.electrumX(ctx)
}

// Track adds the process to the log dump printed when the test fails.
func (e *Env) Track(p *testframework.DaemonProcess) {
	e.f.track(p)
}

type FactoryOption func(*Factory)

// WithLauncher replaces how nodes of kind are started.
func WithLauncher(kind node.Kind, l Launcher) FactoryOption {
	return func(f *Factory) {
		f.launchers[kind] = l
	}
}

func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

func WithPortLedger(ports *testframework.PortLedger) FactoryOption {
	return func(f *Factory) {
		f.ports = ports
	}
}

type nodeOptions struct {
	binary       string
	args         []string
	fundAttempts int
}

// Option adjusts a single GetNode call.
type Option func(*nodeOptions)

// WithExtraArgs appends args to the configured command line of the node.
func WithExtraArgs(args ...string) Option {
	return func(o *nodeOptions) {
		o.args = append(o.args, args...)
	}
}

func WithBinary(path string) Option {
	return func(o *nodeOptions) {
		o.binary = path
	}
}

// WithFundAttempts overrides the AddFunds poll cap of the node.
func WithFundAttempts(n int) Option {
	return func(o *nodeOptions) {
		o.fundAttempts = n
	}
}

// Factory owns the nodes of one test. Handles are stopped in reverse start
// order on Teardown.
type Factory struct {
	cfg       *config.Harness
	logger    *zap.Logger
	dir       string
	ports     *testframework.PortLedger
	ids       testframework.IntIdGetter
	launchers map[node.Kind]Launcher

	mu      sync.Mutex
	handles []node.Handle
	procs   []*testframework.DaemonProcess
	torn    bool

	// infraMu guards the lazily started shared daemons.
	infraMu   sync.Mutex
	bitcoind  *testframework.BitcoinNode
	oracle    *chain.Bitcoind
	electrumx *testframework.ElectrumX
}

// New creates a factory for t. Teardown is registered with t.Cleanup and
// process logs are dumped if the test failed.
func New(t testing.TB, cfg *config.Harness, opts ...FactoryOption) *Factory {
	t.Helper()
	f := newFactory(cfg, opts)
	if f.logger == nil {
		level := zapcore.InfoLevel
		if f.cfg.Debug {
			level = zapcore.DebugLevel
		}
		f.logger = zaptest.NewLogger(t, zaptest.Level(level))
	}
	f.dir = makeTestDir(t, f.cfg.TestDir)

	t.Cleanup(func() {
		if t.Failed() {
			f.printFailed()
		}
		if err := f.Teardown(); err != nil {
			t.Errorf("teardown: %v", err)
		}
	})
	return f
}

// Open creates a factory outside of a test. The caller owns Teardown and
// the directory below cfg.TestDir is left in place.
func Open(cfg *config.Harness, opts ...FactoryOption) (*Factory, error) {
	f := newFactory(cfg, opts)
	if f.logger == nil {
		zl, err := log.NewZapLogger(f.cfg.Debug)
		if err != nil {
			return nil, err
		}
		f.logger = zl.Named("factory")
	}
	if err := os.MkdirAll(f.cfg.TestDir, 0o755); err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp(f.cfg.TestDir, "run-")
	if err != nil {
		return nil, err
	}
	f.dir = dir
	return f, nil
}

func newFactory(cfg *config.Harness, opts []FactoryOption) *Factory {
	if cfg == nil {
		cfg = config.Default()
	}
	f := &Factory{
		cfg:       cfg,
		launchers: defaultLaunchers(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.ports == nil {
		f.ports = testframework.NewPortLedger(cfg.PortsDB)
	}
	return f
}

func (f *Factory) Dir() string {
	return f.dir
}

// Chain returns the oracle of the shared bitcoind, starting it on first use.
func (f *Factory) Chain(ctx context.Context) (*chain.Bitcoind, error) {
	_, oracle, err := f.bitcoin(ctx)
	return oracle, err
}

// GetNode starts a node of kind and registers it for teardown.
func (f *Factory) GetNode(ctx context.Context, kind node.Kind, opts ...Option) (node.Handle, error) {
	launch, ok := f.launchers[kind]
	if !ok {
		return nil, fmt.Errorf("no launcher for %q", kind)
	}
	o := &nodeOptions{
		binary:       f.cfg.Binary(kind),
		args:         f.cfg.Args(kind),
		fundAttempts: f.cfg.AddFundsMaxAttempts,
	}
	for _, opt := range opts {
		opt(o)
	}

	f.mu.Lock()
	torn := f.torn
	f.mu.Unlock()
	if torn {
		return nil, ErrTornDown
	}

	env := &Env{
		ID:           f.ids.NextId(),
		Kind:         kind,
		Dir:          f.dir,
		Binary:       o.binary,
		Args:         o.args,
		FundAttempts: o.fundAttempts,
		Ports:        f.ports,
		f:            f,
	}
	env.Logger = f.logger.Named(env.Name())

	h, err := launch(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", env.Name(), err)
	}

	f.mu.Lock()
	if f.torn {
		f.mu.Unlock()
		if err := h.Stop(); err != nil {
			f.logger.Warn("stop node started during teardown", zap.String("node", env.Name()), zap.Error(err))
		}
		return nil, ErrTornDown
	}
	f.handles = append(f.handles, h)
	f.mu.Unlock()
	f.logger.Info("node started", zap.String("node", env.Name()), zap.Stringer("address", h.Address()))
	return h, nil
}

// Teardown stops every node exactly once, newest first, then the shared
// daemons. It can be called more than once.
func (f *Factory) Teardown() error {
	f.mu.Lock()
	handles := f.handles
	f.handles = nil
	f.torn = true
	f.mu.Unlock()

	var errs []error
	for i := len(handles) - 1; i >= 0; i-- {
		if err := handles[i].Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", handles[i].Kind(), err))
		}
	}

	// Processes of launches that failed half way have no handle.
	f.mu.Lock()
	procs := f.procs
	f.mu.Unlock()
	for i := len(procs) - 1; i >= 0; i-- {
		if !procs[i].IsRunning() || f.isShared(procs[i]) {
			continue
		}
		if err := procs[i].Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", procs[i].Prefix(), err))
		}
	}

	f.infraMu.Lock()
	if f.electrumx != nil {
		if err := f.electrumx.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop electrumx: %w", err))
		}
		f.electrumx = nil
	}
	if f.bitcoind != nil {
		if err := f.bitcoind.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop bitcoind: %w", err))
		}
		f.bitcoind, f.oracle = nil, nil
	}
	f.infraMu.Unlock()

	_ = f.logger.Sync()
	return errors.Join(errs...)
}

// isShared reports whether p is the shared bitcoind or ElectrumX, which
// are stopped last.
func (f *Factory) isShared(p *testframework.DaemonProcess) bool {
	f.infraMu.Lock()
	defer f.infraMu.Unlock()
	return (f.bitcoind != nil && f.bitcoind.DaemonProcess == p) ||
		(f.electrumx != nil && f.electrumx.DaemonProcess == p)
}

func (f *Factory) isTornDown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.torn
}

func (f *Factory) bitcoin(ctx context.Context) (*testframework.BitcoinNode, *chain.Bitcoind, error) {
	f.infraMu.Lock()
	defer f.infraMu.Unlock()
	if f.oracle != nil {
		return f.bitcoind, f.oracle, nil
	}
	if f.isTornDown() {
		return nil, nil, ErrTornDown
	}

	proc, err := testframework.NewBitcoinNode(f.dir, f.cfg.Binaries.Bitcoind, f.ports, 1)
	if err != nil {
		return nil, nil, err
	}
	f.track(proc.DaemonProcess)
	if err := proc.Run(); err != nil {
		return nil, nil, node.Unavailable("start bitcoind", err)
	}

	oracle := chain.NewBitcoind(fmt.Sprintf("%s:%d", proc.RpcHost, proc.RpcPort),
		proc.RpcUser, proc.RpcPassword, proc.WalletName)
	// The rpc server answers "warming up" for a moment after the log line.
	err = backoff.Retry(func() error {
		return oracle.Bootstrap(ctx)
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(bootstrapRetryInterval), 20), ctx))
	if err != nil {
		_ = proc.Stop()
		return nil, nil, fmt.Errorf("bootstrap bitcoind: %w", err)
	}
	f.bitcoind, f.oracle = proc, oracle
	f.logger.Info("bitcoind started", zap.String("rpc", proc.RpcURL()))
	return f.bitcoind, f.oracle, nil
}

func (f *Factory) electrumX(ctx context.Context) (*testframework.ElectrumX, error) {
	bitcoin, _, err := f.bitcoin(ctx)
	if err != nil {
		return nil, err
	}

	f.infraMu.Lock()
	defer f.infraMu.Unlock()
	if f.electrumx != nil {
		return f.electrumx, nil
	}
	x, err := testframework.NewElectrumX(f.dir, f.cfg.Binaries.ElectrumX, bitcoin, f.ports)
	if err != nil {
		return nil, err
	}
	f.track(x.DaemonProcess)
	if err := x.Run(ctx); err != nil {
		_ = x.Stop()
		return nil, node.Unavailable("start electrumx", err)
	}
	f.electrumx = x
	f.logger.Info("electrumx started", zap.String("addr", x.Addr()))
	return x, nil
}

func (f *Factory) track(p *testframework.DaemonProcess) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.procs = append(f.procs, p)
}
