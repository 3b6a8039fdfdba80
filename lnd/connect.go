package lnd

import (
	"context"
	"fmt"
	"os"
	"time"

	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/retry"
	"github.com/lightningnetwork/lnd/macaroons"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"gopkg.in/macaroon.v2"
)

const (
	// defaultGrpcBackoffTime is the linear back off between calls that
	// failed because lnd was not serving yet.
	defaultGrpcBackoffTime = 500 * time.Millisecond

	// defaultMaxGrpcRetries bounds the retries of a single call. Calls are
	// additionally bounded by their context.
	defaultMaxGrpcRetries = 60

	maxMsgRecvSize = 1 * 1024 * 1024 * 500
)

// ConnConfig describes how to reach the gRPC interface of one lnd.
type ConnConfig struct {
	Host        string
	TLSCertPath string
	// Macaroon is the serialized admin macaroon. MacaroonPath is read when
	// it is empty. Without either the connection carries no macaroon, which
	// is what the wallet unlocker expects.
	Macaroon     []byte
	MacaroonPath string

	Backoff    time.Duration
	MaxRetries uint
	Logger     *zap.Logger
}

func (c *ConnConfig) macaroon() ([]byte, error) {
	if len(c.Macaroon) > 0 || c.MacaroonPath == "" {
		return c.Macaroon, nil
	}
	return os.ReadFile(c.MacaroonPath)
}

// DialOptions returns the options Dial uses, without transport
// credentials.
func (c *ConnConfig) DialOptions() ([]grpc.DialOption, error) {
	backoff := c.Backoff
	if backoff <= 0 {
		backoff = defaultGrpcBackoffTime
	}
	maxRetries := c.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxGrpcRetries
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	retryOptions := []grpc_retry.CallOption{
		grpc_retry.WithBackoff(func(_ uint) time.Duration {
			return backoff
		}),
		grpc_retry.WithCodes(codes.Unavailable),
		grpc_retry.WithMax(maxRetries),
		grpc_retry.WithLogger(zap.NewStdLog(logger.Named("grpc_conn"))),
	}
	opts := []grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxMsgRecvSize)),
		grpc.WithStreamInterceptor(grpc_retry.StreamClientInterceptor(
			retryOptions...,
		)),
		grpc.WithUnaryInterceptor(grpc_retry.UnaryClientInterceptor(
			retryOptions...,
		)),
	}

	macBytes, err := c.macaroon()
	if err != nil {
		return nil, fmt.Errorf("read macaroon: %w", err)
	}
	if len(macBytes) > 0 {
		mac := &macaroon.Macaroon{}
		if err := mac.UnmarshalBinary(macBytes); err != nil {
			return nil, fmt.Errorf("UnmarshalBinary() %w", err)
		}
		cred, err := macaroons.NewMacaroonCredential(mac)
		if err != nil {
			return nil, fmt.Errorf("NewMacaroonCredential() %w", err)
		}
		opts = append(opts, grpc.WithPerRPCCredentials(cred))
	}
	return opts, nil
}

// Dial connects to lnd over TLS. It does not wait for the connection to
// become ready, see WaitForReady.
func Dial(ctx context.Context, cfg *ConnConfig) (*grpc.ClientConn, error) {
	creds, err := credentials.NewClientTLSFromFile(cfg.TLSCertPath, "")
	if err != nil {
		return nil, fmt.Errorf("NewClientTLSFromFile() %w", err)
	}
	opts, err := cfg.DialOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, grpc.WithTransportCredentials(creds))
	return grpc.DialContext(ctx, cfg.Host, opts...)
}
