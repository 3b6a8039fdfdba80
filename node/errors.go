package node

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnavailable     = errors.New("node unavailable")
	ErrTimeout         = errors.New("timeout")
	ErrChannelNotFound = errors.New("channel not found")
	ErrPayment         = errors.New("payment rejected")
	ErrProtocol        = errors.New("protocol error")
	ErrSequenceDone    = errors.New("sequence exhausted")
)

// UnavailableError is returned when the backend process or its control
// interface can not be reached.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: node unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// PaymentError carries the rejection message of the backend.
type PaymentError struct {
	Message string
}

func (e *PaymentError) Error() string {
	return "payment rejected: " + e.Message
}

func (e *PaymentError) Is(target error) bool { return target == ErrPayment }

// ProtocolError means the backend answered with something we could not
// interpret.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

func Unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}

func Protocol(op string, format string, v ...interface{}) error {
	return &ProtocolError{Op: op, Err: fmt.Errorf(format, v...)}
}

// Timeout wraps ErrTimeout with the operation that ran out of time.
func Timeout(op string) error {
	return fmt.Errorf("%s: %w", op, ErrTimeout)
}

// FromContext maps an expired context to ErrTimeout. Other errors are
// returned as is.
func FromContext(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(op)
	}
	return err
}
