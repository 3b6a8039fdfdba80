package testframework

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// DefaultPortBase is where allocation starts when the ledger is new.
	DefaultPortBase = 20000
	DefaultPortMax  = 40000

	portsBucket = "ports"
	nextKey     = "next"
)

var ErrPortsExhausted = errors.New("no free ports left")

// PortLedger hands out TCP ports that are never issued twice, not within
// this process and not across concurrently running test binaries sharing
// the ledger file. Candidates are checked by binding them before they are
// returned.
type PortLedger struct {
	sync.Mutex

	path   string
	base   uint16
	max    uint16
	issued map[int]struct{}
}

// NewPortLedger stores its state in path. An empty path uses a file in the
// system temp dir.
func NewPortLedger(path string) *PortLedger {
	if path == "" {
		path = filepath.Join(os.TempDir(), "lightning-integration-ports.db")
	}
	return &PortLedger{
		path:   path,
		base:   DefaultPortBase,
		max:    DefaultPortMax,
		issued: make(map[int]struct{}),
	}
}

// WithRange restricts allocation to [base, max).
func (p *PortLedger) WithRange(base, max uint16) *PortLedger {
	p.base = base
	p.max = max
	return p
}

// Next returns a port that was free at the time of the call.
func (p *PortLedger) Next() (int, error) {
	p.Lock()
	defer p.Unlock()

	// The file lock is held only for the duration of one allocation so
	// other binaries can interleave.
	db, err := bbolt.Open(p.path, 0o600, &bbolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return 0, fmt.Errorf("bbolt.Open(%s) %w", p.path, err)
	}
	defer db.Close()

	var port int
	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(portsBucket))
		if err != nil {
			return err
		}

		next := p.base
		if v := b.Get([]byte(nextKey)); len(v) == 2 {
			next = binary.BigEndian.Uint16(v)
		}

		// Wrap at most once around the range.
		for tries := 0; tries < int(p.max-p.base); tries++ {
			if next < p.base || next >= p.max {
				next = p.base
			}
			candidate := int(next)
			next++
			if _, ok := p.issued[candidate]; ok {
				continue
			}
			if !portIsFree(candidate) {
				continue
			}
			port = candidate
			break
		}
		if port == 0 {
			return ErrPortsExhausted
		}

		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, next)
		return b.Put([]byte(nextKey), buf)
	})
	if err != nil {
		return 0, err
	}

	p.issued[port] = struct{}{}
	return port, nil
}

// NextN allocates n distinct ports.
func (p *PortLedger) NextN(n int) ([]int, error) {
	ports := make([]int, 0, n)
	for i := 0; i < n; i++ {
		port, err := p.Next()
		if err != nil {
			return nil, err
		}
		ports = append(ports, port)
	}
	return ports, nil
}

func portIsFree(port int) bool {
	l, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = l.Close()
	return true
}
