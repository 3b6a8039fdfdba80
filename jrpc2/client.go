package jrpc2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/elementsproject/lightning-integration/log"
)

const DefaultDialTimeout = 5 * time.Second

// Client keeps one TCP connection to the server, dialing lazily and again
// after the server hung up. Responses are matched to requests by id so
// concurrent calls may share the connection.
type Client struct {
	addr        string
	dialTimeout time.Duration

	mu   sync.Mutex
	conn net.Conn

	pending        sync.Map // map[string]chan *RawResponse
	requestCounter int64
}

func NewTCPClient(addr string) *Client {
	return &Client{addr: addr, dialTimeout: DefaultDialTimeout}
}

func (c *Client) Addr() string {
	return c.addr
}

func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("unable to dial %s: %w", c.addr, err)
	}
	c.conn = conn
	go c.readQueue(conn)
	return conn, nil
}

func (c *Client) readQueue(conn net.Conn) {
	decoder := json.NewDecoder(conn)
	for {
		var rawResp RawResponse
		if err := decoder.Decode(&rawResp); err != nil {
			if err != io.EOF {
				log.Debugf("jrpc2 %s: %v", c.addr, err)
			}
			break
		}
		c.processResponse(&rawResp)
	}
	c.drop(conn)
}

// drop forgets conn and fails everything still waiting on it.
func (c *Client) drop(conn net.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	_ = conn.Close()

	c.pending.Range(func(key, _ interface{}) bool {
		if ch, ok := c.pending.LoadAndDelete(key); ok {
			close(ch.(chan *RawResponse))
		}
		return true
	})
}

func (c *Client) processResponse(resp *RawResponse) {
	if resp.Id == nil || resp.Id.Val() == "" {
		log.Debugf("jrpc2 %s: response without id", c.addr)
		return
	}
	id := resp.Id.Val()
	respChan, exists := c.pending.LoadAndDelete(id)
	if !exists {
		log.Debugf("jrpc2 %s: no pending request for id %s", c.addr, id)
		return
	}
	respChan.(chan *RawResponse) <- resp
}

// Request issues m and maps the result into resp. It blocks until the
// response arrives or ctx is done.
func (c *Client) Request(ctx context.Context, m Method, resp interface{}) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}

	id := c.NextId()
	replyChan := make(chan *RawResponse, 1)
	c.pending.Store(id.Val(), replyChan)

	data, err := json.Marshal(&Request{id, m})
	if err != nil {
		c.pending.Delete(id.Val())
		return err
	}
	c.mu.Lock()
	_, err = conn.Write(data)
	c.mu.Unlock()
	if err != nil {
		c.pending.Delete(id.Val())
		c.drop(conn)
		return fmt.Errorf("write %s: %w", m.Name(), err)
	}

	select {
	case rawResp := <-replyChan:
		return handleReply(rawResp, resp)
	case <-ctx.Done():
		c.pending.Delete(id.Val())
		return ctx.Err()
	}
}

func handleReply(rawResp *RawResponse, resp interface{}) error {
	if rawResp == nil {
		return fmt.Errorf("connection closed unexpectedly, nil result")
	}
	if rawResp.Error != nil {
		return rawResp.Error
	}
	if resp == nil {
		return nil
	}
	return json.Unmarshal(rawResp.Raw, resp)
}

func (c *Client) NextId() *Id {
	val := atomic.AddInt64(&c.requestCounter, 1)
	return NewIdAsInt(val)
}

func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	c.drop(conn)
	return nil
}
