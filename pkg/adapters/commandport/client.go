package commandport

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/portscope/internal/logging"
	"github.com/aretw0/portscope/pkg/domain"
)

//go:embed bridge.py
var bridgeSource []byte

// DefaultAddr is where `commandPort -n ":7001" -stp "python"` listens.
const DefaultAddr = "localhost:7001"

// DefaultTimeout bounds one round trip when the context has no deadline.
const DefaultTimeout = 10 * time.Second

// Error kinds reported by the bridge.
const (
	kindMissingNode = "missing_node"
	kindEvaluation  = "evaluation"
)

// envelope is the bridge's reply to one call.
type envelope struct {
	OK    bool            `json:"ok"`
	Value json.RawMessage `json:"value"`
	Error string          `json:"error"`
	Kind  string          `json:"kind"`
}

// Client speaks to a Maya command port in Python mode.
// Requests are serialized over a single connection, opened lazily and
// re-opened after a transport failure.
type Client struct {
	addr    string
	timeout time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	conn      net.Conn
	reader    *bufio.Reader
	installed bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-call deadline used when the context has none.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the command port at addr.
func NewClient(addr string, opts ...ClientOption) *Client {
	if addr == "" {
		addr = DefaultAddr
	}
	c := &Client{
		addr:    addr,
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close drops the connection. The next call reconnects.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	c.installed = false
	return err
}

// Call invokes one bridge operation and decodes its value into out (may be nil).
func (c *Client) Call(ctx context.Context, op string, req map[string]any, out any) error {
	payload := map[string]any{"op": op}
	for k, v := range req {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureBridge(ctx); err != nil {
		return err
	}

	code := fmt.Sprintf("_portscope_call('%s')", base64.StdEncoding.EncodeToString(body))
	reply, err := c.roundTrip(ctx, code)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal([]byte(reply), &env); err != nil {
		return fmt.Errorf("%w: malformed reply to %s: %q", domain.ErrHost, op, truncate(reply, 120))
	}
	if !env.OK {
		return envelopeError(op, env)
	}
	if out == nil || len(env.Value) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(env.Value))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s value: %v", domain.ErrHost, op, err)
	}
	return nil
}

func envelopeError(op string, env envelope) error {
	switch env.Kind {
	case kindMissingNode:
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, env.Error)
	case kindEvaluation:
		return fmt.Errorf("%w: %s", domain.ErrEvaluation, env.Error)
	default:
		return fmt.Errorf("%w: %s: %s", domain.ErrHost, op, env.Error)
	}
}

// ensureBridge defines the bridge functions in the host's Python session once per connection.
func (c *Client) ensureBridge(ctx context.Context) error {
	if c.installed && c.conn != nil {
		return nil
	}
	code := fmt.Sprintf("import base64; exec(base64.b64decode('%s').decode('utf-8'))",
		base64.StdEncoding.EncodeToString(bridgeSource))
	if _, err := c.roundTrip(ctx, code); err != nil {
		return fmt.Errorf("failed to install bridge: %w", err)
	}
	c.installed = true
	c.logger.Debug("command port bridge installed", "addr", c.addr)
	return nil
}

// roundTrip sends one line of Python and reads the NUL-terminated reply.
func (c *Client) roundTrip(ctx context.Context, code string) (string, error) {
	if c.conn == nil {
		var dialer net.Dialer
		dctx, cancel := context.WithTimeout(ctx, c.timeout)
		conn, err := dialer.DialContext(dctx, "tcp", c.addr)
		cancel()
		if err != nil {
			return "", fmt.Errorf("%w: failed to connect to %s: %v", domain.ErrHost, c.addr, err)
		}
		c.conn = conn
		c.reader = bufio.NewReader(conn)
		c.installed = false
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		_ = c.closeLocked()
		return "", fmt.Errorf("%w: %v", domain.ErrHost, err)
	}

	if _, err := c.conn.Write([]byte(code + "\n")); err != nil {
		_ = c.closeLocked()
		return "", fmt.Errorf("%w: write to %s: %v", domain.ErrHost, c.addr, err)
	}

	reply, err := c.reader.ReadString(0)
	if err != nil {
		_ = c.closeLocked()
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", fmt.Errorf("%w: timed out waiting for %s", domain.ErrHost, c.addr)
		}
		return "", fmt.Errorf("%w: read from %s: %v", domain.ErrHost, c.addr, err)
	}
	return strings.TrimRight(reply, "\x00\r\n"), nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
