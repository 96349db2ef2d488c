package ws

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bnema/neuroledger/internal/domain"
	"github.com/gorilla/websocket"
)

// Client sends commands to a Server over a single connection. Send is
// safe for concurrent use; requests are answered in order.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial connects to addr, which is either a host:port or a ws:// URL.
func Dial(ctx context.Context, addr string) (*Client, error) {
	target, err := websocketURL(addr)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Send(ctx context.Context, cmd domain.Command, enc Encoding) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	payload, err := EncodeCommand(cmd, enc)
	if err != nil {
		return Reply{}, err
	}

	messageType := websocket.TextMessage
	if enc == EncodingCBOR {
		messageType = websocket.BinaryMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		_ = c.conn.SetReadDeadline(deadline)
		defer func() {
			_ = c.conn.SetWriteDeadline(time.Time{})
			_ = c.conn.SetReadDeadline(time.Time{})
		}()
	}

	if err := c.conn.WriteMessage(messageType, payload); err != nil {
		return Reply{}, fmt.Errorf("send command: %w", err)
	}

	gotType, data, err := c.conn.ReadMessage()
	if err != nil {
		return Reply{}, fmt.Errorf("read reply: %w", err)
	}
	replyEnc := EncodingJSON
	if gotType == websocket.BinaryMessage {
		replyEnc = EncodingCBOR
	}
	return DecodeReply(data, replyEnc)
}

// Close sends a normal close frame and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(closeGracePeriod))
	return c.conn.Close()
}

func websocketURL(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("server address is required")
	}
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}

	parsed, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse server address: %w", err)
	}
	switch parsed.Scheme {
	case "ws", "wss":
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server address scheme %q", parsed.Scheme)
	}
	if parsed.Path == "" || parsed.Path == "/" {
		parsed.Path = "/ws"
	}
	return parsed.String(), nil
}
