package gamedriver

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ConnectConfig configures the connection to the game's automation endpoint.
type ConnectConfig struct {
	Host           string        // Automation server host (default: 127.0.0.1)
	Port           int           // Automation server port (default: 13000)
	AppName        string        // App instance to attach to (default: "__default__")
	ConnectTimeout time.Duration // Total window to establish the connection (default: 60s)
	CallTimeout    time.Duration // Per-command response timeout (default: 30s)
}

// DefaultConnectConfig returns defaults matching a locally running game.
func DefaultConnectConfig() ConnectConfig {
	return ConnectConfig{
		Host:           "127.0.0.1",
		Port:           13000,
		AppName:        "__default__",
		ConnectTimeout: 60 * time.Second,
		CallTimeout:    30 * time.Second,
	}
}

// request is the wire envelope for a command sent to the game.
type request struct {
	ID      int64       `json:"id"`
	Command string      `json:"command"`
	Params  interface{} `json:"params,omitempty"`
}

// envelope is the wire envelope for everything the game sends back: command
// responses (ID set) and pushed events (Event set).
type envelope struct {
	ID         int64           `json:"id,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	Event      string          `json:"event,omitempty"`
	Message    string          `json:"message,omitempty"`
	StackTrace string          `json:"stackTrace,omitempty"`
}

// Client is the websocket implementation of Driver.
//
// One goroutine reads from the connection and dispatches responses to
// pending calls; log events are delivered to listeners on that same
// goroutine, so listeners must be safe to run concurrently with the test.
type Client struct {
	conn        *websocket.Conn
	callTimeout time.Duration

	writeMu sync.Mutex // Serialize writes to the websocket (required by gorilla/websocket)

	mu        sync.Mutex
	pending   map[int64]chan envelope
	listeners []func(LogNotification)
	closed    bool

	nextID atomic.Int64
	done   chan struct{}
}

var _ Driver = (*Client)(nil)

// Connect dials the game's automation endpoint. The game may still be
// booting when tests start, so the dial is retried at a fixed interval
// until ConnectTimeout elapses.
func Connect(cfg ConnectConfig) (*Client, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 60 * time.Second
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/automation",
		RawQuery: url.Values{"appName": []string{cfg.AppName}}.Encode(),
	}

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	deadline := time.Now().Add(cfg.ConnectTimeout)

	var (
		conn    *websocket.Conn
		lastErr error
	)
	for {
		var err error
		conn, _, err = dialer.Dial(u.String(), nil)
		if err == nil {
			break
		}
		lastErr = err
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("failed to connect to %s within %s: %w", u.Host, cfg.ConnectTimeout, lastErr)
		}
		time.Sleep(500 * time.Millisecond)
	}

	c := &Client{
		conn:        conn,
		callTimeout: cfg.CallTimeout,
		pending:     make(map[int64]chan envelope),
		done:        make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// readLoop reads envelopes until the connection dies, routing responses to
// pending calls and log events to listeners.
func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.failPending()
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Not ours to crash the test over; skip malformed frames.
			continue
		}

		if env.ID != 0 {
			c.mu.Lock()
			ch, ok := c.pending[env.ID]
			if ok {
				delete(c.pending, env.ID)
			}
			c.mu.Unlock()
			if ok {
				ch <- env
			}
			continue
		}

		if env.Event == "log" {
			n := LogNotification{Message: env.Message, StackTrace: env.StackTrace}
			c.mu.Lock()
			listeners := make([]func(LogNotification), len(c.listeners))
			copy(listeners, c.listeners)
			c.mu.Unlock()
			for _, fn := range listeners {
				fn(n)
			}
		}
	}
}

// failPending marks the client closed and unblocks every in-flight call.
func (c *Client) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	for id, ch := range c.pending {
		delete(c.pending, id)
		close(ch)
	}
}

// call sends a command and decodes the result into out (which may be nil).
func (c *Client) call(command string, params interface{}, out interface{}) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	id := c.nextID.Add(1)
	ch := make(chan envelope, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	payload, err := json.Marshal(request{ID: id, Command: command, Params: params})
	if err != nil {
		c.abandon(id)
		return fmt.Errorf("failed to encode %s command: %w", command, err)
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()
	if err != nil {
		c.abandon(id)
		return fmt.Errorf("failed to send %s command: %w", command, err)
	}

	timer := time.NewTimer(c.callTimeout)
	defer timer.Stop()

	select {
	case env, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if env.Error != "" {
			return &CommandError{Command: command, Message: env.Error}
		}
		if out != nil && len(env.Result) > 0 {
			if err := json.Unmarshal(env.Result, out); err != nil {
				return fmt.Errorf("failed to decode %s result: %w", command, err)
			}
		}
		return nil
	case <-c.done:
		return ErrClosed
	case <-timer.C:
		c.abandon(id)
		return fmt.Errorf("no response to %s command within %s", command, c.callTimeout)
	}
}

func (c *Client) abandon(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

type locatorParams struct {
	By    By     `json:"by"`
	Value string `json:"value"`
}

type objectParams struct {
	ID    int64  `json:"id"`
	Count int    `json:"count,omitempty"`
	Text  string `json:"text,omitempty"`
}

// FindObject locates an element right now, without waiting.
func (c *Client) FindObject(loc Locator) (Object, error) {
	var obj Object
	err := c.call("findObject", locatorParams{By: loc.By, Value: loc.Value}, &obj)
	return obj, err
}

// WaitForObject polls FindObject at interval until the element appears or
// timeout elapses. Interval defaults to 500ms when non-positive.
func (c *Client) WaitForObject(loc Locator, timeout, interval time.Duration) (Object, error) {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		obj, err := c.FindObject(loc)
		if err == nil {
			return obj, nil
		}
		if err == ErrClosed {
			return Object{}, err
		}
		if !time.Now().Before(deadline) {
			return Object{}, &NotFoundError{Locator: loc, Timeout: timeout}
		}
		time.Sleep(interval)
	}
}

// Click clicks the object and waits for the game to process the click.
func (c *Client) Click(obj Object) error {
	return c.call("click", objectParams{ID: obj.ID}, nil)
}

// Tap taps the object count times.
func (c *Client) Tap(obj Object, count int) error {
	if count <= 0 {
		count = 1
	}
	return c.call("tap", objectParams{ID: obj.ID, Count: count}, nil)
}

// SetText replaces the object's text content.
func (c *Client) SetText(obj Object, text string) error {
	return c.call("setText", objectParams{ID: obj.ID, Text: text}, nil)
}

// GetText returns the object's text content.
func (c *Client) GetText(obj Object) (string, error) {
	var res struct {
		Text string `json:"text"`
	}
	err := c.call("getText", objectParams{ID: obj.ID}, &res)
	return res.Text, err
}

// CurrentScene returns the name of the loaded scene.
func (c *Client) CurrentScene() (string, error) {
	var res struct {
		Scene string `json:"scene"`
	}
	err := c.call("currentScene", nil, &res)
	return res.Scene, err
}

// LoadScene loads the named scene.
func (c *Client) LoadScene(name string) error {
	return c.call("loadScene", struct {
		Scene string `json:"scene"`
	}{Scene: name}, nil)
}

// Screenshot captures the game viewport as PNG bytes.
func (c *Client) Screenshot() ([]byte, error) {
	var res struct {
		Data []byte `json:"data"` // base64 on the wire, decoded by encoding/json
	}
	err := c.call("screenshot", nil, &res)
	return res.Data, err
}

// OnLogNotification registers a listener for pushed game log lines.
// Listeners run on the client's read goroutine.
func (c *Client) OnLogNotification(fn func(LogNotification)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Close disconnects from the automation server and fails in-flight calls.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()

	err := c.conn.Close()
	c.failPending()
	return err
}
