package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"saxiib/internal/domain"
)

const writeTimeout = 10 * time.Second

var errRelayLost = errors.New("relay connection lost")

const errConnInUse = "connection id in use"

// Client is a peer network endpoint backed by one WebSocket to a relay Server.
type Client struct {
	self domain.PeerID
	ws   *websocket.Conn
	log  *logrus.Entry
	done chan struct{}

	writeMu sync.Mutex

	mu     sync.Mutex
	accept domain.AcceptFunc
	conns  map[string]*wsConn
	closed bool
}

// Dial connects to the relay at baseURL and registers as self.
func Dial(ctx context.Context, baseURL string, self domain.PeerID, log *logrus.Entry) (*Client, error) {
	u, err := peerURL(baseURL, self)
	if err != nil {
		return nil, err
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", baseURL, err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	c := &Client{
		self:  self,
		ws:    ws,
		log:   log.WithFields(logrus.Fields{"component": "relay-client", "self": self}),
		done:  make(chan struct{}),
		conns: make(map[string]*wsConn),
	}
	go c.readLoop()
	c.log.WithField("relay", baseURL).Debug("connected to relay")
	return c, nil
}

// peerURL maps an http(s) or ws(s) base URL to the registration endpoint.
func peerURL(base string, self domain.PeerID) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("relay url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("relay url: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/peer"
	u.RawQuery = url.Values{"id": {string(self)}}.Encode()
	return u.String(), nil
}

func (c *Client) MyAddress() domain.PeerID { return c.self }

func (c *Client) Accept(fn domain.AcceptFunc) {
	c.mu.Lock()
	c.accept = fn
	c.mu.Unlock()
}

// Connect asks the relay to open a connection to remote. The result arrives
// through h: OnOpen when remote acknowledges, OnClose otherwise.
func (c *Client) Connect(remote domain.PeerID, h domain.ConnHandler) (domain.Conn, error) {
	cc := &wsConn{client: c, id: uuid.NewString(), remote: remote, handler: h}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errRelayLost
	}
	c.conns[cc.id] = cc
	c.mu.Unlock()

	if err := c.write(Envelope{Kind: KindOpen, To: remote, Conn: cc.id}); err != nil {
		c.forget(cc.id)
		return nil, err
	}
	return cc, nil
}

// Close drops every logical connection and the WebSocket.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	c.writeMu.Lock()
	werr := c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	c.writeMu.Unlock()
	cerr := c.ws.Close()
	<-c.done

	return multierr.Combine(ignoreClosed(werr), ignoreClosed(cerr))
}

func ignoreClosed(err error) error {
	if errors.Is(err, websocket.ErrCloseSent) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		var env Envelope
		if err := c.ws.ReadJSON(&env); err != nil {
			c.shutdown(err)
			return
		}
		c.route(env)
	}
}

func (c *Client) route(env Envelope) {
	switch env.Kind {
	case KindOpen:
		c.inbound(env)
	case KindAck:
		if cc := c.lookup(env.Conn, env.From); cc != nil {
			cc.opened()
		}
	case KindData:
		if cc := c.lookup(env.Conn, env.From); cc != nil && env.Frame != nil {
			cc.receive(*env.Frame)
		}
	case KindClose:
		if cc := c.remove(env.Conn, env.From); cc != nil {
			cc.remoteClosed(remoteError(env.Error))
		}
	default:
		c.log.WithField("kind", env.Kind).Debug("ignoring envelope")
	}
}

func (c *Client) inbound(env Envelope) {
	c.mu.Lock()
	accept := c.accept
	c.mu.Unlock()
	if accept == nil {
		_ = c.write(Envelope{Kind: KindClose, To: env.From, Conn: env.Conn, Error: domain.ErrPeerUnavailable.Error()})
		return
	}

	cc := &wsConn{client: c, id: env.Conn, remote: env.From}
	c.mu.Lock()
	_, taken := c.conns[cc.id]
	if !taken {
		c.conns[cc.id] = cc
	}
	c.mu.Unlock()
	if taken {
		c.log.WithFields(logrus.Fields{"peer": env.From, "conn": env.Conn}).Warn("refusing open for a connection id in use")
		_ = c.write(Envelope{Kind: KindClose, To: env.From, Conn: env.Conn, Error: errConnInUse})
		return
	}

	h := accept(cc)
	cc.mu.Lock()
	cc.handler = h
	cc.mu.Unlock()

	if err := c.write(Envelope{Kind: KindAck, To: env.From, Conn: env.Conn}); err != nil {
		c.forget(cc.id)
		cc.remoteClosed(err)
		return
	}
	cc.opened()
}

func (c *Client) shutdown(cause error) {
	c.mu.Lock()
	c.closed = true
	conns := c.conns
	c.conns = make(map[string]*wsConn)
	c.mu.Unlock()

	if !websocket.IsCloseError(cause, websocket.CloseNormalClosure) && !errors.Is(cause, net.ErrClosed) {
		c.log.WithError(cause).Warn("relay connection lost")
	}
	for _, cc := range conns {
		cc.remoteClosed(fmt.Errorf("%w: %v", errRelayLost, cause))
	}
	_ = c.ws.Close()
}

func (c *Client) write(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(env)
}

// lookup returns the connection id when it belongs to peer from. Envelopes
// naming another peer's connection are ignored.
func (c *Client) lookup(id string, from domain.PeerID) *wsConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cc := c.conns[id]; cc != nil && cc.remote == from {
		return cc
	}
	return nil
}

// remove is lookup followed by forgetting the connection.
func (c *Client) remove(id string, from domain.PeerID) *wsConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	cc := c.conns[id]
	if cc == nil || cc.remote != from {
		return nil
	}
	delete(c.conns, id)
	return cc
}

// forget drops the local record of a connection this client ends itself.
func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.conns, id)
	c.mu.Unlock()
}

func remoteError(msg string) error {
	switch msg {
	case "":
		return nil
	case domain.ErrPeerUnavailable.Error():
		return domain.ErrPeerUnavailable
	}
	return errors.New(msg)
}

// wsConn is one logical peer connection multiplexed on the client's socket.
type wsConn struct {
	client *Client
	id     string
	remote domain.PeerID

	mu      sync.Mutex
	handler domain.ConnHandler
	open    bool
	closed  bool
}

func (cc *wsConn) RemoteID() domain.PeerID { return cc.remote }

func (cc *wsConn) Send(f domain.Frame) error {
	cc.mu.Lock()
	open, closed := cc.open, cc.closed
	cc.mu.Unlock()
	switch {
	case closed:
		return errConnGone
	case !open:
		return errNotOpen
	}
	return cc.client.write(Envelope{Kind: KindData, To: cc.remote, Conn: cc.id, Frame: &f})
}

func (cc *wsConn) Close() error {
	cc.mu.Lock()
	if cc.closed {
		cc.mu.Unlock()
		return nil
	}
	cc.closed = true
	cc.mu.Unlock()

	cc.client.forget(cc.id)
	return cc.client.write(Envelope{Kind: KindClose, To: cc.remote, Conn: cc.id})
}

func (cc *wsConn) opened() {
	cc.mu.Lock()
	if cc.open || cc.closed {
		cc.mu.Unlock()
		return
	}
	cc.open = true
	h := cc.handler
	cc.mu.Unlock()
	h.Open()
}

func (cc *wsConn) receive(f domain.Frame) {
	cc.mu.Lock()
	h, closed := cc.handler, cc.closed
	cc.mu.Unlock()
	if !closed {
		h.Data(f)
	}
}

func (cc *wsConn) remoteClosed(err error) {
	cc.mu.Lock()
	if cc.closed {
		cc.mu.Unlock()
		return
	}
	cc.closed = true
	h := cc.handler
	cc.mu.Unlock()
	h.Closed(err)
}

var (
	_ domain.PeerNetwork = (*Client)(nil)
	_ domain.Conn        = (*wsConn)(nil)
)
