package relay

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"saxiib/internal/domain"
)

const errPeerLeft = "peer disconnected"

// Server forwards envelopes between connected peers.
type Server struct {
	log      *logrus.Entry
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu    sync.Mutex
	peers map[domain.PeerID]*peerSocket
	links map[string][2]domain.PeerID
}

type peerSocket struct {
	id      domain.PeerID
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (p *peerSocket) write(env Envelope) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return p.ws.WriteJSON(env)
}

// NewServer returns a relay server. Peers register at GET /peer?id=<id>.
func NewServer(log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Server{
		log: log.WithField("component", "relay"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		mux:   http.NewServeMux(),
		peers: make(map[domain.PeerID]*peerSocket),
		links: make(map[string][2]domain.PeerID),
	}
	s.mux.HandleFunc("/peer", s.handlePeer)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		n := len(s.peers)
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "{\"peers\":%d}\n", n)
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// Online reports whether id currently has a registered socket.
func (s *Server) Online(id domain.PeerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.peers[id]
	return ok
}

// Close disconnects every peer.
func (s *Server) Close() error {
	s.mu.Lock()
	peers := s.peers
	s.peers = make(map[domain.PeerID]*peerSocket)
	s.links = make(map[string][2]domain.PeerID)
	s.mu.Unlock()
	for _, p := range peers {
		_ = p.ws.Close()
	}
	return nil
}

func (s *Server) handlePeer(w http.ResponseWriter, r *http.Request) {
	id := domain.PeerID(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Debug("upgrade failed")
		return
	}
	p := &peerSocket{id: id, ws: ws}
	s.register(p)
	defer s.unregister(p)

	log := s.log.WithField("peer", id)
	log.Info("peer online")
	for {
		var env Envelope
		if err := ws.ReadJSON(&env); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("read failed")
			}
			return
		}
		env.From = id
		s.forward(p, env)
	}
}

func (s *Server) forward(from *peerSocket, env Envelope) {
	s.mu.Lock()
	target := s.peers[env.To]
	ends, linked := s.links[env.Conn]
	switch {
	case env.Kind == KindOpen && linked:
		s.mu.Unlock()
		_ = from.write(Envelope{Kind: KindClose, From: env.To, To: from.id, Conn: env.Conn, Error: errConnInUse})
		return
	case linked && from.id != ends[0] && from.id != ends[1]:
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{"from": from.id, "conn": env.Conn}).Warn("dropping envelope for a foreign connection")
		return
	case target == nil:
		delete(s.links, env.Conn)
	case env.Kind == KindOpen:
		s.links[env.Conn] = [2]domain.PeerID{from.id, env.To}
	case env.Kind == KindClose:
		delete(s.links, env.Conn)
	}
	s.mu.Unlock()

	if target == nil {
		if env.Kind != KindClose {
			_ = from.write(Envelope{Kind: KindClose, From: env.To, To: from.id, Conn: env.Conn, Error: domain.ErrPeerUnavailable.Error()})
		}
		return
	}
	if err := target.write(env); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"from": from.id, "to": env.To}).Debug("forward failed")
	}
}

// register installs p, closing any earlier socket registered under the same id.
func (s *Server) register(p *peerSocket) {
	s.mu.Lock()
	old := s.peers[p.id]
	s.peers[p.id] = p
	s.mu.Unlock()
	if old != nil {
		_ = old.ws.Close()
	}
}

// unregister removes p and tells the far end of each of its connections.
func (s *Server) unregister(p *peerSocket) {
	type notice struct {
		to   *peerSocket
		conn string
		from domain.PeerID
	}
	var notices []notice

	s.mu.Lock()
	if s.peers[p.id] == p {
		delete(s.peers, p.id)
		for conn, ends := range s.links {
			var other domain.PeerID
			switch p.id {
			case ends[0]:
				other = ends[1]
			case ends[1]:
				other = ends[0]
			default:
				continue
			}
			delete(s.links, conn)
			if o := s.peers[other]; o != nil {
				notices = append(notices, notice{to: o, conn: conn, from: p.id})
			}
		}
	}
	s.mu.Unlock()

	_ = p.ws.Close()
	for _, n := range notices {
		_ = n.to.write(Envelope{Kind: KindClose, From: n.from, To: n.to.id, Conn: n.conn, Error: errPeerLeft})
	}
	s.log.WithField("peer", p.id).Info("peer offline")
}
