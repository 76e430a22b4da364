// Package servers provides the HTTP front end that carries upgrade requests
// into the negotiation layer: it authenticates the request, validates the
// handshake, writes the 101 response onto the hijacked connection and
// surrenders the raw stream through a handoff handle.
package servers

import (
	"crypto/tls"
	"log"
	"net"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/netutil"

	"github.com/websmith/wsaccept/channel"
	"github.com/websmith/wsaccept/server/authenticators"
	"github.com/websmith/wsaccept/shared"
)

// rejectionCacheSize bounds the per-host handshake failure counters.
const rejectionCacheSize = 1024

// Handler receives the negotiated channel for one client connection. It runs
// on its own goroutine and owns the channel.
type Handler func(clientID string, logger *log.Logger, ch *channel.Channel)

type Server struct {
	ListenAddr    string
	TLSConfig     *tls.Config
	MaxClients    int
	Headers       http.Header
	Protocols     []string
	ChannelOpts   channel.Options
	Authenticator authenticators.Authenticator
	Handler       Handler

	log        *log.Logger
	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
	rejections *lru.Cache[string, int]
}

func New() *Server {
	rejections, _ := lru.New[string, int](rejectionCacheSize)
	return &Server{
		Authenticator: &authenticators.AllowAll{},
		log:           shared.MakeLogger("SERVER", ""),
		rejections:    rejections,
	}
}

// Listen serves upgrade requests until the server is closed. With MaxClients
// set, the listener caps concurrent connections; with a TLS config set, the
// listener terminates TLS.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.ListenAddr)
	if err != nil {
		return err
	}
	if s.MaxClients > 0 {
		ln = netutil.LimitListener(ln, s.MaxClients)
	}
	if s.TLSConfig != nil {
		ln = tls.NewListener(ln, s.TLSConfig)
	}

	tlsInfo := shared.BoolToEnabled(s.TLSConfig != nil)
	if s.TLSConfig != nil {
		tlsInfo = "min " + shared.TLSVersionString(s.TLSConfig.MinVersion)
	}
	s.log.Printf("listening on %s (TLS %s, max clients %d)", ln.Addr(), tlsInfo, s.MaxClients)

	httpServer := &http.Server{
		Handler: http.HandlerFunc(s.serveSocket),
	}

	s.mu.Lock()
	s.listener = ln
	s.httpServer = httpServer
	s.mu.Unlock()

	return httpServer.Serve(ln)
}

// Addr returns the bound listener address, nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Close() error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()
	if httpServer == nil {
		return nil
	}
	return httpServer.Close()
}
