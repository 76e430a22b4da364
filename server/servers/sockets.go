package servers

import (
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/websmith/wsaccept/channel"
	"github.com/websmith/wsaccept/negotiation"
	"github.com/websmith/wsaccept/server/authenticators"
	"github.com/websmith/wsaccept/shared"
	"github.com/websmith/wsaccept/shared/handoff"
)

func (s *Server) serveSocket(w http.ResponseWriter, r *http.Request) {
	clientUUID, err := uuid.NewRandom()
	if err != nil {
		s.log.Printf("error creating client ID: %v", err)
		http.Error(w, "Error creating client ID", http.StatusInternalServerError)
		return
	}
	clientID := clientUUID.String()
	clientLogger := shared.MakeLogger("CLIENT", clientID)

	for key, values := range s.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	if !s.authenticate(clientLogger, w, r) {
		return
	}

	handle := handoff.New()
	r = handoff.Attach(r, handle)

	neg, err := negotiation.Validate(r, s.ChannelOpts)
	if err != nil {
		s.trackRejection(r)
		clientLogger.Printf("rejected upgrade: %v", err)
		var rejection negotiation.Rejection
		if errors.As(err, &rejection) {
			rejection.Respond(w)
		} else {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	response := neg.Protocols(s.Protocols...).Upgrade(func(ch *channel.Channel) {
		if protocol := ch.Protocol(); protocol != "" {
			clientLogger.Printf("upgraded connection (subprotocol %s)", protocol)
		} else {
			clientLogger.Printf("upgraded connection")
		}
		if s.Handler != nil {
			s.Handler(clientID, clientLogger, ch)
		}
	})

	if err := completeHandoff(w, response, handle); err != nil {
		clientLogger.Printf("connection handoff failed: %v", err)
	}
}

func (s *Server) authenticate(logger *log.Logger, w http.ResponseWriter, r *http.Request) bool {
	tlsUsername := ""
	if r.TLS != nil && len(r.TLS.PeerCertificates) > 0 {
		tlsUsername = r.TLS.PeerCertificates[0].Subject.CommonName
	}

	result, username := s.Authenticator.Authenticate(r, w)
	if result != authenticators.AuthOk {
		if result == authenticators.AuthFailedDefault {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		}
		logger.Printf("client failed authenticator challenge")
		return false
	}

	if username != "" && tlsUsername != "" && username != tlsUsername {
		http.Error(w, "Mismatch between mTLS CN and authenticator username", http.StatusUnauthorized)
		logger.Printf("mTLS CN / authenticator username mismatch")
		return false
	}

	if username != "" {
		logger.Printf("authenticated as: %s", username)
	}
	return true
}

// trackRejection counts recent handshake failures per remote host so that a
// misbehaving client shows up in the server log as a pattern, not as
// scattered single lines.
func (s *Server) trackRejection(r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	count, _ := s.rejections.Get(host)
	count++
	s.rejections.Add(host, count)
	if count > 1 {
		s.log.Printf("%d rejected handshakes from %s", count, host)
	}
}
