// Package authenticators guards the upgrade endpoint: every handshake is
// authenticated before negotiation begins.
package authenticators

import (
	"fmt"
	"net/http"
)

type AuthResult int

const (
	AuthOk            AuthResult = iota // authentication succeeded
	AuthFailedDefault                   // failed, caller writes the default error
	AuthFailedCustom                    // failed, authenticator already responded
)

type Authenticator interface {
	Load(configFile string) error
	Authenticate(r *http.Request, w http.ResponseWriter) (AuthResult, string)
}

// New returns an unloaded authenticator of the named kind. An empty kind
// means allow-all.
func New(kind string) (Authenticator, error) {
	switch kind {
	case "", "allow-all":
		return &AllowAll{}, nil
	case "htpasswd":
		return &Htpasswd{}, nil
	case "radius":
		return &Radius{}, nil
	case "jwt":
		return &JWT{}, nil
	}
	return nil, fmt.Errorf("unknown authenticator type %q", kind)
}

func respondWWWAuthenticateBasic(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", "Basic")
}

func respondWWWAuthenticateBearer(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", "Bearer")
}
