package authenticators

import (
	"context"
	"log"
	"net/http"
	"time"

	"layeh.com/radius"
	"layeh.com/radius/rfc2865"

	"github.com/websmith/wsaccept/shared"
)

// Radius authenticates HTTP Basic credentials against a RADIUS server.
type Radius struct {
	Server  string        `yaml:"server"`
	Secret  string        `yaml:"secret"`
	Timeout time.Duration `yaml:"timeout"`
}

var _ Authenticator = &Radius{}

func (a *Radius) Load(configFile string) error {
	if err := shared.LoadConfigFile(configFile, a); err != nil {
		return err
	}
	if a.Timeout <= 0 {
		a.Timeout = 5 * time.Second
	}
	return nil
}

func (a *Radius) Authenticate(r *http.Request, w http.ResponseWriter) (AuthResult, string) {
	username, password, ok := r.BasicAuth()
	if !ok {
		respondWWWAuthenticateBasic(w)
		return AuthFailedDefault, ""
	}

	packet := radius.New(radius.CodeAccessRequest, []byte(a.Secret))
	if err := rfc2865.UserName_SetString(packet, username); err != nil {
		respondWWWAuthenticateBasic(w)
		return AuthFailedDefault, ""
	}
	if err := rfc2865.UserPassword_SetString(packet, password); err != nil {
		respondWWWAuthenticateBasic(w)
		return AuthFailedDefault, ""
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.Timeout)
	defer cancel()

	response, err := radius.Exchange(ctx, packet, a.Server)
	if err != nil {
		log.Printf("radius exchange error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return AuthFailedCustom, ""
	}

	if response.Code != radius.CodeAccessAccept {
		respondWWWAuthenticateBasic(w)
		return AuthFailedDefault, ""
	}

	return AuthOk, username
}
