package authenticators

import (
	"net/http"

	"github.com/tg123/go-htpasswd"
)

// Htpasswd authenticates HTTP Basic credentials against an htpasswd file.
type Htpasswd struct {
	authFile *htpasswd.File
}

var _ Authenticator = &Htpasswd{}

func (a *Htpasswd) Load(configFile string) (err error) {
	if configFile == "" {
		configFile = "htpasswd"
	}
	a.authFile, err = htpasswd.New(configFile, htpasswd.DefaultSystems, nil)
	return
}

func (a *Htpasswd) Authenticate(r *http.Request, w http.ResponseWriter) (AuthResult, string) {
	username, password, ok := r.BasicAuth()
	if !ok {
		respondWWWAuthenticateBasic(w)
		return AuthFailedDefault, ""
	}

	if !a.authFile.Match(username, password) {
		respondWWWAuthenticateBasic(w)
		return AuthFailedDefault, ""
	}

	return AuthOk, username
}
