package authenticators

import "net/http"

type AllowAll struct{}

var _ Authenticator = &AllowAll{}

func (a *AllowAll) Load(configFile string) error {
	return nil
}

func (a *AllowAll) Authenticate(r *http.Request, w http.ResponseWriter) (AuthResult, string) {
	return AuthOk, ""
}
