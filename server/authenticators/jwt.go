package authenticators

import (
	"fmt"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v4"

	"github.com/websmith/wsaccept/shared"
)

// JWT accepts requests bearing an HMAC-signed token in the Authorization
// header and reports the subject claim as the username.
type JWT struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

var _ Authenticator = &JWT{}

func (a *JWT) Load(configFile string) error {
	return shared.LoadConfigFile(configFile, a)
}

func (a *JWT) Authenticate(r *http.Request, w http.ResponseWriter) (AuthResult, string) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		respondWWWAuthenticateBearer(w)
		return AuthFailedDefault, ""
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.Secret), nil
	})
	if err != nil || !parsed.Valid {
		respondWWWAuthenticateBearer(w)
		return AuthFailedDefault, ""
	}

	if a.Issuer != "" && claims.Issuer != a.Issuer {
		respondWWWAuthenticateBearer(w)
		return AuthFailedDefault, ""
	}

	return AuthOk, claims.Subject
}
