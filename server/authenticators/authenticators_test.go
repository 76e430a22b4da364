package authenticators_test

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"

	"github.com/websmith/wsaccept/server/authenticators"
)

func TestNewByKind(t *testing.T) {
	for _, kind := range []string{"", "allow-all", "htpasswd", "radius", "jwt"} {
		if _, err := authenticators.New(kind); err != nil {
			t.Errorf("New(%q) error = %v", kind, err)
		}
	}
	if _, err := authenticators.New("kerberos"); err == nil {
		t.Error("New() accepted an unknown authenticator type")
	}
}

func TestAllowAll(t *testing.T) {
	a := &authenticators.AllowAll{}
	if err := a.Load(""); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	r := httptest.NewRequest("GET", "/ws", nil)
	result, username := a.Authenticate(r, httptest.NewRecorder())
	if result != authenticators.AuthOk || username != "" {
		t.Errorf("Authenticate() = (%v, %q), want (AuthOk, \"\")", result, username)
	}
}

func writeHtpasswdFile(t *testing.T, username string, password string) string {
	t.Helper()
	digest := sha1.Sum([]byte(password)) // #nosec G401 -- htpasswd {SHA} format
	entry := fmt.Sprintf("%s:{SHA}%s\n", username, base64.StdEncoding.EncodeToString(digest[:]))
	file := filepath.Join(t.TempDir(), "htpasswd")
	if err := os.WriteFile(file, []byte(entry), 0o600); err != nil {
		t.Fatalf("writing htpasswd file: %v", err)
	}
	return file
}

func TestHtpasswd(t *testing.T) {
	a := &authenticators.Htpasswd{}
	if err := a.Load(writeHtpasswdFile(t, "alice", "secret")); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	r := httptest.NewRequest("GET", "/ws", nil)
	r.SetBasicAuth("alice", "secret")
	result, username := a.Authenticate(r, httptest.NewRecorder())
	if result != authenticators.AuthOk || username != "alice" {
		t.Errorf("Authenticate() = (%v, %q), want (AuthOk, \"alice\")", result, username)
	}

	r = httptest.NewRequest("GET", "/ws", nil)
	r.SetBasicAuth("alice", "wrong")
	w := httptest.NewRecorder()
	result, _ = a.Authenticate(r, w)
	if result != authenticators.AuthFailedDefault {
		t.Errorf("Authenticate() with bad password = %v, want AuthFailedDefault", result)
	}
	if w.Header().Get("WWW-Authenticate") != "Basic" {
		t.Error("failed basic auth did not challenge with WWW-Authenticate: Basic")
	}

	r = httptest.NewRequest("GET", "/ws", nil)
	result, _ = a.Authenticate(r, httptest.NewRecorder())
	if result != authenticators.AuthFailedDefault {
		t.Errorf("Authenticate() without credentials = %v, want AuthFailedDefault", result)
	}
}

func TestJWT(t *testing.T) {
	a := &authenticators.JWT{Secret: "sekrit", Issuer: "wsaccept"}

	sign := func(t *testing.T, secret string, issuer string) string {
		t.Helper()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("signing token: %v", err)
		}
		return token
	}

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+sign(t, "sekrit", "wsaccept"))
	result, username := a.Authenticate(r, httptest.NewRecorder())
	if result != authenticators.AuthOk || username != "alice" {
		t.Errorf("Authenticate() = (%v, %q), want (AuthOk, \"alice\")", result, username)
	}

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+sign(t, "wrong-secret", "wsaccept"))
	if result, _ := a.Authenticate(r, httptest.NewRecorder()); result != authenticators.AuthFailedDefault {
		t.Errorf("Authenticate() with bad signature = %v, want AuthFailedDefault", result)
	}

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+sign(t, "sekrit", "someone-else"))
	if result, _ := a.Authenticate(r, httptest.NewRecorder()); result != authenticators.AuthFailedDefault {
		t.Errorf("Authenticate() with wrong issuer = %v, want AuthFailedDefault", result)
	}

	r = httptest.NewRequest("GET", "/ws", nil)
	w := httptest.NewRecorder()
	if result, _ := a.Authenticate(r, w); result != authenticators.AuthFailedDefault {
		t.Errorf("Authenticate() without token = %v, want AuthFailedDefault", result)
	}
	if w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Error("failed bearer auth did not challenge with WWW-Authenticate: Bearer")
	}
}

func TestRadiusLoadDefaults(t *testing.T) {
	file := filepath.Join(t.TempDir(), "radius.yml")
	if err := os.WriteFile(file, []byte("server: 127.0.0.1:1812\nsecret: testing\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	a := &authenticators.Radius{}
	if err := a.Load(file); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if a.Server != "127.0.0.1:1812" || a.Secret != "testing" {
		t.Errorf("Load() = %+v, want server and secret from file", a)
	}
	if a.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want the 5s default", a.Timeout)
	}
}
