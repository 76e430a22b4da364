package shared_test

import (
	"strings"
	"testing"

	"github.com/websmith/wsaccept/shared"
)

func TestLoadConfigReader(t *testing.T) {
	var out struct {
		Listen string `yaml:"listen"`
	}
	if err := shared.LoadConfigReader(strings.NewReader("listen: 127.0.0.1:9000\n"), &out); err != nil {
		t.Fatalf("LoadConfigReader() error = %v", err)
	}
	if out.Listen != "127.0.0.1:9000" {
		t.Errorf("Listen = %q, want %q", out.Listen, "127.0.0.1:9000")
	}
}

func TestLoadConfigReaderRejectsUnknownKeys(t *testing.T) {
	var out struct {
		Listen string `yaml:"listen"`
	}
	if err := shared.LoadConfigReader(strings.NewReader("lsiten: oops\n"), &out); err == nil {
		t.Error("LoadConfigReader() accepted an unknown key")
	}
}

func TestTLSVersionRoundTrip(t *testing.T) {
	for _, version := range []string{"1.0", "1.1", "1.2", "1.3"} {
		num, err := shared.TLSVersionNum(version)
		if err != nil {
			t.Fatalf("TLSVersionNum(%q) error = %v", version, err)
		}
		if got := shared.TLSVersionString(num); got != version {
			t.Errorf("TLSVersionString(TLSVersionNum(%q)) = %q", version, got)
		}
	}
	if _, err := shared.TLSVersionNum("0.9"); err == nil {
		t.Error("TLSVersionNum() accepted an unsupported version")
	}
	if got := shared.TLSVersionString(0x0300); got != "Invalid" {
		t.Errorf("TLSVersionString(0x0300) = %q, want Invalid", got)
	}
}
