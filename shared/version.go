package shared

import "log"

// Version is overridden at build time via -ldflags.
var Version = "dev"

func PrintVersion() {
	log.Printf("wsaccept version %s", Version)
}
