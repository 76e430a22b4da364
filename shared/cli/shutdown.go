package cli

import (
	"os"
	"os/signal"
	"syscall"
)

// RegisterShutdownSignals invokes callback once on SIGINT, SIGTERM or SIGHUP.
func RegisterShutdownSignals(callback func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		<-sigs
		callback()
	}()
}
