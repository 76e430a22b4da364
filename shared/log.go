package shared

import (
	"fmt"
	"log"
	"os"
)

func makeLoggerPrefix(component string, id string) string {
	if id == "" {
		return fmt.Sprintf("[%s] ", component)
	}
	return fmt.Sprintf("[%s-%s] ", component, id)
}

// MakeLogger returns a stderr logger prefixed with the component name and an
// optional per-connection identifier.
func MakeLogger(component string, id string) *log.Logger {
	return log.New(os.Stderr, makeLoggerPrefix(component, id), log.LstdFlags|log.Lmsgprefix)
}
