package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/websmith/wsaccept/shared"
)

func UsageWithVersion() {
	fmt.Fprintf(flag.CommandLine.Output(), "wsaccept version %s\nUsage of %s:\n", shared.Version, os.Args[0])
	flag.PrintDefaults()
}
