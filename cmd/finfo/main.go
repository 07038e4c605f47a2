package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/prometheus/common/version"

	"github.com/ibmresilient/finfo/pkg/report"
)

const appName = "finfo"

// Version is set via build flag -ldflags -X main.Version
var (
	Version  string
	Branch   string
	Revision string
)

const (
	exitOK       = 0
	exitNotFound = 1
	exitFatal    = 2
)

func init() {
	version.Version = Version
	version.Branch = Branch
	version.Revision = Revision
}

func main() {
	var c cli
	kong.Parse(&c,
		kong.Name(appName),
		kong.Description("Print information about the fields of a Resilient object type."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version.Print(appName)},
	)

	// every report byte goes through the UTF-8 output adapter
	out := report.NewOutput(os.Stdout)

	code, err := c.run(context.Background(), out, os.Stderr, connect)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(exitFatal)
	}

	os.Exit(code)
}
