// Command sgnl-sudo-plugin drives the sudo-style policy adapter's
// open/check/close sequence from the command line, standing in for the
// real sudo front-end so the adapter can be exercised end to end without a
// compiled plugin shared object.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tguy-sgnl/sgnl-linux-host/internal/sudoadapter"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the SGNL configuration document")
		list       = flag.Bool("list", false, "list assets the resolved principal may execute")
		verbose    = flag.Bool("verbose", false, "verbose list/version output")
		version    = flag.Bool("version", false, "print the plugin version and exit")
	)
	flag.Parse()

	adapter := sudoadapter.New()

	settings := []string{}
	if *configPath != "" {
		settings = append(settings, "config_path="+*configPath)
	}

	code, errstr := adapter.Open(sudoadapter.SupportedAPIMajor, printf, settings, nil, os.Environ(), nil)
	if code != sudoadapter.Accept {
		fmt.Fprintf(os.Stderr, "open failed: %s\n", errstr)
		os.Exit(exitCode(code))
	}
	defer adapter.Close(0, false)

	switch {
	case *version:
		fmt.Println(adapter.Version(*verbose))
		return
	case *list:
		code, errstr := adapter.List(flag.Args(), *verbose, "")
		if code != sudoadapter.Accept {
			fmt.Fprintf(os.Stderr, "list failed: %s\n", errstr)
			os.Exit(exitCode(code))
		}
		return
	}

	argv := flag.Args()
	if len(argv) == 0 {
		fmt.Fprintln(os.Stderr, "usage: sgnl-sudo-plugin [-config path] [-list|-version] command [args...]")
		os.Exit(int(sudoadapter.UsageError))
	}

	result := adapter.Check(argv, nil)
	switch result.Code {
	case sudoadapter.Accept:
		fmt.Printf("ACCEPT: command=%v\n", result.CommandInfo.Entries())
	case sudoadapter.Reject:
		fmt.Fprintf(os.Stderr, "REJECT: %s\n", result.ErrString)
	default:
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", result.ErrString)
	}
	os.Exit(exitCode(result.Code))
}

func printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

func exitCode(code sudoadapter.ReturnCode) int {
	if code == sudoadapter.Accept {
		return 0
	}
	return 1
}
