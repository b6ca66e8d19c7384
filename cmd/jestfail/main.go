// jestfail reports failing Jest suites to a pull request.
//
// Usage:
//
//	jestfail report  [--results=<path>] [--context=<path>] [--publish] [--exit-code]
//	jestfail summary [--results=<path>] [--format=ascii|markdown] [--failed-only]
//	jestfail serve
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.msg != "" {
				fmt.Fprintln(os.Stderr, exit.msg)
			}
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
