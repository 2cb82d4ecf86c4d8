// Command qform renders FHIR-style questionnaires as HTML, fills them in on
// the terminal, or serves them over HTTP.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goliatone/go-qform/pkg/renderers/tui"
)

var version = "dev"

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "qform:", err)
		os.Exit(1)
	}
}
