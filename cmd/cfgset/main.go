// Command cfgset manages sets of control-flow graphs keyed by address.
package main

import (
	"os"

	"github.com/roach88/cfgset/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
