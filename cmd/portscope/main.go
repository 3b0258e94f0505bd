// Command portscope inspects the data flowing through graph node ports in a
// live Maya session or a YAML scene file.
package main

import (
	"os"

	"github.com/aretw0/portscope/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
